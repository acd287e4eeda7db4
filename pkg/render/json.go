package render

import (
	"context"
	"encoding/json"
)

// JSONRenderer encodes the view for script clients.
type JSONRenderer struct {
	// Indent enables two-space indentation.
	Indent bool
}

type jsonPayload struct {
	StepView
	Title  string            `json:"title,omitempty"`
	Action string            `json:"action,omitempty"`
	Hidden map[string]string `json:"hidden,omitempty"`
	Flash  string            `json:"flash,omitempty"`
}

// Name implements Renderer.
func (JSONRenderer) Name() string { return "json" }

// ContentType implements Renderer.
func (JSONRenderer) ContentType() string { return "application/json" }

// Render implements Renderer.
func (r JSONRenderer) Render(_ context.Context, view StepView, options RenderOptions) ([]byte, error) {
	payload := jsonPayload{
		StepView: view,
		Title:    options.Title,
		Action:   options.Action,
		Hidden:   MergeHiddenFields(nil, options.Hidden...),
		Flash:    options.Flash,
	}
	if r.Indent {
		return json.MarshalIndent(payload, "", "  ")
	}
	return json.Marshal(payload)
}
