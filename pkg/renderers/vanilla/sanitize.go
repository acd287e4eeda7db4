package vanilla

import (
	"bytes"
	"html"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

var (
	iconPolicyOnce sync.Once
	iconPolicy     *bluemonday.Policy

	textPolicy = bluemonday.UGCPolicy()

	// Raw HTML in markdown is escaped because WithUnsafe is not set; the
	// output still goes through textPolicy.
	markdown = goldmark.New(
		goldmark.WithRendererOptions(
			goldmarkHTML.WithHardWraps(),
		),
	)
)

// RenderMarkdown converts step descriptions and flash messages to sanitized
// HTML. Conversion errors fall back to escaped text.
func RenderMarkdown(src string) string {
	src = strings.TrimSpace(src)
	if src == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return html.EscapeString(src)
	}
	return strings.TrimSpace(textPolicy.Sanitize(buf.String()))
}

// SanitizeIcon keeps inline SVG step icons and strips everything else.
// Markup that does not survive sanitizing yields "".
func SanitizeIcon(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(iconSanitizer().Sanitize(trimmed))
}

func iconSanitizer() *bluemonday.Policy {
	iconPolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		policy.AllowElements("svg", "g", "path", "circle", "rect", "line", "polyline", "polygon", "title")

		policy.AllowAttrs(
			"xmlns", "viewBox", "width", "height", "fill", "stroke",
			"stroke-width", "stroke-linecap", "stroke-linejoin", "aria-hidden",
			"role", "focusable", "class",
		).OnElements("svg")

		for _, el := range []string{"path", "circle", "rect", "line", "polyline", "polygon"} {
			policy.AllowAttrs(
				"d", "cx", "cy", "r", "x", "y", "x1", "y1", "x2", "y2",
				"points", "rx", "ry", "fill", "stroke", "stroke-width",
				"stroke-linecap", "stroke-linejoin", "class",
			).OnElements(el)
		}
		policy.AllowAttrs("id").OnElements("g")

		iconPolicy = policy
	})
	return iconPolicy
}

func filterMarkdown(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsSafeValue(RenderMarkdown(in.String())), nil
}

func filterIcon(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsSafeValue(SanitizeIcon(in.String())), nil
}
