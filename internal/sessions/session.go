// Package sessions is the catalogue of bookable training sessions with the
// facet filters used to browse it.
package sessions

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var builtinCatalog []byte

// Session is one bookable training session.
type Session struct {
	ID       string  `json:"id" yaml:"id"`
	Title    string  `json:"title" yaml:"title"`
	Coach    string  `json:"coach" yaml:"coach"`
	Rating   float64 `json:"rating" yaml:"rating"`
	Image    string  `json:"image" yaml:"image"`
	Date     string  `json:"date" yaml:"date"`
	Time     string  `json:"time" yaml:"time"`
	Type     string  `json:"type" yaml:"type"`
	AgeGroup string  `json:"ageGroup" yaml:"ageGroup"`
	Location string  `json:"location" yaml:"location"`
	Price    float64 `json:"price" yaml:"price"`
	Status   string  `json:"status" yaml:"status"`
}

// City is the last comma separated part of the location.
func (s Session) City() string {
	parts := strings.Split(s.Location, ",")
	return strings.TrimSpace(parts[len(parts)-1])
}

// Place is the first comma separated part of the location.
func (s Session) Place() string {
	place, _, _ := strings.Cut(s.Location, ",")
	return strings.TrimSpace(place)
}

// Catalog returns the built-in sessions.
func Catalog() []Session {
	sessions, err := Decode(bytes.NewReader(builtinCatalog))
	if err != nil {
		panic(fmt.Sprintf("sessions: embedded catalog: %v", err))
	}
	return sessions
}

// Decode reads a YAML list of sessions. Every session needs an id.
func Decode(r io.Reader) ([]Session, error) {
	var sessions []Session
	if err := yaml.NewDecoder(r).Decode(&sessions); err != nil && err != io.EOF {
		return nil, fmt.Errorf("sessions: decode catalog: %w", err)
	}
	seen := make(map[string]bool, len(sessions))
	for i, s := range sessions {
		if strings.TrimSpace(s.ID) == "" {
			return nil, fmt.Errorf("sessions: entry %d has no id", i)
		}
		if seen[s.ID] {
			return nil, fmt.Errorf("sessions: duplicate id %q", s.ID)
		}
		seen[s.ID] = true
	}
	return sessions, nil
}
