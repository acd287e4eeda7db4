package sessions

import (
	"net/url"
	"slices"
	"strings"
)

// Filter kinds, in the order they are offered.
const (
	FilterCity   = "City"
	FilterCoach  = "Coach name"
	FilterAge    = "Age"
	FilterPlaces = "Places"
	FilterDate   = "Date"
)

// AvatarBaseURL generates coach avatars seeded by name.
const AvatarBaseURL = "https://api.dicebear.com/7.x/avatars/svg?seed="

// Coach is a coach facet entry.
type Coach struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// Facets lists the distinct filter values present in a catalogue.
type Facets struct {
	Coaches []Coach  `json:"coaches"`
	Ages    []string `json:"ages"`
	Places  []string `json:"places"`
	Cities  []string `json:"cities"`
	Dates   []string `json:"dates"`
}

// FacetOption is a selectable filter value.
type FacetOption struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

// BuildFacets derives facets from sessions. Coaches keep first-seen order;
// the other facets are sorted.
func BuildFacets(sessions []Session) Facets {
	var f Facets
	for _, name := range distinct(sessions, func(s Session) string { return s.Coach }) {
		f.Coaches = append(f.Coaches, Coach{ID: name, Name: name, Avatar: AvatarBaseURL + url.PathEscape(name)})
	}
	f.Ages = sorted(distinct(sessions, func(s Session) string { return s.AgeGroup }))
	f.Places = sorted(distinct(sessions, Session.Place))
	f.Cities = sorted(distinct(sessions, Session.City))
	f.Dates = sorted(distinct(sessions, func(s Session) string { return s.Date }))
	return f
}

// Tags returns the filter kinds that have at least one value.
func (f Facets) Tags() []string {
	var tags []string
	if len(f.Cities) > 0 {
		tags = append(tags, FilterCity)
	}
	if len(f.Coaches) > 0 {
		tags = append(tags, FilterCoach)
	}
	if len(f.Ages) > 0 {
		tags = append(tags, FilterAge)
	}
	if len(f.Places) > 0 {
		tags = append(tags, FilterPlaces)
	}
	if len(f.Dates) > 0 {
		tags = append(tags, FilterDate)
	}
	return tags
}

// Options returns the selectable values for a filter kind, narrowed to
// names containing search. Unknown kinds yield nil.
func (f Facets) Options(kind, search string) []FacetOption {
	var out []FacetOption
	switch kind {
	case FilterCoach:
		for _, c := range f.Coaches {
			out = append(out, FacetOption{ID: c.ID, Name: c.Name, Avatar: c.Avatar})
		}
	case FilterAge:
		out = plainOptions(f.Ages)
	case FilterPlaces:
		out = plainOptions(f.Places)
	case FilterCity:
		out = plainOptions(f.Cities)
	case FilterDate:
		out = plainOptions(f.Dates)
	}
	if search = strings.ToLower(strings.TrimSpace(search)); search == "" {
		return out
	}
	return slices.DeleteFunc(out, func(o FacetOption) bool {
		return !strings.Contains(strings.ToLower(o.Name), search)
	})
}

// Query is a free text search plus multi-valued facet filters. Values of
// one kind are alternatives; kinds combine with AND.
type Query struct {
	Search  string
	Filters map[string][]string
}

// Apply replaces the selected values of kind.
func (q *Query) Apply(kind string, values []string) {
	if q.Filters == nil {
		q.Filters = make(map[string][]string)
	}
	q.Filters[kind] = slices.Clone(values)
}

// Remove deselects one value of kind.
func (q *Query) Remove(kind, value string) {
	if q.Filters == nil {
		return
	}
	q.Filters[kind] = slices.DeleteFunc(slices.Clone(q.Filters[kind]), func(v string) bool { return v == value })
}

// Clear drops every filter and the search text.
func (q *Query) Clear() {
	q.Filters = nil
	q.Search = ""
}

// Count returns the number of selected values of kind.
func (q Query) Count(kind string) int {
	return len(q.Filters[kind])
}

// Total returns the number of selected values across kinds.
func (q Query) Total() int {
	n := 0
	for _, values := range q.Filters {
		n += len(values)
	}
	return n
}

// Match reports whether s satisfies the query.
func (q Query) Match(s Session) bool {
	if needle := strings.ToLower(strings.TrimSpace(q.Search)); needle != "" {
		hit := false
		for _, hay := range []string{s.Title, s.Coach, s.Location, s.Type} {
			if strings.Contains(strings.ToLower(hay), needle) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	for kind, values := range q.Filters {
		if len(values) == 0 {
			continue
		}
		var got string
		switch kind {
		case FilterCoach:
			got = s.Coach
		case FilterAge:
			got = s.AgeGroup
		case FilterCity:
			got = s.City()
		case FilterPlaces:
			got = s.Place()
		case FilterDate:
			got = s.Date
		default:
			continue
		}
		if !slices.Contains(values, got) {
			return false
		}
	}
	return true
}

// Filter returns the sessions matching q in catalogue order.
func Filter(sessions []Session, q Query) []Session {
	var out []Session
	for _, s := range sessions {
		if q.Match(s) {
			out = append(out, s)
		}
	}
	return out
}

func distinct(sessions []Session, key func(Session) string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, s := range sessions {
		v := key(s)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func sorted(values []string) []string {
	slices.Sort(values)
	return values
}

func plainOptions(values []string) []FacetOption {
	out := make([]FacetOption, 0, len(values))
	for _, v := range values {
		out = append(out, FacetOption{ID: v, Name: v})
	}
	return out
}
