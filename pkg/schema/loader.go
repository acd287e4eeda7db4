// Package schema loads form definitions from JSON or YAML documents. Field
// conditions are textual rules compiled through a visibility.Evaluator.
package schema

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formwizard/pkg/field"
	"github.com/goliatone/go-formwizard/pkg/visibility"
	"github.com/goliatone/go-formwizard/pkg/visibility/expr"
)

var (
	// ErrUnknownType is returned for a field type outside the closed set.
	ErrUnknownType = errors.New("schema: unknown field type")
	// ErrUnknownValidation is returned for a password validation tag other
	// than matchPassword.
	ErrUnknownValidation = errors.New("schema: unknown password validation")
	// ErrEmptyOption is returned for a select option without label or value.
	ErrEmptyOption = errors.New("schema: select option needs a label or value")
	// ErrMixedLayout is returned when a document declares both steps and a
	// flat field list.
	ErrMixedLayout = errors.New("schema: document declares both steps and fields")
)

// Definition is a loaded form: either a step wizard (Steps) or a single-page
// form (Fields).
type Definition struct {
	Title      string
	SubmitText string
	Steps      []field.Step
	Fields     []field.Field
}

// AllFields returns every field in declaration order.
func (d Definition) AllFields() []field.Field {
	if len(d.Steps) == 0 {
		return append([]field.Field(nil), d.Fields...)
	}
	var out []field.Field
	for _, step := range d.Steps {
		out = append(out, step.Fields...)
	}
	return out
}

// Loader reads definition documents from files, an fs.FS, or HTTP.
type Loader struct {
	fs     fs.FS
	http   *http.Client
	eval   visibility.Evaluator
	extras map[string]any
}

// Option configures a Loader.
type Option func(*Loader)

// WithFileSystem sets the fs.FS used for SourceFromFS.
func WithFileSystem(files fs.FS) Option {
	return func(l *Loader) {
		l.fs = files
	}
}

// WithHTTPClient enables URL sources.
func WithHTTPClient(client *http.Client) Option {
	return func(l *Loader) {
		l.http = client
	}
}

// WithEvaluator overrides the rule evaluator (expr.New by default).
func WithEvaluator(eval visibility.Evaluator) Option {
	return func(l *Loader) {
		if eval != nil {
			l.eval = eval
		}
	}
}

// WithExtras exposes values under the extras. prefix in rules.
func WithExtras(extras map[string]any) Option {
	return func(l *Loader) {
		l.extras = extras
	}
}

// New constructs a Loader.
func New(opts ...Option) *Loader {
	l := &Loader{eval: expr.New()}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// Load reads src and parses it into a Definition.
func (l *Loader) Load(ctx context.Context, src Source) (Definition, error) {
	if src == nil {
		return Definition{}, errors.New("schema: source is nil")
	}
	if err := ctx.Err(); err != nil {
		return Definition{}, err
	}

	var (
		data []byte
		err  error
	)
	switch src.Kind() {
	case SourceKindFile:
		data, err = os.ReadFile(src.Location())
	case SourceKindFS:
		if l.fs == nil {
			return Definition{}, errors.New("schema: filesystem is not configured")
		}
		data, err = fs.ReadFile(l.fs, src.Location())
	case SourceKindURL:
		data, err = l.fetch(ctx, src.Location())
	default:
		err = fmt.Errorf("schema: unsupported source kind %q", src.Kind())
	}
	if err != nil {
		return Definition{}, fmt.Errorf("schema: read %s: %w", src.Location(), err)
	}
	return l.Parse(data, src.Location())
}

func (l *Loader) fetch(ctx context.Context, raw string) ([]byte, error) {
	if l.http == nil {
		return nil, errors.New("http support disabled")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, raw, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// Parse decodes a JSON or YAML document. location only labels errors.
func (l *Loader) Parse(data []byte, location string) (Definition, error) {
	doc, err := parseDocument(data, location)
	if err != nil {
		return Definition{}, err
	}
	if len(doc.Steps) > 0 && len(doc.Fields) > 0 {
		return Definition{}, fmt.Errorf("%w (%s)", ErrMixedLayout, location)
	}

	def := Definition{Title: doc.Title, SubmitText: doc.SubmitText}
	if len(doc.Fields) > 0 {
		fields, err := l.buildFields(doc.Fields, location)
		if err != nil {
			return Definition{}, err
		}
		if err := field.Check([]field.Step{{Fields: fields}}); err != nil {
			return Definition{}, fmt.Errorf("schema: %s: %w", location, err)
		}
		def.Fields = fields
		return def, nil
	}

	def.Steps = make([]field.Step, len(doc.Steps))
	for i, raw := range doc.Steps {
		fields, err := l.buildFields(raw.Fields, location)
		if err != nil {
			return Definition{}, err
		}
		def.Steps[i] = field.Step{
			Title:       raw.Title,
			Description: raw.Description,
			Icon:        raw.Icon,
			Fields:      fields,
		}
	}
	if err := field.Check(def.Steps); err != nil {
		return Definition{}, fmt.Errorf("schema: %s: %w", location, err)
	}
	return def, nil
}

type ruleChecker interface {
	Check(rule string) error
}

func (l *Loader) buildFields(raw []fieldFile, location string) ([]field.Field, error) {
	out := make([]field.Field, 0, len(raw))
	for _, f := range raw {
		rule := strings.TrimSpace(f.Condition)
		if checker, ok := l.eval.(ruleChecker); ok && rule != "" {
			if err := checker.Check(rule); err != nil {
				return nil, fmt.Errorf("schema: %s: field %q condition: %w", location, f.Name, err)
			}
		}
		built, err := f.build(visibility.Condition(l.eval, f.Name, rule, l.extras))
		if err != nil {
			return nil, fmt.Errorf("schema: %s: field %q: %w", location, f.Name, err)
		}
		out = append(out, built)
	}
	return out, nil
}

func parseDocument(data []byte, source string) (documentFile, error) {
	var doc documentFile
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return documentFile{}, fmt.Errorf("schema: file %s is empty", source)
	}

	if strings.HasPrefix(trimmed, "{") {
		if err := json.Unmarshal(data, &doc); err != nil {
			return documentFile{}, fmt.Errorf("schema: parse %s: %w", source, err)
		}
		return doc, nil
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return documentFile{}, fmt.Errorf("schema: parse %s: %w", source, err)
	}
	return doc, nil
}
