package expr

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-formwizard/pkg/visibility"
)

// Evaluator compiles the condition rules used by form definitions.
//
// Grammar:
//
//	rule    = and { "||" and }
//	and     = unary { "&&" unary }
//	unary   = "!" unary | primary
//	primary = "(" rule ")" | operand [ cmp literal ]
//	operand = path | "age(" path ")"
//	cmp     = "==" | "!=" | "<" | "<=" | ">" | ">="
//	literal = string | number | true | false | null
//
// Paths read visibility.Context.Values, with dot traversal into nested maps,
// or Extras when prefixed with "extras.". A bare operand tests truthiness.
type Evaluator struct {
	now func() time.Time
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithClock overrides the time source used by age().
func WithClock(now func() time.Time) Option {
	return func(e *Evaluator) {
		if now != nil {
			e.now = now
		}
	}
}

func New(opts ...Option) *Evaluator {
	e := &Evaluator{now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Eval implements visibility.Evaluator. An empty rule is always true.
func (e *Evaluator) Eval(_, rule string, ctx visibility.Context) (bool, error) {
	n, err := e.compile(rule)
	if err != nil {
		return false, err
	}
	if n == nil {
		return true, nil
	}
	return n(ctx), nil
}

// Check parses rule without evaluating it so definition loaders can reject
// malformed rules up front.
func (e *Evaluator) Check(rule string) error {
	_, err := e.compile(rule)
	return err
}

// AgeOn returns the whole years between a YYYY-MM-DD date and now.
func AgeOn(date string, now time.Time) (int, bool) {
	born, err := time.Parse(time.DateOnly, strings.TrimSpace(date))
	if err != nil {
		return 0, false
	}
	years := now.Year() - born.Year()
	if now.Month() < born.Month() || (now.Month() == born.Month() && now.Day() < born.Day()) {
		years--
	}
	return years, true
}

type node func(visibility.Context) bool

type operand func(visibility.Context) (any, bool)

type tokenKind int

const (
	tokPunct tokenKind = iota
	tokString
	tokWord
)

type token struct {
	kind tokenKind
	text string
}

var lexeme = regexp.MustCompile(`^\s*(?:(&&|\|\||==|!=|<=|>=|[<>!()])|("(?:[^"\\]|\\.)*"|'[^']*')|([^\s()!=&|<>"']+))`)

func tokenize(rule string) ([]token, error) {
	var out []token
	rest := rule
	for strings.TrimSpace(rest) != "" {
		m := lexeme.FindStringSubmatch(rest)
		if m == nil {
			return nil, fmt.Errorf("visibility/expr: unexpected input at %q", strings.TrimSpace(rest))
		}
		rest = rest[len(m[0]):]
		switch {
		case m[1] != "":
			out = append(out, token{tokPunct, m[1]})
		case strings.HasPrefix(m[2], "'"):
			out = append(out, token{tokString, m[2][1 : len(m[2])-1]})
		case m[2] != "":
			s, err := strconv.Unquote(m[2])
			if err != nil {
				return nil, fmt.Errorf("visibility/expr: invalid string literal: %w", err)
			}
			out = append(out, token{tokString, s})
		default:
			out = append(out, token{tokWord, m[3]})
		}
	}
	return out, nil
}

type parser struct {
	toks []token
	pos  int
	now  func() time.Time
}

func (e *Evaluator) compile(rule string) (node, error) {
	toks, err := tokenize(rule)
	if err != nil || len(toks) == 0 {
		return nil, err
	}
	p := &parser{toks: toks, now: e.now}
	n, err := p.or()
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.toks) {
		return nil, fmt.Errorf("visibility/expr: unexpected token %q", p.toks[p.pos].text)
	}
	return n, nil
}

func (p *parser) accept(punct string) bool {
	if p.pos < len(p.toks) && p.toks[p.pos].kind == tokPunct && p.toks[p.pos].text == punct {
		p.pos++
		return true
	}
	return false
}

func (p *parser) next() (token, bool) {
	if p.pos >= len(p.toks) {
		return token{}, false
	}
	p.pos++
	return p.toks[p.pos-1], true
}

func (p *parser) or() (node, error) {
	left, err := p.and()
	for err == nil && p.accept("||") {
		var right node
		if right, err = p.and(); err == nil {
			l := left
			left = func(ctx visibility.Context) bool { return l(ctx) || right(ctx) }
		}
	}
	return left, err
}

func (p *parser) and() (node, error) {
	left, err := p.unary()
	for err == nil && p.accept("&&") {
		var right node
		if right, err = p.unary(); err == nil {
			l := left
			left = func(ctx visibility.Context) bool { return l(ctx) && right(ctx) }
		}
	}
	return left, err
}

func (p *parser) unary() (node, error) {
	if p.accept("!") {
		inner, err := p.unary()
		if err != nil {
			return nil, err
		}
		return func(ctx visibility.Context) bool { return !inner(ctx) }, nil
	}
	return p.primary()
}

func (p *parser) primary() (node, error) {
	if p.accept("(") {
		inner, err := p.or()
		if err != nil {
			return nil, err
		}
		if !p.accept(")") {
			return nil, errors.New("visibility/expr: missing closing ')'")
		}
		return inner, nil
	}
	left, err := p.operand()
	if err != nil {
		return nil, err
	}
	for _, op := range []string{"==", "!=", "<=", ">=", "<", ">"} {
		if p.accept(op) {
			return p.compare(left, op)
		}
	}
	return func(ctx visibility.Context) bool {
		v, ok := left(ctx)
		return ok && truthy(v)
	}, nil
}

func (p *parser) operand() (operand, error) {
	tok, ok := p.next()
	if !ok {
		return nil, errors.New("visibility/expr: empty expression")
	}
	if tok.kind != tokWord {
		return nil, fmt.Errorf("visibility/expr: expected field name, got %q", tok.text)
	}
	if !p.accept("(") {
		path := tok.text
		return func(ctx visibility.Context) (any, bool) { return lookup(ctx, path) }, nil
	}
	if !strings.EqualFold(tok.text, "age") {
		return nil, fmt.Errorf("visibility/expr: unknown function %q", tok.text)
	}
	arg, ok := p.next()
	if !ok || arg.kind != tokWord || !p.accept(")") {
		return nil, errors.New("visibility/expr: age() expects a single field name")
	}
	now := p.now
	// A missing or malformed date compares false rather than failing.
	return func(ctx visibility.Context) (any, bool) {
		raw, ok := lookup(ctx, arg.text)
		if !ok {
			return nil, false
		}
		years, ok := AgeOn(text(raw), now())
		if !ok {
			return nil, false
		}
		return float64(years), true
	}, nil
}

func (p *parser) compare(left operand, op string) (node, error) {
	tok, ok := p.next()
	if !ok {
		return nil, errors.New("visibility/expr: missing literal")
	}
	ordering := op != "==" && op != "!="
	word := strings.ToLower(tok.text)

	switch {
	case tok.kind == tokString:
		want := tok.text
		return func(ctx visibility.Context) bool {
			v, ok := left(ctx)
			if ordering && (!ok || v == nil) {
				return false
			}
			return ordered(text(v), want, op)
		}, nil
	case tok.kind == tokWord && (word == "true" || word == "false" || word == "null"):
		if ordering {
			return nil, fmt.Errorf("visibility/expr: unsupported operator %q for %s", op, word)
		}
		negate := op == "!="
		if word == "null" {
			return func(ctx visibility.Context) bool {
				v, ok := left(ctx)
				return (!ok || v == nil) != negate
			}, nil
		}
		want := word == "true"
		return func(ctx visibility.Context) bool {
			v, _ := left(ctx)
			return (boolean(v) == want) != negate
		}, nil
	case tok.kind == tokWord:
		want, err := strconv.ParseFloat(tok.text, 64)
		if err != nil {
			return nil, fmt.Errorf("visibility/expr: expected literal, got %q", tok.text)
		}
		return func(ctx visibility.Context) bool {
			v, _ := left(ctx)
			got, ok := number(v)
			if !ok && ordering {
				return false
			}
			return ordered(got, want, op)
		}, nil
	}
	return nil, fmt.Errorf("visibility/expr: expected literal, got %q", tok.text)
}

func ordered[T float64 | string](got, want T, op string) bool {
	switch op {
	case "==":
		return got == want
	case "!=":
		return got != want
	case "<":
		return got < want
	case "<=":
		return got <= want
	case ">":
		return got > want
	default:
		return got >= want
	}
}

func lookup(ctx visibility.Context, path string) (any, bool) {
	values := ctx.Values
	if rest, ok := strings.CutPrefix(path, "extras."); ok {
		values, path = ctx.Extras, rest
	}
	if v, ok := values[path]; ok {
		return v, true
	}
	var current any = values
	for _, part := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		if current, ok = m[part]; !ok {
			return nil, false
		}
	}
	return current, true
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return strings.TrimSpace(t) != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	}
	if n, ok := number(v); ok {
		return n != 0
	}
	return true
}

// boolean accepts checkbox values stored as strings.
func boolean(v any) bool {
	if s, ok := v.(string); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b
		}
	}
	return truthy(v)
}

func number(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	}
	return 0, false
}

func text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	}
	return fmt.Sprint(v)
}
