package vanilla_test

import (
	"context"
	"strings"
	"testing"

	"github.com/goliatone/go-formwizard/pkg/field"
	"github.com/goliatone/go-formwizard/pkg/render"
	"github.com/goliatone/go-formwizard/pkg/renderers/vanilla"
	"github.com/goliatone/go-formwizard/pkg/testsupport"
	"github.com/goliatone/go-formwizard/pkg/wizard"
)

func renderStep(t *testing.T, w *wizard.Wizard, opts render.RenderOptions, ropts ...vanilla.Option) string {
	t.Helper()
	renderer, err := vanilla.New(ropts...)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	out, err := renderer.Render(context.Background(), render.BuildStep(w), opts)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return string(out)
}

func assertContains(t *testing.T, html string, fragments ...string) {
	t.Helper()
	for _, fragment := range fragments {
		if !strings.Contains(html, fragment) {
			t.Errorf("output missing %q\n%s", fragment, html)
		}
	}
}

func TestRenderFirstStep(t *testing.T) {
	steps := testsupport.ApplicationSteps()
	steps[0].Description = "Tell us about **yourself**"
	w, err := wizard.New(steps, nil, wizard.WithInstanceKey("signup"))
	if err != nil {
		t.Fatalf("new wizard: %v", err)
	}
	w.Advance()

	html := renderStep(t, w, render.RenderOptions{
		Action: "/apply",
		Hidden: []render.HiddenField{render.CSRFToken("gorilla.csrf.Token", "tok")},
	}, vanilla.WithTitle("Player Registration"), vanilla.WithStylesheet("/assets/formwizard.css"))

	assertContains(t, html,
		`<link rel="stylesheet" href="/assets/formwizard.css">`,
		`action="/apply"`,
		`<input type="hidden" name="_instance" value="signup">`,
		`<input type="hidden" name="_step" value="0">`,
		`<input type="hidden" name="gorilla.csrf.Token" value="tok">`,
		`<h1>Player Registration</h1>`,
		`<p class="fw-progress">Step 1 of 4</p>`,
		`<strong>yourself</strong>`,
		`placeholder="Enter first name"`,
		`<p class="fw-error" role="alert">First Name is required</p>`,
		`<span class="fw-prefix">+91</span>`,
		`maxlength="12"`,
		`<small>Enter 10-digit mobile number (starting with 6-9)</small>`,
		`value="previous" disabled>Previous</button>`,
		`value="next">Next</button>`,
	)
	if strings.Contains(html, `value="submit"`) {
		t.Fatalf("submit button should only render on the last step")
	}
}

func TestRenderLastStepAndHeaders(t *testing.T) {
	w, err := wizard.New(testsupport.ApplicationSteps(), nil)
	if err != nil {
		t.Fatalf("new wizard: %v", err)
	}
	for step, answers := range testsupport.ApplicationAnswers() {
		for name, value := range answers {
			if err := w.SetValue(name, value); err != nil {
				t.Fatalf("set %s: %v", name, err)
			}
		}
		if step == 2 {
			if err := w.SetChecked("termsConditions", true); err != nil {
				t.Fatalf("check terms: %v", err)
			}
		}
		if step < 3 && !w.Advance() {
			t.Fatalf("advance step %d: %v", step, w.State().Errors)
		}
	}

	html := renderStep(t, w, render.RenderOptions{Flash: "Submission failed: *try again*", Title: "Last Checks"},
		vanilla.WithTitle("Player Registration"))
	assertContains(t, html,
		`<h1>Last Checks</h1>`,
		`value="jump:0">1 Personal Info</button>`,
		`value="jump:2">3 Documents</button>`,
		`aria-current="step"`,
		`<legend>Verify you are human</legend>`,
		`I&#39;m not a robot`,
		`value="submit">Submit Application</button>`,
		`<em>try again</em>`,
	)
	if strings.Contains(html, `value="next"`) {
		t.Fatalf("next button should not render on the last step")
	}
}

func TestRenderSinglePageFormEscapesValues(t *testing.T) {
	w, err := wizard.NewForm([]field.Field{
		field.Text{Base: field.Base{Name: "nickname", Label: "Nickname"}},
		field.File{Base: field.Base{Name: "photo", Label: "Photo"}, AcceptTypes: "image/*"},
	}, nil)
	if err != nil {
		t.Fatalf("new form: %v", err)
	}
	if err := w.SetValue("nickname", `<script>alert(1)</script>`); err != nil {
		t.Fatalf("set nickname: %v", err)
	}

	html := renderStep(t, w, render.RenderOptions{})
	if strings.Contains(html, "<script>") {
		t.Fatalf("value was not escaped:\n%s", html)
	}
	if strings.Contains(html, `class="fw-steps"`) || strings.Contains(html, `value="previous"`) {
		t.Fatalf("single page form should not render step chrome:\n%s", html)
	}
	assertContains(t, html, `accept="image/*"`, `<small>Accepted: image/*. Max: 5MB</small>`)
}

func TestRenderCustomClasses(t *testing.T) {
	w, err := wizard.NewForm([]field.Field{field.Checkbox{Base: field.Base{Name: "optIn", Label: "Send me news"}}}, nil)
	if err != nil {
		t.Fatalf("new form: %v", err)
	}
	html := renderStep(t, w, render.RenderOptions{}, vanilla.WithClasses(vanilla.Classes{Form: "stack"}))
	assertContains(t, html, `<form class="stack"`, `class="fw-field fw-field--full"`)
}
