package tui

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formwizard/pkg/field"
	"github.com/goliatone/go-formwizard/pkg/testsupport"
	"github.com/goliatone/go-formwizard/pkg/wizard"
)

type stubDriver struct {
	inputs    []string
	selectIdx []int
	confirm   []bool
	textAreas []string
	passwords []string

	inputConfigs  []InputConfig
	selectConfigs []SelectConfig
	infoMessages  []string

	inputPos   int
	selectPos  int
	confirmPos int
	textPos    int
	passPos    int
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	s.inputConfigs = append(s.inputConfigs, cfg)
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Password(_ context.Context, _ InputConfig) (string, error) {
	if s.passPos >= len(s.passwords) {
		return "", errors.New("no password scripted")
	}
	val := s.passwords[s.passPos]
	s.passPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, _ ConfirmConfig) (bool, error) {
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	s.selectConfigs = append(s.selectConfigs, cfg)
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) TextArea(_ context.Context, _ TextAreaConfig) (string, error) {
	if s.textPos >= len(s.textAreas) {
		return "", errors.New("no textarea scripted")
	}
	val := s.textAreas[s.textPos]
	s.textPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func (s *stubDriver) saw(fragment string) bool {
	for _, msg := range s.infoMessages {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}

func stubOpener(files map[string]string) FileOpener {
	return func(path string) (io.ReadCloser, int64, error) {
		body, ok := files[path]
		if !ok {
			return nil, 0, errors.New("no such file")
		}
		return io.NopCloser(strings.NewReader(body)), int64(len(body)), nil
	}
}

func TestRunCompletesApplication(t *testing.T) {
	var submitted field.Values
	uploader := &testsupport.StubUploader{}
	w, err := wizard.New(testsupport.ApplicationSteps(), func(_ context.Context, v field.Values) error {
		submitted = v
		return nil
	}, wizard.WithUploader(uploader))
	if err != nil {
		t.Fatalf("new wizard: %v", err)
	}

	driver := &stubDriver{
		inputs:    []string{"Ada", "Lovelace", "ada@example.org", "9876543210", "cv.pdf"},
		passwords: []string{"Abc12345", "Abc12345"},
		confirm:   []bool{true, true},
		selectIdx: []int{0, 0, 0, 0},
	}
	session := New(WithPromptDriver(driver), WithFileOpener(stubOpener(map[string]string{"cv.pdf": "pdf-bytes"})))

	outcome, err := session.Run(context.Background(), w)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if outcome != Submitted {
		t.Fatalf("want submitted, got %s", outcome)
	}

	want := field.Values{
		"firstName":       "Ada",
		"lastName":        "Lovelace",
		"email":           "ada@example.org",
		"phone":           "987-654-3210",
		"password":        "Abc12345",
		"confirmPassword": "Abc12345",
		"resume": field.FileRef{
			URL:  "https://files.test/documents/resume/cv.pdf",
			Name: "cv.pdf",
			Key:  "documents/resume/cv.pdf",
			Size: 9,
			Type: "application/pdf",
		},
		"termsConditions": true,
	}
	if diff := cmp.Diff(want, submitted); diff != "" {
		t.Fatalf("submitted values mismatch (-want +got):\n%s", diff)
	}
	if !driver.saw("Uploaded cv.pdf (9 Bytes)") || !driver.saw("Step 4 of 4: Final Step") {
		t.Fatalf("missing progress output: %v", driver.infoMessages)
	}

	menus := driver.selectConfigs
	if diff := cmp.Diff([]string{"Next", MenuJump, MenuSave}, menus[0].Options); diff != "" {
		t.Fatalf("first menu mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{wizard.DefaultSubmitText, "Previous", MenuJump, MenuSave}, menus[3].Options); diff != "" {
		t.Fatalf("last menu mismatch (-want +got):\n%s", diff)
	}
}

func TestRunReportsErrorsAndSuspends(t *testing.T) {
	w, err := wizard.New(testsupport.ApplicationSteps(), nil)
	if err != nil {
		t.Fatalf("new wizard: %v", err)
	}

	driver := &stubDriver{
		inputs: []string{
			"", "Lovelace", "ada@example.org", "98765",
			"Ada", "Lovelace", "ada@example.org", "9876543210",
		},
		selectIdx: []int{0, 2},
	}
	outcome, err := New(WithPromptDriver(driver)).Run(context.Background(), w)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if outcome != Suspended {
		t.Fatalf("want suspended, got %s", outcome)
	}
	for _, msg := range []string{
		"✗ First Name: First Name is required",
		"✗ Phone Number: Please enter a valid 10-digit mobile number",
		"Progress saved.",
	} {
		if !driver.saw(msg) {
			t.Errorf("missing %q in %v", msg, driver.infoMessages)
		}
	}
	if got := w.State().Values.String("phone"); got != "987-654-3210" {
		t.Fatalf("second pass should store the corrected phone, got %q", got)
	}
}

func TestRunValidatorMatchesAdvanceRules(t *testing.T) {
	w, err := wizard.New(testsupport.ApplicationSteps(), nil)
	if err != nil {
		t.Fatalf("new wizard: %v", err)
	}
	driver := &stubDriver{}
	if _, err := New(WithPromptDriver(driver)).Run(context.Background(), w); err == nil {
		t.Fatalf("expected the unscripted driver to fail")
	}

	cfg := driver.inputConfigs[0]
	if cfg.Message != "First Name" || cfg.Help != "Enter first name" {
		t.Fatalf("unexpected prompt config %+v", cfg)
	}
	if err := cfg.Validator(""); err == nil || err.Error() != "First Name is required" {
		t.Fatalf("expected required error, got %v", err)
	}
	if err := cfg.Validator("Ada"); err != nil {
		t.Fatalf("expected valid answer, got %v", err)
	}
}

func TestRunSkipsPrefilledAndHiddenFields(t *testing.T) {
	minor := func(v field.Values) bool { return v.String("age") == "minor" }
	w, err := wizard.NewForm([]field.Field{
		field.Text{Base: field.Base{Name: "email", Label: "Email"}, TextKind: field.KindEmail},
		field.Select{Base: field.Base{Name: "age", Label: "Age group"}, Options: field.Options("adult", "minor")},
		field.Checkbox{Base: field.Base{Name: "consent", Label: "Parent consents", Required: true, Condition: minor}},
	}, func(context.Context, field.Values) error { return nil },
		wizard.WithAutofill(field.Values{"email": "coach@club.org"}))
	if err != nil {
		t.Fatalf("new form: %v", err)
	}

	driver := &stubDriver{selectIdx: []int{0, 0}}
	outcome, err := New(WithPromptDriver(driver)).Run(context.Background(), w)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if outcome != Submitted {
		t.Fatalf("want submitted, got %s", outcome)
	}
	if !driver.saw("Email: coach@club.org (prefilled)") {
		t.Fatalf("expected prefilled notice, got %v", driver.infoMessages)
	}
	if driver.confirmPos != 0 {
		t.Fatalf("hidden consent checkbox should not be prompted")
	}
	if diff := cmp.Diff([]string{wizard.DefaultSubmitText, MenuSave}, driver.selectConfigs[1].Options); diff != "" {
		t.Fatalf("single page menu mismatch (-want +got):\n%s", diff)
	}
}

func TestRunAborted(t *testing.T) {
	w, err := wizard.NewForm([]field.Field{field.Text{Base: field.Base{Name: "name", Label: "Name"}}}, nil)
	if err != nil {
		t.Fatalf("new form: %v", err)
	}
	driver := &abortingDriver{stubDriver: &stubDriver{}}
	if _, err := New(WithPromptDriver(driver)).Run(context.Background(), w); !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
}

type abortingDriver struct {
	*stubDriver
}

func (abortingDriver) Input(context.Context, InputConfig) (string, error) {
	return "", ErrAborted
}
