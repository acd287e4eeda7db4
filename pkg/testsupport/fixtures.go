// Package testsupport holds shared fixtures and stubs for package tests.
package testsupport

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"

	"github.com/goliatone/go-formwizard/pkg/field"
	"github.com/goliatone/go-formwizard/pkg/upload"
)

// ApplicationSteps returns a four-step application: personal details,
// account setup, documents, and a final step holding only a captcha.
func ApplicationSteps() []field.Step {
	return []field.Step{
		{
			Title:       "Personal Info",
			Description: "Tell us about yourself",
			Fields: []field.Field{
				field.Text{Base: field.Base{Name: "firstName", Label: "First Name", Required: true}},
				field.Text{Base: field.Base{Name: "lastName", Label: "Last Name", Required: true}},
				field.Text{Base: field.Base{Name: "email", Label: "Email", Required: true}, TextKind: field.KindEmail},
				field.Phone{Base: field.Base{Name: "phone", Label: "Phone Number", Required: true}},
			},
		},
		{
			Title:       "Account Setup",
			Description: "Create your account credentials",
			Fields: []field.Field{
				field.Password{
					Base:       field.Base{Name: "password", Label: "Password", Required: true},
					ShowToggle: true,
					Validation: field.DefaultPasswordRules(),
				},
				field.Password{
					Base:       field.Base{Name: "confirmPassword", Label: "Confirm Password", Required: true},
					ShowToggle: true,
					Validation: field.MatchPassword{},
				},
			},
		},
		{
			Title:       "Documents",
			Description: "Upload required documents",
			Fields: []field.Field{
				field.File{
					Base:        field.Base{Name: "resume", Label: "Upload Resume"},
					AcceptTypes: ".pdf,.doc,.docx",
					MaxSizeMB:   2,
					Path:        "documents/resume",
				},
				field.Checkbox{Base: field.Base{Name: "termsConditions", Label: "I agree to the terms and conditions", Required: true}},
			},
		},
		{
			Title: "Final Step",
			Fields: []field.Field{
				field.Captcha{Base: field.Base{Name: "captcha", Label: "Verify you are human", Required: true}},
			},
		},
	}
}

// ApplicationAnswers returns valid string answers per step of
// ApplicationSteps. Checkbox fields are listed in ApplicationChecks.
func ApplicationAnswers() []map[string]string {
	return []map[string]string{
		{"firstName": "Ada", "lastName": "Lovelace", "email": "ada@example.org", "phone": "9876543210"},
		{"password": "Abc12345", "confirmPassword": "Abc12345"},
		{},
		{},
	}
}

// ApplicationChecks returns the checkbox fields that must be ticked.
func ApplicationChecks() []string {
	return []string{"termsConditions"}
}

// Upload is one recorded call to StubUploader.Upload.
type Upload struct {
	Name string
	Path string
	Body string
}

// StubUploader records calls. Results are produced by UploadFunc when set,
// otherwise a successful result under https://files.test/<path>/<name>.
type StubUploader struct {
	UploadFunc func(ctx context.Context, f upload.File) (upload.Result, error)
	DeleteErr  error

	mu      sync.Mutex
	uploads []Upload
	deletes []string
}

func (s *StubUploader) Upload(ctx context.Context, f upload.File) (upload.Result, error) {
	var body string
	if f.Body != nil {
		data, _ := io.ReadAll(f.Body)
		body = string(data)
	}
	s.mu.Lock()
	s.uploads = append(s.uploads, Upload{Name: f.Name, Path: f.Path, Body: body})
	s.mu.Unlock()

	if s.UploadFunc != nil {
		return s.UploadFunc(ctx, f)
	}
	key := f.Name
	if f.Path != "" {
		key = f.Path + "/" + f.Name
	}
	return upload.Result{Success: true, URL: "https://files.test/" + key, Key: key}, nil
}

func (s *StubUploader) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes = append(s.deletes, key)
	return s.DeleteErr
}

// Uploads returns the recorded uploads.
func (s *StubUploader) Uploads() []Upload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Upload(nil), s.uploads...)
}

// Deletes returns the recorded delete keys.
func (s *StubUploader) Deletes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.deletes...)
}

// CaptureTemplateOutput runs render against a buffer and returns both the
// returned string and what was written.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}
	return out, buf.String()
}
