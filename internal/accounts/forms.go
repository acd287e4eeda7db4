// Package accounts holds the sign up and sign in forms and the directory of
// accounts they create and check.
package accounts

import (
	"context"
	"embed"
	"fmt"

	"github.com/goliatone/go-formwizard/pkg/schema"
)

// Embedded definition documents.
const (
	SignupFile = "signup.yaml"
	LoginFile  = "login.yaml"
)

//go:embed signup.yaml login.yaml
var formsFS embed.FS

// LoadSignup parses the embedded single-page sign up form.
func LoadSignup(ctx context.Context, opts ...schema.Option) (schema.Definition, error) {
	return load(ctx, SignupFile, opts)
}

// LoadLogin parses the embedded single-page sign in form.
func LoadLogin(ctx context.Context, opts ...schema.Option) (schema.Definition, error) {
	return load(ctx, LoginFile, opts)
}

func load(ctx context.Context, name string, opts []schema.Option) (schema.Definition, error) {
	loader := schema.New(append([]schema.Option{schema.WithFileSystem(formsFS)}, opts...)...)
	def, err := loader.Load(ctx, schema.SourceFromFS(name))
	if err != nil {
		return schema.Definition{}, fmt.Errorf("accounts: load %s: %w", name, err)
	}
	return def, nil
}
