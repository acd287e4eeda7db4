// Package players holds the player registration form and the roster it
// feeds.
package players

import (
	"context"
	"embed"
	"fmt"

	"github.com/goliatone/go-formwizard/pkg/schema"
)

// DefinitionFile is the embedded registration document.
const DefinitionFile = "registration.yaml"

//go:embed registration.yaml
var definitionFS embed.FS

// LoadDefinition parses the embedded four step registration form. Extra
// options are applied after the embedded filesystem, so callers can swap
// the evaluator (for a fixed clock) or the filesystem itself.
func LoadDefinition(ctx context.Context, opts ...schema.Option) (schema.Definition, error) {
	loader := schema.New(append([]schema.Option{schema.WithFileSystem(definitionFS)}, opts...)...)
	def, err := loader.Load(ctx, schema.SourceFromFS(DefinitionFile))
	if err != nil {
		return schema.Definition{}, fmt.Errorf("players: load definition: %w", err)
	}
	return def, nil
}
