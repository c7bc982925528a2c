package prompt

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/loam"
)

// Metadata is the optional frontmatter of a template document.
type Metadata struct {
	ID          string `json:"id" mapstructure:"id"`
	Description string `json:"description" mapstructure:"description"`
}

// LoadDir reads system.md and user_turn.md from dir.
// A missing document falls back to the built-in template.
func LoadDir(ctx context.Context, dir string) (*Templates, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("prompt template dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("prompt template dir %s is not a directory", absPath)
	}

	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	docs := loam.NewTypedRepository[Metadata](repo)

	bodies := map[string]string{
		SystemTemplate:   DefaultSystem,
		UserTurnTemplate: DefaultUserTurn,
	}
	for name := range bodies {
		if _, err := os.Stat(filepath.Join(absPath, name+".md")); errors.Is(err, os.ErrNotExist) {
			continue
		}
		doc, err := docs.Get(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("loam get failed for %s: %w", name, err)
		}
		bodies[name] = doc.Content
	}

	return Parse(bodies[SystemTemplate], bodies[UserTurnTemplate])
}
