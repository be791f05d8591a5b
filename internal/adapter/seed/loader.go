// Package seed loads catalog records from TOML files into the movie store.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"html"
	"log/slog"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/microcosm-cc/bluemonday"

	"go-flix-app/internal/core/domain/catalog"
)

//go:embed movies.toml
var defaultCatalog []byte

type file struct {
	Movies []catalog.Movie `toml:"movies"`
}

// Upserter is the write path the seeder needs from a movie store.
type Upserter interface {
	Upsert(ctx context.Context, movie catalog.Movie) error
}

// LoadFile reads movies from a TOML file. An empty path selects the bundled
// sample catalog.
func LoadFile(path string) ([]catalog.Movie, error) {
	data := defaultCatalog
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read seed file: %w", err)
		}
	}
	return Parse(data)
}

// Parse decodes and cleans a TOML catalog. Text fields are stripped of markup
// and every record must validate.
func Parse(data []byte) ([]catalog.Movie, error) {
	var f file
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}

	policy := bluemonday.StrictPolicy()
	seen := make(map[string]struct{}, len(f.Movies))
	for i := range f.Movies {
		m := &f.Movies[i]
		m.Title = clean(policy, m.Title)
		m.Description = clean(policy, m.Description)
		m.Genre = clean(policy, m.Genre)

		if err := m.Validate(); err != nil {
			return nil, fmt.Errorf("movie %d: %w", i, err)
		}
		id, _ := catalog.ParseID(m.ID)
		m.ID = id
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("movie %d: %w: duplicate id %s", i, catalog.ErrValidation, id)
		}
		seen[id] = struct{}{}
	}
	return f.Movies, nil
}

// clean strips markup but keeps the text plain; the API layer does its own
// escaping on output.
func clean(policy *bluemonday.Policy, s string) string {
	return strings.TrimSpace(html.UnescapeString(policy.Sanitize(s)))
}

// Seed upserts movies in order and stops at the first failure.
func Seed(ctx context.Context, store Upserter, movies []catalog.Movie, logger *slog.Logger) (int, error) {
	for i, m := range movies {
		if err := store.Upsert(ctx, m); err != nil {
			return i, fmt.Errorf("failed to seed %q: %w", m.Title, err)
		}
		logger.DebugContext(ctx, "movie seeded", "id", m.ID, "title", m.Title)
	}
	logger.InfoContext(ctx, "catalog seeded", "count", len(movies))
	return len(movies), nil
}
