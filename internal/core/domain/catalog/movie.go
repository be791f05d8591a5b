package catalog

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrValidation is the sentinel error for malformed catalog records.
	ErrValidation = errors.New("validation failed")

	// ErrMovieNotFound is returned when an id does not refer to an existing movie.
	ErrMovieNotFound = errors.New("invalid id")

	// ErrEmptyCatalog is returned when sampling from a catalog with no rows.
	ErrEmptyCatalog = errors.New("catalog is empty")
)

// Movie is a catalog record. It is read-only for the API.
type Movie struct {
	ID           string `json:"id" toml:"id"`
	Title        string `json:"title" toml:"title"`
	Description  string `json:"description" toml:"description"`
	VideoURL     string `json:"videoUrl" toml:"video_url"`
	ThumbnailURL string `json:"thumbnailUrl" toml:"thumbnail_url"`
	Genre        string `json:"genre" toml:"genre"`
	Duration     string `json:"duration" toml:"duration"`
}

func (m Movie) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("%w: id is required", ErrValidation)
	}
	if _, err := uuid.Parse(m.ID); err != nil {
		return fmt.Errorf("%w: id must be a uuid", ErrValidation)
	}
	if m.Title == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if m.VideoURL == "" {
		return fmt.Errorf("%w: video_url is required", ErrValidation)
	}
	return nil
}

// ParseID canonicalizes a movie id. Anything that is not a uuid can never
// match a row, so it is reported as ErrMovieNotFound.
func ParseID(raw string) (string, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrMovieNotFound, raw)
	}
	return id.String(), nil
}
