package postgres

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-flix-app/internal/core/domain/catalog"
	"go-flix-app/internal/core/ports"
)

const movieColumns = `id, title, description, video_url, thumbnail_url, genre, duration`

// naturalOrder is the stable order used for listing and for offset picks.
const naturalOrder = `ORDER BY created_at, id`

// MovieRepository implements ports.MovieRepository using PostgreSQL.
type MovieRepository struct {
	db *pgxpool.Pool
}

func NewMovieRepository(db *pgxpool.Pool) *MovieRepository {
	return &MovieRepository{db: db}
}

// FindAll returns an iterator that streams every movie.
func (r *MovieRepository) FindAll(ctx context.Context) (iter.Seq2[catalog.Movie, error], error) {
	query := `SELECT ` + movieColumns + ` FROM movies ` + naturalOrder
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query movies: %w", err)
	}
	return iterateMovies(rows), nil
}

// FindByIDs streams the movies whose ids are in ids. Ids with no row are
// skipped, so a favorite whose movie was removed simply disappears.
func (r *MovieRepository) FindByIDs(ctx context.Context, ids []string) (iter.Seq2[catalog.Movie, error], error) {
	query := `SELECT ` + movieColumns + ` FROM movies WHERE id::text = ANY($1) ` + naturalOrder
	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query favorite movies: %w", err)
	}
	return iterateMovies(rows), nil
}

func (r *MovieRepository) FindByID(ctx context.Context, id string) (catalog.Movie, error) {
	query := `SELECT ` + movieColumns + ` FROM movies WHERE id = $1`
	movie, err := scanMovie(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return catalog.Movie{}, catalog.ErrMovieNotFound
		}
		return catalog.Movie{}, fmt.Errorf("failed to fetch movie: %w", err)
	}
	return movie, nil
}

func (r *MovieRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM movies`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count movies: %w", err)
	}
	return n, nil
}

func (r *MovieRepository) FindAtOffset(ctx context.Context, offset int64) (catalog.Movie, error) {
	query := `SELECT ` + movieColumns + ` FROM movies ` + naturalOrder + ` OFFSET $1 LIMIT 1`
	movie, err := scanMovie(r.db.QueryRow(ctx, query, offset))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return catalog.Movie{}, catalog.ErrMovieNotFound
		}
		return catalog.Movie{}, fmt.Errorf("failed to fetch movie at offset: %w", err)
	}
	return movie, nil
}

// Upsert inserts movie or replaces every column of the row with the same id.
func (r *MovieRepository) Upsert(ctx context.Context, movie catalog.Movie) error {
	if err := movie.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO movies (id, title, description, video_url, thumbnail_url, genre, duration)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			video_url = EXCLUDED.video_url,
			thumbnail_url = EXCLUDED.thumbnail_url,
			genre = EXCLUDED.genre,
			duration = EXCLUDED.duration
	`
	_, err := r.db.Exec(ctx, query,
		movie.ID, movie.Title, movie.Description, movie.VideoURL,
		movie.ThumbnailURL, movie.Genre, movie.Duration,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert movie: %w", err)
	}
	return nil
}

func iterateMovies(rows pgx.Rows) iter.Seq2[catalog.Movie, error] {
	return func(yield func(catalog.Movie, error) bool) {
		defer rows.Close()

		for rows.Next() {
			movie, err := scanMovie(rows)
			if err != nil {
				yield(catalog.Movie{}, fmt.Errorf("failed to scan row: %w", err))
				return
			}
			if !yield(movie, nil) {
				return
			}
		}

		if err := rows.Err(); err != nil {
			yield(catalog.Movie{}, fmt.Errorf("rows iteration error: %w", err))
		}
	}
}

func scanMovie(row pgx.Row) (catalog.Movie, error) {
	var m catalog.Movie
	err := row.Scan(&m.ID, &m.Title, &m.Description, &m.VideoURL, &m.ThumbnailURL, &m.Genre, &m.Duration)
	return m, err
}

var _ ports.MovieRepository = (*MovieRepository)(nil)
