package service

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"math/rand/v2"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"go-flix-app/internal/core/domain/catalog"
	"go-flix-app/internal/core/ports"
)

var tracer = otel.Tracer("internal/core/service")

type CatalogService struct {
	repo   ports.MovieRepository
	logger *slog.Logger
	// randN returns a uniform integer in [0, n).
	randN func(n int64) int64
}

func NewCatalogService(repo ports.MovieRepository, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		repo:   repo,
		logger: logger,
		randN:  rand.Int64N,
	}
}

// ListMovies streams the catalog. The span stays open until the returned
// sequence has been ranged over, so callers must consume it.
func (s *CatalogService) ListMovies(ctx context.Context) (iter.Seq2[catalog.Movie, error], error) {
	ctx, span := tracer.Start(ctx, "CatalogService.ListMovies")

	movies, err := s.repo.FindAll(ctx)
	if err != nil {
		span.RecordError(err)
		span.End()
		return nil, err
	}
	return traceRows(span, movies), nil
}

func (s *CatalogService) GetMovie(ctx context.Context, id string) (catalog.Movie, error) {
	ctx, span := tracer.Start(ctx, "CatalogService.GetMovie", trace.WithAttributes(attribute.String("movie.id", id)))
	defer span.End()

	movieID, err := catalog.ParseID(id)
	if err != nil {
		return catalog.Movie{}, err
	}
	return s.repo.FindByID(ctx, movieID)
}

// RandomMovie counts the catalog and fetches the row at a uniform random
// offset. The count and the fetch are separate statements, so a concurrent
// delete between them fails the request with catalog.ErrMovieNotFound.
func (s *CatalogService) RandomMovie(ctx context.Context) (catalog.Movie, error) {
	ctx, span := tracer.Start(ctx, "CatalogService.RandomMovie")
	defer span.End()

	count, err := s.repo.Count(ctx)
	if err != nil {
		span.RecordError(err)
		return catalog.Movie{}, fmt.Errorf("failed to count movies: %w", err)
	}
	if count == 0 {
		return catalog.Movie{}, catalog.ErrEmptyCatalog
	}

	offset := s.randN(count)
	span.SetAttributes(attribute.Int64("catalog.size", count), attribute.Int64("catalog.offset", offset))

	movie, err := s.repo.FindAtOffset(ctx, offset)
	if err != nil {
		if errors.Is(err, catalog.ErrMovieNotFound) {
			s.logger.WarnContext(ctx, "catalog shrank during random pick", "count", count, "offset", offset)
		}
		span.RecordError(err)
		return catalog.Movie{}, err
	}
	return movie, nil
}

var _ ports.CatalogService = (*CatalogService)(nil)

// traceRows ends span once seq is exhausted or the consumer stops, recording
// the number of rows read and any row error.
func traceRows(span trace.Span, seq iter.Seq2[catalog.Movie, error]) iter.Seq2[catalog.Movie, error] {
	return func(yield func(catalog.Movie, error) bool) {
		defer span.End()

		n := 0
		for m, err := range seq {
			if err != nil {
				span.RecordError(err)
			} else {
				n++
			}
			if !yield(m, err) {
				break
			}
		}
		span.SetAttributes(attribute.Int("movies.count", n))
	}
}
