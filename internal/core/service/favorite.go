package service

import (
	"context"
	"iter"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"go-flix-app/internal/core/domain/auth"
	"go-flix-app/internal/core/domain/catalog"
	"go-flix-app/internal/core/domain/favorites"
	"go-flix-app/internal/core/ports"
)

// FavoriteService toggles movies in an authenticated user's favorites.
// Callers resolve the user first; the service never looks up the session.
type FavoriteService struct {
	users  ports.UserRepository
	movies ports.MovieRepository
	logger *slog.Logger
}

func NewFavoriteService(users ports.UserRepository, movies ports.MovieRepository, logger *slog.Logger) *FavoriteService {
	return &FavoriteService{
		users:  users,
		movies: movies,
		logger: logger,
	}
}

// Add puts movieID into the user's favorites. The movie must exist; adding a
// movie that is already a favorite returns the unchanged user.
func (s *FavoriteService) Add(ctx context.Context, user auth.User, movieID string) (auth.User, error) {
	ctx, span := tracer.Start(ctx, "FavoriteService.Add", trace.WithAttributes(
		attribute.String("user.id", user.ID),
		attribute.String("movie.id", movieID),
	))
	defer span.End()

	id, err := catalog.ParseID(movieID)
	if err != nil {
		return auth.User{}, err
	}
	if _, err := s.movies.FindByID(ctx, id); err != nil {
		return auth.User{}, err
	}

	return s.apply(ctx, user, favorites.ActionAdd, id)
}

// Remove takes movieID out of the user's favorites. It fails with
// favorites.ErrNotFavorite when the movie is not a favorite. The movie itself
// need not exist any more.
func (s *FavoriteService) Remove(ctx context.Context, user auth.User, movieID string) (auth.User, error) {
	ctx, span := tracer.Start(ctx, "FavoriteService.Remove", trace.WithAttributes(
		attribute.String("user.id", user.ID),
		attribute.String("movie.id", movieID),
	))
	defer span.End()

	id, err := catalog.ParseID(movieID)
	if err != nil {
		return auth.User{}, err
	}

	return s.apply(ctx, user, favorites.ActionRemove, id)
}

// List returns the movies in the user's favorites.
func (s *FavoriteService) List(ctx context.Context, user auth.User) (iter.Seq2[catalog.Movie, error], error) {
	ctx, span := tracer.Start(ctx, "FavoriteService.List", trace.WithAttributes(
		attribute.String("user.id", user.ID),
		attribute.Int("favorites.count", len(user.FavoriteIDs)),
	))

	if len(user.FavoriteIDs) == 0 {
		span.End()
		return func(yield func(catalog.Movie, error) bool) {}, nil
	}
	movies, err := s.movies.FindByIDs(ctx, user.FavoriteIDs)
	if err != nil {
		span.RecordError(err)
		span.End()
		return nil, err
	}
	return traceRows(span, movies), nil
}

func (s *FavoriteService) apply(ctx context.Context, user auth.User, action favorites.Action, movieID string) (auth.User, error) {
	updated, err := s.users.UpdateFavorites(ctx, user.Email, action, movieID)
	if err != nil {
		trace.SpanFromContext(ctx).RecordError(err)
		return auth.User{}, err
	}

	s.logger.InfoContext(ctx, "favorites updated",
		"user_id", updated.ID,
		"action", string(action),
		"movie_id", movieID,
		"count", len(updated.FavoriteIDs),
	)
	return updated.Normalize(), nil
}

var _ ports.FavoriteService = (*FavoriteService)(nil)
