package ports

import (
	"context"
	"iter"
	"time"

	"go-flix-app/internal/core/domain/auth"
	"go-flix-app/internal/core/domain/catalog"
	"go-flix-app/internal/core/domain/favorites"
)

// UserRepository defines storage for users.
type UserRepository interface {
	// Create inserts a new user. It returns auth.ErrEmailTaken on a duplicate email.
	Create(ctx context.Context, user auth.User) error

	// FindByEmail returns auth.ErrUserNotFound when no user has that email.
	FindByEmail(ctx context.Context, email string) (auth.User, error)

	// FindOrCreate returns the user with user.Email, inserting user when absent.
	FindOrCreate(ctx context.Context, user auth.User) (auth.User, error)

	// UpdateFavorites applies action for movieID to the user's favorites as one
	// atomic update and returns the updated user.
	UpdateFavorites(ctx context.Context, email string, action favorites.Action, movieID string) (auth.User, error)
}

// MovieRepository defines read access to the catalog plus the seeding write path.
type MovieRepository interface {
	// FindAll returns an iterator over every movie in the store's natural order.
	FindAll(ctx context.Context) (iter.Seq2[catalog.Movie, error], error)

	// FindByIDs returns an iterator over the movies whose ids are in ids.
	FindByIDs(ctx context.Context, ids []string) (iter.Seq2[catalog.Movie, error], error)

	// FindByID returns catalog.ErrMovieNotFound when no movie has that id.
	FindByID(ctx context.Context, id string) (catalog.Movie, error)

	// Count returns the number of movies.
	Count(ctx context.Context) (int64, error)

	// FindAtOffset returns the movie at offset in the store's natural order.
	FindAtOffset(ctx context.Context, offset int64) (catalog.Movie, error)

	// Upsert inserts or replaces a movie by id.
	Upsert(ctx context.Context, movie catalog.Movie) error
}

// SessionStore registers issued sessions so they can be revoked before expiry.
type SessionStore interface {
	// Register records that session id belongs to email for ttl.
	Register(ctx context.Context, id, email string, ttl time.Duration) error

	// Lookup returns the email bound to id, or auth.ErrUnauthenticated when
	// the id is unknown or expired.
	Lookup(ctx context.Context, id string) (string, error)

	// Revoke forgets id. Revoking an unknown id is not an error.
	Revoke(ctx context.Context, id string) error
}
