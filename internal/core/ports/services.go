package ports

import (
	"context"
	"iter"

	"go-flix-app/internal/core/domain/auth"
	"go-flix-app/internal/core/domain/catalog"
)

// AuthService defines the credential service.
type AuthService interface {
	Register(ctx context.Context, email, password, name string) (auth.User, error)
	Login(ctx context.Context, email, password string) (auth.User, error)
	SignInExternal(ctx context.Context, rawIDToken string) (auth.User, error)
}

// SessionService issues, verifies and revokes sessions.
type SessionService interface {
	Issue(ctx context.Context, user auth.User) (auth.Session, error)
	Authenticate(ctx context.Context, token string) (auth.User, error)
	Revoke(ctx context.Context, token string) error
}

// IdentityVerifier verifies tokens minted by an external identity provider.
type IdentityVerifier interface {
	Verify(ctx context.Context, rawIDToken string) (auth.ExternalIdentity, error)
}

// CatalogService exposes the movie catalog.
type CatalogService interface {
	ListMovies(ctx context.Context) (iter.Seq2[catalog.Movie, error], error)
	GetMovie(ctx context.Context, id string) (catalog.Movie, error)
	RandomMovie(ctx context.Context) (catalog.Movie, error)
}

// FavoriteService manages the favorites of an already authenticated user.
type FavoriteService interface {
	Add(ctx context.Context, user auth.User, movieID string) (auth.User, error)
	Remove(ctx context.Context, user auth.User, movieID string) (auth.User, error)
	List(ctx context.Context, user auth.User) (iter.Seq2[catalog.Movie, error], error)
}
