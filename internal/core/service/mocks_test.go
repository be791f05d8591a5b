package service

import (
	"context"
	"iter"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"go-flix-app/internal/core/domain/auth"
	"go-flix-app/internal/core/domain/catalog"
	"go-flix-app/internal/core/domain/favorites"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user auth.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (auth.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(auth.User), args.Error(1)
}

func (m *MockUserRepository) FindOrCreate(ctx context.Context, user auth.User) (auth.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(auth.User), args.Error(1)
}

func (m *MockUserRepository) UpdateFavorites(ctx context.Context, email string, action favorites.Action, movieID string) (auth.User, error) {
	args := m.Called(ctx, email, action, movieID)
	return args.Get(0).(auth.User), args.Error(1)
}

type MockMovieRepository struct {
	mock.Mock
}

func (m *MockMovieRepository) FindAll(ctx context.Context) (iter.Seq2[catalog.Movie, error], error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(iter.Seq2[catalog.Movie, error]), args.Error(1)
}

func (m *MockMovieRepository) FindByIDs(ctx context.Context, ids []string) (iter.Seq2[catalog.Movie, error], error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(iter.Seq2[catalog.Movie, error]), args.Error(1)
}

func (m *MockMovieRepository) FindByID(ctx context.Context, id string) (catalog.Movie, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(catalog.Movie), args.Error(1)
}

func (m *MockMovieRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMovieRepository) FindAtOffset(ctx context.Context, offset int64) (catalog.Movie, error) {
	args := m.Called(ctx, offset)
	return args.Get(0).(catalog.Movie), args.Error(1)
}

func (m *MockMovieRepository) Upsert(ctx context.Context, movie catalog.Movie) error {
	args := m.Called(ctx, movie)
	return args.Error(0)
}

type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) Register(ctx context.Context, id, email string, ttl time.Duration) error {
	args := m.Called(ctx, id, email, ttl)
	return args.Error(0)
}

func (m *MockSessionStore) Lookup(ctx context.Context, id string) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *MockSessionStore) Revoke(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockIdentityVerifier struct {
	mock.Mock
}

func (m *MockIdentityVerifier) Verify(ctx context.Context, rawIDToken string) (auth.ExternalIdentity, error) {
	args := m.Called(ctx, rawIDToken)
	return args.Get(0).(auth.ExternalIdentity), args.Error(1)
}

// Helper to silence logs
type testWriter struct{}

func (tw *testWriter) Write(p []byte) (n int, err error) {
	return len(p), nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&testWriter{}, nil))
}

func seqOf(movies ...catalog.Movie) iter.Seq2[catalog.Movie, error] {
	return func(yield func(catalog.Movie, error) bool) {
		for _, m := range movies {
			if !yield(m, nil) {
				return
			}
		}
	}
}

func collect(t *testing.T, seq iter.Seq2[catalog.Movie, error]) []catalog.Movie {
	var out []catalog.Movie
	for m, err := range seq {
		if err != nil {
			t.Fatalf("unexpected iterator error: %v", err)
		}
		out = append(out, m)
	}
	return out
}
