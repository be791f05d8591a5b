package rest

import (
	"context"
	"iter"

	"github.com/stretchr/testify/mock"

	"go-flix-app/internal/core/domain/auth"
	"go-flix-app/internal/core/domain/catalog"
)

type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) ListMovies(ctx context.Context) (iter.Seq2[catalog.Movie, error], error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(iter.Seq2[catalog.Movie, error]), args.Error(1)
}

func (m *MockCatalogService) GetMovie(ctx context.Context, id string) (catalog.Movie, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(catalog.Movie), args.Error(1)
}

func (m *MockCatalogService) RandomMovie(ctx context.Context) (catalog.Movie, error) {
	args := m.Called(ctx)
	return args.Get(0).(catalog.Movie), args.Error(1)
}

type MockFavoriteService struct {
	mock.Mock
}

func (m *MockFavoriteService) Add(ctx context.Context, user auth.User, movieID string) (auth.User, error) {
	args := m.Called(ctx, user, movieID)
	return args.Get(0).(auth.User), args.Error(1)
}

func (m *MockFavoriteService) Remove(ctx context.Context, user auth.User, movieID string) (auth.User, error) {
	args := m.Called(ctx, user, movieID)
	return args.Get(0).(auth.User), args.Error(1)
}

func (m *MockFavoriteService) List(ctx context.Context, user auth.User) (iter.Seq2[catalog.Movie, error], error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(iter.Seq2[catalog.Movie, error]), args.Error(1)
}

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, email, password, name string) (auth.User, error) {
	args := m.Called(ctx, email, password, name)
	return args.Get(0).(auth.User), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (auth.User, error) {
	args := m.Called(ctx, email, password)
	return args.Get(0).(auth.User), args.Error(1)
}

func (m *MockAuthService) SignInExternal(ctx context.Context, rawIDToken string) (auth.User, error) {
	args := m.Called(ctx, rawIDToken)
	return args.Get(0).(auth.User), args.Error(1)
}

type MockSessionService struct {
	mock.Mock
}

func (m *MockSessionService) Issue(ctx context.Context, user auth.User) (auth.Session, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(auth.Session), args.Error(1)
}

func (m *MockSessionService) Authenticate(ctx context.Context, token string) (auth.User, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(auth.User), args.Error(1)
}

func (m *MockSessionService) Revoke(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
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
