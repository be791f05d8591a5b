package postgres

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"go-flix-app/internal/core/domain/auth"
	"go-flix-app/internal/core/domain/catalog"
	"go-flix-app/internal/core/domain/favorites"
)

func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	ctx := context.Background()
	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres: %v", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	if err := RunMigrations(connStr, slog.New(slog.NewTextHandler(io.Discard, nil))); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	dbPool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("failed to connect to postgres: %v", err)
	}

	cleanup := func() {
		dbPool.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate postgres: %v", err)
		}
	}

	return dbPool, cleanup
}

func newUser(email string) auth.User {
	now := time.Now().UTC()
	return auth.User{
		ID:        uuid.NewString(),
		Email:     email,
		Name:      "Test",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func seedMovies(t *testing.T, repo *MovieRepository, n int) []string {
	t.Helper()
	ids := make([]string, n)
	for i := range n {
		ids[i] = uuid.NewString()
		err := repo.Upsert(context.Background(), catalog.Movie{
			ID:       ids[i],
			Title:    fmt.Sprintf("Movie %d", i),
			VideoURL: "https://cdn.example.com/" + ids[i] + ".mp4",
		})
		require.NoError(t, err)
		// created_at drives natural order.
		time.Sleep(2 * time.Millisecond)
	}
	return ids
}

func TestRepositories(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	dbPool, cleanup := setupTestDB(t)
	defer cleanup()

	users := NewUserRepository(dbPool)
	movies := NewMovieRepository(dbPool)
	ctx := context.Background()

	t.Run("migrations are idempotent", func(t *testing.T) {
		connStr := dbPool.Config().ConnString()
		assert.NoError(t, RunMigrations(connStr, slog.New(slog.NewTextHandler(io.Discard, nil))))
	})

	t.Run("create and find user", func(t *testing.T) {
		hash := "$2a$04$hash"
		u := newUser("create@example.com")
		u.PasswordHash = &hash
		require.NoError(t, users.Create(ctx, u))

		got, err := users.FindByEmail(ctx, "create@example.com")
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)
		assert.True(t, got.HasPassword())
		assert.Equal(t, []string{}, got.FavoriteIDs)
	})

	t.Run("duplicate email", func(t *testing.T) {
		require.NoError(t, users.Create(ctx, newUser("dup@example.com")))
		err := users.Create(ctx, newUser("dup@example.com"))
		assert.ErrorIs(t, err, auth.ErrEmailTaken)

		var rows int
		require.NoError(t, dbPool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE email = $1`, "dup@example.com").Scan(&rows))
		assert.Equal(t, 1, rows)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := users.FindByEmail(ctx, "ghost@example.com")
		assert.ErrorIs(t, err, auth.ErrUserNotFound)
	})

	t.Run("find or create converges", func(t *testing.T) {
		const n = 10
		var wg sync.WaitGroup
		ids := make([]string, n)
		for i := range n {
			wg.Add(1)
			go func() {
				defer wg.Done()
				u, err := users.FindOrCreate(ctx, newUser("sso@example.com"))
				if err != nil {
					t.Errorf("find or create: %v", err)
					return
				}
				ids[i] = u.ID
			}()
		}
		wg.Wait()

		for _, id := range ids {
			assert.Equal(t, ids[0], id)
		}
		got, err := users.FindByEmail(ctx, "sso@example.com")
		require.NoError(t, err)
		assert.False(t, got.HasPassword())
	})

	t.Run("favorites set semantics", func(t *testing.T) {
		require.NoError(t, users.Create(ctx, newUser("fav@example.com")))
		id := uuid.NewString()

		u, err := users.UpdateFavorites(ctx, "fav@example.com", favorites.ActionAdd, id)
		require.NoError(t, err)
		assert.Equal(t, []string{id}, u.FavoriteIDs)

		u, err = users.UpdateFavorites(ctx, "fav@example.com", favorites.ActionAdd, id)
		require.NoError(t, err)
		assert.Equal(t, []string{id}, u.FavoriteIDs)

		u, err = users.UpdateFavorites(ctx, "fav@example.com", favorites.ActionRemove, id)
		require.NoError(t, err)
		assert.Empty(t, u.FavoriteIDs)

		_, err = users.UpdateFavorites(ctx, "fav@example.com", favorites.ActionRemove, id)
		assert.ErrorIs(t, err, favorites.ErrNotFavorite)

		_, err = users.UpdateFavorites(ctx, "nobody@example.com", favorites.ActionAdd, id)
		assert.ErrorIs(t, err, auth.ErrUserNotFound)
	})

	t.Run("concurrent favorite adds lose nothing", func(t *testing.T) {
		require.NoError(t, users.Create(ctx, newUser("race@example.com")))

		const numGoroutines = 20
		var wg sync.WaitGroup
		wg.Add(numGoroutines)
		for range numGoroutines {
			go func() {
				defer wg.Done()
				if _, err := users.UpdateFavorites(ctx, "race@example.com", favorites.ActionAdd, uuid.NewString()); err != nil {
					t.Errorf("failed to add favorite: %v", err)
				}
			}()
		}
		wg.Wait()

		u, err := users.FindByEmail(ctx, "race@example.com")
		require.NoError(t, err)
		assert.Len(t, u.FavoriteIDs, numGoroutines)
	})

	t.Run("catalog reads", func(t *testing.T) {
		_, err := dbPool.Exec(ctx, `TRUNCATE movies`)
		require.NoError(t, err)

		n, err := movies.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)

		ids := seedMovies(t, movies, 3)

		n, err = movies.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)

		seq, err := movies.FindAll(ctx)
		require.NoError(t, err)
		var listed []string
		for m, err := range seq {
			require.NoError(t, err)
			listed = append(listed, m.ID)
		}
		assert.Equal(t, ids, listed)

		m, err := movies.FindAtOffset(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, ids[2], m.ID)

		_, err = movies.FindAtOffset(ctx, 3)
		assert.ErrorIs(t, err, catalog.ErrMovieNotFound)

		m, err = movies.FindByID(ctx, ids[1])
		require.NoError(t, err)
		assert.Equal(t, "Movie 1", m.Title)

		_, err = movies.FindByID(ctx, uuid.NewString())
		assert.ErrorIs(t, err, catalog.ErrMovieNotFound)

		seq, err = movies.FindByIDs(ctx, []string{ids[2], uuid.NewString(), ids[0]})
		require.NoError(t, err)
		var found []string
		for m, err := range seq {
			require.NoError(t, err)
			found = append(found, m.ID)
		}
		assert.ElementsMatch(t, []string{ids[0], ids[2]}, found)
	})

	t.Run("upsert replaces", func(t *testing.T) {
		id := uuid.NewString()
		movie := catalog.Movie{ID: id, Title: "Old", VideoURL: "https://v/1"}
		require.NoError(t, movies.Upsert(ctx, movie))
		movie.Title = "New"
		require.NoError(t, movies.Upsert(ctx, movie))

		got, err := movies.FindByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "New", got.Title)

		err = movies.Upsert(ctx, catalog.Movie{ID: "bad"})
		assert.ErrorIs(t, err, catalog.ErrValidation)
	})
}
