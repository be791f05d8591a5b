package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-flix-app/internal/core/domain/auth"
	"go-flix-app/internal/core/domain/favorites"
	"go-flix-app/internal/core/ports"
)

const uniqueViolation = "23505"

const userColumns = `id, email, name, image, password_hash, favorite_ids, created_at, updated_at`

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user auth.User) error {
	if err := user.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO users (id, email, name, image, password_hash, favorite_ids, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(ctx, query,
		user.ID, user.Email, user.Name, user.Image, user.PasswordHash,
		user.Normalize().FavoriteIDs, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return auth.ErrEmailTaken
		}
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (auth.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	user, err := scanUser(r.db.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return auth.User{}, auth.ErrUserNotFound
		}
		return auth.User{}, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// FindOrCreate inserts user unless its email already exists and returns the
// stored row either way. Concurrent first sign-ins converge on one row.
func (r *UserRepository) FindOrCreate(ctx context.Context, user auth.User) (auth.User, error) {
	if err := user.Validate(); err != nil {
		return auth.User{}, err
	}

	query := `
		INSERT INTO users (id, email, name, image, password_hash, favorite_ids, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (email) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query,
		user.ID, user.Email, user.Name, user.Image, user.PasswordHash,
		user.Normalize().FavoriteIDs, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return auth.User{}, fmt.Errorf("failed to provision user: %w", err)
	}
	return r.FindByEmail(ctx, user.Email)
}

// UpdateFavorites locks the user row, applies action to the stored list and
// writes it back in one transaction, so concurrent toggles never lose updates.
func (r *UserRepository) UpdateFavorites(ctx context.Context, email string, action favorites.Action, movieID string) (auth.User, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return auth.User{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var current []string
	err = tx.QueryRow(ctx, `SELECT favorite_ids FROM users WHERE email = $1 FOR UPDATE`, email).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return auth.User{}, auth.ErrUserNotFound
		}
		return auth.User{}, fmt.Errorf("failed to lock user: %w", err)
	}

	next, err := favorites.Apply(current, action, movieID)
	if err != nil {
		return auth.User{}, err
	}

	query := `
		UPDATE users
		SET favorite_ids = $1, updated_at = NOW()
		WHERE email = $2
		RETURNING ` + userColumns
	user, err := scanUser(tx.QueryRow(ctx, query, next, email))
	if err != nil {
		return auth.User{}, fmt.Errorf("failed to update favorites: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return auth.User{}, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return user, nil
}

func scanUser(row pgx.Row) (auth.User, error) {
	var user auth.User
	err := row.Scan(
		&user.ID, &user.Email, &user.Name, &user.Image, &user.PasswordHash,
		&user.FavoriteIDs, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return auth.User{}, err
	}
	return user.Normalize(), nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

var _ ports.UserRepository = (*UserRepository)(nil)
