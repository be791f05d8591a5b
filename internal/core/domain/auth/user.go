package auth

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

var (
	// ErrValidation is the sentinel error for missing or malformed input.
	ErrValidation = errors.New("validation failed")

	// ErrEmailTaken is returned when registering an email that already exists.
	ErrEmailTaken = errors.New("email already exists")

	// ErrInvalidCredentials covers unknown emails, passwordless accounts and
	// wrong passwords alike so callers cannot enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnauthenticated is returned when a request carries no valid session.
	ErrUnauthenticated = errors.New("not signed in")

	// ErrUserNotFound is returned by repositories when no row matches the email.
	ErrUserNotFound = errors.New("user not found")

	// ErrExternalSignInDisabled is returned when no external identity provider is configured.
	ErrExternalSignInDisabled = errors.New("external sign-in is not configured")

	// ErrProviderUnavailable is returned when the external identity provider
	// cannot be reached or its circuit is open.
	ErrProviderUnavailable = errors.New("identity provider unavailable")
)

// User is the identity record. Email is the identity key.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Image string `json:"image"`

	// PasswordHash is nil for accounts created through an external identity provider.
	PasswordHash *string `json:"-"`

	// FavoriteIDs holds movie ids with set semantics. An empty list, never nil,
	// is the absent state.
	FavoriteIDs []string `json:"favoriteIds"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (u User) Validate() error {
	if u.ID == "" {
		return fmt.Errorf("%w: id is required", ErrValidation)
	}
	if u.Email == "" {
		return fmt.Errorf("%w: email is required", ErrValidation)
	}
	return nil
}

// HasPassword reports whether the account can sign in with a password.
func (u User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// IsFavorite reports whether movieID is in the user's favorites.
func (u User) IsFavorite(movieID string) bool {
	return slices.Contains(u.FavoriteIDs, movieID)
}

// Normalize fills the absent favorites state so the list always encodes as [].
func (u User) Normalize() User {
	if u.FavoriteIDs == nil {
		u.FavoriteIDs = []string{}
	}
	return u
}

// MaxPasswordBytes is the longest password bcrypt can hash.
const MaxPasswordBytes = 72

// Registration carries the fields required to create a password account.
type Registration struct {
	Email    string
	Password string
	Name     string
}

// Validate trims the registration and rejects empty fields.
func (r *Registration) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	r.Name = strings.TrimSpace(r.Name)
	if r.Email == "" {
		return fmt.Errorf("%w: email is required", ErrValidation)
	}
	if r.Password == "" {
		return fmt.Errorf("%w: password is required", ErrValidation)
	}
	if len(r.Password) > MaxPasswordBytes {
		return fmt.Errorf("%w: password must be at most %d bytes", ErrValidation, MaxPasswordBytes)
	}
	if r.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	return nil
}
