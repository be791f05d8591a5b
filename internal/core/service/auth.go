package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/crypto/bcrypt"

	"go-flix-app/internal/core/domain/auth"
	"go-flix-app/internal/core/ports"
)

// PasswordCost is the bcrypt work factor used for new password hashes.
const PasswordCost = 12

type AuthService struct {
	repo     ports.UserRepository
	verifier ports.IdentityVerifier
	logger   *slog.Logger
	cost     int
	now      func() time.Time
}

// NewAuthService creates the credential service. verifier may be nil, in
// which case external sign-in is disabled.
func NewAuthService(repo ports.UserRepository, verifier ports.IdentityVerifier, logger *slog.Logger) *AuthService {
	return &AuthService{
		repo:     repo,
		verifier: verifier,
		logger:   logger,
		cost:     PasswordCost,
		now:      time.Now,
	}
}

func (s *AuthService) Register(ctx context.Context, email, password, name string) (auth.User, error) {
	ctx, span := tracer.Start(ctx, "AuthService.Register")
	defer span.End()

	reg := auth.Registration{Email: email, Password: password, Name: name}
	if err := reg.Validate(); err != nil {
		return auth.User{}, err
	}

	_, err := s.repo.FindByEmail(ctx, reg.Email)
	switch {
	case err == nil:
		return auth.User{}, auth.ErrEmailTaken
	case !errors.Is(err, auth.ErrUserNotFound):
		span.RecordError(err)
		return auth.User{}, fmt.Errorf("failed to check email: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(reg.Password), s.cost)
	if err != nil {
		return auth.User{}, fmt.Errorf("failed to hash password: %w", err)
	}
	hash := string(hashed)

	now := s.now().UTC()
	user := auth.User{
		ID:           uuid.NewString(),
		Email:        reg.Email,
		Name:         reg.Name,
		PasswordHash: &hash,
		FavoriteIDs:  []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// A concurrent registration can still win the unique index; the
	// repository reports that as auth.ErrEmailTaken too.
	if err := s.repo.Create(ctx, user); err != nil {
		span.RecordError(err)
		return auth.User{}, err
	}

	span.SetAttributes(attribute.String("user.id", user.ID))
	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID)
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (auth.User, error) {
	ctx, span := tracer.Start(ctx, "AuthService.Login")
	defer span.End()

	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return auth.User{}, fmt.Errorf("%w: email and password are required", auth.ErrValidation)
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			return auth.User{}, auth.ErrInvalidCredentials
		}
		span.RecordError(err)
		return auth.User{}, fmt.Errorf("failed to load user: %w", err)
	}

	if !user.HasPassword() {
		return auth.User{}, auth.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(password)); err != nil {
		return auth.User{}, auth.ErrInvalidCredentials
	}

	return user.Normalize(), nil
}

// SignInExternal verifies an identity provider token and returns the matching
// user, creating a passwordless account on first sign-in.
func (s *AuthService) SignInExternal(ctx context.Context, rawIDToken string) (auth.User, error) {
	ctx, span := tracer.Start(ctx, "AuthService.SignInExternal")
	defer span.End()

	if s.verifier == nil {
		return auth.User{}, auth.ErrExternalSignInDisabled
	}
	if rawIDToken == "" {
		return auth.User{}, fmt.Errorf("%w: id token is required", auth.ErrValidation)
	}

	identity, err := s.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		span.RecordError(err)
		return auth.User{}, err
	}
	if identity.Email == "" {
		return auth.User{}, fmt.Errorf("%w: token carries no email", auth.ErrInvalidCredentials)
	}

	name := identity.Name
	if name == "" {
		name, _, _ = strings.Cut(identity.Email, "@")
	}

	now := s.now().UTC()
	user, err := s.repo.FindOrCreate(ctx, auth.User{
		ID:          uuid.NewString(),
		Email:       identity.Email,
		Name:        name,
		FavoriteIDs: []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		span.RecordError(err)
		return auth.User{}, fmt.Errorf("failed to provision user: %w", err)
	}

	span.SetAttributes(attribute.String("user.id", user.ID))
	s.logger.InfoContext(ctx, "external sign-in", "user_id", user.ID, "subject", identity.Subject)
	return user.Normalize(), nil
}

var _ ports.AuthService = (*AuthService)(nil)
