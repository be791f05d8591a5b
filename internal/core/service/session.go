package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"go-flix-app/internal/core/domain/auth"
	"go-flix-app/internal/core/ports"
)

// SessionService issues signed session tokens and resolves them back to users.
// A token is valid only while its id is registered in the session store, so
// logout takes effect before the token expires.
type SessionService struct {
	store  ports.SessionStore
	users  ports.UserRepository
	secret []byte
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time
}

func NewSessionService(store ports.SessionStore, users ports.UserRepository, secret string, ttl time.Duration, logger *slog.Logger) *SessionService {
	return &SessionService{
		store:  store,
		users:  users,
		secret: []byte(secret),
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

// Issue mints a session for user and registers it.
func (s *SessionService) Issue(ctx context.Context, user auth.User) (auth.Session, error) {
	ctx, span := tracer.Start(ctx, "SessionService.Issue")
	defer span.End()

	now := s.now()
	session := auth.Session{
		ID:        uuid.NewString(),
		Email:     user.Email,
		ExpiresAt: now.Add(s.ttl),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   session.Email,
		ID:        session.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return auth.Session{}, fmt.Errorf("failed to sign session: %w", err)
	}

	if err := s.store.Register(ctx, session.ID, session.Email, s.ttl); err != nil {
		span.RecordError(err)
		return auth.Session{}, fmt.Errorf("failed to register session: %w", err)
	}

	session.Token = signed
	return session, nil
}

// Authenticate resolves token to the user it names. Every failure that is not
// an infrastructure error is reported as auth.ErrUnauthenticated.
func (s *SessionService) Authenticate(ctx context.Context, token string) (auth.User, error) {
	ctx, span := tracer.Start(ctx, "SessionService.Authenticate")
	defer span.End()

	claims, err := s.parse(token)
	if err != nil {
		return auth.User{}, auth.ErrUnauthenticated
	}

	email, err := s.store.Lookup(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, auth.ErrUnauthenticated) {
			return auth.User{}, auth.ErrUnauthenticated
		}
		span.RecordError(err)
		return auth.User{}, fmt.Errorf("failed to look up session: %w", err)
	}
	if email != claims.Subject {
		s.logger.WarnContext(ctx, "session subject mismatch", "session_id", claims.ID)
		return auth.User{}, auth.ErrUnauthenticated
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			return auth.User{}, auth.ErrUnauthenticated
		}
		span.RecordError(err)
		return auth.User{}, fmt.Errorf("failed to load session user: %w", err)
	}

	return user.Normalize(), nil
}

// Revoke ends the session carried by token. Invalid or expired tokens are ignored.
func (s *SessionService) Revoke(ctx context.Context, token string) error {
	ctx, span := tracer.Start(ctx, "SessionService.Revoke")
	defer span.End()

	claims, err := s.parse(token)
	if err != nil {
		return nil
	}
	if err := s.store.Revoke(ctx, claims.ID); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

func (s *SessionService) parse(token string) (*jwt.RegisteredClaims, error) {
	if token == "" {
		return nil, auth.ErrUnauthenticated
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, err
	}
	if claims.ID == "" || claims.Subject == "" {
		return nil, auth.ErrUnauthenticated
	}
	return claims, nil
}

var _ ports.SessionService = (*SessionService)(nil)
