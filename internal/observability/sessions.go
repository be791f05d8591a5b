package observability

import (
	"context"
	"errors"
	"time"

	"go-flix-app/internal/core/domain/auth"
	"go-flix-app/internal/core/ports"
)

// InstrumentedSessionStore is a decorator that counts session lookups.
type InstrumentedSessionStore struct {
	inner ports.SessionStore
}

func NewInstrumentedSessionStore(inner ports.SessionStore) *InstrumentedSessionStore {
	return &InstrumentedSessionStore{inner: inner}
}

var _ ports.SessionStore = (*InstrumentedSessionStore)(nil)

func (s *InstrumentedSessionStore) Register(ctx context.Context, id, email string, ttl time.Duration) error {
	return s.inner.Register(ctx, id, email, ttl)
}

func (s *InstrumentedSessionStore) Revoke(ctx context.Context, id string) error {
	return s.inner.Revoke(ctx, id)
}

func (s *InstrumentedSessionStore) Lookup(ctx context.Context, id string) (string, error) {
	email, err := s.inner.Lookup(ctx, id)
	switch {
	case err == nil:
		sessionLookups.WithLabelValues("hit").Inc()
	case errors.Is(err, auth.ErrUnauthenticated):
		sessionLookups.WithLabelValues("miss").Inc()
	default:
		sessionLookups.WithLabelValues("error").Inc()
	}
	return email, err
}
