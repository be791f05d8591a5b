// Package oidc verifies ID tokens from an external OpenID Connect provider.
package oidc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	gobreaker "github.com/sony/gobreaker/v2"

	"go-flix-app/internal/core/domain/auth"
	"go-flix-app/internal/core/ports"
	"go-flix-app/internal/observability"
)

const breakerName = "oidc-provider"

type claims struct {
	Email         string `json:"email"`
	EmailVerified *bool  `json:"email_verified"`
	Name          string `json:"name"`
}

type verifyFunc func(ctx context.Context, rawIDToken string) (auth.ExternalIdentity, error)

// Verifier checks ID tokens against the provider's published keys. Calls that
// fail to reach the provider trip a circuit breaker; rejected tokens do not.
type Verifier struct {
	verify verifyFunc
	cb     *gobreaker.CircuitBreaker[auth.ExternalIdentity]
	logger *slog.Logger
}

// NewVerifier discovers the provider at issuerURL. Discovery is a network
// call, so ctx bounds it. ctx also scopes the background key fetches.
func NewVerifier(ctx context.Context, issuerURL, clientID string, logger *slog.Logger) (*Verifier, error) {
	provider, err := oidc.NewProvider(ctx, issuerURL)
	if err != nil {
		return nil, fmt.Errorf("failed to discover oidc provider: %w", err)
	}

	var discovery struct {
		JWKSURL    string   `json:"jwks_uri"`
		Algorithms []string `json:"id_token_signing_alg_values_supported"`
	}
	if err := provider.Claims(&discovery); err != nil {
		return nil, fmt.Errorf("failed to read oidc discovery document: %w", err)
	}

	keys := &keySet{remote: oidc.NewRemoteKeySet(ctx, discovery.JWKSURL)}
	idVerifier := oidc.NewVerifier(issuerURL, keys, &oidc.Config{
		ClientID:             clientID,
		SupportedSigningAlgs: discovery.Algorithms,
	})

	verify := func(ctx context.Context, raw string) (auth.ExternalIdentity, error) {
		failure := &fetchFailure{}
		token, err := idVerifier.Verify(context.WithValue(ctx, fetchFailureKey{}, failure), raw)
		if err != nil {
			if failure.err != nil {
				return auth.ExternalIdentity{}, fmt.Errorf("failed to fetch provider keys: %w", failure.err)
			}
			return auth.ExternalIdentity{}, err
		}
		var c claims
		if err := token.Claims(&c); err != nil {
			return auth.ExternalIdentity{}, fmt.Errorf("%w: %v", auth.ErrInvalidCredentials, err)
		}
		if c.EmailVerified != nil && !*c.EmailVerified {
			return auth.ExternalIdentity{}, fmt.Errorf("%w: email not verified", auth.ErrInvalidCredentials)
		}
		return auth.ExternalIdentity{Subject: token.Subject, Email: c.Email, Name: c.Name}, nil
	}

	return newVerifier(verify, logger), nil
}

type fetchFailureKey struct{}

type fetchFailure struct {
	err error
}

// keySet records transport failures of the remote key fetch in the call's
// context. The id token verifier only reports them as text.
type keySet struct {
	remote oidc.KeySet
}

func (k *keySet) VerifySignature(ctx context.Context, jwt string) ([]byte, error) {
	payload, err := k.remote.VerifySignature(ctx, jwt)
	if err != nil && isUnreachable(err) {
		if f, ok := ctx.Value(fetchFailureKey{}).(*fetchFailure); ok {
			f.err = err
		}
	}
	return payload, err
}

func newVerifier(verify verifyFunc, logger *slog.Logger) *Verifier {
	observability.RecordBreakerState(breakerName, float64(gobreaker.StateClosed))

	cb := gobreaker.NewCircuitBreaker[auth.ExternalIdentity](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// A token the provider rejects is the caller's fault, not the provider's.
		IsSuccessful: func(err error) bool {
			return err == nil || !isUnreachable(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
			observability.RecordBreakerTransition(name, from.String(), to.String(), float64(to))
		},
	})

	return &Verifier{verify: verify, cb: cb, logger: logger}
}

var _ ports.IdentityVerifier = (*Verifier)(nil)

func (v *Verifier) Verify(ctx context.Context, rawIDToken string) (auth.ExternalIdentity, error) {
	identity, err := v.cb.Execute(func() (auth.ExternalIdentity, error) {
		return v.verify(ctx, rawIDToken)
	})
	if err == nil {
		return identity, nil
	}

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return auth.ExternalIdentity{}, fmt.Errorf("%w: %v", auth.ErrProviderUnavailable, err)
	case isUnreachable(err):
		v.logger.ErrorContext(ctx, "identity provider unreachable", "error", err)
		return auth.ExternalIdentity{}, fmt.Errorf("%w: %v", auth.ErrProviderUnavailable, err)
	case errors.Is(err, auth.ErrInvalidCredentials):
		return auth.ExternalIdentity{}, err
	default:
		return auth.ExternalIdentity{}, fmt.Errorf("%w: %v", auth.ErrInvalidCredentials, err)
	}
}

// isUnreachable reports whether err came from the transport rather than from
// checking the token.
func isUnreachable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
