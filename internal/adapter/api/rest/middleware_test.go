package rest

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"go-flix-app/internal/core/domain/auth"
)

func TestRequestID(t *testing.T) {
	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := r.Context().Value(requestIDKey)
		assert.NotNil(t, rid, "RequestID should be in context")
		assert.NotEmpty(t, rid.(string), "RequestID should not be empty")

		respRid := w.Header().Get("X-Request-ID")
		assert.Equal(t, rid.(string), respRid, "Header should match context")
	})

	handlerToTest := RequestID(nextHandler)

	t.Run("generates new id when missing", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		w := httptest.NewRecorder()
		handlerToTest.ServeHTTP(w, req)
	})

	t.Run("preserves existing id", func(t *testing.T) {
		existingID := "existing-id"
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("X-Request-ID", existingID)
		w := httptest.NewRecorder()

		nextHandlerWithCheck := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rid := r.Context().Value(requestIDKey).(string)
			assert.Equal(t, existingID, rid)
		})

		RequestID(nextHandlerWithCheck).ServeHTTP(w, req)
		assert.Equal(t, existingID, w.Header().Get("X-Request-ID"))
	})
}

func TestChain(t *testing.T) {
	var calls []string
	mw1 := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls = append(calls, "mw1")
			next.ServeHTTP(w, r)
		})
	}
	mw2 := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls = append(calls, "mw2")
			next.ServeHTTP(w, r)
		})
	}

	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, "final")
	})

	chained := Chain(final, mw1, mw2)
	chained.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

	assert.Equal(t, []string{"mw1", "mw2", "final"}, calls, "Middleware should be called in order")
}

func TestLogger_LevelByStatus(t *testing.T) {
	tests := []struct {
		status int
		level  string
	}{
		{http.StatusOK, "INFO"},
		{http.StatusNotFound, "WARN"},
		{http.StatusInternalServerError, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&buf, nil))

			h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}), RequestID, Logger(logger))
			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/movies", nil))

			var entry map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
			assert.Equal(t, tt.level, entry["level"])
			assert.Equal(t, "http_request", entry["msg"])
			assert.Equal(t, float64(tt.status), entry["status"])
			assert.NotEmpty(t, entry["request_id"])
		})
	}
}

func TestSessionToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, sessionToken(req))

	req.Header.Set("Authorization", "Bearer header-token")
	assert.Equal(t, "header-token", sessionToken(req))

	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: "cookie-token"})
	assert.Equal(t, "cookie-token", sessionToken(req), "cookie wins over header")

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic abc")
	assert.Empty(t, sessionToken(req))
}

func TestRequireSession(t *testing.T) {
	user := auth.User{ID: "u1", Email: "ann@example.com"}

	reached := func(t *testing.T, called *bool) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			*called = true
			got, ok := userFromContext(r.Context())
			assert.True(t, ok)
			assert.Equal(t, user.Email, got.Email)
		})
	}

	t.Run("valid session", func(t *testing.T) {
		sessions := new(MockSessionService)
		sessions.On("Authenticate", mock.Anything, "tok").Return(user, nil).Once()

		var called bool
		req := httptest.NewRequest(http.MethodGet, "/current", nil)
		req.AddCookie(&http.Cookie{Name: sessionCookie, Value: "tok"})
		w := httptest.NewRecorder()
		RequireSession(sessions, discardLogger())(reached(t, &called)).ServeHTTP(w, req)

		assert.True(t, called)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("no session", func(t *testing.T) {
		sessions := new(MockSessionService)
		sessions.On("Authenticate", mock.Anything, "").Return(auth.User{}, auth.ErrUnauthenticated).Once()

		var called bool
		w := httptest.NewRecorder()
		RequireSession(sessions, discardLogger())(reached(t, &called)).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/current", nil))

		assert.False(t, called)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "not signed in", decodeError(t, w.Body).Error)
	})

	t.Run("store failure", func(t *testing.T) {
		sessions := new(MockSessionService)
		sessions.On("Authenticate", mock.Anything, "tok").Return(auth.User{}, errors.New("redis down")).Once()

		var called bool
		req := httptest.NewRequest(http.MethodGet, "/current", nil)
		req.Header.Set("Authorization", "Bearer tok")
		w := httptest.NewRecorder()
		RequireSession(sessions, discardLogger())(reached(t, &called)).ServeHTTP(w, req)

		assert.False(t, called)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{auth.ErrValidation, http.StatusBadRequest, "validation_failed"},
		{auth.ErrEmailTaken, http.StatusUnprocessableEntity, "email_taken"},
		{auth.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
		{auth.ErrUserNotFound, http.StatusUnauthorized, "unauthenticated"},
		{auth.ErrExternalSignInDisabled, http.StatusNotFound, "external_sign_in_disabled"},
		{auth.ErrProviderUnavailable, http.StatusServiceUnavailable, "provider_unavailable"},
		{errors.New("boom"), http.StatusInternalServerError, "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			status, body := classify(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, body.Code)
		})
	}
}
