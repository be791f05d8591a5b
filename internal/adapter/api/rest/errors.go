package rest

import (
	"errors"
	"net/http"

	"go-flix-app/internal/core/domain/auth"
	"go-flix-app/internal/core/domain/catalog"
	"go-flix-app/internal/core/domain/favorites"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type errorMapping struct {
	target error
	status int
	code   string
	// detail returns the wrapped message instead of the sentinel's.
	detail bool
}

// errorMappings is checked in order; the first errors.Is match wins.
var errorMappings = []errorMapping{
	{target: errBadRequest, status: http.StatusBadRequest, code: "bad_request", detail: true},
	{target: auth.ErrValidation, status: http.StatusBadRequest, code: "validation_failed", detail: true},
	{target: catalog.ErrValidation, status: http.StatusBadRequest, code: "validation_failed", detail: true},
	{target: auth.ErrEmailTaken, status: http.StatusUnprocessableEntity, code: "email_taken"},
	{target: auth.ErrInvalidCredentials, status: http.StatusUnauthorized, code: "invalid_credentials"},
	{target: auth.ErrUnauthenticated, status: http.StatusUnauthorized, code: "unauthenticated"},
	{target: auth.ErrUserNotFound, status: http.StatusUnauthorized, code: "unauthenticated"},
	{target: auth.ErrExternalSignInDisabled, status: http.StatusNotFound, code: "external_sign_in_disabled"},
	{target: auth.ErrProviderUnavailable, status: http.StatusServiceUnavailable, code: "provider_unavailable"},
	{target: catalog.ErrMovieNotFound, status: http.StatusNotFound, code: "invalid_id"},
	{target: catalog.ErrEmptyCatalog, status: http.StatusNotFound, code: "empty_catalog"},
	{target: favorites.ErrNotFavorite, status: http.StatusNotFound, code: "not_favorite"},
}

// classify maps an error to its HTTP status and body. Unknown errors become a
// generic 500 so store details never reach the client.
func classify(err error) (int, errorResponse) {
	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}
		msg := m.target.Error()
		if m.detail {
			msg = err.Error()
		}
		return m.status, errorResponse{Error: msg, Code: m.code}
	}
	return http.StatusInternalServerError, errorResponse{Error: "internal server error", Code: "internal"}
}
