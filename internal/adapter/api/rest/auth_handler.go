package rest

import (
	"log/slog"
	"net/http"
	"time"

	"go-flix-app/internal/core/domain/auth"
	"go-flix-app/internal/core/ports"
)

const sessionCookie = "session"

// AuthHandler serves registration, sign-in and sign-out.
type AuthHandler struct {
	auth         ports.AuthService
	sessions     ports.SessionService
	logger       *slog.Logger
	secureCookie bool
}

func NewAuthHandler(authSvc ports.AuthService, sessions ports.SessionService, logger *slog.Logger, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		auth:         authSvc,
		sessions:     sessions,
		logger:       logger,
		secureCookie: secureCookie,
	}
}

type registerRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required,maxbytes=72"`
	Name     string `json:"name" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type externalSignInRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	user, err := h.auth.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	h.respond(w, r, http.StatusCreated, user)
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	user, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	h.startSession(w, r, user)
}

// External handles POST /auth/external
func (h *AuthHandler) External(w http.ResponseWriter, r *http.Request) {
	var req externalSignInRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	user, err := h.auth.SignInExternal(r.Context(), req.IDToken)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	h.startSession(w, r, user)
}

// Logout handles POST /auth/logout. It always clears the cookie, even when
// the session was already gone or the store failed to revoke it.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := sessionToken(r)
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	if err := h.sessions.Revoke(r.Context(), token); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, user auth.User) {
	session, err := h.sessions.Issue(r.Context(), user)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		MaxAge:   int(time.Until(session.ExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	h.respond(w, r, http.StatusOK, user)
}

func (h *AuthHandler) respond(w http.ResponseWriter, r *http.Request, code int, v any) {
	if err := respondJSON(w, code, v); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to write response", "error", err)
	}
}
