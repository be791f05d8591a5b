package rest

import (
	"context"
	"iter"
	"log/slog"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"go-flix-app/internal/core/domain/auth"
	"go-flix-app/internal/core/domain/catalog"
	"go-flix-app/internal/core/ports"
)

const ndjsonContentType = "application/x-ndjson"

// Handler serves the catalog and favorites endpoints.
type Handler struct {
	catalog   ports.CatalogService
	favorites ports.FavoriteService
	logger    *slog.Logger
}

func NewHandler(catalog ports.CatalogService, favorites ports.FavoriteService, logger *slog.Logger) *Handler {
	return &Handler{catalog: catalog, favorites: favorites, logger: logger}
}

type favoriteFunc func(ctx context.Context, user auth.User, movieID string) (auth.User, error)

type favoriteRequest struct {
	MovieID string `json:"movieId" validate:"required"`
}

// ListMovies handles GET /movies
func (h *Handler) ListMovies(w http.ResponseWriter, r *http.Request) {
	movies, err := h.catalog.ListMovies(r.Context())
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	h.respondMovies(w, r, movies)
}

// GetMovie handles GET /movies/{movieId}
func (h *Handler) GetMovie(w http.ResponseWriter, r *http.Request) {
	movie, err := h.catalog.GetMovie(r.Context(), r.PathValue("movieId"))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	h.respond(w, r, http.StatusOK, movie)
}

// RandomMovie handles GET /movies/random and GET /random
func (h *Handler) RandomMovie(w http.ResponseWriter, r *http.Request) {
	movie, err := h.catalog.RandomMovie(r.Context())
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	h.respond(w, r, http.StatusOK, movie)
}

// Current handles GET /current
func (h *Handler) Current(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		respondError(w, r, h.logger, auth.ErrUnauthenticated)
		return
	}
	h.respond(w, r, http.StatusOK, user.Normalize())
}

// AddFavorite handles POST /favorite
func (h *Handler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	h.toggleFavorite(w, r, h.favorites.Add)
}

// RemoveFavorite handles DELETE /favorite
func (h *Handler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	h.toggleFavorite(w, r, h.favorites.Remove)
}

// ListFavorites handles GET /favorites
func (h *Handler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		respondError(w, r, h.logger, auth.ErrUnauthenticated)
		return
	}

	movies, err := h.favorites.List(r.Context(), user)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	h.respondMovies(w, r, movies)
}

func (h *Handler) toggleFavorite(w http.ResponseWriter, r *http.Request, apply favoriteFunc) {
	user, ok := userFromContext(r.Context())
	if !ok {
		respondError(w, r, h.logger, auth.ErrUnauthenticated)
		return
	}

	var req favoriteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	updated, err := apply(r.Context(), user, req.MovieID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	h.respond(w, r, http.StatusOK, updated)
}

// respondMovies writes a JSON array, or streams NDJSON when the client asks
// for it. An NDJSON stream that fails midway is cut short, since the status
// line has already been sent.
func (h *Handler) respondMovies(w http.ResponseWriter, r *http.Request, movies iter.Seq2[catalog.Movie, error]) {
	if strings.Contains(r.Header.Get("Accept"), ndjsonContentType) {
		w.Header().Set("Content-Type", ndjsonContentType)
		w.WriteHeader(http.StatusOK)
		h.streamResponse(w, r, movies)
		return
	}

	list := []catalog.Movie{}
	for m, err := range movies {
		if err != nil {
			respondError(w, r, h.logger, err)
			return
		}
		list = append(list, m)
	}
	h.respond(w, r, http.StatusOK, list)
}

func (h *Handler) streamResponse(w http.ResponseWriter, r *http.Request, movies iter.Seq2[catalog.Movie, error]) {
	enc := json.NewEncoder(w)
	flusher, _ := w.(http.Flusher)
	for m, err := range movies {
		if err != nil {
			h.logger.ErrorContext(r.Context(), "stream error", "error", err)
			return
		}
		if err := enc.Encode(m); err != nil {
			h.logger.ErrorContext(r.Context(), "encode error", "error", err)
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, code int, v any) {
	if err := respondJSON(w, code, v); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to write response", "error", err)
	}
}
