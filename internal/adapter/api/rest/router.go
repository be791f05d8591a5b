package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/swaggo/swag"

	"go-flix-app/internal/core/ports"
)

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

// RouterConfig carries the cross-cutting settings of the HTTP surface.
type RouterConfig struct {
	AllowedOrigins     []string
	RateLimitPerMinute int
	// TrustProxy takes the client address from X-Forwarded-For / X-Real-IP.
	// Only enable it behind a proxy that overwrites those headers.
	TrustProxy bool
	HealthChecks       map[string]HealthCheck
	// RouteMiddleware wraps each registered route, inside the mux, so it can
	// read r.Pattern.
	RouteMiddleware []Middleware
}

// NewRouter initializes the HTTP router and registers routes. mws wrap the
// whole mux, first one outermost.
func NewRouter(h *Handler, authH *AuthHandler, sessions ports.SessionService, logger *slog.Logger, cfg RouterConfig, mws ...Middleware) http.Handler {
	mux := http.NewServeMux()

	handle := func(pattern string, handler http.Handler) {
		mux.Handle(pattern, Chain(handler, cfg.RouteMiddleware...))
	}
	auth := RequireSession(sessions, logger)

	// Auth Routes (Public)
	handle("POST /auth/register", http.HandlerFunc(authH.Register))
	handle("POST /auth/login", http.HandlerFunc(authH.Login))
	handle("POST /auth/logout", http.HandlerFunc(authH.Logout))
	handle("POST /auth/external", http.HandlerFunc(authH.External))

	// Public Routes
	handle("GET /movies", http.HandlerFunc(h.ListMovies))
	handle("GET /movies/random", http.HandlerFunc(h.RandomMovie))
	handle("GET /random", http.HandlerFunc(h.RandomMovie))

	// Protected Routes
	handle("GET /current", auth(http.HandlerFunc(h.Current)))
	handle("GET /movies/{movieId}", auth(http.HandlerFunc(h.GetMovie)))
	handle("POST /favorite", auth(http.HandlerFunc(h.AddFavorite)))
	handle("DELETE /favorite", auth(http.HandlerFunc(h.RemoveFavorite)))
	handle("GET /favorites", auth(http.HandlerFunc(h.ListFavorites)))

	mux.Handle("GET /healthz", healthHandler(cfg.HealthChecks, logger))

	// Documentation
	mux.HandleFunc("GET /openapi.json", func(w http.ResponseWriter, r *http.Request) {
		doc, err := swag.ReadDoc()
		if err != nil {
			respondError(w, r, logger, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(doc))
	})
	mux.HandleFunc("GET /api-docs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(swaggerUI))
	})

	var outer []Middleware
	if cfg.TrustProxy {
		outer = append(outer, chimiddleware.RealIP)
	}
	outer = append(outer,
		chimiddleware.Recoverer,
		cors.Handler(cors.Options{
			AllowedOrigins:   cfg.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}),
	)
	if cfg.RateLimitPerMinute > 0 {
		outer = append(outer, httprate.Limit(
			cfg.RateLimitPerMinute,
			time.Minute,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
				if err := respondJSON(w, http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded", Code: "rate_limited"}); err != nil {
					logger.ErrorContext(r.Context(), "failed to write response", "error", err)
				}
			}),
		))
	}

	// Wrap with middleware
	return Chain(mux, append(mws, outer...)...)
}

func healthHandler(checks map[string]HealthCheck, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := map[string]string{}
		code := http.StatusOK
		for name, check := range checks {
			if err := check(ctx); err != nil {
				logger.WarnContext(ctx, "health check failed", "dependency", name, "error", err)
				status[name] = "unavailable"
				code = http.StatusServiceUnavailable
				continue
			}
			status[name] = "ok"
		}
		if err := respondJSON(w, code, status); err != nil {
			logger.ErrorContext(r.Context(), "failed to write response", "error", err)
		}
	})
}

const swaggerUI = `<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="utf-8" />
	<meta name="viewport" content="width=device-width, initial-scale=1" />
	<meta name="description" content="SwaggerUI" />
	<title>SwaggerUI</title>
	<link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
	window.onload = () => {
		window.ui = SwaggerUIBundle({ url: '/openapi.json', dom_id: '#swagger-ui' });
	};
</script>
</body>
</html>`
