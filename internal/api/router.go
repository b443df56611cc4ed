package api

import (
	"log/slog"
	"net/http"
	"time"

	"github-repo-finder/internal/common"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RouterOptions HTTP 层配置
type RouterOptions struct {
	CORSOrigins    []string
	RequestTimeout time.Duration
	Logger         *slog.Logger
}

// NewRouter 组装中间件和路由
func NewRouter(svc SearchAPI, opts RouterOptions) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	h := NewHandler(svc, logger)

	r := chi.NewRouter()
	r.Use(RequestIDMiddleware())
	r.Use(LoggingMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(SecurityHeadersMiddleware())
	r.Use(CORSMiddleware(opts.CORSOrigins))
	r.Use(middleware.Compress(5))
	r.Use(RequestTimeoutMiddleware(opts.RequestTimeout))

	r.Get("/", h.Root)
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)
		r.Route("/search", func(r chi.Router) {
			r.Get("/", h.Search)
			r.Get("/trending", h.Trending)
			r.Get("/history", h.History)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Success: false, Error: "Not Found", Code: common.ErrCodeNotFound})
	})
	return r
}
