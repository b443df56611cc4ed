package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github-repo-finder/internal/common"
	"github-repo-finder/internal/domain"
)

// SearchAPI HTTP 层依赖的搜索能力
type SearchAPI interface {
	Resolve(ctx context.Context, text string, explicit domain.SearchFilters) domain.SearchRequest
	Search(ctx context.Context, req domain.SearchRequest) (*domain.SearchResult, error)
	Trending(ctx context.Context, req domain.TrendingRequest) (*domain.SearchResult, error)
	History(ctx context.Context, limit int) ([]*domain.SearchRecord, error)
}

// Handler 挂载所有 HTTP 路由的处理函数
type Handler struct {
	svc    SearchAPI
	logger *slog.Logger
}

func NewHandler(svc SearchAPI, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"service":   "GitHub Repo Finder",
		"endpoints": []string{"/api/health", "/api/search", "/api/search/trending", "/api/search/history"},
	})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"request_id": GetRequestID(r.Context()),
	})
}

// Search GET /api/search
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	explicit := domain.SearchFilters{
		Language:           q.Get("language"),
		Domain:             q.Get("domain"),
		Difficulty:         q.Get("difficulty"),
		HasGoodFirstIssues: q.Get("has_good_first_issues") == "true",
	}
	if !domain.ValidDifficulty(explicit.Difficulty) {
		writeError(w, r, h.logger, common.NewError(common.ErrCodeInvalidInput, "Invalid difficulty: "+explicit.Difficulty))
		return
	}

	req := h.svc.Resolve(r.Context(), q.Get("q"), explicit)
	req.Sort = stringOr(q.Get("sort"), "best-match")
	req.Order = stringOr(q.Get("order"), "desc")
	req.Page = intOr(q.Get("page"), 1)
	req.PerPage = intOr(q.Get("per_page"), 30)

	res, err := h.svc.Search(r.Context(), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newSearchResponse(res))
}

// Trending GET /api/search/trending
func (h *Handler) Trending(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	since := stringOr(q.Get("since"), "daily")
	switch since {
	case "daily", "weekly", "monthly":
	default:
		writeError(w, r, h.logger, common.NewError(common.ErrCodeInvalidInput, "Invalid since: "+since))
		return
	}
	difficulty := q.Get("difficulty")
	if !domain.ValidDifficulty(difficulty) {
		writeError(w, r, h.logger, common.NewError(common.ErrCodeInvalidInput, "Invalid difficulty: "+difficulty))
		return
	}

	res, err := h.svc.Trending(r.Context(), domain.TrendingRequest{
		Since:      since,
		Language:   q.Get("language"),
		Difficulty: difficulty,
		Page:       intOr(q.Get("page"), 1),
		PerPage:    intOr(q.Get("per_page"), 30),
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newSearchResponse(res))
}

// History GET /api/search/history
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	records, err := h.svc.History(r.Context(), intOr(r.URL.Query().Get("limit"), 20))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    records,
	})
}

func stringOr(v, fallback string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return fallback
}

// 非数字或 0 时使用默认值，范围由 service 层截断
func intOr(v string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n == 0 {
		return fallback
	}
	return n
}
