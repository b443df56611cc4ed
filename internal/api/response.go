package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github-repo-finder/internal/common"
	"github-repo-finder/internal/domain"
	"github-repo-finder/internal/service"
)

type searchData struct {
	TotalCount        int                  `json:"total_count"`
	IncompleteResults bool                 `json:"incomplete_results"`
	Items             []*domain.ScoredItem `json:"items"`
	Source            string               `json:"source"`
	Filters           domain.SearchFilters `json:"filters"`
}

type pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

type searchResponse struct {
	Success    bool                 `json:"success"`
	Data       searchData           `json:"data"`
	Pagination pagination           `json:"pagination"`
	Filters    domain.SearchFilters `json:"filters"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
}

func newSearchResponse(res *domain.SearchResult) searchResponse {
	items := res.Items
	if items == nil {
		items = []*domain.ScoredItem{}
	}
	return searchResponse{
		Success: true,
		Data: searchData{
			TotalCount:        res.TotalCount,
			IncompleteResults: res.IncompleteResults,
			Items:             items,
			Source:            "github",
			Filters:           res.Filters,
		},
		Pagination: pagination{
			Page:       res.Page,
			PerPage:    res.PerPage,
			Total:      res.TotalCount,
			TotalPages: service.TotalPages(res.TotalCount, res.PerPage),
		},
		Filters: res.Filters,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor 错误码 -> HTTP 状态码
func statusFor(code string) int {
	switch code {
	case common.ErrCodeAuthRequired:
		return http.StatusUnauthorized
	case common.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case common.ErrCodeInvalidQuery:
		return http.StatusUnprocessableEntity
	case common.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case common.ErrCodeUpstreamEmpty, common.ErrCodeNotFound:
		return http.StatusNotFound
	case common.ErrCodeInvalidInput:
		return http.StatusBadRequest
	case common.ErrCodeGitHubAPI:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError 渲染错误。取消的请求不算错误，什么都不写。
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	code := common.CodeOf(err)
	if code == common.ErrCodeCanceled {
		logger.Debug("request canceled", "path", r.URL.Path, "request_id", GetRequestID(r.Context()))
		return
	}
	if code == "" {
		code = common.ErrCodeInternal
	}

	status := statusFor(code)
	msg := common.MessageOf(err)
	if status == http.StatusInternalServerError && common.CodeOf(err) == "" {
		msg = "Internal Server Error"
	}

	logger.Error("request failed",
		"path", r.URL.Path,
		"code", code,
		"status", status,
		"error", err,
		"request_id", GetRequestID(r.Context()),
	)
	writeJSON(w, status, errorResponse{Success: false, Error: msg, Code: code})
}
