package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github-repo-finder/internal/common"
	"github-repo-finder/internal/domain"

	"github.com/google/go-github/v53/github"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout   = 10 * time.Second
	defaultUserAgent = "github-repo-finder/1.0"
	maxPerPage       = 100
)

// Options 上游客户端配置，在构造时显式注入
type Options struct {
	BaseURL           string // 为空时使用 https://api.github.com/
	Token             string // 为空时匿名访问，限制 60次/小时
	Timeout           time.Duration
	MaxRetries        int     // 只对 5xx 和网络错误重试
	RetryDelay        time.Duration
	RequestsPerSecond float64 // <=0 表示不限速
	UserAgent         string
	Logger            *slog.Logger
}

// Searcher 实现了 port.Searcher 接口
type Searcher struct {
	client     *github.Client
	limiter    *rate.Limiter
	maxRetries int
	retryDelay time.Duration
	logger     *slog.Logger
}

// NewSearcher 初始化 GitHub 搜索客户端
func NewSearcher(opts Options) (*Searcher, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	var httpClient *http.Client
	if opts.Token == "" {
		httpClient = &http.Client{Timeout: timeout}
	} else {
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: opts.Token},
		)
		httpClient = oauth2.NewClient(context.Background(), ts)
		httpClient.Timeout = timeout
	}

	client := github.NewClient(httpClient)
	if opts.BaseURL != "" {
		baseURL, err := url.Parse(strings.TrimSuffix(opts.BaseURL, "/") + "/")
		if err != nil {
			return nil, common.WrapError(common.ErrCodeInvalidInput, "GitHub API 地址无效", err)
		}
		client.BaseURL = baseURL
	}
	client.UserAgent = defaultUserAgent
	if opts.UserAgent != "" {
		client.UserAgent = opts.UserAgent
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	retryDelay := opts.RetryDelay
	if retryDelay <= 0 {
		retryDelay = time.Second
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Searcher{
		client:     client,
		limiter:    rate.NewLimiter(limit, 1),
		maxRetries: max(opts.MaxRetries, 0),
		retryDelay: retryDelay,
		logger:     logger,
	}, nil
}

// Search 调用 GitHub 仓库搜索接口，返回一页原始结果。
// 失败时返回的错误一定带有可区分的错误码 (认证/限流/查询错误/超时/取消)。
func (s *Searcher) Search(ctx context.Context, query, sort, order string, perPage, page int) (*domain.UpstreamPage, error) {
	opts := &github.SearchOptions{
		Sort:  upstreamSort(sort),
		Order: order,
		ListOptions: github.ListOptions{
			Page:    max(page, 1),
			PerPage: min(max(perPage, 1), maxPerPage),
		},
	}

	s.logger.Debug("github search", "query", query, "sort", opts.Sort, "order", opts.Order, "page", opts.Page, "per_page", opts.PerPage)

	var result *github.RepositoriesSearchResult
	err := common.Do(ctx, func() error {
		if err := s.limiter.Wait(ctx); err != nil {
			// 限速等待只会因为 ctx 取消或截止时间不够而失败
			if errors.Is(ctx.Err(), context.Canceled) {
				return common.WrapError(common.ErrCodeCanceled, "Search canceled.", err)
			}
			return common.WrapError(common.ErrCodeTimeout, "Request timeout. Please try again.", err)
		}
		var apiErr error
		result, _, apiErr = s.client.Search.Repositories(ctx, query, opts)
		return classifyError(ctx, apiErr)
	},
		common.WithMaxRetries(s.maxRetries),
		common.WithInitialDelay(s.retryDelay),
		common.WithRetryIf(isTransient),
	)
	if err != nil {
		if common.CodeOf(err) == "" {
			err = classifyError(ctx, err)
		}
		return nil, err
	}

	items := make([]*domain.Repo, 0, len(result.Repositories))
	for _, item := range result.Repositories {
		if item == nil {
			continue
		}
		items = append(items, toDomainRepo(item))
	}

	return &domain.UpstreamPage{
		TotalCount:        result.GetTotal(),
		IncompleteResults: result.GetIncompleteResults(),
		Items:             items,
	}, nil
}

// best-match 和本地的 difficulty 排序都不传给上游
func upstreamSort(sort string) string {
	switch sort {
	case "", SortBestMatch, SortDifficulty:
		return ""
	default:
		return sort
	}
}

// classifyError 把 go-github 的错误归类为带错误码的 AppError
func classifyError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.Canceled) {
		return common.WrapError(common.ErrCodeCanceled, "Search canceled.", err)
	}
	if errors.Is(err, context.DeadlineExceeded) || isNetTimeout(err) {
		return common.WrapError(common.ErrCodeTimeout, "Request timeout. Please try again.", err)
	}
	if ctx != nil && ctx.Err() != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return common.WrapError(common.ErrCodeCanceled, "Search canceled.", err)
		}
		return common.WrapError(common.ErrCodeTimeout, "Request timeout. Please try again.", err)
	}

	var rateErr *github.RateLimitError
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &rateErr) || errors.As(err, &abuseErr) {
		return common.WrapError(common.ErrCodeRateLimited, "Rate limit exceeded. Please try again later.", err)
	}

	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		switch respErr.Response.StatusCode {
		case http.StatusUnauthorized:
			return common.WrapError(common.ErrCodeAuthRequired,
				"GitHub API authentication required. Please add a GITHUB_TOKEN to your environment variables.", err)
		case http.StatusForbidden, http.StatusTooManyRequests:
			return common.WrapError(common.ErrCodeRateLimited, "Rate limit exceeded. Please try again later.", err)
		case http.StatusUnprocessableEntity:
			return common.WrapError(common.ErrCodeInvalidQuery, "Invalid search parameters: "+respErr.Message, err)
		case http.StatusNotFound:
			return common.WrapError(common.ErrCodeUpstreamEmpty, "No repositories found.", err)
		}
		return common.WrapError(common.ErrCodeGitHubAPI, fmt.Sprintf("API error: %s", respErr.Message), err)
	}

	return common.WrapError(common.ErrCodeGitHubAPI, "GitHub API 调用失败", err)
}

// isTransient 只有 5xx 和网络层错误值得重试
func isTransient(err error) bool {
	if !common.IsCode(err, common.ErrCodeGitHubAPI) {
		return false
	}
	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		return respErr.Response.StatusCode >= http.StatusInternalServerError
	}
	return true
}

func isNetTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// toDomainRepo 将 GitHub 的数据结构转换为 Domain 实体
func toDomainRepo(item *github.Repository) *domain.Repo {
	repo := &domain.Repo{
		ID:            item.GetID(),
		Name:          item.GetName(),
		FullName:      item.GetFullName(),
		Description:   item.GetDescription(),
		HTMLURL:       item.GetHTMLURL(),
		CloneURL:      item.GetCloneURL(),
		Language:      item.GetLanguage(),
		Stars:         item.GetStargazersCount(),
		Watchers:      item.GetWatchersCount(),
		Forks:         item.GetForksCount(),
		OpenIssues:    item.GetOpenIssuesCount(),
		SizeKB:        item.GetSize(),
		DefaultBranch: item.GetDefaultBranch(),
		Topics:        append([]string{}, item.Topics...),
		Visibility:    item.GetVisibility(),
		CreatedAt:     item.GetCreatedAt().Time,
		UpdatedAt:     item.GetUpdatedAt().Time,
		PushedAt:      item.GetPushedAt().Time,
	}

	if owner := item.GetOwner(); owner != nil {
		repo.Owner = domain.Owner{
			Login:     owner.GetLogin(),
			AvatarURL: owner.GetAvatarURL(),
			HTMLURL:   owner.GetHTMLURL(),
			Type:      owner.GetType(),
		}
	}

	if repo.Visibility == "" {
		repo.Visibility = "public"
		if item.GetPrivate() {
			repo.Visibility = "private"
		}
	}

	if lic := item.GetLicense(); lic != nil {
		repo.License = &domain.License{
			Key:    lic.GetKey(),
			Name:   lic.GetName(),
			SPDXID: lic.GetSPDXID(),
			URL:    lic.GetURL(),
		}
	}

	return repo
}
