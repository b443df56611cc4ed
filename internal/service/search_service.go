package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"github-repo-finder/internal/adapter/analyzer"
	"github-repo-finder/internal/adapter/filter"
	"github-repo-finder/internal/adapter/github"
	"github-repo-finder/internal/adapter/intent"
	"github-repo-finder/internal/common"
	"github-repo-finder/internal/domain"
	"github-repo-finder/internal/port"

	"github.com/google/uuid"
)

const (
	DefaultPerPage = 30
	MaxPerPage     = 100

	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// DigestConfig 新手项目摘要推送的参数
type DigestConfig struct {
	Language string
	Since    string
	Limit    int
}

// SearchService 搜索主流程：意图解析 -> 构造查询 -> 上游抓取 -> 难度标注 -> 定级或补页
type SearchService struct {
	searcher  port.Searcher
	extractor port.IntentExtractor
	history   port.HistoryStore
	notifier  port.Notifier
	logger    *slog.Logger
	digest    DigestConfig
	now       func() time.Time
}

// Option 配置 SearchService 的可选项
type Option func(*SearchService)

// WithDigest 设置摘要推送参数
func WithDigest(cfg DigestConfig) Option {
	return func(s *SearchService) {
		s.digest = cfg
	}
}

// WithClock 替换时间源，趋势查询的日期依赖它
func WithClock(now func() time.Time) Option {
	return func(s *SearchService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewSearchService 创建搜索服务。extractor/history/notifier 可以为 nil。
func NewSearchService(
	searcher port.Searcher,
	extractor port.IntentExtractor,
	history port.HistoryStore,
	notifier port.Notifier,
	logger *slog.Logger,
	opts ...Option,
) *SearchService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &SearchService{
		searcher:  searcher,
		extractor: extractor,
		history:   history,
		notifier:  notifier,
		logger:    logger,
		digest:    DigestConfig{Language: domain.All, Since: "weekly", Limit: 10},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NormalizePaging page 至少为 1，perPage 截断到 [1,100]，缺省 30
func NormalizePaging(page, perPage int) (int, int) {
	if perPage == 0 {
		perPage = DefaultPerPage
	}
	return max(page, 1), min(max(perPage, 1), MaxPerPage)
}

// TotalPages 至少为 1
func TotalPages(total, perPage int) int {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	return max(1, int(math.Ceil(float64(total)/float64(perPage))))
}

// Resolve 把自然语言解析成搜索请求。显式传入的过滤条件优先于意图解析结果。
func (s *SearchService) Resolve(ctx context.Context, text string, explicit domain.SearchFilters) domain.SearchRequest {
	var resolved domain.Intent
	if s.extractor != nil && strings.TrimSpace(text) != "" {
		resolved = s.extractor.Extract(ctx, text)
	}

	queryText := resolved.QueryText
	if queryText == "" {
		queryText = text
	}

	// 解析结果只接受词表内的难度和领域，其余按 all 处理
	intentDifficulty, ok := intent.CanonicalDifficulty(resolved.Difficulty)
	if !ok {
		intentDifficulty = domain.All
	}
	intentDomain, ok := intent.CanonicalDomain(resolved.Domain)
	if !ok {
		intentDomain = domain.All
	}
	explicitDomain := explicit.Domain
	if canonical, ok := intent.CanonicalDomain(explicitDomain); ok {
		explicitDomain = canonical
	}

	filters := domain.SearchFilters{
		Language:           firstSet(explicit.Language, resolved.Language),
		Domain:             firstSet(explicitDomain, intentDomain),
		Difficulty:         firstSet(explicit.Difficulty, intentDifficulty),
		HasGoodFirstIssues: explicit.HasGoodFirstIssues,
	}

	return domain.SearchRequest{
		QueryText: queryText,
		Keywords:  resolved.Keywords,
		Filters:   filters.Normalize(),
	}
}

// Search 执行一次逻辑搜索 (含补页)
func (s *SearchService) Search(ctx context.Context, req domain.SearchRequest) (*domain.SearchResult, error) {
	filters := req.Filters.Normalize()
	page, perPage := NormalizePaging(req.Page, req.PerPage)
	sortBy, order := github.ResolveSort(filters, req.Sort, req.Order)

	result, err := s.run(ctx, pipeline{
		query:      github.BuildQuery(req.QueryText, req.Keywords, filters),
		sort:       sortBy,
		order:      order,
		filters:    filters,
		page:       page,
		perPage:    perPage,
		localOrder: req.Sort == github.SortDifficulty,
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, req.QueryText, result)
	return result, nil
}

// Trending 最近一段时间有推送的仓库，按 star 排序
func (s *SearchService) Trending(ctx context.Context, req domain.TrendingRequest) (*domain.SearchResult, error) {
	filters := domain.SearchFilters{
		Language:   req.Language,
		Domain:     domain.All,
		Difficulty: req.Difficulty,
	}.Normalize()
	page, perPage := NormalizePaging(req.Page, req.PerPage)

	return s.run(ctx, pipeline{
		query:   github.TrendingQuery(filters.Language, req.Since, s.now()),
		sort:    github.SortStars,
		order:   github.OrderDesc,
		filters: filters,
		page:    page,
		perPage: perPage,
	})
}

// History 最近的搜索记录，没有配置存储时返回空列表
func (s *SearchService) History(ctx context.Context, limit int) ([]*domain.SearchRecord, error) {
	if s.history == nil {
		return []*domain.SearchRecord{}, nil
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	return s.history.Recent(ctx, min(limit, maxHistoryLimit))
}

// Digest 抓取新手友好的趋势项目并推送摘要
func (s *SearchService) Digest(ctx context.Context) (int, error) {
	if s.notifier == nil {
		return 0, common.NewError(common.ErrCodeNotification, "未配置通知通道")
	}

	limit := s.digest.Limit
	if limit <= 0 {
		limit = 10
	}
	result, err := s.Trending(ctx, domain.TrendingRequest{
		Since:      s.digest.Since,
		Language:   s.digest.Language,
		Difficulty: "beginner",
		PerPage:    limit,
	})
	if err != nil {
		return 0, err
	}
	if len(result.Items) == 0 {
		s.logger.Info("没有新手友好的趋势项目，跳过推送")
		return 0, nil
	}

	title := fmt.Sprintf("🌱 新手友好项目 (%s, %s)", s.digest.Since, result.Filters.Language)
	if err := s.notifier.NotifyDigest(ctx, title, result.Items); err != nil {
		return 0, err
	}
	s.logger.Info("摘要推送完成", "items", len(result.Items))
	return len(result.Items), nil
}

type pipeline struct {
	query      string
	sort       string
	order      string
	filters    domain.SearchFilters
	page       int
	perPage    int
	localOrder bool
}

// run 抓取第一页并标注，然后在唯一的分支点决定走 cohort 定级还是补页过滤
func (s *SearchService) run(ctx context.Context, p pipeline) (*domain.SearchResult, error) {
	fetch := func(ctx context.Context, page int) (*domain.UpstreamPage, error) {
		return s.searcher.Search(ctx, p.query, p.sort, p.order, p.perPage, page)
	}

	first, err := fetch(ctx, p.page)
	if err != nil {
		return nil, err
	}
	items := analyzer.AnnotatePage(first.Items, p.filters.Domain)

	result := &domain.SearchResult{
		TotalCount:        first.TotalCount,
		IncompleteResults: first.IncompleteResults,
		Filters:           p.filters,
		Page:              p.page,
		PerPage:           p.perPage,
		UpstreamCalls:     1,
	}

	if !p.filters.HasDifficulty() {
		result.Items = filter.LevelByCohort(items)
	} else {
		acc, err := backfill(ctx, fetch, items, p.page, p.perPage, p.filters)
		if err != nil {
			return nil, err
		}
		result.Items = acc.matched
		result.TotalCount = len(acc.matched)
		result.IncompleteResults = result.IncompleteResults || acc.incomplete
		result.UpstreamCalls += acc.attempts
	}

	if p.localOrder {
		sort.SliceStable(result.Items, func(i, j int) bool {
			return scoreOf(result.Items[i]) > scoreOf(result.Items[j])
		})
	}

	s.logger.Debug("search done",
		"query", p.query,
		"difficulty", p.filters.Difficulty,
		"returned", len(result.Items),
		"upstream_calls", result.UpstreamCalls,
	)
	return result, nil
}

// record 记录搜索历史，失败只打日志
func (s *SearchService) record(ctx context.Context, query string, result *domain.SearchResult) {
	if s.history == nil {
		return
	}
	rec := &domain.SearchRecord{
		ID:                 uuid.NewString(),
		Query:              query,
		Language:           result.Filters.Language,
		Domain:             result.Filters.Domain,
		Difficulty:         result.Filters.Difficulty,
		HasGoodFirstIssues: result.Filters.HasGoodFirstIssues,
		TotalCount:         result.TotalCount,
		Returned:           len(result.Items),
		UpstreamCalls:      result.UpstreamCalls,
		CreatedAt:          s.now().UTC(),
	}
	if err := s.history.Save(ctx, rec); err != nil {
		s.logger.Warn("保存搜索历史失败", "error", err)
	}
}

func scoreOf(item *domain.ScoredItem) int {
	if item == nil || item.Difficulty == nil {
		return 0
	}
	return item.Difficulty.Score
}

func firstSet(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" && !strings.EqualFold(v, domain.All) {
			return v
		}
	}
	return domain.All
}
