package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github-repo-finder/internal/adapter/feishu"
	"github-repo-finder/internal/adapter/gemini"
	"github-repo-finder/internal/adapter/github"
	"github-repo-finder/internal/adapter/repository"
	"github-repo-finder/internal/config"
	"github-repo-finder/internal/domain"
	"github-repo-finder/internal/port"
	"github-repo-finder/internal/service"
)

// application 组装好的依赖，closers 按创建的逆序关闭
type application struct {
	svc     *service.SearchService
	closers []io.Closer
}

func (a *application) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i].Close()
	}
}

// buildApplication 按配置初始化上游客户端、意图解析、历史存储和通知通道
func buildApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{}

	searcher, err := github.NewSearcher(github.Options{
		BaseURL:           cfg.GitHub.APIURL,
		Token:             cfg.GitHub.Token,
		Timeout:           cfg.GitHub.Timeout,
		MaxRetries:        cfg.GitHub.MaxRetries,
		RequestsPerSecond: cfg.GitHub.RequestsPerSecond,
		Logger:            logger,
	})
	if err != nil {
		return nil, fmt.Errorf("GitHub 客户端初始化失败: %w", err)
	}
	if cfg.GitHub.Token == "" {
		logger.Warn("GITHUB_TOKEN 未配置，匿名访问限制为 60 次/小时")
	}

	extractor, err := gemini.NewIntentExtractor(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, logger)
	if err != nil {
		return nil, fmt.Errorf("AI 初始化失败: %w", err)
	}
	app.closers = append(app.closers, extractor)

	var history port.HistoryStore
	store, err := repository.Open(cfg.History.Driver, cfg.History.DSN)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("DB 初始化失败: %w", err)
	}
	if store != nil {
		history = store
		app.closers = append(app.closers, store)
	}

	var notifier port.Notifier
	if cfg.Feishu.Webhook != "" {
		notifier = feishu.NewNotifier(cfg.Feishu.Webhook, logger)
	}

	app.svc = service.NewSearchService(searcher, extractor, history, notifier, logger,
		service.WithDigest(service.DigestConfig{
			Language: cfg.Digest.Language,
			Since:    cfg.Digest.Since,
			Limit:    cfg.Digest.Limit,
		}),
	)
	return app, nil
}

// printResults 控制台输出搜索结果
func printResults(w io.Writer, res *domain.SearchResult) {
	fmt.Fprintf(w, "\n================ [ 搜索结果 %d / 共 %d ] ================\n", len(res.Items), res.TotalCount)
	for i, item := range res.Items {
		level, score := "-", 0
		if item.Difficulty != nil {
			level, score = string(item.Difficulty.Level), item.Difficulty.Score
		}
		lang := item.Language
		if lang == "" {
			lang = "-"
		}
		fmt.Fprintf(w, "%2d. %-40s ⭐ %-7d %-12s %-12s %3d/100\n", i+1, item.FullName, item.Stars, lang, level, score)
		if desc := strings.TrimSpace(item.Description); desc != "" {
			fmt.Fprintf(w, "    %s\n", desc)
		}
	}
	fmt.Fprintln(w, "=========================================================")
}
