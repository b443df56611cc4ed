package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github-repo-finder/internal/api"
	"github-repo-finder/internal/common"
	"github-repo-finder/internal/config"
	"github-repo-finder/internal/domain"

	"github.com/robfig/cron/v3"
)

func main() {
	// 1. 定义命令行参数
	mode := flag.String("mode", "serve", "运行模式: serve (HTTP 服务), search (单次搜索) 或 digest (推送新手项目摘要)")
	query := flag.String("q", "", "搜索内容，用大白话就行 (仅在 search 模式下有效)")
	difficulty := flag.String("difficulty", "all", "难度过滤: all | beginner | intermediate | hardcore (仅在 search 模式下有效)")
	perPage := flag.Int("n", 10, "返回条数 (仅在 search 模式下有效)")
	cronSpec := flag.String("cron", "", "digest 模式下的 cron 表达式，为空表示只执行一次")
	configPath := flag.String("config", "", "配置文件路径，默认查找 ./config.yaml")
	flag.Parse()

	// 2. 读取配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ 配置加载失败: %v", err)
	}
	logger := cfg.Logging.NewLogger()
	slog.SetDefault(logger)

	// 收到 Ctrl+C 时取消所有进行中的请求
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. 初始化依赖
	app, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	defer app.Close()

	// 4. 根据模式分流
	switch *mode {
	case "serve":
		err = runServer(ctx, app, cfg, logger)
	case "search":
		err = runSearch(ctx, app, *query, *difficulty, *perPage)
	case "digest":
		spec := *cronSpec
		if spec == "" {
			err = runDigest(ctx, app)
		} else {
			err = runScheduledDigest(ctx, app, spec)
		}
	default:
		fmt.Println("❌ 未知模式，请使用 -mode=serve、-mode=search 或 -mode=digest")
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
}

// --- 服务模式逻辑 ---
func runServer(ctx context.Context, app *application, cfg *config.Config, logger *slog.Logger) error {
	srv := newServer(app, cfg, logger)

	// 配置了 digest.cron 时，服务模式下同时定时推送
	if cfg.Digest.Cron != "" {
		c, err := startDigestCron(ctx, app, cfg.Digest.Cron)
		if err != nil {
			return err
		}
		defer c.Stop()
	}

	errCh := make(chan error, 1)
	go func() {
		fmt.Printf("🚀 服务已启动: http://localhost:%d\n", cfg.Server.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		fmt.Println("\n👋 收到停止信号，正在退出...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newServer 访问日志和错误日志使用配置好的 logger
func newServer(app *application, cfg *config.Config, logger *slog.Logger) *http.Server {
	handler := api.NewRouter(app.svc, api.RouterOptions{
		CORSOrigins:    cfg.Server.CORSOrigins,
		RequestTimeout: cfg.Server.RequestTimeout,
		Logger:         logger,
	})
	return &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Server.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}
}

// --- 搜索模式逻辑 ---
func runSearch(ctx context.Context, app *application, query, difficulty string, perPage int) error {
	if query == "" {
		fmt.Println("⚠️ 请输入你的需求，用大白话就行。")
		fmt.Println("例如: -q '适合新手的 Python 机器学习项目' 或 -q 'rust cli tool' -difficulty=beginner")
		return nil
	}

	if !domain.ValidDifficulty(difficulty) {
		return common.NewError(common.ErrCodeInvalidInput, "无效的难度: "+difficulty+" (可选 all | beginner | intermediate | hardcore)")
	}

	fmt.Printf("🤖 正在解析需求并搜索: [%s] ...\n", query)
	req := app.svc.Resolve(ctx, query, domain.SearchFilters{Difficulty: difficulty})
	req.PerPage = perPage

	res, err := app.svc.Search(ctx, req)
	if err != nil {
		if common.IsCode(err, common.ErrCodeCanceled) {
			fmt.Println("👋 搜索已取消")
			return nil
		}
		return fmt.Errorf("搜索失败: %w", err)
	}

	printResults(os.Stdout, res)
	return nil
}

// --- 摘要推送逻辑 ---
func runDigest(ctx context.Context, app *application) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	fmt.Println("📥 正在抓取新手友好的趋势项目...")
	n, err := app.svc.Digest(ctx)
	if err != nil {
		return fmt.Errorf("摘要推送失败: %w", err)
	}
	fmt.Printf("🎉 推送完成，共 %d 个项目\n", n)
	return nil
}

// runScheduledDigest 按 cron 表达式定时推送，直到收到停止信号
func runScheduledDigest(ctx context.Context, app *application, spec string) error {
	c, err := startDigestCron(ctx, app, spec)
	if err != nil {
		return err
	}
	fmt.Printf("⏰ 定时推送已启动: %s\n", spec)
	fmt.Println("按下 Ctrl+C 可以优雅停止程序")

	<-ctx.Done()
	fmt.Println("\n👋 收到停止信号，正在退出...")
	<-c.Stop().Done()
	return nil
}

func startDigestCron(ctx context.Context, app *application, spec string) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	if _, err := c.AddFunc(spec, func() {
		if err := runDigest(ctx, app); err != nil {
			log.Printf("❌ %v", err)
		}
	}); err != nil {
		return nil, fmt.Errorf("cron 表达式无效 %q: %w", spec, err)
	}
	c.Start()
	return c, nil
}
