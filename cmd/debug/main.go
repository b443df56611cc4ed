package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github-repo-finder/internal/adapter/analyzer"
	"github-repo-finder/internal/adapter/github"
	"github-repo-finder/internal/adapter/intent"
	"github-repo-finder/internal/domain"
)

// 调试工具：直接调用上游搜索一页，打印每个项目的评分因子
func main() {
	query := flag.String("q", "good first issue", "搜索内容")
	domainName := flag.String("domain", "all", "评分时使用的领域")
	perPage := flag.Int("n", 5, "抓取条数")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	searcher, err := github.NewSearcher(github.Options{
		BaseURL: os.Getenv("GITHUB_API_URL"),
		Token:   os.Getenv("GITHUB_TOKEN"),
	})
	if err != nil {
		log.Fatalf("❌ GitHub 客户端初始化失败: %v", err)
	}

	fmt.Println("🔍 调试模式：抓取并评分一页项目")

	// 1. 本地规则解析意图
	in := intent.Extract(*query)
	fmt.Printf("🧭 意图: language=%s domain=%s difficulty=%s keywords=%v\n", in.Language, in.Domain, in.Difficulty, in.Keywords)

	filters := domain.SearchFilters{Language: in.Language, Domain: *domainName}.Normalize()
	q := github.BuildQuery(*query, nil, filters)
	fmt.Printf("📥 上游查询: %s\n", q)

	// 2. 抓取一页
	page, err := searcher.Search(ctx, q, github.SortBestMatch, github.OrderDesc, *perPage, 1)
	if err != nil {
		log.Printf("❌ 搜索失败: %v", err)
		return
	}
	fmt.Printf("✅ 共 %d 个结果，本页 %d 个\n", page.TotalCount, len(page.Items))

	// 3. 逐个打印评分因子
	for i, item := range analyzer.AnnotatePage(page.Items, filters.Domain) {
		d := item.Difficulty
		fmt.Printf("\n#%d %s (⭐ %d, %s)\n", i+1, item.FullName, item.Stars, item.Language)
		fmt.Printf("    等级: %s  评分: %d/%d\n", d.Level, d.Score, d.MaxScore)
		for _, f := range d.Factors {
			fmt.Printf("    %+4d  %-28s %s\n", f.Weight, f.Name, f.Value)
		}
		if d.DomainAdjustment != nil {
			fmt.Printf("    领域加分: %s %+d -> %s\n", d.DomainAdjustment.Domain, d.DomainAdjustment.Score, d.DomainAdjustment.Level)
		}
	}
}
