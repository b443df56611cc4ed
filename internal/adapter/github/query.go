package github

import (
	"strings"
	"time"

	"github-repo-finder/internal/domain"
)

const (
	maxKeywords = 5
	searchScope = "in:name,description,readme"

	SortBestMatch  = "best-match"
	SortStars      = "stars"
	SortUpdated    = "updated"
	SortDifficulty = "difficulty"
	OrderDesc      = "desc"
)

// 领域 -> 上游查询的 OR 子句
var domainClauses = map[string]string{
	"web":     "react OR vue OR angular OR svelte",
	"mobile":  "react-native OR flutter OR swift OR kotlin",
	"backend": "api OR server OR backend",
	"data":    "machine-learning OR data OR ai OR ml",
}

// 查询构造时的领域别名
var domainAliases = map[string]string{
	"frontend": "web",
	"ai":       "data",
}

// BuildQuery 拼接上游全文检索语句。纯函数，不修改 filters。
func BuildQuery(freeText string, keywords []string, filters domain.SearchFilters) string {
	parts := make([]string, 0, 8)

	if text := strings.TrimSpace(freeText); text != "" {
		parts = append(parts, text)
	}

	if kw := joinKeywords(keywords); kw != "" {
		parts = append(parts, kw)
	}

	if lang := strings.TrimSpace(filters.Language); lang != "" && lang != domain.All {
		parts = append(parts, "language:"+lang)
	}

	if d := strings.ToLower(strings.TrimSpace(filters.Domain)); d != "" && d != domain.All {
		if alias, ok := domainAliases[d]; ok {
			d = alias
		}
		if clause, ok := domainClauses[d]; ok {
			parts = append(parts, clause)
		}
	}

	// 提前把上游排序往目标难度档位上偏，本地再做精确过滤
	switch strings.ToLower(strings.TrimSpace(filters.Difficulty)) {
	case "beginner":
		parts = append(parts, "stars:<200", "forks:<200", "size:<50000")
	case "hardcore":
		parts = append(parts, "stars:>500", "size:>20000")
	}

	if filters.HasGoodFirstIssues {
		parts = append(parts, `topic:"good-first-issue"`)
	}

	parts = append(parts, searchScope)
	return strings.Join(parts, " ")
}

// ResolveSort 指定了 beginner/hardcore 时覆盖调用方的排序，否则原样透传
func ResolveSort(filters domain.SearchFilters, sort, order string) (string, string) {
	switch strings.ToLower(strings.TrimSpace(filters.Difficulty)) {
	case "beginner":
		return SortUpdated, OrderDesc
	case "hardcore":
		return SortStars, OrderDesc
	}
	return sort, order
}

// TrendingQuery 构造趋势查询：语言限定 + 最近推送时间
func TrendingQuery(language, since string, now time.Time) string {
	var from time.Time
	switch since {
	case "weekly":
		from = now.AddDate(0, 0, -7)
	case "monthly":
		from = now.AddDate(0, -1, 0)
	default:
		from = now.AddDate(0, 0, -1)
	}

	base := BuildQuery("", nil, domain.SearchFilters{Language: language, Domain: domain.All, Difficulty: domain.All})
	return base + " pushed:>=" + from.Format("2006-01-02")
}

func joinKeywords(keywords []string) string {
	kept := make([]string, 0, maxKeywords)
	for _, kw := range keywords {
		if len(kept) == maxKeywords {
			break
		}
		if kw = strings.TrimSpace(kw); kw != "" {
			kept = append(kept, kw)
		}
	}
	return strings.Join(kept, " ")
}
