package analyzer

import (
	"github-repo-finder/internal/adapter/difficulty"
	"github-repo-finder/internal/domain"
)

// Annotate 为一条上游记录计算难度，返回新的 ScoredItem
func Annotate(repo *domain.Repo, domainName string) *domain.ScoredItem {
	if repo == nil {
		return nil
	}
	return Ensure(&domain.ScoredItem{Repo: *repo}, domainName)
}

// Ensure 保证条目带有难度分析。已经带有结果的条目原样返回，不会重新计算。
func Ensure(item *domain.ScoredItem, domainName string) *domain.ScoredItem {
	if item == nil || item.Difficulty != nil {
		return item
	}

	hasGood := item.HasGoodFirstIssues || difficulty.HasGoodFirstIssueTopic(item.Topics)
	signal := domain.RepositorySignal{
		Stars:              item.Stars,
		Forks:              item.Forks,
		OpenIssues:         item.OpenIssues,
		SizeKB:             item.SizeKB,
		Language:           item.Language,
		Topics:             item.Topics,
		HasGoodFirstIssues: hasGood,
	}

	base := difficulty.Score(signal)
	out := *item
	out.HasGoodFirstIssues = hasGood
	out.Difficulty = difficulty.AdjustForDomain(base, domainName, item.Language)
	return &out
}

// AnnotatePage 按原顺序为一页记录计算难度
func AnnotatePage(repos []*domain.Repo, domainName string) []*domain.ScoredItem {
	items := make([]*domain.ScoredItem, 0, len(repos))
	for _, repo := range repos {
		if repo == nil {
			continue
		}
		items = append(items, Annotate(repo, domainName))
	}
	return items
}
