package filter

import (
	"strings"

	"github-repo-finder/internal/domain"
)

// MatchesLevel 判断条目的难度等级是否等于请求的档位 (忽略大小写)
func MatchesLevel(item *domain.ScoredItem, difficulty string) bool {
	if item == nil || item.Difficulty == nil {
		return false
	}
	return strings.EqualFold(string(item.Difficulty.Level), strings.TrimSpace(difficulty))
}

// FilterByLevel 保留指定难度档位的条目，保持原顺序
func FilterByLevel(items []*domain.ScoredItem, difficulty string) []*domain.ScoredItem {
	filtered := make([]*domain.ScoredItem, 0, len(items))
	for _, item := range items {
		if MatchesLevel(item, difficulty) {
			filtered = append(filtered, item)
		}
	}
	return filtered
}
