package filter

import (
	"sort"

	"github-repo-finder/internal/domain"
)

const (
	beginnerShare = 0.35 // 分数最高的 35% 标记为 Beginner
	hardcoreShare = 0.20 // 分数最低的 20% 标记为 Hardcore
)

// LevelByCohort 按同一页内的相对排名重新分配难度等级。
// 只修改 Level，分数、条目数量和顺序都保持不变；返回的是新切片和新的难度结果。
func LevelByCohort(items []*domain.ScoredItem) []*domain.ScoredItem {
	n := len(items)
	if n == 0 {
		return items
	}

	ranked := make([]int, n)
	for i := range ranked {
		ranked[i] = i
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		return scoreOf(items[ranked[a]]) > scoreOf(items[ranked[b]])
	})

	beginnerCut := int(float64(n) * beginnerShare)
	hardcoreStart := n - int(float64(n)*hardcoreShare)

	levels := make([]domain.Level, n)
	for rank, idx := range ranked {
		switch {
		case rank < beginnerCut:
			levels[idx] = domain.LevelBeginner
		case rank >= hardcoreStart:
			levels[idx] = domain.LevelHardcore
		default:
			levels[idx] = domain.LevelIntermediate
		}
	}

	out := make([]*domain.ScoredItem, n)
	for i, item := range items {
		if item == nil {
			continue
		}
		relabeled := *item
		if item.Difficulty != nil {
			relabeled.Difficulty = item.Difficulty.Clone()
		} else {
			relabeled.Difficulty = estimatedDifficulty()
		}
		relabeled.Difficulty.Level = levels[i]
		out[i] = &relabeled
	}
	return out
}

func scoreOf(item *domain.ScoredItem) int {
	if item == nil || item.Difficulty == nil {
		return 0
	}
	return item.Difficulty.Score
}

// 未评分的条目给一个占位结果，与评分为 0 的条目同样参与排名
func estimatedDifficulty() *domain.DifficultyResult {
	return &domain.DifficultyResult{
		Score:           50,
		Description:     "Estimated",
		Color:           "#9ca3af",
		Factors:         []domain.DifficultyFactor{},
		MaxScore:        100,
		Recommendations: []string{},
	}
}
