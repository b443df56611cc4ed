package filter

import (
	"testing"

	"github-repo-finder/internal/domain"

	"github.com/stretchr/testify/assert"
)

func scored(id int64, score int, level domain.Level) *domain.ScoredItem {
	return &domain.ScoredItem{
		Repo:       domain.Repo{ID: id},
		Difficulty: &domain.DifficultyResult{Score: score, Level: level},
	}
}

func TestFilterByLevel(t *testing.T) {
	items := []*domain.ScoredItem{
		scored(1, 90, domain.LevelBeginner),
		scored(2, 10, domain.LevelHardcore),
		{Repo: domain.Repo{ID: 3}},
		nil,
		scored(4, 70, domain.LevelBeginner),
	}

	tests := []struct {
		name       string
		difficulty string
		wantIDs    []int64
	}{
		{"大小写不敏感", "BEGINNER", []int64{1, 4}},
		{"hardcore", "hardcore", []int64{2}},
		{"没有匹配", "intermediate", []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterByLevel(items, tt.difficulty)
			ids := make([]int64, 0, len(got))
			for _, item := range got {
				ids = append(ids, item.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestMatchesLevel_Unannotated(t *testing.T) {
	assert.False(t, MatchesLevel(nil, "beginner"))
	assert.False(t, MatchesLevel(&domain.ScoredItem{}, "beginner"))
}
