package difficulty

import (
	"testing"

	"github-repo-finder/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScore_Examples(t *testing.T) {
	tests := []struct {
		name      string
		signal    domain.RepositorySignal
		wantScore int
		wantLevel domain.Level
	}{
		{
			name:      "小而冷门的 JavaScript 项目",
			signal:    domain.RepositorySignal{Stars: 5, Forks: 2, SizeKB: 300, Language: "javascript"},
			wantScore: 90,
			wantLevel: domain.LevelBeginner,
		},
		{
			name:      "大型热门 C++ 项目",
			signal:    domain.RepositorySignal{Stars: 2000, Forks: 800, OpenIssues: 400, SizeKB: 80000, Language: "c++"},
			wantScore: 0,
			wantLevel: domain.LevelHardcore,
		},
		{
			name:      "中等规模 Go 项目",
			signal:    domain.RepositorySignal{Stars: 300, Forks: 100, OpenIssues: 2, SizeKB: 20000, Language: "Go"},
			wantScore: 35,
			wantLevel: domain.LevelIntermediate,
		},
		{
			name:      "所有加分项叠加后截断到 100",
			signal:    domain.RepositorySignal{SizeKB: 10, Language: "Python", Topics: []string{"tutorial", "Good-First-Issue"}},
			wantScore: 100,
			wantLevel: domain.LevelBeginner,
		},
		{
			name:      "全部缺省值",
			signal:    domain.RepositorySignal{},
			wantScore: 82,
			wantLevel: domain.LevelBeginner,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Score(tt.signal)
			assert.Equal(t, tt.wantScore, res.Score)
			assert.Equal(t, tt.wantLevel, res.Level)
			assert.Equal(t, 100, res.MaxScore)
			assert.Nil(t, res.DomainAdjustment)
		})
	}
}

func TestScore_FactorOrder(t *testing.T) {
	res := Score(domain.RepositorySignal{Stars: 5, Forks: 2, SizeKB: 300, Language: "javascript", Topics: []string{"starter", "good-first-issue"}})

	names := make([]string, 0, len(res.Factors))
	for _, f := range res.Factors {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{
		"Small codebase",
		"Low popularity",
		"Low issue complexity",
		"Small & low-star project",
		"Has good first issues",
		"Beginner-friendly language",
		"Beginner topic hints",
	}, names)

	sum := 0
	for _, f := range res.Factors {
		sum += f.Weight
	}
	assert.Equal(t, 110, sum)
	assert.Equal(t, 100, res.Score)
}

func TestScore_LanguageTiers(t *testing.T) {
	base := domain.RepositorySignal{Stars: 2000, Forks: 800, OpenIssues: 400, SizeKB: 80000}
	tests := map[string]int{
		"HTML":    10,
		"Kotlin":  4,
		"Haskell": 0,
		"Elixir":  5,
		"":        2,
	}
	for lang, want := range tests {
		sig := base
		sig.Language = lang
		assert.Equal(t, want, Score(sig).Score, "language %q", lang)
	}
}

func TestScore_GoodFirstIssueSignal(t *testing.T) {
	base := domain.RepositorySignal{Stars: 2000, Forks: 800, OpenIssues: 400, SizeKB: 80000, Language: "c"}

	flagged := base
	flagged.HasGoodFirstIssues = true
	assert.Equal(t, 10, Score(flagged).Score)

	topic := base
	topic.Topics = []string{"good first issue"}
	assert.Equal(t, 10, Score(topic).Score)

	assert.Equal(t, 0, Score(base).Score)
}

func TestScore_Recommendations(t *testing.T) {
	withGood := Score(domain.RepositorySignal{SizeKB: 1, Language: "ruby", HasGoodFirstIssues: true})
	require.Equal(t, domain.LevelBeginner, withGood.Level)
	assert.Len(t, withGood.Recommendations, 2)

	withoutGood := Score(domain.RepositorySignal{SizeKB: 1, Language: "ruby"})
	assert.Len(t, withoutGood.Recommendations, 1)

	hard := Score(domain.RepositorySignal{Stars: 2000, Forks: 800, OpenIssues: 400, SizeKB: 80000})
	assert.Equal(t, "#dc3545", hard.Color)
	assert.Len(t, hard.Recommendations, 2)
}

func TestScore_RangeAndDeterminism(t *testing.T) {
	sizes := []int{0, 999, 1000, 4999, 9999, 49999, 50000, 1 << 30}
	stars := []int{0, 9, 49, 99, 999, 100000}
	issues := []int{0, 1, 50, 10000}
	for _, size := range sizes {
		for _, s := range stars {
			for _, oi := range issues {
				sig := domain.RepositorySignal{Stars: s, Forks: s / 2, OpenIssues: oi, SizeKB: size, Language: "python", Topics: []string{"examples"}}
				res := Score(sig)
				assert.GreaterOrEqual(t, res.Score, 0)
				assert.LessOrEqual(t, res.Score, 100)
				assert.Equal(t, LevelFor(res.Score, false), res.Level)
				assert.Equal(t, res, Score(sig))
			}
		}
	}
}

func TestLevelFor_Tables(t *testing.T) {
	assert.Equal(t, domain.LevelBeginner, LevelFor(50, false))
	assert.Equal(t, domain.LevelIntermediate, LevelFor(49, false))
	assert.Equal(t, domain.LevelIntermediate, LevelFor(30, false))
	assert.Equal(t, domain.LevelHardcore, LevelFor(29, false))

	assert.Equal(t, domain.LevelBeginner, LevelFor(80, true))
	assert.Equal(t, domain.LevelIntermediate, LevelFor(79, true))
	assert.Equal(t, domain.LevelIntermediate, LevelFor(50, true))
	assert.Equal(t, domain.LevelHardcore, LevelFor(49, true))
}
