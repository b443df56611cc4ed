package difficulty

import (
	"regexp"
	"slices"
	"strings"

	"github-repo-finder/internal/domain"
)

const maxScore = 100

// goodFirstIssuePattern 匹配 good-first-issue / good first issue 等 topic
var goodFirstIssuePattern = regexp.MustCompile(`(?i)good[- ]first[- ]issue`)

var (
	beginnerLanguages     = []string{"html", "css", "javascript", "python", "ruby", "php", "typescript"}
	intermediateLanguages = []string{"java", "c#", "go", "rust", "swift", "kotlin"}
	advancedLanguages     = []string{"c", "c++", "assembly", "haskell", "ocaml", "erlang"}
	beginnerTopicHints    = []string{"beginner", "tutorial", "starter", "examples"}
)

// thresholdTable 分数到等级的切分点
type thresholdTable struct {
	beginner     int
	intermediate int
}

// 基础评分和领域加分后的评分使用两套不同的切分点，不能合并
var (
	baseThresholds   = thresholdTable{beginner: 50, intermediate: 30}
	domainThresholds = thresholdTable{beginner: 80, intermediate: 50}
)

func (t thresholdTable) levelFor(score int) domain.Level {
	switch {
	case score >= t.beginner:
		return domain.LevelBeginner
	case score >= t.intermediate:
		return domain.LevelIntermediate
	default:
		return domain.LevelHardcore
	}
}

// LevelFor 按阈值表计算等级，domainAdjusted 为 true 时使用领域阈值表
func LevelFor(score int, domainAdjusted bool) domain.Level {
	if domainAdjusted {
		return domainThresholds.levelFor(score)
	}
	return baseThresholds.levelFor(score)
}

var levelDisplay = map[domain.Level]struct {
	description string
	color       string
}{
	domain.LevelBeginner:     {"Perfect for newcomers to open source", "#28a745"},
	domain.LevelIntermediate: {"Suitable for developers with some experience", "#ffc107"},
	domain.LevelHardcore:     {"Challenging for experienced developers", "#dc3545"},
}

// HasGoodFirstIssueTopic 判断 topic 列表中是否带有 good-first-issue 标记
func HasGoodFirstIssueTopic(topics []string) bool {
	for _, t := range topics {
		if goodFirstIssuePattern.MatchString(t) {
			return true
		}
	}
	return false
}

// Score 计算仓库的贡献难度。纯函数，不会失败。
// 各因子分值之和可能超过 100，结果直接截断到 [0,100]，不做归一化。
func Score(sig domain.RepositorySignal) *domain.DifficultyResult {
	score := 0
	factors := make([]domain.DifficultyFactor, 0, 8)
	add := func(name string, weight int, value string) {
		score += weight
		factors = append(factors, domain.DifficultyFactor{Name: name, Weight: weight, Value: value})
	}

	// 1. 代码规模：越小越容易上手
	switch {
	case sig.SizeKB < 1000:
		add("Small codebase", 25, "Small")
	case sig.SizeKB < 10000:
		add("Medium codebase", 15, "Medium")
	case sig.SizeKB < 50000:
		add("Large codebase", 8, "Large")
	default:
		add("Very large codebase", 0, "Very Large")
	}

	// 2. 热度：关注度越低越容易贡献
	engagement := sig.Stars + sig.Forks
	switch {
	case engagement < 10:
		add("Low popularity", 25, "Low")
	case engagement < 100:
		add("Moderate popularity", 15, "Moderate")
	case engagement < 1000:
		add("High popularity", 8, "High")
	default:
		add("Very high popularity", 0, "Very High")
	}

	// 3. Issue 比例
	issueRatio := float64(sig.OpenIssues) / float64(max(sig.Stars, 1))
	switch {
	case issueRatio < 0.01:
		add("Low issue complexity", 15, "Low")
	case issueRatio < 0.05:
		add("Moderate issue complexity", 10, "Moderate")
	case issueRatio < 0.1:
		add("High issue complexity", 5, "High")
	default:
		add("Very high issue complexity", 0, "Very High")
	}

	// 4. 小而冷门的项目额外加分
	if sig.SizeKB < 5000 && sig.Stars < 50 {
		add("Small & low-star project", 15, "Beginner-friendly")
	}

	// 5. good first issue
	if sig.HasGoodFirstIssues || HasGoodFirstIssueTopic(sig.Topics) {
		add("Has good first issues", 10, "Yes")
	} else {
		add("Has good first issues", 0, "No")
	}

	// 6. 语言
	if sig.Language == "" {
		add("No primary language", 2, "None")
	} else {
		lang := strings.ToLower(sig.Language)
		switch {
		case slices.Contains(beginnerLanguages, lang):
			add("Beginner-friendly language", 10, sig.Language)
		case slices.Contains(intermediateLanguages, lang):
			add("Intermediate language", 4, sig.Language)
		case slices.Contains(advancedLanguages, lang):
			add("Advanced language", 0, sig.Language)
		default:
			add("Unknown language difficulty", 5, sig.Language)
		}
	}

	// 7. 新手向 topic
	for _, t := range sig.Topics {
		if slices.Contains(beginnerTopicHints, strings.ToLower(t)) {
			add("Beginner topic hints", 10, "Topics")
			break
		}
	}

	score = clamp(score)
	level := LevelFor(score, false)
	display := levelDisplay[level]

	return &domain.DifficultyResult{
		Level:           level,
		Score:           score,
		Description:     display.description,
		Color:           display.color,
		Factors:         factors,
		MaxScore:        maxScore,
		Recommendations: recommendationsFor(level, sig.HasGoodFirstIssues),
	}
}

func recommendationsFor(level domain.Level, hasGoodFirstIssues bool) []string {
	switch level {
	case domain.LevelBeginner:
		recs := []string{"Great for first-time contributors"}
		if hasGoodFirstIssues {
			recs = append(recs, `Check issues labeled "good first issue"`)
		}
		return recs
	case domain.LevelIntermediate:
		return []string{
			"Good for developers with some experience",
			"Consider contributing to features or improvements",
		}
	default:
		return []string{
			"Challenging project for experienced developers",
			"Start with documentation or tests to get familiar",
		}
	}
}

func clamp(score int) int {
	return min(maxScore, max(0, score))
}
