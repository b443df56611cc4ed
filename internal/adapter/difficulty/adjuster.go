package difficulty

import (
	"slices"
	"strings"

	"github-repo-finder/internal/domain"
)

const domainBonus = 10

// 领域 -> 可获得加分的语言
var domainLanguageBonus = map[string][]string{
	"web":  {"html", "css", "javascript", "typescript"},
	"data": {"python", "r", "scala", "julia"},
}

// AdjustForDomain 按请求的领域对基础评分做加分并重新定级。
// domain 为 "all" 或空时原样返回 base；否则返回新的结果，base 不会被修改。
// 加分后使用更严格的领域阈值表 (80/50)，描述、颜色和建议沿用基础结果。
func AdjustForDomain(base *domain.DifficultyResult, domainName, language string) *domain.DifficultyResult {
	d := strings.ToLower(strings.TrimSpace(domainName))
	if base == nil || d == "" || d == domain.All {
		return base
	}

	bonus := 0
	if slices.Contains(domainLanguageBonus[d], strings.ToLower(language)) {
		bonus = domainBonus
	}

	adjusted := base.Clone()
	adjusted.Score = clamp(base.Score + bonus)
	adjusted.Level = LevelFor(adjusted.Score, true)
	adjusted.DomainAdjustment = &domain.DomainAdjustment{
		Domain: domainName,
		Score:  bonus,
		Level:  adjusted.Level,
	}
	return adjusted
}
