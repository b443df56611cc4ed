package intent

import (
	"regexp"
	"slices"
	"strings"

	"github-repo-finder/internal/domain"
)

const maxKeywords = 5

var (
	tokenSplitter = regexp.MustCompile(`[^a-z0-9+#.]+`)

	// 按顺序匹配，先命中者优先
	languages = []string{
		"javascript", "typescript", "python", "java", "go", "rust", "swift", "kotlin",
		"ruby", "php", "c", "c++", "c#", "scala", "r", "dart",
	}

	domainWords = []string{
		"web", "frontend", "backend", "mobile", "desktop", "data",
		"ai", "ml", "machine learning", "devops",
	}

	domainCanonical = map[string]string{
		"frontend":         "web",
		"ai":               "data",
		"ml":               "data",
		"machine learning": "data",
	}

	difficultyWords = []struct {
		level string
		words []string
	}{
		{"beginner", []string{"beginner", "easy", "starter", "basic", "simple", "newbie"}},
		{"intermediate", []string{"intermediate", "medium"}},
		{"hardcore", []string{"advanced", "expert", "hardcore", "complex", "professional"}},
	}

	stopWords = []string{
		"find", "me", "project", "projects", "repo", "repos", "repository", "repositories",
		"using", "with", "for", "a", "an", "the", "and", "or", "to", "in", "of", "on", "as",
		"level", "friendly",
	}
)

// Extract 基于固定词表的确定性意图解析，无状态、不会失败
func Extract(text string) domain.Intent {
	tokens := tokenize(text)
	joined := " " + strings.Join(tokens, " ") + " "

	result := domain.Intent{
		Language:   domain.All,
		Domain:     domain.All,
		Difficulty: domain.All,
		Keywords:   []string{},
		QueryText:  text,
	}

	for _, lang := range languages {
		if slices.Contains(tokens, lang) {
			result.Language = lang
			break
		}
	}

	for _, d := range domainWords {
		if strings.Contains(joined, " "+d+" ") {
			result.Domain = d
			if canonical, ok := domainCanonical[d]; ok {
				result.Domain = canonical
			}
			break
		}
	}

	for _, group := range difficultyWords {
		if slices.ContainsFunc(group.words, func(w string) bool { return slices.Contains(tokens, w) }) {
			result.Difficulty = group.level
			break
		}
	}

	for _, tok := range tokens {
		if isReserved(tok) || slices.Contains(result.Keywords, tok) {
			continue
		}
		result.Keywords = append(result.Keywords, tok)
		if len(result.Keywords) == maxKeywords {
			break
		}
	}

	return result
}

func tokenize(text string) []string {
	raw := tokenSplitter.Split(strings.ToLower(text), -1)
	tokens := make([]string, 0, len(raw))
	for _, tok := range raw {
		tok = strings.Trim(tok, ".")
		if tok != "" {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

func isReserved(tok string) bool {
	if slices.Contains(stopWords, tok) || slices.Contains(languages, tok) || slices.Contains(domainWords, tok) {
		return true
	}
	for _, group := range difficultyWords {
		if slices.Contains(group.words, tok) {
			return true
		}
	}
	return false
}

// CanonicalDifficulty 把难度词映射到 beginner / intermediate / hardcore / all，
// 不在词表中的值返回 false
func CanonicalDifficulty(value string) (string, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == domain.All {
		return v, true
	}
	for _, group := range difficultyWords {
		if slices.Contains(group.words, v) {
			return group.level, true
		}
	}
	return "", false
}

// CanonicalDomain 把领域词映射到规范名 (frontend -> web, ai/ml -> data)，
// 不在词表中的值返回 false
func CanonicalDomain(value string) (string, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == domain.All {
		return v, true
	}
	if !slices.Contains(domainWords, v) {
		return "", false
	}
	if canonical, ok := domainCanonical[v]; ok {
		return canonical, true
	}
	return v, true
}
