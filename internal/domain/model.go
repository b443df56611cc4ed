package domain

import (
	"strings"
	"time"
)

// Level 贡献难度等级
type Level string

const (
	LevelBeginner     Level = "Beginner"
	LevelIntermediate Level = "Intermediate"
	LevelHardcore     Level = "Hardcore"
)

// 过滤条件中的通配值
const All = "all"

// Owner 仓库所有者
type Owner struct {
	Login     string `json:"login"`
	AvatarURL string `json:"avatar_url"`
	HTMLURL   string `json:"html_url"`
	Type      string `json:"type"`
}

// License 仓库许可证
type License struct {
	Key    string `json:"key"`
	Name   string `json:"name"`
	SPDXID string `json:"spdx_id"`
	URL    string `json:"url"`
}

// Repo 代表上游搜索返回的一条原始仓库记录
type Repo struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	FullName      string    `json:"full_name"` // 例如 "gohugoio/hugo"
	Owner         Owner     `json:"owner"`
	Description   string    `json:"description"`
	HTMLURL       string    `json:"html_url"`
	CloneURL      string    `json:"clone_url"`
	Language      string    `json:"language"` // 为空表示没有主语言
	Stars         int       `json:"stargazers_count"`
	Watchers      int       `json:"watchers_count"`
	Forks         int       `json:"forks_count"`
	OpenIssues    int       `json:"open_issues_count"`
	SizeKB        int       `json:"size"`
	DefaultBranch string    `json:"default_branch"`
	Topics        []string  `json:"topics"`
	Visibility    string    `json:"visibility"`
	License       *License  `json:"license"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	PushedAt      time.Time `json:"pushed_at"`
}

// RepositorySignal 评分输入，每条上游记录构造一次
type RepositorySignal struct {
	Stars              int
	Forks              int
	OpenIssues         int
	SizeKB             int
	Language           string
	Topics             []string
	HasGoodFirstIssues bool
}

// DifficultyFactor 单个评分因子
type DifficultyFactor struct {
	Name   string `json:"name"`
	Weight int    `json:"weight"`
	Value  string `json:"value"`
}

// DomainAdjustment 领域加分记录
type DomainAdjustment struct {
	Domain string `json:"domain"`
	Score  int    `json:"score"`
	Level  Level  `json:"level"`
}

// DifficultyResult 难度分析结果
type DifficultyResult struct {
	Level            Level              `json:"level"`
	Score            int                `json:"score"` // 0-100
	Description      string             `json:"description"`
	Color            string             `json:"color"`
	Factors          []DifficultyFactor `json:"factors"`
	MaxScore         int                `json:"maxScore"`
	Recommendations  []string           `json:"recommendations"`
	DomainAdjustment *DomainAdjustment  `json:"domainAdjustment,omitempty"`
}

// Clone 深拷贝，Cohort 重新定级时不能改到调用方持有的结果
func (d *DifficultyResult) Clone() *DifficultyResult {
	if d == nil {
		return nil
	}
	c := *d
	c.Factors = append([]DifficultyFactor(nil), d.Factors...)
	c.Recommendations = append([]string(nil), d.Recommendations...)
	if d.DomainAdjustment != nil {
		adj := *d.DomainAdjustment
		c.DomainAdjustment = &adj
	}
	return &c
}

// ScoredItem 原始记录 + 难度分析
type ScoredItem struct {
	Repo
	HasGoodFirstIssues bool              `json:"has_good_first_issues"`
	Difficulty         *DifficultyResult `json:"difficulty"`
}

// SearchFilters 一次逻辑搜索（含所有补页）期间不可变
type SearchFilters struct {
	Language           string `json:"language"`
	Domain             string `json:"domain"`
	Difficulty         string `json:"difficulty"`
	HasGoodFirstIssues bool   `json:"has_good_first_issues"`
}

// Normalize 补全缺省值并统一大小写，返回新值
func (f SearchFilters) Normalize() SearchFilters {
	out := f
	out.Language = orAll(strings.TrimSpace(f.Language))
	out.Domain = strings.ToLower(orAll(strings.TrimSpace(f.Domain)))
	out.Difficulty = strings.ToLower(orAll(strings.TrimSpace(f.Difficulty)))
	return out
}

// HasDifficulty 是否指定了具体难度档位
func (f SearchFilters) HasDifficulty() bool {
	d := strings.ToLower(strings.TrimSpace(f.Difficulty))
	return d != "" && d != All
}

// ValidDifficulty 难度参数只能为空、all 或三个档位之一
func ValidDifficulty(d string) bool {
	switch strings.ToLower(strings.TrimSpace(d)) {
	case "", All, "beginner", "intermediate", "hardcore":
		return true
	}
	return false
}

func orAll(s string) string {
	if s == "" {
		return All
	}
	return s
}

// Intent 自然语言意图解析结果
type Intent struct {
	Language   string   `json:"language"`
	Domain     string   `json:"domain"`
	Difficulty string   `json:"difficulty"`
	Keywords   []string `json:"keywords"`
	QueryText  string   `json:"queryText"`
}

// UpstreamPage 上游返回的一页
type UpstreamPage struct {
	TotalCount        int
	IncompleteResults bool
	Items             []*Repo
}

// SearchRequest 对外暴露的搜索入参
type SearchRequest struct {
	QueryText string
	Keywords  []string
	Filters   SearchFilters
	Sort      string
	Order     string
	Page      int
	PerPage   int
}

// TrendingRequest 趋势搜索入参
type TrendingRequest struct {
	Since      string // daily / weekly / monthly
	Language   string
	Difficulty string
	Page       int
	PerPage    int
}

// SearchResult 对外暴露的搜索结果
type SearchResult struct {
	TotalCount        int           `json:"total_count"`
	IncompleteResults bool          `json:"incomplete_results"`
	Items             []*ScoredItem `json:"items"`
	Filters           SearchFilters `json:"filters"`
	Page              int           `json:"-"`
	PerPage           int           `json:"-"`
	UpstreamCalls     int           `json:"-"`
}

// SearchRecord 搜索历史，落库用
type SearchRecord struct {
	ID                 string    `json:"id" gorm:"primaryKey"`
	Query              string    `json:"query"`
	Language           string    `json:"language"`
	Domain             string    `json:"domain"`
	Difficulty         string    `json:"difficulty"`
	HasGoodFirstIssues bool      `json:"has_good_first_issues"`
	TotalCount         int       `json:"total_count"`
	Returned           int       `json:"returned"`
	UpstreamCalls      int       `json:"upstream_calls"`
	CreatedAt          time.Time `json:"created_at"`
}
