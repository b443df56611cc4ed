package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github-repo-finder/internal/adapter/intent"
	"github-repo-finder/internal/common"
	"github-repo-finder/internal/domain"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const (
	defaultModel   = "gemini-2.5-flash-lite"
	extractTimeout = 8 * time.Second
	maxKeywords    = 5
)

// IntentExtractor 实现了 port.IntentExtractor 接口
// 没有配置 API Key 或 AI 调用失败时，退回到本地启发式解析
type IntentExtractor struct {
	client *genai.Client
	model  *genai.GenerativeModel
	logger *slog.Logger
}

// 定义一个内部结构体来接收 AI 返回的 JSON
type aiIntent struct {
	Language   string   `json:"language"`
	Domain     string   `json:"domain"`
	Difficulty string   `json:"difficulty"`
	Keywords   []string `json:"keywords"`
	QueryText  string   `json:"queryText"`
}

// NewIntentExtractor 初始化 Gemini 客户端。apiKey 为空时只使用启发式规则。
func NewIntentExtractor(ctx context.Context, apiKey, modelName string, logger *slog.Logger) (*IntentExtractor, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if apiKey == "" {
		logger.Warn("GEMINI_API_KEY 未配置，意图解析使用本地规则")
		return &IntentExtractor{logger: logger}, nil
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	if modelName == "" {
		modelName = defaultModel
	}
	model := client.GenerativeModel(modelName)
	// 强制要求返回 JSON，降低解析错误的概率
	model.ResponseMIMEType = "application/json"

	return &IntentExtractor{
		client: client,
		model:  model,
		logger: logger,
	}, nil
}

// Close 释放 Gemini 客户端
func (g *IntentExtractor) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

// Extract 解析搜索意图，永远返回一个可用结果
func (g *IntentExtractor) Extract(ctx context.Context, text string) domain.Intent {
	fallback := intent.Extract(text)
	if g == nil || g.model == nil || strings.TrimSpace(text) == "" {
		return fallback
	}

	ctx, cancel := context.WithTimeout(ctx, extractTimeout)
	defer cancel()

	prompt := fmt.Sprintf(`
Extract search intent from the user's GitHub repo prompt.
Return a JSON with:
- language: programming language or "all"
- domain: one of [web, mobile, desktop, backend, data, ai, devops, all]
- difficulty: beginner | intermediate | hardcore | all
- keywords: up to 5 useful search terms
- queryText: cleaned user prompt

Prompt: %s
Only return JSON.
`, text)

	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		g.logger.Warn("Gemini 调用失败，使用本地规则", "error", err)
		return fallback
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		g.logger.Warn("Gemini 返回内容为空，使用本地规则")
		return fallback
	}

	part, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		g.logger.Warn("Gemini 返回格式错误，使用本地规则")
		return fallback
	}

	parsed, err := parseIntentResponse(string(part))
	if err != nil {
		g.logger.Warn("Gemini 结果解析失败，使用本地规则", "error", err)
		return fallback
	}

	return mergeIntent(parsed, fallback)
}

// parseIntentResponse 从 AI 原文中抠出 JSON 并解析
// 即使 AI 返回 "```json { ... } ```"，也能找到中间的 { ... }
func parseIntentResponse(raw string) (*aiIntent, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end <= start {
		return nil, common.NewError(common.ErrCodeAIProcessing, fmt.Sprintf("无法提取 JSON, AI 原文: %s", raw))
	}

	var res aiIntent
	if err := json.Unmarshal([]byte(raw[start:end+1]), &res); err != nil {
		return nil, common.WrapError(common.ErrCodeAIProcessing, "JSON 解析失败", err)
	}
	return &res, nil
}

// mergeIntent AI 没给出或给出词表外的字段，逐个用本地规则补齐
func mergeIntent(parsed *aiIntent, fallback domain.Intent) domain.Intent {
	out := fallback
	if v := strings.ToLower(strings.TrimSpace(parsed.Language)); v != "" && !strings.ContainsAny(v, " \t:") {
		out.Language = v
	}
	if v, ok := intent.CanonicalDomain(parsed.Domain); ok {
		out.Domain = v
	}
	if v, ok := intent.CanonicalDifficulty(parsed.Difficulty); ok {
		out.Difficulty = v
	}
	if parsed.Keywords != nil {
		out.Keywords = parsed.Keywords[:min(len(parsed.Keywords), maxKeywords)]
	}
	if v := strings.TrimSpace(parsed.QueryText); v != "" {
		out.QueryText = v
	}
	return out
}
