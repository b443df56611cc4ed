package feishu

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github-repo-finder/internal/common"
	"github-repo-finder/internal/domain"
)

// Notifier 实现了 port.Notifier 接口
type Notifier struct {
	webhookURL string
	client     *http.Client
	maxRetries int
	retryDelay time.Duration
}

func NewNotifier(webhook string, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	if webhook == "" {
		logger.Warn("⚠️ 飞书 Webhook 为空，推送功能将无法工作！")
	}
	return &Notifier{
		webhookURL: webhook,
		client:     &http.Client{Timeout: 10 * time.Second},
		maxRetries: 3,
		retryDelay: 500 * time.Millisecond,
	}
}

// NotifyDigest 发送新手友好项目摘要卡片 (Schema 2.0)
func (n *Notifier) NotifyDigest(ctx context.Context, title string, items []*domain.ScoredItem) error {
	if n.webhookURL == "" {
		return common.NewError(common.ErrCodeNotification, "Webhook URL 为空")
	}

	// 1. 构造 Markdown 内容，每个项目一段
	var md strings.Builder
	for i, item := range items {
		if item == nil {
			continue
		}
		lang := item.Language
		if lang == "" {
			lang = "-"
		}
		score := 0
		if item.Difficulty != nil {
			score = item.Difficulty.Score
		}
		fmt.Fprintf(&md, "**%d. [%s](%s)**\n⭐ %d  |  **语言:** %s  |  **难度评分:** %d/100\n",
			i+1, item.FullName, item.HTMLURL, item.Stars, lang, score)
		if item.Description != "" {
			fmt.Fprintf(&md, "%s\n", item.Description)
		}
		md.WriteString("\n")
	}

	elements := []map[string]interface{}{
		{
			"tag":       "markdown",
			"content":   md.String(),
			"text_size": "normal",
		},
	}
	if len(items) > 0 && items[0] != nil {
		elements = append(elements, map[string]interface{}{
			"tag": "button",
			"text": map[string]interface{}{
				"tag":     "plain_text",
				"content": "🔗 查看第一个项目",
			},
			"type": "primary",
			"behaviors": []map[string]interface{}{
				{
					"type":        "open_url",
					"default_url": items[0].HTMLURL,
				},
			},
		})
	}

	// 2. 构造 Schema 2.0 JSON 结构
	payload := map[string]interface{}{
		"msg_type": "interactive",
		"card": map[string]interface{}{
			"schema": "2.0",
			"config": map[string]interface{}{
				"update_multi": true,
			},
			"header": map[string]interface{}{
				"title": map[string]interface{}{
					"tag":     "plain_text",
					"content": title,
				},
				"template": "green",
			},
			"body": map[string]interface{}{
				"direction": "vertical",
				"elements":  elements,
			},
		},
	}

	// 3. 发送请求 (带重试机制)
	body, err := json.Marshal(payload)
	if err != nil {
		return common.WrapError(common.ErrCodeNotification, "构造飞书消息失败", err)
	}
	err = common.Do(ctx, func() error {
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
		if reqErr != nil {
			return reqErr
		}
		req.Header.Set("Content-Type", "application/json")

		resp, postErr := n.client.Do(req)
		if postErr != nil {
			return postErr
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("飞书 API 报错: 状态码 %d", resp.StatusCode)
		}
		return nil
	},
		common.WithMaxRetries(n.maxRetries),
		common.WithInitialDelay(n.retryDelay),
	)
	if err != nil {
		return common.WrapError(common.ErrCodeNotification, "发送请求失败", err)
	}

	return nil
}
