package feishu

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github-repo-finder/internal/common"
	"github-repo-finder/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockFeishuServer 创建模拟的飞书 Webhook 服务器
func mockFeishuServer(t *testing.T, statusCode int, calls *atomic.Int32, validatePayload func(*testing.T, map[string]interface{})) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			calls.Add(1)
		}
		// 验证请求方法
		assert.Equal(t, http.MethodPost, r.Method)

		// 验证 Content-Type
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		// 读取并解析请求体
		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)

		var payload map[string]interface{}
		assert.NoError(t, json.Unmarshal(body, &payload))

		// 如果提供了验证函数，执行验证
		if validatePayload != nil {
			validatePayload(t, payload)
		}

		// 返回指定的状态码
		w.WriteHeader(statusCode)
		w.Write([]byte(`{"code": 0, "msg": "success"}`))
	}))
	t.Cleanup(server.Close)
	return server
}

func digestItems() []*domain.ScoredItem {
	return []*domain.ScoredItem{
		{
			Repo: domain.Repo{
				FullName:    "alice/tiny-cli",
				HTMLURL:     "https://github.com/alice/tiny-cli",
				Description: "A tiny CLI with special chars: <>&\"'",
				Stars:       12,
				Language:    "Go",
			},
			Difficulty: &domain.DifficultyResult{Level: domain.LevelBeginner, Score: 86},
		},
		{
			Repo: domain.Repo{
				FullName: "bob/学习笔记",
				HTMLURL:  "https://github.com/bob/notes",
				Stars:    3,
			},
			Difficulty: &domain.DifficultyResult{Level: domain.LevelBeginner, Score: 92},
		},
	}
}

func TestNotifier_NotifyDigest(t *testing.T) {
	server := mockFeishuServer(t, http.StatusOK, nil, func(t *testing.T, payload map[string]interface{}) {
		// 验证消息类型
		assert.Equal(t, "interactive", payload["msg_type"])

		// 验证卡片结构
		card, ok := payload["card"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "2.0", card["schema"])

		// 验证标题
		header := card["header"].(map[string]interface{})
		title := header["title"].(map[string]interface{})
		assert.Equal(t, "🌱 新手友好项目", title["content"])

		// 验证 body
		body := card["body"].(map[string]interface{})
		elements := body["elements"].([]interface{})
		require.Len(t, elements, 2) // markdown + button

		content := elements[0].(map[string]interface{})["content"].(string)
		assert.Contains(t, content, "alice/tiny-cli")
		assert.Contains(t, content, "86/100")
		assert.Contains(t, content, "**语言:** Go")
		assert.Contains(t, content, "学习笔记")
		assert.Contains(t, content, "**语言:** -")

		button := elements[1].(map[string]interface{})
		behaviors := button["behaviors"].([]interface{})
		assert.Equal(t, "https://github.com/alice/tiny-cli", behaviors[0].(map[string]interface{})["default_url"])
	})

	notifier := NewNotifier(server.URL, nil)
	assert.NoError(t, notifier.NotifyDigest(context.Background(), "🌱 新手友好项目", digestItems()))
}

func TestNotifier_NotifyDigest_ErrorCases(t *testing.T) {
	t.Run("Webhook 为空", func(t *testing.T) {
		notifier := NewNotifier("", nil)
		err := notifier.NotifyDigest(context.Background(), "x", digestItems())
		assert.Equal(t, common.ErrCodeNotification, common.CodeOf(err))
	})

	t.Run("服务端持续报错会重试", func(t *testing.T) {
		var calls atomic.Int32
		server := mockFeishuServer(t, http.StatusInternalServerError, &calls, nil)

		notifier := NewNotifier(server.URL, nil)
		notifier.retryDelay = time.Millisecond

		err := notifier.NotifyDigest(context.Background(), "x", digestItems())
		require.Error(t, err)
		assert.Equal(t, common.ErrCodeNotification, common.CodeOf(err))
		assert.Contains(t, err.Error(), "状态码 500")
		assert.Equal(t, int32(4), calls.Load())
	})

	t.Run("context 已取消", func(t *testing.T) {
		server := mockFeishuServer(t, http.StatusOK, nil, nil)
		notifier := NewNotifier(server.URL, nil)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.Error(t, notifier.NotifyDigest(ctx, "x", digestItems()))
	})
}
