package port_test

import (
	"context"
	"testing"

	"github-repo-finder/internal/adapter/feishu"
	"github-repo-finder/internal/adapter/gemini"
	"github-repo-finder/internal/adapter/github"
	"github-repo-finder/internal/adapter/repository"
	"github-repo-finder/internal/port"

	"github.com/stretchr/testify/assert"
)

// 编译期确认各适配器实现了对应接口
var (
	_ port.Searcher        = (*github.Searcher)(nil)
	_ port.IntentExtractor = (*gemini.IntentExtractor)(nil)
	_ port.HistoryStore    = (*repository.PostgresStore)(nil)
	_ port.HistoryStore    = (*repository.SQLiteStore)(nil)
	_ port.Notifier        = (*feishu.Notifier)(nil)
)

func TestIntentExtractorNeverFails(t *testing.T) {
	extractor, err := gemini.NewIntentExtractor(context.Background(), "", "", nil)
	assert.NoError(t, err)

	var ie port.IntentExtractor = extractor
	got := ie.Extract(context.Background(), "")
	assert.Equal(t, "all", got.Language)
	assert.Equal(t, "all", got.Domain)
	assert.Equal(t, "all", got.Difficulty)
}
