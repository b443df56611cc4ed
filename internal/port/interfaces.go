package port

import (
	"context"

	"github-repo-finder/internal/domain"
)

// Searcher (上游搜索): 分页全文检索 GitHub 仓库
// 失败时返回带错误码的 common.AppError，调用方据此区分认证/限流/查询错误/超时
type Searcher interface {
	Search(ctx context.Context, query, sort, order string, perPage, page int) (*domain.UpstreamPage, error)
}

// IntentExtractor (意图解析): 把自然语言转成结构化过滤条件
// 永远不会失败，内部出错时退回到本地启发式规则
type IntentExtractor interface {
	Extract(ctx context.Context, text string) domain.Intent
}

// HistoryStore (搜索历史): 记录每次完成的搜索
type HistoryStore interface {
	Save(ctx context.Context, record *domain.SearchRecord) error
	Recent(ctx context.Context, limit int) ([]*domain.SearchRecord, error)
}

// Notifier (信使): 推送新手友好项目摘要到飞书
type Notifier interface {
	NotifyDigest(ctx context.Context, title string, items []*domain.ScoredItem) error
}
