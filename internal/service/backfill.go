package service

import (
	"context"
	"errors"

	"github-repo-finder/internal/adapter/analyzer"
	"github-repo-finder/internal/adapter/filter"
	"github-repo-finder/internal/common"
	"github-repo-finder/internal/domain"
)

// 第一页之外最多再补抓的页数。这是工作量上限，不是重试策略。
const maxExtraPages = 10

// pageFetcher 抓取上游指定页，查询条件在一次逻辑搜索内固定不变
type pageFetcher func(ctx context.Context, page int) (*domain.UpstreamPage, error)

// SearchAccumulator 补页过程的状态，只在一次 backfill 调用内存在
type SearchAccumulator struct {
	matched          []*domain.ScoredItem
	nextUpstreamPage int
	attempts         int
	incomplete       bool
}

// backfill 在已标注的第一页基础上，按难度档位过滤并继续向后翻页，
// 直到凑够 target 条、遇到空页或用完补页次数。
// 任意一次上游失败都会中止并返回错误，不返回部分结果。
func backfill(ctx context.Context, fetch pageFetcher, first []*domain.ScoredItem, startPage, target int, filters domain.SearchFilters) (*SearchAccumulator, error) {
	acc := &SearchAccumulator{
		matched:          filter.FilterByLevel(first, filters.Difficulty),
		nextUpstreamPage: startPage + 1,
	}

	for len(acc.matched) < target && acc.attempts < maxExtraPages {
		if err := ctx.Err(); err != nil {
			return nil, canceledOrTimeout(err)
		}

		page, err := fetch(ctx, acc.nextUpstreamPage)
		if err != nil {
			return nil, err
		}
		acc.nextUpstreamPage++
		acc.attempts++
		acc.incomplete = acc.incomplete || page.IncompleteResults

		if len(page.Items) == 0 {
			break
		}

		// 补页时不做 cohort 重新定级
		annotated := analyzer.AnnotatePage(page.Items, filters.Domain)
		acc.matched = append(acc.matched, filter.FilterByLevel(annotated, filters.Difficulty)...)
	}

	if len(acc.matched) > target {
		acc.matched = acc.matched[:target]
	}
	return acc, nil
}

func canceledOrTimeout(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return common.WrapError(common.ErrCodeTimeout, "Request timeout. Please try again.", err)
	}
	return common.WrapError(common.ErrCodeCanceled, "Search canceled.", err)
}
