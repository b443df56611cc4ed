package repository

import (
	"fmt"
	"strings"

	"github-repo-finder/internal/port"
)

// Store 可关闭的搜索历史存储
type Store interface {
	port.HistoryStore
	Close() error
}

// Open 按驱动名创建搜索历史存储。driver 为空或 "none" 时返回 nil，表示不记录历史。
func Open(driver, dsn string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "none":
		return nil, nil
	case "postgres":
		store, err := NewPostgresStore(dsn)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "sqlite":
		if dsn == "" {
			dsn = "repofinder.db"
		}
		store, err := OpenSQLiteStore(dsn)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported history driver %q", driver)
	}
}
