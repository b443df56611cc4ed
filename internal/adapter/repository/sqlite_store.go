package repository

import (
	"context"
	"database/sql"
	"time"

	"github-repo-finder/internal/common"
	"github-repo-finder/internal/domain"

	_ "modernc.org/sqlite"
)

// 定长格式，保证按字符串排序等价于按时间排序
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS search_records (
		id TEXT PRIMARY KEY,
		query TEXT NOT NULL,
		language TEXT NOT NULL,
		domain TEXT NOT NULL,
		difficulty TEXT NOT NULL,
		has_good_first_issues INTEGER NOT NULL DEFAULT 0,
		total_count INTEGER NOT NULL DEFAULT 0,
		returned INTEGER NOT NULL DEFAULT 0,
		upstream_calls INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_search_records_created_at ON search_records(created_at DESC);
`

// SQLiteStore 本地单机模式下的搜索历史
type SQLiteStore struct {
	conn *sql.DB
}

// OpenSQLiteStore 打开或创建 SQLite 数据库，path 为 ":memory:" 时使用内存库
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, common.WrapError(common.ErrCodeDatabase, "打开 SQLite 失败", err)
	}
	// 内存库每个连接都是独立的库
	conn.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			_ = conn.Close()
			return nil, common.WrapError(common.ErrCodeDatabase, "设置 SQLite pragma 失败", err)
		}
	}

	if _, err := conn.Exec(sqliteSchema); err != nil {
		_ = conn.Close()
		return nil, common.WrapError(common.ErrCodeDatabase, "初始化表结构失败", err)
	}
	return &SQLiteStore{conn: conn}, nil
}

// Save 写入一条搜索记录
func (s *SQLiteStore) Save(ctx context.Context, record *domain.SearchRecord) error {
	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO search_records (id, query, language, domain, difficulty, has_good_first_issues,
			total_count, returned, upstream_calls, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.Query,
		record.Language,
		record.Domain,
		record.Difficulty,
		record.HasGoodFirstIssues,
		record.TotalCount,
		record.Returned,
		record.UpstreamCalls,
		createdAt.UTC().Format(sqliteTimeLayout),
	)
	if err != nil {
		return common.WrapError(common.ErrCodeDatabase, "保存搜索记录失败", err)
	}
	return nil
}

// Recent 按时间倒序取最近的搜索记录
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]*domain.SearchRecord, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT id, query, language, domain, difficulty, has_good_first_issues,
			total_count, returned, upstream_calls, created_at
		FROM search_records
		ORDER BY created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, common.WrapError(common.ErrCodeDatabase, "查询搜索记录失败", err)
	}
	defer rows.Close()

	records := make([]*domain.SearchRecord, 0, limit)
	for rows.Next() {
		var rec domain.SearchRecord
		var createdAt string
		if err := rows.Scan(
			&rec.ID,
			&rec.Query,
			&rec.Language,
			&rec.Domain,
			&rec.Difficulty,
			&rec.HasGoodFirstIssues,
			&rec.TotalCount,
			&rec.Returned,
			&rec.UpstreamCalls,
			&createdAt,
		); err != nil {
			return nil, common.WrapError(common.ErrCodeDatabase, "读取搜索记录失败", err)
		}
		rec.CreatedAt, _ = time.Parse(sqliteTimeLayout, createdAt)
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, common.WrapError(common.ErrCodeDatabase, "读取搜索记录失败", err)
	}
	return records, nil
}

// Close 关闭数据库
func (s *SQLiteStore) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}
