package repository

import (
	"context"
	"fmt"

	"github-repo-finder/internal/common"
	"github-repo-finder/internal/domain"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// PostgresStore 实现了 port.HistoryStore 接口
type PostgresStore struct {
	db *gorm.DB
}

// NewPostgresStore 初始化数据库连接并自动迁移表结构
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	// 1. 连接数据库
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, common.WrapError(common.ErrCodeDatabase, "连接数据库失败", err)
	}

	// 2. 自动迁移，创建 search_records 表
	if err := db.AutoMigrate(&domain.SearchRecord{}); err != nil {
		return nil, common.WrapError(common.ErrCodeDatabase, "数据库迁移失败", err)
	}

	return NewPostgresStoreWithDB(db), nil
}

// NewPostgresStoreWithDB 使用已有连接，不做迁移
func NewPostgresStoreWithDB(db *gorm.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Save 写入一条搜索记录
func (r *PostgresStore) Save(ctx context.Context, record *domain.SearchRecord) error {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return common.WrapError(common.ErrCodeDatabase, fmt.Sprintf("保存搜索记录 %s 失败", record.ID), err)
	}
	return nil
}

// Recent 按时间倒序取最近的搜索记录
func (r *PostgresStore) Recent(ctx context.Context, limit int) ([]*domain.SearchRecord, error) {
	var records []*domain.SearchRecord
	err := r.db.WithContext(ctx).
		Order("created_at desc").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, common.WrapError(common.ErrCodeDatabase, "查询搜索记录失败", err)
	}
	return records, nil
}

// Close 关闭底层连接
func (r *PostgresStore) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
