package db

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/kochabx/docvault/document"
)

// DocumentModel 文档元数据表结构
type DocumentModel struct {
	ID               string `gorm:"primaryKey;size:36"`
	Owner            string `gorm:"size:128;not null;index:idx_documents_owner_created,priority:1"`
	OriginalFilename string `gorm:"size:255;not null"`
	StoredFilename   string `gorm:"size:255;not null;uniqueIndex"`
	MimeType         string `gorm:"size:255;not null"`
	Size             int64  `gorm:"not null"`
	ExpiryDate       *time.Time
	WrappedKey       []byte    `gorm:"not null"`
	AuthTag          []byte    `gorm:"not null"`
	BoundAD          bool      `gorm:"column:bound_ad;not null;default:false"`
	CreatedAt        time.Time `gorm:"index:idx_documents_owner_created,priority:2"`
	UpdatedAt        time.Time
}

// TableName 表名
func (DocumentModel) TableName() string {
	return "documents"
}

func newDocumentModel(r *document.Record) *DocumentModel {
	return &DocumentModel{
		ID:               r.ID,
		Owner:            r.Owner,
		OriginalFilename: r.OriginalFilename,
		StoredFilename:   r.StoredFilename,
		MimeType:         r.MimeType,
		Size:             r.Size,
		ExpiryDate:       r.ExpiryDate,
		WrappedKey:       r.WrappedKey,
		AuthTag:          r.AuthTag,
		BoundAD:          r.BoundAD,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

func (m *DocumentModel) record() *document.Record {
	return &document.Record{
		ID:               m.ID,
		Owner:            m.Owner,
		OriginalFilename: m.OriginalFilename,
		StoredFilename:   m.StoredFilename,
		MimeType:         m.MimeType,
		Size:             m.Size,
		ExpiryDate:       m.ExpiryDate,
		WrappedKey:       m.WrappedKey,
		AuthTag:          m.AuthTag,
		BoundAD:          m.BoundAD,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

// DocumentRepository 基于 GORM 的文档元数据仓库
type DocumentRepository struct {
	db *gorm.DB
}

var _ document.Repository = (*DocumentRepository)(nil)

// NewDocumentRepository 创建文档仓库
func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// AutoMigrate 创建或更新文档表
func (r *DocumentRepository) AutoMigrate(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&DocumentModel{})
}

// Create 插入文档记录
func (r *DocumentRepository) Create(ctx context.Context, rec *document.Record) error {
	return r.db.WithContext(ctx).Create(newDocumentModel(rec)).Error
}

// FindOwned 按 ID 和所有者查询
func (r *DocumentRepository) FindOwned(ctx context.Context, id, owner string) (*document.Record, error) {
	var m DocumentModel
	err := r.db.WithContext(ctx).
		Where("id = ? AND owner = ?", id, owner).
		Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, document.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return m.record(), nil
}

// ListByOwner 按创建时间倒序列出所有者的文档
func (r *DocumentRepository) ListByOwner(ctx context.Context, owner string) ([]*document.Record, error) {
	var models []DocumentModel
	err := r.db.WithContext(ctx).
		Where("owner = ?", owner).
		Order("created_at DESC").
		Order("id DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	records := make([]*document.Record, 0, len(models))
	for i := range models {
		records = append(records, models[i].record())
	}
	return records, nil
}

// DeleteOwned 按 ID 和所有者删除
func (r *DocumentRepository) DeleteOwned(ctx context.Context, id, owner string) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND owner = ?", id, owner).
		Delete(&DocumentModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return document.ErrNotFound
	}
	return nil
}
