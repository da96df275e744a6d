package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kochabx/docvault/document"
)

// DocumentCollection 文档元数据集合名
const DocumentCollection = "documents"

// documentModel 文档在 MongoDB 中的存储结构
type documentModel struct {
	ID               string     `bson:"_id"`
	Owner            string     `bson:"owner"`
	OriginalFilename string     `bson:"originalFilename"`
	StoredFilename   string     `bson:"storedFilename"`
	MimeType         string     `bson:"mimeType"`
	Size             int64      `bson:"size"`
	ExpiryDate       *time.Time `bson:"expiryDate,omitempty"`
	WrappedKey       []byte     `bson:"wrappedKey"`
	AuthTag          []byte     `bson:"authTag"`
	BoundAD          bool       `bson:"boundAD"`
	CreatedAt        time.Time  `bson:"createdAt"`
	UpdatedAt        time.Time  `bson:"updatedAt"`
}

func fromRecord(r *document.Record) *documentModel {
	return &documentModel{
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

func (m *documentModel) toRecord() *document.Record {
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

// DocumentRepository 基于 MongoDB 的文档元数据仓库
type DocumentRepository struct {
	coll *mongo.Collection
}

var _ document.Repository = (*DocumentRepository)(nil)

// NewDocumentRepository 创建文档仓库
func NewDocumentRepository(db *mongo.Database) *DocumentRepository {
	return &DocumentRepository{coll: db.Collection(DocumentCollection)}
}

// EnsureIndexes 创建按所有者查询的索引和存储文件名唯一索引
func (r *DocumentRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "storedFilename", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	return err
}

// Create 插入文档记录
func (r *DocumentRepository) Create(ctx context.Context, rec *document.Record) error {
	_, err := r.coll.InsertOne(ctx, fromRecord(rec))
	return err
}

// FindOwned 按 ID 和所有者查询
func (r *DocumentRepository) FindOwned(ctx context.Context, id, owner string) (*document.Record, error) {
	var m documentModel
	err := r.coll.FindOne(ctx, bson.M{"_id": id, "owner": owner}).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, document.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return m.toRecord(), nil
}

// ListByOwner 按创建时间倒序列出所有者的文档
func (r *DocumentRepository) ListByOwner(ctx context.Context, owner string) ([]*document.Record, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"owner": owner}, opts)
	if err != nil {
		return nil, err
	}

	var models []documentModel
	if err := cursor.All(ctx, &models); err != nil {
		return nil, err
	}

	records := make([]*document.Record, 0, len(models))
	for i := range models {
		records = append(records, models[i].toRecord())
	}
	return records, nil
}

// DeleteOwned 按 ID 和所有者删除
func (r *DocumentRepository) DeleteOwned(ctx context.Context, id, owner string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id, "owner": owner})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return document.ErrNotFound
	}
	return nil
}
