package mongo

import (
	"context"
	"math"

	"github.com/sngm3741/inquiry-api/internal/inquiry/application"
	"github.com/sngm3741/inquiry-api/internal/inquiry/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// InquiryRepository は問い合わせログを MongoDB のコレクションへ追記する実装。
type InquiryRepository struct {
	collection *mongo.Collection
}

// NewInquiryRepository は問い合わせコレクションを束縛したリポジトリを構築する。
func NewInquiryRepository(db *mongo.Database, collectionName string) *InquiryRepository {
	return &InquiryRepository{collection: db.Collection(collectionName)}
}

// EnsureIndexes は受付日時順の一覧取得に使うインデックスを用意する。
func (r *InquiryRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "receivedAt", Value: 1}},
	})
	return err
}

// Append は 1 件の問い合わせを挿入する。ID が空なら ObjectID を採番する。
func (r *InquiryRepository) Append(ctx context.Context, record domain.Record) error {
	doc := inquiryDocumentFromDomain(record)
	if doc.ID == "" {
		doc.ID = primitive.NewObjectID().Hex()
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return &domain.PersistenceError{Op: "insert", Err: err}
	}
	return nil
}

// List は受付順に問い合わせを返す。
func (r *InquiryRepository) List(ctx context.Context, paging application.Paging) ([]domain.Record, error) {
	page := paging.Page
	if page < 1 {
		page = 1
	}
	opts := options.Find().SetSort(bson.D{{Key: "receivedAt", Value: 1}, {Key: "_id", Value: 1}})
	if paging.Limit > 0 {
		if page-1 > math.MaxInt/paging.Limit {
			return []domain.Record{}, nil
		}
		opts.SetSkip(int64((page - 1) * paging.Limit)).SetLimit(int64(paging.Limit))
	} else if page > 1 {
		return []domain.Record{}, nil
	}

	cursor, err := r.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "find", Err: err}
	}
	defer cursor.Close(ctx)

	records := make([]domain.Record, 0)
	for cursor.Next(ctx) {
		var doc InquiryDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, &domain.PersistenceError{Op: "decode", Err: err}
		}
		records = append(records, doc.toDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, &domain.PersistenceError{Op: "find", Err: err}
	}
	return records, nil
}

// Import は既存の問い合わせを ID 単位で upsert し、反映件数を返す。
// 同じファイルを何度取り込んでも重複しない。
func (r *InquiryRepository) Import(ctx context.Context, records []domain.Record) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}
	models := make([]mongo.WriteModel, 0, len(records))
	for _, record := range records {
		doc := inquiryDocumentFromDomain(record)
		if doc.ID == "" {
			doc.ID = primitive.NewObjectID().Hex()
		}
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": doc.ID}).
			SetReplacement(doc).
			SetUpsert(true))
	}

	result, err := r.collection.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return 0, &domain.PersistenceError{Op: "import", Err: err}
	}
	return result.UpsertedCount + result.ModifiedCount, nil
}
