package mongo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sngm3741/inquiry-api/internal/inquiry/application"
	"github.com/sngm3741/inquiry-api/internal/inquiry/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func sampleRecord(id string, second int) domain.Record {
	return domain.Record{
		ID: id,
		Inquiry: domain.Inquiry{
			Name:       "Ada",
			Email:      "ada@example.com",
			Message:    "hi",
			ReceivedAt: time.Date(2026, 10, 16, 0, 0, second, 0, time.UTC),
		},
		MailchimpSynced: true,
	}
}

func TestInquiryRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("append", func(mt *mtest.T) {
		repo := NewInquiryRepository(mt.DB, mt.Coll.Name())
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		if err := repo.Append(context.Background(), sampleRecord("1", 0)); err != nil {
			mt.Fatalf("Append: %v", err)
		}
	})

	mt.Run("append failure", func(mt *mtest.T) {
		repo := NewInquiryRepository(mt.DB, mt.Coll.Name())
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))

		err := repo.Append(context.Background(), sampleRecord("1", 0))
		var perr *domain.PersistenceError
		if !errors.As(err, &perr) {
			mt.Fatalf("error = %v, want *domain.PersistenceError", err)
		}
	})

	mt.Run("list", func(mt *mtest.T) {
		repo := NewInquiryRepository(mt.DB, mt.Coll.Name())
		ns := mt.DB.Name() + "." + mt.Coll.Name()
		first := mtest.CreateCursorResponse(1, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "1"},
			{Key: "name", Value: "Ada"},
			{Key: "email", Value: "ada@example.com"},
			{Key: "message", Value: "hi"},
			{Key: "receivedAt", Value: time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)},
			{Key: "mailchimpSynced", Value: true},
		})
		second := mtest.CreateCursorResponse(0, ns, mtest.NextBatch, bson.D{
			{Key: "_id", Value: "2"},
			{Key: "name", Value: "Bob"},
			{Key: "email", Value: "bob@example.com"},
			{Key: "message", Value: "yo"},
			{Key: "receivedAt", Value: time.Date(2026, 10, 16, 0, 0, 1, 0, time.UTC)},
			{Key: "mailchimpSynced", Value: false},
		})
		mt.AddMockResponses(first, second)

		records, err := repo.List(context.Background(), application.Paging{})
		if err != nil {
			mt.Fatalf("List: %v", err)
		}
		if len(records) != 2 {
			mt.Fatalf("records = %d, want 2", len(records))
		}
		if records[0].ID != "1" || !records[0].MailchimpSynced || records[1].Name != "Bob" {
			mt.Errorf("records = %+v", records)
		}
	})

	mt.Run("list past last page", func(mt *mtest.T) {
		repo := NewInquiryRepository(mt.DB, mt.Coll.Name())
		records, err := repo.List(context.Background(), application.Paging{Page: 3})
		if err != nil || len(records) != 0 {
			mt.Fatalf("List = %+v, %v; want empty", records, err)
		}
	})

	mt.Run("list page beyond any skip", func(mt *mtest.T) {
		repo := NewInquiryRepository(mt.DB, mt.Coll.Name())
		records, err := repo.List(context.Background(), application.Paging{Page: 184467440737095518, Limit: 50})
		if err != nil || len(records) != 0 {
			mt.Fatalf("List = %+v, %v; want empty", records, err)
		}
	})

	mt.Run("import", func(mt *mtest.T) {
		repo := NewInquiryRepository(mt.DB, mt.Coll.Name())
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 2},
			bson.E{Key: "nModified", Value: 0},
			bson.E{Key: "upserted", Value: bson.A{
				bson.D{{Key: "index", Value: 0}, {Key: "_id", Value: "1"}},
				bson.D{{Key: "index", Value: 1}, {Key: "_id", Value: "2"}},
			}},
		))

		n, err := repo.Import(context.Background(), []domain.Record{sampleRecord("1", 0), sampleRecord("2", 1)})
		if err != nil {
			mt.Fatalf("Import: %v", err)
		}
		if n != 2 {
			mt.Errorf("imported = %d, want 2", n)
		}
	})

	mt.Run("import nothing", func(mt *mtest.T) {
		repo := NewInquiryRepository(mt.DB, mt.Coll.Name())
		n, err := repo.Import(context.Background(), nil)
		if err != nil || n != 0 {
			mt.Fatalf("Import(nil) = %d, %v", n, err)
		}
	})
}

func TestDocumentRoundTrip(t *testing.T) {
	rec := sampleRecord("42", 3)
	rec.Organization = "Org"
	rec.Phone = "555"
	got := inquiryDocumentFromDomain(rec).toDomain()
	if got != rec {
		t.Errorf("round trip = %+v, want %+v", got, rec)
	}
}
