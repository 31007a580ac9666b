package mongo

import (
	"time"

	"github.com/sngm3741/inquiry-api/internal/inquiry/domain"
)

// InquiryDocument は MongoDB 上での問い合わせスキーマを Go 構造体として表現したもの。
type InquiryDocument struct {
	ID              string    `bson:"_id"`
	Name            string    `bson:"name"`
	Email           string    `bson:"email"`
	Organization    string    `bson:"organization,omitempty"`
	Phone           string    `bson:"phone,omitempty"`
	Message         string    `bson:"message"`
	ReceivedAt      time.Time `bson:"receivedAt"`
	MailchimpSynced bool      `bson:"mailchimpSynced"`
}

func inquiryDocumentFromDomain(record domain.Record) InquiryDocument {
	return InquiryDocument{
		ID:              record.ID,
		Name:            record.Name,
		Email:           record.Email,
		Organization:    record.Organization,
		Phone:           record.Phone,
		Message:         record.Message,
		ReceivedAt:      record.ReceivedAt.UTC(),
		MailchimpSynced: record.MailchimpSynced,
	}
}

func (d InquiryDocument) toDomain() domain.Record {
	return domain.Record{
		ID: d.ID,
		Inquiry: domain.Inquiry{
			Name:         d.Name,
			Email:        d.Email,
			Organization: d.Organization,
			Phone:        d.Phone,
			Message:      d.Message,
			ReceivedAt:   d.ReceivedAt.UTC(),
		},
		MailchimpSynced: d.MailchimpSynced,
	}
}
