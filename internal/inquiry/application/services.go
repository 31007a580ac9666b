package application

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/sngm3741/inquiry-api/internal/inquiry/domain"
)

// Relay forwards an accepted inquiry to an external system.
type Relay interface {
	Relay(ctx context.Context, inquiry domain.Inquiry) error
}

// InquiryLog is the durable record of accepted inquiries. Implementations are
// the only code allowed to read or write stored inquiries.
type InquiryLog interface {
	Append(ctx context.Context, record domain.Record) error
	List(ctx context.Context, paging Paging) ([]domain.Record, error)
}

// Paging controls pagination. Page is 1-based; a zero Limit returns everything
// from the page offset onward.
type Paging struct {
	Page  int
	Limit int
}

// Window converts paging into a start offset and an exclusive end for a
// sequence of total items.
func (p Paging) Window(total int) (start, end int) {
	page := p.Page
	if page < 1 {
		page = 1
	}
	if p.Limit <= 0 {
		if page > 1 {
			return total, total
		}
		return 0, total
	}
	if page-1 > total/p.Limit {
		return total, total
	}
	start = (page - 1) * p.Limit
	if start > total {
		start = total
	}
	end = start + p.Limit
	if end > total {
		end = total
	}
	return start, end
}

// SubmitResult describes an accepted submission. Discarded is set for honeypot
// hits, which are acknowledged but never processed.
type SubmitResult struct {
	Discarded bool
	Record    *domain.Record
}

// InquiryCommandService handles the intake pipeline.
type InquiryCommandService interface {
	Submit(ctx context.Context, raw *domain.RawSubmission) (*SubmitResult, error)
}

// InquiryQueryService exposes stored inquiries to operators.
type InquiryQueryService interface {
	List(ctx context.Context, paging Paging) ([]domain.Record, error)
}

// CommandConfig wires the pipeline collaborators. ListRelay and Webhook are
// nil when not configured.
type CommandConfig struct {
	Logger    *log.Logger
	ListRelay Relay
	Webhook   Relay
	Log       InquiryLog
	NewID     func() string
	Now       func() time.Time
}

func NewInquiryCommandService(cfg CommandConfig) InquiryCommandService {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &inquiryCommandService{
		logger:    cfg.Logger,
		listRelay: cfg.ListRelay,
		webhook:   cfg.Webhook,
		log:       cfg.Log,
		newID:     cfg.NewID,
		now:       now,
	}
}

type inquiryCommandService struct {
	logger    *log.Logger
	listRelay Relay
	webhook   Relay
	log       InquiryLog
	newID     func() string
	now       func() time.Time
}

// Submit runs spam filter, validation, list relay, webhook relay and log
// append in that order. Returned errors are *domain.ValidationError or
// *domain.RelayError.
func (s *inquiryCommandService) Submit(ctx context.Context, raw *domain.RawSubmission) (*SubmitResult, error) {
	if domain.IsSpam(raw) {
		return &SubmitResult{Discarded: true}, nil
	}
	if verr := domain.Validate(raw); verr != nil {
		return nil, verr
	}

	inquiry := domain.NewInquiry(*raw, s.now())
	record := domain.Record{Inquiry: inquiry}
	if s.newID != nil {
		record.ID = s.newID()
	}

	if s.listRelay != nil {
		if err := s.listRelay.Relay(ctx, inquiry); err != nil {
			s.logf("mailing list relay failed for %s: %v", record.ID, err)
			return nil, asRelayError("mailchimp", err)
		}
		record.MailchimpSynced = true
	}

	if s.webhook != nil {
		if err := s.webhook.Relay(ctx, inquiry); err != nil {
			s.logf("webhook relay failed for %s: %v", record.ID, err)
		}
	}

	if s.log != nil {
		if err := s.log.Append(ctx, record); err != nil {
			s.logf("inquiry %s not persisted: %v", record.ID, err)
		}
	}

	return &SubmitResult{Record: &record}, nil
}

func (s *inquiryCommandService) logf(format string, args ...any) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}

func asRelayError(relay string, err error) *domain.RelayError {
	var relayErr *domain.RelayError
	if errors.As(err, &relayErr) {
		return relayErr
	}
	return &domain.RelayError{Relay: relay, Err: err}
}

func NewInquiryQueryService(log InquiryLog) InquiryQueryService {
	return &inquiryQueryService{log: log}
}

type inquiryQueryService struct {
	log InquiryLog
}

func (s *inquiryQueryService) List(ctx context.Context, paging Paging) ([]domain.Record, error) {
	return s.log.List(ctx, paging)
}
