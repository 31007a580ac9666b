package domain

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// RawSubmission is the untrusted contact form payload. Every field is optional
// from the caller's perspective; City is the honeypot.
type RawSubmission struct {
	Name         string
	Email        string
	Organization string
	Phone        string
	Message      string
	City         string
}

// Inquiry is a validated, normalized submission.
type Inquiry struct {
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Organization string    `json:"organization"`
	Phone        string    `json:"phone"`
	Message      string    `json:"message"`
	ReceivedAt   time.Time `json:"receivedAt"`
}

// Record is one entry of the inquiry log.
type Record struct {
	ID string `json:"id,omitempty"`
	Inquiry
	MailchimpSynced bool `json:"mailchimpSynced"`
}

// DecodeSubmission parses a request body. An empty body or a JSON array
// decodes as an empty submission. A nil submission with a nil error means the
// body was null or a scalar.
func DecodeSubmission(body []byte) (*RawSubmission, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return &RawSubmission{}, nil
	}

	var value any
	if err := json.Unmarshal(body, &value); err != nil {
		return nil, ErrMalformedRequest
	}

	var fields map[string]any
	switch v := value.(type) {
	case map[string]any:
		fields = v
	case []any:
		// Arrays carry no named fields and fail the required-field check.
		return &RawSubmission{}, nil
	default:
		return nil, nil
	}

	return &RawSubmission{
		Name:         stringField(fields, "name"),
		Email:        stringField(fields, "email"),
		Organization: stringField(fields, "organization"),
		Phone:        stringField(fields, "phone"),
		Message:      stringField(fields, "message"),
		City:         stringField(fields, "city"),
	}, nil
}

// stringField drops non-string values so they behave like missing fields.
func stringField(fields map[string]any, key string) string {
	s, _ := fields[key].(string)
	return s
}

// NewInquiry trims every field and stamps the acceptance time. Callers must
// run IsSpam and Validate first.
func NewInquiry(raw RawSubmission, receivedAt time.Time) Inquiry {
	return Inquiry{
		Name:         strings.TrimSpace(raw.Name),
		Email:        strings.TrimSpace(raw.Email),
		Organization: strings.TrimSpace(raw.Organization),
		Phone:        strings.TrimSpace(raw.Phone),
		Message:      strings.TrimSpace(raw.Message),
		ReceivedAt:   receivedAt.UTC().Truncate(time.Millisecond),
	}
}
