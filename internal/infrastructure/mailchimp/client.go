// Package mailchimp relays inquiries to a Mailchimp audience.
package mailchimp

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sngm3741/inquiry-api/internal/inquiry/domain"
)

const relayName = "mailchimp"

// Config holds the audience credentials. All three of APIKey, ServerPrefix
// and ListID are required.
type Config struct {
	APIKey       string
	ServerPrefix string
	ListID       string
	// BaseURL overrides https://<prefix>.api.mailchimp.com.
	BaseURL    string
	HTTPClient *http.Client
	Logger     *log.Logger
}

// Enabled reports whether every credential is present.
func (c Config) Enabled() bool {
	return strings.TrimSpace(c.APIKey) != "" &&
		strings.TrimSpace(c.ServerPrefix) != "" &&
		strings.TrimSpace(c.ListID) != ""
}

// Client upserts subscribers and attaches inquiry notes.
type Client struct {
	httpClient *http.Client
	logger     *log.Logger
	baseURL    string
	apiKey     string
	listID     string
}

// New builds a client. It does not check Enabled; callers decide whether the
// relay is configured.
func New(cfg Config) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.api.mailchimp.com", strings.TrimSpace(cfg.ServerPrefix))
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		httpClient: httpClient,
		logger:     cfg.Logger,
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		listID:     strings.TrimSpace(cfg.ListID),
	}
}

// SubscriberHash is Mailchimp's member lookup key: the hex MD5 of the
// lower-cased address.
func SubscriberHash(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(email)))
	return hex.EncodeToString(sum[:])
}

type mergeFields struct {
	FirstName string `json:"FNAME"`
	Phone     string `json:"PHONE"`
	Company   string `json:"COMPANY"`
}

type memberPayload struct {
	EmailAddress string      `json:"email_address"`
	StatusIfNew  string      `json:"status_if_new"`
	MergeFields  mergeFields `json:"merge_fields"`
}

type notePayload struct {
	Note string `json:"note"`
}

type errorBody struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

// Relay upserts the subscriber, then tries to attach a note. Only the upsert
// can fail the relay.
func (c *Client) Relay(ctx context.Context, inquiry domain.Inquiry) error {
	hash := SubscriberHash(inquiry.Email)
	memberPath := fmt.Sprintf("/3.0/lists/%s/members/%s", url.PathEscape(c.listID), hash)

	member := memberPayload{
		EmailAddress: inquiry.Email,
		StatusIfNew:  "pending",
		MergeFields: mergeFields{
			FirstName: inquiry.Name,
			Phone:     inquiry.Phone,
			Company:   inquiry.Organization,
		},
	}
	if err := c.do(ctx, http.MethodPut, memberPath, member); err != nil {
		return err
	}

	note := BuildNote(inquiry)
	if note == "" {
		return nil
	}
	if err := c.do(ctx, http.MethodPost, memberPath+"/notes", notePayload{Note: note}); err != nil && c.logger != nil {
		c.logger.Printf("mailchimp note for %s skipped: %v", hash, err)
	}
	return nil
}

// BuildNote joins the non-empty organization, phone and message lines with a
// blank line between them.
func BuildNote(inquiry domain.Inquiry) string {
	parts := make([]string, 0, 3)
	addPart := func(label, value string) {
		if value == "" {
			return
		}
		parts = append(parts, label+": "+value)
	}
	addPart("Organization", inquiry.Organization)
	addPart("Phone", inquiry.Phone)
	addPart("Message", inquiry.Message)
	return strings.Join(parts, "\n\n")
}

func (c *Client) do(ctx context.Context, method, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return &domain.RelayError{Relay: relayName, Err: fmt.Errorf("encode payload: %w", err)}
	}

	if ctx == nil {
		ctx = context.Background()
	}
	timeout := c.httpClient.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return &domain.RelayError{Relay: relayName, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "apikey "+c.apiKey)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return &domain.RelayError{Relay: relayName, Err: err}
	}
	defer res.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(res.Body, 1<<16))
	if res.StatusCode >= 200 && res.StatusCode < 300 {
		return nil
	}

	return &domain.RelayError{
		Relay:      relayName,
		StatusCode: res.StatusCode,
		Message:    errorMessage(res.StatusCode, raw),
	}
}

// errorMessage prefers the API's detail, then its title.
func errorMessage(status int, raw []byte) string {
	var parsed errorBody
	if len(bytes.TrimSpace(raw)) > 0 && json.Unmarshal(raw, &parsed) == nil {
		if detail := strings.TrimSpace(parsed.Detail); detail != "" {
			return detail
		}
		if title := strings.TrimSpace(parsed.Title); title != "" {
			return title
		}
	}
	return fmt.Sprintf("Mailchimp request failed (%d).", status)
}
