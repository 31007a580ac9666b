// Package webhook forwards accepted inquiries to an operator-configured URL.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sngm3741/inquiry-api/internal/inquiry/domain"
)

const relayName = "webhook"

// Relay posts inquiries as JSON. A Relay with an empty URL does nothing.
type Relay struct {
	url        string
	httpClient *http.Client
}

// New returns a webhook relay for url.
func New(url string, httpClient *http.Client) *Relay {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Relay{url: strings.TrimSpace(url), httpClient: httpClient}
}

// Configured reports whether a destination URL is set.
func (r *Relay) Configured() bool {
	return r != nil && r.url != ""
}

// Relay sends a single POST. Non-2xx responses and transport errors are
// returned as *domain.RelayError.
func (r *Relay) Relay(ctx context.Context, inquiry domain.Inquiry) error {
	if !r.Configured() {
		return nil
	}

	body, err := json.Marshal(inquiry)
	if err != nil {
		return &domain.RelayError{Relay: relayName, Err: fmt.Errorf("encode inquiry: %w", err)}
	}

	if ctx == nil {
		ctx = context.Background()
	}
	timeout := r.httpClient.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return &domain.RelayError{Relay: relayName, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := r.httpClient.Do(req)
	if err != nil {
		return &domain.RelayError{Relay: relayName, Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		message, _ := io.ReadAll(io.LimitReader(res.Body, 1<<16))
		return &domain.RelayError{
			Relay:      relayName,
			StatusCode: res.StatusCode,
			Err:        fmt.Errorf("status=%d body=%s", res.StatusCode, strings.TrimSpace(string(message))),
		}
	}
	return nil
}
