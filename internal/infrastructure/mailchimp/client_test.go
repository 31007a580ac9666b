package mailchimp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sngm3741/inquiry-api/internal/inquiry/domain"
)

type recordedCall struct {
	method string
	path   string
	auth   string
	body   map[string]any
}

type fakeAPI struct {
	mu        sync.Mutex
	calls     []recordedCall
	putStatus int
	putBody   string
	noteCode  int
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	var body map[string]any
	_ = json.Unmarshal(raw, &body)

	f.mu.Lock()
	f.calls = append(f.calls, recordedCall{method: r.Method, path: r.URL.Path, auth: r.Header.Get("Authorization"), body: body})
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if strings.HasSuffix(r.URL.Path, "/notes") {
		status := f.noteCode
		if status == 0 {
			status = http.StatusOK
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{}`))
		return
	}
	status := f.putStatus
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	if f.putBody != "" {
		_, _ = w.Write([]byte(f.putBody))
	}
}

func newTestClient(t *testing.T, api *fakeAPI) *Client {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	return New(Config{
		APIKey:       "key-us1",
		ServerPrefix: "us1",
		ListID:       "list123",
		BaseURL:      srv.URL,
		HTTPClient:   &http.Client{Timeout: 2 * time.Second},
	})
}

func sampleInquiry() domain.Inquiry {
	return domain.Inquiry{
		Name:         "Ada",
		Email:        "Ada@Example.com",
		Organization: "Analytical Engines",
		Phone:        "555-0100",
		Message:      "Hello there",
		ReceivedAt:   time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC),
	}
}

func TestSubscriberHash(t *testing.T) {
	// md5("ada@example.com")
	const want = "3e3417d7ef77d5932a6734b916515ed5"
	got := SubscriberHash("Ada@Example.com")
	if got != want {
		t.Fatalf("SubscriberHash = %s, want %s", got, want)
	}
	if got != SubscriberHash("ada@example.com") {
		t.Errorf("hash should ignore case")
	}
	if got == SubscriberHash("bob@example.com") {
		t.Errorf("different addresses share a hash")
	}
}

func TestRelayUpsertsAndAddsNote(t *testing.T) {
	api := &fakeAPI{}
	client := newTestClient(t, api)

	if err := client.Relay(context.Background(), sampleInquiry()); err != nil {
		t.Fatalf("Relay: %v", err)
	}
	if len(api.calls) != 2 {
		t.Fatalf("calls = %d, want 2", len(api.calls))
	}

	hash := SubscriberHash("ada@example.com")
	put := api.calls[0]
	if put.method != http.MethodPut || put.path != "/3.0/lists/list123/members/"+hash {
		t.Errorf("upsert call = %s %s", put.method, put.path)
	}
	if put.auth != "apikey key-us1" {
		t.Errorf("authorization = %q", put.auth)
	}
	if put.body["email_address"] != "Ada@Example.com" || put.body["status_if_new"] != "pending" {
		t.Errorf("member payload = %v", put.body)
	}
	merge, _ := put.body["merge_fields"].(map[string]any)
	if merge["FNAME"] != "Ada" || merge["PHONE"] != "555-0100" || merge["COMPANY"] != "Analytical Engines" {
		t.Errorf("merge fields = %v", merge)
	}

	note := api.calls[1]
	if note.method != http.MethodPost || note.path != "/3.0/lists/list123/members/"+hash+"/notes" {
		t.Errorf("note call = %s %s", note.method, note.path)
	}
	wantNote := "Organization: Analytical Engines\n\nPhone: 555-0100\n\nMessage: Hello there"
	if note.body["note"] != wantNote {
		t.Errorf("note = %q, want %q", note.body["note"], wantNote)
	}
}

func TestRelaySameEmailUsesSameMember(t *testing.T) {
	api := &fakeAPI{}
	client := newTestClient(t, api)

	first := sampleInquiry()
	second := sampleInquiry()
	second.Email = "ADA@example.COM"
	for _, inq := range []domain.Inquiry{first, second} {
		if err := client.Relay(context.Background(), inq); err != nil {
			t.Fatalf("Relay: %v", err)
		}
	}

	var puts []string
	for _, call := range api.calls {
		if call.method == http.MethodPut {
			puts = append(puts, call.path)
		}
	}
	if len(puts) != 2 || puts[0] != puts[1] {
		t.Fatalf("upsert paths = %v, want the same member twice", puts)
	}
}

func TestRelayNoteFailureIsSwallowed(t *testing.T) {
	api := &fakeAPI{noteCode: http.StatusInternalServerError}
	client := newTestClient(t, api)

	if err := client.Relay(context.Background(), sampleInquiry()); err != nil {
		t.Fatalf("note failure should not fail relay: %v", err)
	}
}

func TestRelayErrorMessages(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"detail", http.StatusBadRequest, `{"title":"Invalid Resource","detail":"Invalid Resource"}`, "Invalid Resource"},
		{"title only", http.StatusBadRequest, `{"title":"Member Exists"}`, "Member Exists"},
		{"no body", http.StatusBadGateway, ``, "Mailchimp request failed (502)."},
		{"non json", http.StatusInternalServerError, `oops`, "Mailchimp request failed (500)."},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			api := &fakeAPI{putStatus: tc.status, putBody: tc.body}
			client := newTestClient(t, api)

			err := client.Relay(context.Background(), sampleInquiry())
			var relayErr *domain.RelayError
			if !errors.As(err, &relayErr) {
				t.Fatalf("error = %v, want *domain.RelayError", err)
			}
			if relayErr.Error() != tc.want {
				t.Errorf("message = %q, want %q", relayErr.Error(), tc.want)
			}
			if relayErr.StatusCode != tc.status {
				t.Errorf("status = %d, want %d", relayErr.StatusCode, tc.status)
			}
			if len(api.calls) != 1 {
				t.Errorf("note must not be attempted after a failed upsert, calls = %d", len(api.calls))
			}
		})
	}
}

func TestRelaySkipsEmptyNote(t *testing.T) {
	api := &fakeAPI{}
	client := newTestClient(t, api)

	inq := sampleInquiry()
	inq.Organization, inq.Phone, inq.Message = "", "", ""
	if err := client.Relay(context.Background(), inq); err != nil {
		t.Fatalf("Relay: %v", err)
	}
	if len(api.calls) != 1 {
		t.Fatalf("calls = %d, want only the upsert", len(api.calls))
	}
}

func TestConfigEnabled(t *testing.T) {
	full := Config{APIKey: "k", ServerPrefix: "us1", ListID: "l"}
	if !full.Enabled() {
		t.Errorf("full config should be enabled")
	}
	for _, cfg := range []Config{
		{ServerPrefix: "us1", ListID: "l"},
		{APIKey: "k", ListID: "l"},
		{APIKey: "k", ServerPrefix: "us1", ListID: "  "},
	} {
		if cfg.Enabled() {
			t.Errorf("%+v should not be enabled", cfg)
		}
	}
}

func TestDefaultBaseURL(t *testing.T) {
	client := New(Config{APIKey: "k", ServerPrefix: "us21", ListID: "l"})
	if client.baseURL != "https://us21.api.mailchimp.com" {
		t.Errorf("baseURL = %q", client.baseURL)
	}
}
