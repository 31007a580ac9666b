package filelog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/sngm3741/inquiry-api/internal/inquiry/application"
	"github.com/sngm3741/inquiry-api/internal/inquiry/domain"
)

func record(i int) domain.Record {
	return domain.Record{
		ID: fmt.Sprintf("id-%d", i),
		Inquiry: domain.Inquiry{
			Name:       fmt.Sprintf("name-%d", i),
			Email:      fmt.Sprintf("user%d@example.com", i),
			Message:    "hi",
			ReceivedAt: time.Date(2026, 10, 16, 0, 0, i, 0, time.UTC),
		},
	}
}

func TestAppendRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "inquiries.json")
	l := New(path, nil)

	const n = 5
	for i := 0; i < n; i++ {
		if err := l.Append(context.Background(), record(i)); err != nil {
			t.Fatalf("Append(%d): %v", i, err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	var raw []map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("file is not a JSON array: %v", err)
	}
	if len(raw) != n {
		t.Fatalf("records = %d, want %d", len(raw), n)
	}
	for i, entry := range raw {
		if entry["name"] != fmt.Sprintf("name-%d", i) {
			t.Errorf("record %d out of order: %v", i, entry["name"])
		}
		ts, _ := entry["receivedAt"].(string)
		if _, err := time.Parse(time.RFC3339Nano, ts); err != nil {
			t.Errorf("record %d receivedAt %q: %v", i, ts, err)
		}
		if synced, ok := entry["mailchimpSynced"].(bool); !ok || synced {
			t.Errorf("record %d mailchimpSynced = %v", i, entry["mailchimpSynced"])
		}
		for _, key := range []string{"email", "organization", "phone", "message"} {
			if _, ok := entry[key]; !ok {
				t.Errorf("record %d missing %s", i, key)
			}
		}
	}
}

func TestAppendReplacesCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inquiries.json")
	if err := os.WriteFile(path, []byte(`{"not":"an array"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	l := New(path, nil)
	if err := l.Append(context.Background(), record(1)); err != nil {
		t.Fatalf("Append: %v", err)
	}
	records, err := l.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(records) != 1 || records[0].ID != "id-1" {
		t.Errorf("records = %+v", records)
	}
}

func TestReadAllMissingFile(t *testing.T) {
	l := New(filepath.Join(t.TempDir(), "absent.json"), nil)
	records, err := l.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if records == nil || len(records) != 0 {
		t.Errorf("records = %#v, want empty slice", records)
	}
}

func TestReadAllCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inquiries.json")
	if err := os.WriteFile(path, []byte(`[{`), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := New(path, nil).ReadAll()
	var perr *domain.PersistenceError
	if !errors.As(err, &perr) {
		t.Fatalf("error = %v, want *domain.PersistenceError", err)
	}
}

func TestListPaging(t *testing.T) {
	l := New(filepath.Join(t.TempDir(), "inquiries.json"), nil)
	for i := 0; i < 5; i++ {
		if err := l.Append(context.Background(), record(i)); err != nil {
			t.Fatal(err)
		}
	}
	got, err := l.List(context.Background(), application.Paging{Page: 2, Limit: 2})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 || got[0].ID != "id-2" || got[1].ID != "id-3" {
		t.Errorf("List = %+v", got)
	}
}

func TestConcurrentAppendsAreNotLost(t *testing.T) {
	l := New(filepath.Join(t.TempDir(), "inquiries.json"), nil)

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := l.Append(context.Background(), record(i)); err != nil {
				t.Errorf("Append(%d): %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	records, err := l.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(records) != n {
		t.Errorf("records = %d, want %d", len(records), n)
	}
}

func TestAppendUnwritableDirectory(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	l := New(filepath.Join(blocker, "inquiries.json"), nil)
	err := l.Append(context.Background(), record(0))
	var perr *domain.PersistenceError
	if !errors.As(err, &perr) {
		t.Fatalf("error = %v, want *domain.PersistenceError", err)
	}
}
