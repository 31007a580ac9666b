// Package filelog stores inquiries as a single JSON array on disk.
package filelog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/sngm3741/inquiry-api/internal/inquiry/application"
	"github.com/sngm3741/inquiry-api/internal/inquiry/domain"
)

// Log is a read-modify-write JSON array file. Appends are serialized within
// the process; other processes writing the same file can still lose updates.
type Log struct {
	path   string
	logger *log.Logger
	mu     sync.Mutex
}

// New returns a log backed by path. The file and its directory are created on
// first append.
func New(path string, logger *log.Logger) *Log {
	return &Log{path: path, logger: logger}
}

// Path returns the backing file path.
func (l *Log) Path() string {
	return l.path
}

// Append adds record to the end of the log. An unreadable or corrupt file is
// treated as empty and overwritten.
func (l *Log) Append(_ context.Context, record domain.Record) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return &domain.PersistenceError{Op: "mkdir", Err: err}
	}

	records, err := l.read()
	if err != nil {
		if l.logger != nil {
			l.logger.Printf("inquiry log %s unreadable, starting fresh: %v", l.path, err)
		}
		records = nil
	}
	records = append(records, record)

	return l.write(records)
}

// List returns stored records in submission order.
func (l *Log) List(_ context.Context, paging application.Paging) ([]domain.Record, error) {
	records, err := l.ReadAll()
	if err != nil {
		return nil, err
	}
	start, end := paging.Window(len(records))
	return records[start:end], nil
}

// ReadAll returns every stored record. A missing file yields an empty slice.
func (l *Log) ReadAll() ([]domain.Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	records, err := l.read()
	if err != nil {
		return nil, &domain.PersistenceError{Op: "read", Err: err}
	}
	if records == nil {
		records = []domain.Record{}
	}
	return records, nil
}

func (l *Log) read() ([]domain.Record, error) {
	data, err := os.ReadFile(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var records []domain.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", l.path, err)
	}
	return records, nil
}

func (l *Log) write(records []domain.Record) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return &domain.PersistenceError{Op: "encode", Err: err}
	}

	tmp, err := os.CreateTemp(filepath.Dir(l.path), "."+filepath.Base(l.path)+".*")
	if err != nil {
		return &domain.PersistenceError{Op: "write", Err: err}
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return &domain.PersistenceError{Op: "write", Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &domain.PersistenceError{Op: "write", Err: err}
	}
	if err := os.Rename(tmpName, l.path); err != nil {
		return &domain.PersistenceError{Op: "rename", Err: err}
	}
	return nil
}
