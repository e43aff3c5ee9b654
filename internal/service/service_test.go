package service

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/vbonduro/briefdesk/internal/db"
	"github.com/vbonduro/briefdesk/internal/mediastore"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	d, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, d.Close()) })
	return d
}

// stubStaging is an in-memory mediastore.Store for tests.
type stubStaging struct {
	mu    sync.Mutex
	files map[string][]byte
	n     int
}

func newStubStaging() *stubStaging {
	return &stubStaging{files: map[string][]byte{}}
}

func (s *stubStaging) Save(_ context.Context, prefix, mimeType string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	key := fmt.Sprintf("%s_%d%s", prefix, s.n, mediastore.Ext(mimeType))
	s.files[key] = data
	return key, nil
}

func (s *stubStaging) Get(_ context.Context, key string) (io.ReadCloser, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.files[key]
	if !ok {
		return nil, "", mediastore.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), "image/jpeg", nil
}

func (s *stubStaging) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, key)
	return nil
}

func (s *stubStaging) PurgeOlderThan(_ context.Context, _ time.Time) (int, error) {
	return 0, nil
}

func (s *stubStaging) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}

// stubUploader records uploads. When gate is set, uploads block until it is
// closed.
type stubUploader struct {
	mu    sync.Mutex
	gate  chan struct{}
	err   error
	calls []string
}

func (s *stubUploader) Upload(_ context.Context, filename string, r io.Reader) (string, error) {
	if s.gate != nil {
		<-s.gate
	}
	data, _ := io.ReadAll(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, filename+":"+string(data))
	if s.err != nil {
		return "", s.err
	}
	return "https://cdn.example.test/" + filename, nil
}

func (s *stubUploader) uploaded() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}
