// v1
// journal.go

package sink

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/GiuBlockchainDEV/hydrosim/pkg/models"
)

// JournalSink appends every envelope as one JSON line to a local file.
// It is the default sink and needs no external services.
type JournalSink struct {
	mu     sync.Mutex
	file   *os.File
	writer *bufio.Writer
}

func NewJournalSink(path string) (*JournalSink, error) {
	if path == "" {
		return nil, fmt.Errorf("journal path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create journal dir %s: %w", dir, err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", path, err)
	}
	return &JournalSink{file: f, writer: bufio.NewWriter(f)}, nil
}

func (s *JournalSink) Name() string { return "journal" }

func (s *JournalSink) Publish(ctx context.Context, deviceID, deviceKey string, at time.Time, snap models.Snapshot) Result {
	_ = ctx
	_ = deviceKey
	line, err := json.Marshal(Envelope{DeviceID: deviceID, SentAt: at, Readings: snap})
	if err != nil {
		return fail(fmt.Errorf("encode envelope: %w", err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.writer.Write(line); err != nil {
		return fail(fmt.Errorf("append journal line: %w", err))
	}
	if err := s.writer.WriteByte('\n'); err != nil {
		return fail(fmt.Errorf("append journal line: %w", err))
	}
	if err := s.writer.Flush(); err != nil {
		return fail(fmt.Errorf("flush journal: %w", err))
	}
	if err := s.file.Sync(); err != nil {
		return fail(fmt.Errorf("sync journal: %w", err))
	}
	return ok("")
}

func (s *JournalSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.writer.Flush(); err != nil {
		s.file.Close()
		return fmt.Errorf("flush journal: %w", err)
	}
	return s.file.Close()
}
