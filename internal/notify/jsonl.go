package notify

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// JSONL appends notifications to a JSON-lines journal.
type JSONL struct {
	mu     sync.Mutex
	file   *os.File
	writer *bufio.Writer
	logger *zap.Logger
}

// OpenJSONL opens path for appending, creating parent directories.
func OpenJSONL(path string, logger *zap.Logger) (*JSONL, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create journal dir: %w", err)
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	return &JSONL{file: file, writer: bufio.NewWriter(file), logger: logger}, nil
}

// Notify writes one line and flushes. Write failures are logged, never returned.
func (j *JSONL) Notify(n Notification) {
	if err := j.write(n); err != nil {
		j.logger.Warn("journal write failed", zap.Error(err))
	}
}

func (j *JSONL) write(n Notification) error {
	line, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	if j.file == nil {
		return fmt.Errorf("journal closed")
	}
	if _, err := j.writer.Write(line); err != nil {
		return fmt.Errorf("write notification: %w", err)
	}
	if err := j.writer.WriteByte('\n'); err != nil {
		return fmt.Errorf("write newline: %w", err)
	}
	return j.writer.Flush()
}

func (j *JSONL) Close() error {
	if j == nil {
		return nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.file == nil {
		return nil
	}
	file := j.file
	j.file = nil
	if err := j.writer.Flush(); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
