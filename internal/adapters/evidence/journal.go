// Package evidence journals the opaque evidence references attached to
// accepted submissions. References are never opened or verified; the
// journal exists so an operator can audit which blobs back which
// submissions.
package evidence

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/okian/raidluck/internal/domain/model"
)

const journalFileMode = 0o600

// Journal is an append-only JSONL file of evidence notes.
type Journal struct {
	mu   sync.Mutex
	file *os.File
	w    *bufio.Writer
}

// Open opens (or creates) the journal at path.
func Open(path string) (*Journal, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, journalFileMode)
	if err != nil {
		return nil, fmt.Errorf("open evidence journal: %w", err)
	}
	return &Journal{file: f, w: bufio.NewWriter(f)}, nil
}

// Append writes one note as a JSON line and flushes it.
func (j *Journal) Append(_ context.Context, note model.EvidenceNote) error {
	line, err := json.Marshal(note)
	if err != nil {
		return fmt.Errorf("marshal evidence note: %w", err)
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	if _, err := j.w.Write(line); err != nil {
		return fmt.Errorf("write evidence note: %w", err)
	}
	if err := j.w.WriteByte('\n'); err != nil {
		return fmt.Errorf("write evidence note: %w", err)
	}
	if err := j.w.Flush(); err != nil {
		return fmt.Errorf("flush evidence journal: %w", err)
	}
	return nil
}

// Close flushes and closes the journal.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if err := j.w.Flush(); err != nil {
		_ = j.file.Close()
		return fmt.Errorf("flush evidence journal: %w", err)
	}
	return j.file.Close()
}

// ReadAll loads every note from the journal at path, oldest first.
func ReadAll(path string) ([]model.EvidenceNote, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open evidence journal: %w", err)
	}
	defer func() { _ = f.Close() }()

	var out []model.EvidenceNote
	s := bufio.NewScanner(f)
	for s.Scan() {
		line := s.Bytes()
		if len(line) == 0 {
			continue
		}
		var note model.EvidenceNote
		if err := json.Unmarshal(line, &note); err != nil {
			return nil, fmt.Errorf("invalid journal line: %w", err)
		}
		out = append(out, note)
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("scan evidence journal: %w", err)
	}
	return out, nil
}
