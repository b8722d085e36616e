package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Slot is the durable key-value slot the conversation store persists to.
// One slot holds one payload; there is no keyspace beyond it.
type Slot interface {
	// Read returns the stored payload, or ok=false if nothing is stored.
	Read() (data []byte, ok bool, err error)
	// Write replaces the stored payload.
	Write(data []byte) error
	// Clear removes the stored payload. Clearing an empty slot is not an error.
	Clear() error
}

// FileSlot stores the payload in a single file, written atomically via a
// temp file and rename so a crashed write never leaves a torn payload.
type FileSlot struct {
	path string
}

// Compile-time check that FileSlot implements Slot.
var _ Slot = (*FileSlot)(nil)

// NewFileSlot creates a slot backed by the file at path.
func NewFileSlot(path string) *FileSlot {
	return &FileSlot{path: path}
}

// Path returns the backing file path.
func (s *FileSlot) Path() string {
	return s.path
}

// Read returns the file contents, or ok=false if the file does not exist.
func (s *FileSlot) Read() ([]byte, bool, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read slot: %w", err)
	}
	return data, true, nil
}

// Write atomically replaces the file contents.
func (s *FileSlot) Write(data []byte) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create slot directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write slot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace slot: %w", err)
	}
	return nil
}

// Clear removes the file.
func (s *FileSlot) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("clear slot: %w", err)
	}
	return nil
}
