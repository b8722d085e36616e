// Package storage persists the conversation store to a single durable
// slot, defending against corrupted or oversized payloads.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"syscall"
	"time"

	"github.com/raphaelgruber/parley/internal/chat"
	"github.com/raphaelgruber/parley/internal/metrics"
)

// Storage budget for the persisted payload.
const (
	// MaxStorageSize is the total budget for the serialized store.
	MaxStorageSize = 5 * 1024 * 1024
	// QuotaHeadroom is the free space below which saves are refused.
	QuotaHeadroom = 100 * 1024
)

// Sentinel errors for persistence failures. All of them are non-fatal to
// the caller: the in-memory store stays authoritative when a flush fails.
var (
	// ErrQuotaNearFull indicates the serialized store leaves less than
	// QuotaHeadroom of the storage budget; the write was not attempted.
	ErrQuotaNearFull = errors.New("storage quota nearly full, delete some chats")

	// ErrQuotaExceeded indicates the underlying medium ran out of capacity.
	ErrQuotaExceeded = errors.New("storage quota exceeded")

	// ErrStorageUnavailable indicates any other write failure.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// Store serializes the thread list to a Slot and sanitizes whatever
// comes back out of it.
type Store struct {
	slot      Slot
	logger    *slog.Logger
	collector *metrics.Collector
	now       func() int64 // epoch-ms clock for sanitization defaults
}

// New creates a store backed by slot. collector may be nil.
func New(slot Slot, logger *slog.Logger, collector *metrics.Collector) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		slot:      slot,
		logger:    logger,
		collector: collector,
		now:       func() int64 { return time.Now().UnixMilli() },
	}
}

// Load reads the persisted thread list. An absent slot yields an empty
// list. An unparsable payload is treated as corrupted: the slot is
// cleared and an empty list returned, with a warning logged. A parsable
// payload is sanitized; invalid fields are dropped or defaulted, never
// surfaced as errors.
func (s *Store) Load() []chat.Thread {
	start := time.Now()
	defer func() {
		if s.collector != nil {
			s.collector.RecordTiming(metrics.OpStoreLoad, time.Since(start))
		}
	}()

	data, ok, err := s.slot.Read()
	if err != nil {
		s.logger.Warn("failed to read persisted chats", "error", err)
		return []chat.Thread{}
	}
	if !ok {
		return []chat.Thread{}
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		s.logger.Warn("discarding corrupted chat payload", "error", err)
		if cerr := s.slot.Clear(); cerr != nil {
			s.logger.Warn("failed to clear corrupted slot", "error", cerr)
		}
		return []chat.Thread{}
	}

	return s.sanitize(items)
}

// Save serializes threads and writes them to the slot. The quota is
// checked before any write is attempted.
func (s *Store) Save(threads []chat.Thread) error {
	start := time.Now()

	data, err := json.Marshal(threads)
	if err != nil {
		if s.collector != nil {
			s.collector.RecordFailure(metrics.OpStoreSave)
		}
		return fmt.Errorf("%w: encode chats: %v", ErrStorageUnavailable, err)
	}

	if len(data) > MaxStorageSize-QuotaHeadroom {
		if s.collector != nil {
			s.collector.RecordFailure(metrics.OpStoreSave)
		}
		return fmt.Errorf("%w: %d bytes of %d used", ErrQuotaNearFull, len(data), MaxStorageSize)
	}

	if err := s.slot.Write(data); err != nil {
		if s.collector != nil {
			s.collector.RecordFailure(metrics.OpStoreSave)
		}
		if errors.Is(err, syscall.ENOSPC) {
			return fmt.Errorf("%w: %v", ErrQuotaExceeded, err)
		}
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	if s.collector != nil {
		s.collector.RecordTiming(metrics.OpStoreSave, time.Since(start))
	}
	return nil
}
