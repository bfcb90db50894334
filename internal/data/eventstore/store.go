// Package eventstore is the append-only rating-event log. Every operation
// reads the whole log from its slot and, for writes, stores it back whole.
package eventstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/yungbote/advanced-rating/internal/data/slot"
	"github.com/yungbote/advanced-rating/internal/domain/rating"
	"github.com/yungbote/advanced-rating/internal/platform/logger"
)

// ErrWriteUnavailable wraps any failure to persist the log.
var ErrWriteUnavailable = errors.New("rating event log unavailable for write")

type Store struct {
	mu   sync.Mutex
	slot slot.Slot
	log  *logger.Logger
}

func New(s slot.Slot, baseLog *logger.Logger) *Store {
	if baseLog == nil {
		baseLog = logger.Nop()
	}
	return &Store{slot: s, log: baseLog.With("component", "EventStore")}
}

// GetAll returns the persisted log in append order. Absent, unreadable or
// malformed data reads as an empty log.
func (s *Store) GetAll(ctx context.Context) []rating.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

func (s *Store) Len(ctx context.Context) int {
	return len(s.GetAll(ctx))
}

// Append adds ev at the end of the log and returns its zero-based index.
func (s *Store) Append(ctx context.Context, ev rating.Event) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	events := s.load(ctx)
	events = append(events, ev)
	if err := s.save(ctx, events); err != nil {
		return -1, err
	}
	return len(events) - 1, nil
}

// Amend overwrites the note of the event at index. Indices outside the log
// are ignored.
func (s *Store) Amend(ctx context.Context, index int, note string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	events := s.load(ctx)
	if index < 0 || index >= len(events) {
		s.log.Debug("amend ignored: index out of range", "index", index, "len", len(events))
		return nil
	}
	events[index].Note = note
	return s.save(ctx, events)
}

func (s *Store) load(ctx context.Context) []rating.Event {
	raw, err := s.slot.Load(ctx)
	if err != nil {
		if !errors.Is(err, slot.ErrNotFound) {
			s.log.Warn("rating event log unreadable, treating as empty", "error", err)
		}
		return []rating.Event{}
	}
	var events []rating.Event
	if err := json.Unmarshal(raw, &events); err != nil {
		s.log.Warn("rating event log malformed, treating as empty", "error", err)
		return []rating.Event{}
	}
	if events == nil {
		return []rating.Event{}
	}
	return events
}

func (s *Store) save(ctx context.Context, events []rating.Event) error {
	raw, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ErrWriteUnavailable, err)
	}
	if err := s.slot.Save(ctx, raw); err != nil {
		s.log.Error("rating event log write failed", "error", err, "len", len(events))
		return fmt.Errorf("%w: %v", ErrWriteUnavailable, err)
	}
	return nil
}
