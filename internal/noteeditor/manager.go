// Package noteeditor holds the transient note editor shown after a rating
// change. Only one editor is open at a time.
package noteeditor

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/yungbote/advanced-rating/internal/platform/logger"
)

type Manager struct {
	amender Amender
	log     *logger.Logger

	mu      sync.Mutex
	current *Editor
}

func NewManager(amender Amender, log *logger.Logger) *Manager {
	if log == nil {
		log = logger.Nop()
	}
	return &Manager{amender: amender, log: log.With("service", "NoteEditor")}
}

// Open shows a new editor bound to eventIndex. An editor that is still open
// loses focus first, so its draft is saved by the blur rule.
func (m *Manager) Open(ctx context.Context, anchor Anchor, eventIndex int) *Editor {
	ed := newEditor(m.amender, m.log, anchor, eventIndex)
	ed.OnClose(func(Outcome) { m.forget(ed) })

	m.mu.Lock()
	prev := m.current
	m.current = ed
	m.mu.Unlock()

	if prev != nil {
		_, _ = prev.Blur(ctx)
	}
	return ed
}

// Get returns the open editor with the given id.
func (m *Manager) Get(id uuid.UUID) (*Editor, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil || m.current.ID != id {
		return nil, false
	}
	return m.current, true
}

func (m *Manager) Current() *Editor {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

func (m *Manager) forget(ed *Editor) {
	m.mu.Lock()
	if m.current == ed {
		m.current = nil
	}
	m.mu.Unlock()
}
