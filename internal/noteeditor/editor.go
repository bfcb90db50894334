package noteeditor

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/yungbote/advanced-rating/internal/platform/logger"
)

const (
	Width  = 400
	Height = 120
	// Gap is the vertical distance between the anchor's bottom edge and the editor.
	Gap = 5
)

// Amender writes a note onto an existing event.
type Amender interface {
	Amend(ctx context.Context, index int, note string) error
}

type Outcome string

const (
	OutcomeSaved         Outcome = "saved"
	OutcomeEmpty         Outcome = "empty"
	OutcomeDiscarded     Outcome = "discarded"
	OutcomeAlreadyClosed Outcome = "already_closed"
	// OutcomeFailed means the note was committed but the log write failed.
	OutcomeFailed Outcome = "failed"
)

// Anchor is the rendered bounding box of the rating control plus the page scroll offset.
type Anchor struct {
	Left    float64 `json:"left"`
	Bottom  float64 `json:"bottom"`
	ScrollX float64 `json:"scroll_x"`
	ScrollY float64 `json:"scroll_y"`
}

type Placement struct {
	Top    float64 `json:"top"`
	Left   float64 `json:"left"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
}

func PlacementFor(a Anchor) Placement {
	return Placement{
		Top:    a.Bottom + a.ScrollY + Gap,
		Left:   a.Left + a.ScrollX,
		Width:  Width,
		Height: Height,
	}
}

type Editor struct {
	ID         uuid.UUID
	EventIndex int
	Placement  Placement

	amender Amender
	log     *logger.Logger

	mu      sync.Mutex
	draft   string
	closed  atomic.Bool
	onClose []func(Outcome)
}

func newEditor(amender Amender, log *logger.Logger, anchor Anchor, index int) *Editor {
	return &Editor{
		ID:         uuid.New(),
		EventIndex: index,
		Placement:  PlacementFor(anchor),
		amender:    amender,
		log:        log,
	}
}

func (e *Editor) Open() bool { return !e.closed.Load() }

func (e *Editor) Draft() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.draft
}

// SetText replaces the draft. It reports false once the editor has closed.
func (e *Editor) SetText(s string) bool {
	if e.closed.Load() {
		return false
	}
	e.mu.Lock()
	e.draft = s
	e.mu.Unlock()
	return true
}

// OnClose registers fn to run after the first terminal transition.
func (e *Editor) OnClose(fn func(Outcome)) {
	if fn == nil {
		return
	}
	e.mu.Lock()
	e.onClose = append(e.onClose, fn)
	e.mu.Unlock()
}

// Blur commits the trimmed draft when it is non-empty. A failed amend yields
// OutcomeFailed with the error; the editor is closed either way.
func (e *Editor) Blur(ctx context.Context) (Outcome, error) {
	if !e.closed.CompareAndSwap(false, true) {
		return OutcomeAlreadyClosed, nil
	}
	note := strings.TrimSpace(e.Draft())
	if note == "" {
		e.finish(OutcomeEmpty)
		return OutcomeEmpty, nil
	}
	if err := e.amender.Amend(ctx, e.EventIndex, note); err != nil {
		e.log.Error("Failed to save note", "event_index", e.EventIndex, "editor_id", e.ID.String(), "error", err)
		e.finish(OutcomeFailed)
		return OutcomeFailed, err
	}
	e.log.Info("Note saved", "event_index", e.EventIndex, "editor_id", e.ID.String())
	e.finish(OutcomeSaved)
	return OutcomeSaved, nil
}

// Escape discards the draft.
func (e *Editor) Escape() Outcome {
	if !e.closed.CompareAndSwap(false, true) {
		return OutcomeAlreadyClosed
	}
	e.finish(OutcomeDiscarded)
	return OutcomeDiscarded
}

func (e *Editor) finish(out Outcome) {
	e.mu.Lock()
	fns := e.onClose
	e.onClose = nil
	e.mu.Unlock()
	for _, fn := range fns {
		fn(out)
	}
}
