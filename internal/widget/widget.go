// Package widget runs the numeric rating control: one Widget per entity,
// moving through Unrated/Rated -> Submitting -> SubmittedAwaitingNote -> Rated.
package widget

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/yungbote/advanced-rating/internal/domain/rating"
	"github.com/yungbote/advanced-rating/internal/noteeditor"
	"github.com/yungbote/advanced-rating/internal/observability"
	"github.com/yungbote/advanced-rating/internal/platform/logger"
	"github.com/yungbote/advanced-rating/internal/submission"
)

var (
	ErrInvalidRating      = errors.New("rating must be between 0 and 100")
	ErrSubmissionDisabled = errors.New("submission disabled: entity type or id missing")
	ErrSubmitting         = errors.New("a submission for this entity is already in flight")
	ErrSubmissionFailed   = errors.New("failed to submit rating")
)

type Submitter interface {
	Submit(ctx context.Context, req submission.Request) submission.Outcome
}

type Appender interface {
	Append(ctx context.Context, ev rating.Event) (int, error)
}

type NoteOpener interface {
	Open(ctx context.Context, anchor noteeditor.Anchor, eventIndex int) *noteeditor.Editor
}

type Deps struct {
	Submitter     Submitter
	Events        Appender
	Notes         NoteOpener
	Clock         clockwork.Clock
	Log           *logger.Logger
	Metrics       *observability.Metrics
	ScriptVersion string
}

func (d Deps) withDefaults() Deps {
	if d.Clock == nil {
		d.Clock = clockwork.NewRealClock()
	}
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	if d.ScriptVersion == "" {
		d.ScriptVersion = rating.DefaultScriptVersion
	}
	return d
}

type SelectOptions struct {
	// ReturnTo is the host page path, forwarded as the returnto hint.
	ReturnTo string
	Cookie   string
	Anchor   noteeditor.Anchor
}

type Result struct {
	State rating.WidgetState `json:"state"`
	Phase Phase              `json:"phase"`
	// EventIndex is -1 when nothing was logged.
	EventIndex int                `json:"event_index"`
	Event      *rating.Event      `json:"event,omitempty"`
	Logged     bool               `json:"logged"`
	Editor     *noteeditor.Editor `json:"-"`
}

type Widget struct {
	deps Deps

	mu     sync.Mutex
	state  rating.WidgetState
	phase  Phase
	editor *noteeditor.Editor
}

func New(state rating.WidgetState, deps Deps) *Widget {
	return &Widget{
		deps:  deps.withDefaults(),
		state: state,
		phase: initialPhase(state.IsRated),
	}
}

func (w *Widget) State() rating.WidgetState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

func (w *Widget) Phase() Phase {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.phase
}

// Resync replaces the state with a fresh derivation from markup. It is a
// no-op while a submission is in flight.
func (w *Widget) Resync(state rating.WidgetState) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.phase == PhaseSubmitting {
		return
	}
	w.state = state
	if w.phase != PhaseSubmittedAwaitingNote {
		w.phase = initialPhase(state.IsRated)
	}
}

// Select handles the user picking value from the control.
func (w *Widget) Select(ctx context.Context, value int, opts SelectOptions) (Result, error) {
	if !rating.ValidValue(value) {
		return Result{EventIndex: -1}, ErrInvalidRating
	}

	w.mu.Lock()
	if !w.state.CanSubmit() {
		res := w.resultLocked()
		w.mu.Unlock()
		return res, ErrSubmissionDisabled
	}
	if w.phase == PhaseSubmitting {
		res := w.resultLocked()
		w.mu.Unlock()
		return res, ErrSubmitting
	}
	prevState, prevPhase := w.state, w.phase
	w.phase = PhaseSubmitting
	w.mu.Unlock()

	log := w.deps.Log.With("entity_type", prevState.EntityType, "entity_id", prevState.EntityID)

	start := w.deps.Clock.Now()
	out := w.deps.Submitter.Submit(ctx, submission.Request{
		EntityType: prevState.EntityType,
		EntityID:   prevState.EntityID,
		Rating:     value,
		ReturnTo:   opts.ReturnTo,
		Cookie:     opts.Cookie,
	})
	w.deps.Metrics.ObserveSubmission(out.OK, w.deps.Clock.Since(start))

	if !out.OK {
		w.mu.Lock()
		w.state, w.phase = prevState, prevPhase
		res := w.resultLocked()
		w.mu.Unlock()
		cause := out.Err
		if cause == nil {
			cause = fmt.Errorf("status %d", out.StatusCode)
		}
		return res, fmt.Errorf("%w: %w", ErrSubmissionFailed, cause)
	}

	w.mu.Lock()
	w.state.Percentage = value
	w.state.IsRated = true
	w.phase = PhaseSubmittedAwaitingNote
	w.mu.Unlock()

	ev, err := rating.NewEvent(prevState.EntityType, prevState.EntityID, value, prevState.Percentage, w.deps.Clock.Now(), w.deps.ScriptVersion)
	if err != nil {
		log.Error("Rating submitted but event invalid", "rating", value, "error", err)
		return w.settle(), nil
	}
	idx, err := w.deps.Events.Append(ctx, ev)
	if err != nil {
		log.Error("Rating submitted but not logged", "rating", value, "error", err)
		w.deps.Metrics.IncStorageError("append")
		return w.settle(), nil
	}
	w.deps.Metrics.IncEventAppended(ev.EntityType)
	log.Info("Rating event appended", "rating", value, "previous_rating", prevState.Percentage, "event_index", idx)

	res := Result{EventIndex: idx, Event: &ev, Logged: true}
	if w.deps.Notes == nil {
		res = w.settleWith(res)
		return res, nil
	}

	ed := w.deps.Notes.Open(ctx, opts.Anchor, idx)
	ed.OnClose(func(noteeditor.Outcome) { w.editorClosed(ed) })

	w.mu.Lock()
	w.editor = ed
	if ed.Open() {
		w.phase = PhaseSubmittedAwaitingNote
	} else {
		w.phase = PhaseRated
	}
	res.State, res.Phase, res.Editor = w.state, w.phase, ed
	w.mu.Unlock()
	return res, nil
}

func (w *Widget) Editor() *noteeditor.Editor {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.editor
}

func (w *Widget) editorClosed(ed *noteeditor.Editor) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.editor != ed {
		return
	}
	w.editor = nil
	if w.phase == PhaseSubmittedAwaitingNote {
		w.phase = PhaseRated
	}
}

// settle finishes a successful submit that produced no editor.
func (w *Widget) settle() Result {
	return w.settleWith(Result{EventIndex: -1})
}

func (w *Widget) settleWith(res Result) Result {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.phase = PhaseRated
	res.State, res.Phase = w.state, w.phase
	return res
}

func (w *Widget) resultLocked() Result {
	return Result{State: w.state, Phase: w.phase, EventIndex: -1}
}
