package widget

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/advanced-rating/internal/data/eventstore"
	"github.com/yungbote/advanced-rating/internal/data/slot"
	"github.com/yungbote/advanced-rating/internal/domain/rating"
	"github.com/yungbote/advanced-rating/internal/noteeditor"
	"github.com/yungbote/advanced-rating/internal/submission"
)

type stubSubmitter struct {
	mu       sync.Mutex
	ok       bool
	requests []submission.Request
	// block, when set, holds Submit until closed.
	block   chan struct{}
	entered chan struct{}
}

func (s *stubSubmitter) Submit(ctx context.Context, req submission.Request) submission.Outcome {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()
	if s.entered != nil {
		close(s.entered)
	}
	if s.block != nil {
		<-s.block
	}
	if !s.ok {
		return submission.Outcome{StatusCode: 500, Err: &submission.StatusError{StatusCode: 500}}
	}
	return submission.Outcome{OK: true, StatusCode: 200}
}

type brokenAppender struct{}

func (brokenAppender) Append(context.Context, rating.Event) (int, error) {
	return -1, eventstore.ErrWriteUnavailable
}

var at = time.Date(2024, 3, 9, 12, 30, 0, 250_000_000, time.UTC)

func fixture(t *testing.T, sub Submitter) (Deps, *eventstore.Store, *noteeditor.Manager) {
	t.Helper()
	store := eventstore.New(slot.NewMemory(), nil)
	notes := noteeditor.NewManager(store, nil)
	return Deps{
		Submitter: sub,
		Events:    store,
		Notes:     notes,
		Clock:     clockwork.NewFakeClockAt(at),
	}, store, notes
}

func ratedArtist(p int) rating.WidgetState {
	return rating.WidgetState{EntityType: "artist", EntityID: "42", Percentage: p, IsRated: p > 0}
}

func TestInitialPhase(t *testing.T) {
	assert.Equal(t, PhaseUnrated, New(ratedArtist(0), Deps{}).Phase())
	assert.Equal(t, PhaseRated, New(ratedArtist(60), Deps{}).Phase())
}

func TestSelectSuccessAppendsAndOpensEditor(t *testing.T) {
	sub := &stubSubmitter{ok: true}
	deps, store, notes := fixture(t, sub)
	w := New(ratedArtist(60), deps)

	res, err := w.Select(context.Background(), 87, SelectOptions{ReturnTo: "/artist/x", Cookie: "c=1"})
	require.NoError(t, err)
	assert.True(t, res.Logged)
	assert.Equal(t, 0, res.EventIndex)
	assert.Equal(t, PhaseSubmittedAwaitingNote, res.Phase)
	assert.Equal(t, 87, res.State.Percentage)
	require.NotNil(t, res.Editor)
	assert.Same(t, res.Editor, notes.Current())

	events := store.GetAll(context.Background())
	require.Len(t, events, 1)
	assert.Equal(t, rating.Event{
		EntityType:     "artist",
		EntityID:       "42",
		Rating:         87,
		PreviousRating: 60,
		Timestamp:      "2024-03-09T12:30:00.250Z",
		ScriptVersion:  rating.DefaultScriptVersion,
	}, events[0])

	require.Len(t, sub.requests, 1)
	assert.Equal(t, submission.Request{EntityType: "artist", EntityID: "42", Rating: 87, ReturnTo: "/artist/x", Cookie: "c=1"}, sub.requests[0])

	res.Editor.SetText(" loved it ")
	_, err = res.Editor.Blur(context.Background())
	require.NoError(t, err)
	assert.Equal(t, PhaseRated, w.Phase())
	assert.Equal(t, "loved it", store.GetAll(context.Background())[0].Note)
}

func TestSelectFromUnratedRecordsZeroPrevious(t *testing.T) {
	deps, store, _ := fixture(t, &stubSubmitter{ok: true})
	w := New(ratedArtist(0), deps)
	_, err := w.Select(context.Background(), 33, SelectOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, store.GetAll(context.Background())[0].PreviousRating)
}

func TestSecondSelectUsesFirstAsPrevious(t *testing.T) {
	deps, store, _ := fixture(t, &stubSubmitter{ok: true})
	w := New(ratedArtist(20), deps)
	_, err := w.Select(context.Background(), 45, SelectOptions{})
	require.NoError(t, err)
	_, err = w.Select(context.Background(), 93, SelectOptions{})
	require.NoError(t, err)

	events := store.GetAll(context.Background())
	require.Len(t, events, 2)
	assert.Equal(t, 20, events[0].PreviousRating)
	assert.Equal(t, 45, events[1].PreviousRating)
	assert.Equal(t, 93, events[1].Rating)
}

func TestSelectFailureLeavesNoTrace(t *testing.T) {
	deps, store, notes := fixture(t, &stubSubmitter{ok: false})
	w := New(ratedArtist(60), deps)

	res, err := w.Select(context.Background(), 87, SelectOptions{})
	require.ErrorIs(t, err, ErrSubmissionFailed)
	var se *submission.StatusError
	assert.True(t, errors.As(err, &se))
	assert.Equal(t, 60, res.State.Percentage)
	assert.Equal(t, PhaseRated, res.Phase)
	assert.Equal(t, ratedArtist(60), w.State())
	assert.Empty(t, store.GetAll(context.Background()))
	assert.Nil(t, notes.Current())
}

func TestSelectRejectsOutOfRange(t *testing.T) {
	sub := &stubSubmitter{ok: true}
	deps, _, _ := fixture(t, sub)
	w := New(ratedArtist(60), deps)
	for _, v := range []int{-1, 101} {
		_, err := w.Select(context.Background(), v, SelectOptions{})
		assert.ErrorIs(t, err, ErrInvalidRating)
	}
	assert.Empty(t, sub.requests)
}

func TestSelectDisabledIsNoop(t *testing.T) {
	sub := &stubSubmitter{ok: true}
	deps, store, _ := fixture(t, sub)
	w := New(rating.WidgetState{EntityID: "42", Percentage: 30, IsRated: true}, deps)

	res, err := w.Select(context.Background(), 87, SelectOptions{})
	require.ErrorIs(t, err, ErrSubmissionDisabled)
	assert.Equal(t, 30, res.State.Percentage)
	assert.Empty(t, sub.requests)
	assert.Empty(t, store.GetAll(context.Background()))
}

func TestSelectWhileSubmittingIsRejected(t *testing.T) {
	sub := &stubSubmitter{ok: true, block: make(chan struct{}), entered: make(chan struct{})}
	deps, store, _ := fixture(t, sub)
	w := New(ratedArtist(10), deps)

	done := make(chan error, 1)
	go func() {
		_, err := w.Select(context.Background(), 51, SelectOptions{})
		done <- err
	}()
	<-sub.entered
	assert.Equal(t, PhaseSubmitting, w.Phase())

	_, err := w.Select(context.Background(), 99, SelectOptions{})
	assert.ErrorIs(t, err, ErrSubmitting)

	close(sub.block)
	require.NoError(t, <-done)
	assert.Len(t, store.GetAll(context.Background()), 1)
}

func TestSelectWriteFailureStillReportsRating(t *testing.T) {
	deps, _, notes := fixture(t, &stubSubmitter{ok: true})
	deps.Events = brokenAppender{}
	w := New(ratedArtist(60), deps)

	res, err := w.Select(context.Background(), 75, SelectOptions{})
	require.NoError(t, err)
	assert.False(t, res.Logged)
	assert.Equal(t, -1, res.EventIndex)
	assert.Equal(t, 75, res.State.Percentage)
	assert.Equal(t, PhaseRated, res.Phase)
	assert.Nil(t, res.Editor)
	assert.Nil(t, notes.Current())
}

func TestNewSelectionBlursPreviousEditor(t *testing.T) {
	deps, store, _ := fixture(t, &stubSubmitter{ok: true})
	w := New(ratedArtist(0), deps)

	first, err := w.Select(context.Background(), 21, SelectOptions{})
	require.NoError(t, err)
	first.Editor.SetText("first")

	second, err := w.Select(context.Background(), 27, SelectOptions{})
	require.NoError(t, err)
	assert.False(t, first.Editor.Open())
	assert.Equal(t, PhaseSubmittedAwaitingNote, w.Phase())
	assert.Same(t, second.Editor, w.Editor())

	events := store.GetAll(context.Background())
	require.Len(t, events, 2)
	assert.Equal(t, "first", events[0].Note)
	assert.Equal(t, "", events[1].Note)
}

func TestRegistryBindReturnsInFlightWidget(t *testing.T) {
	sub := &stubSubmitter{ok: true, block: make(chan struct{}), entered: make(chan struct{})}
	deps, _, _ := fixture(t, sub)
	reg := NewRegistry(deps)

	w := reg.Bind(ratedArtist(10))
	done := make(chan struct{})
	go func() {
		_, _ = w.Select(context.Background(), 51, SelectOptions{})
		close(done)
	}()
	<-sub.entered

	again := reg.Bind(ratedArtist(10))
	assert.Same(t, w, again)
	assert.Equal(t, PhaseSubmitting, again.Phase())

	close(sub.block)
	<-done
	assert.Equal(t, 1, reg.Len())
}

func TestRegistryBindResyncsIdleWidget(t *testing.T) {
	deps, _, _ := fixture(t, &stubSubmitter{ok: true})
	reg := NewRegistry(deps)

	w := reg.Bind(ratedArtist(10))
	again := reg.Bind(ratedArtist(0))
	assert.Same(t, w, again)
	assert.Equal(t, PhaseUnrated, again.Phase())
	assert.Equal(t, 0, again.State().Percentage)
}

func TestRegistryDoesNotTrackDisabledWidgets(t *testing.T) {
	reg := NewRegistry(Deps{})
	w := reg.Bind(rating.WidgetState{EntityID: "1"})
	assert.NotNil(t, w)
	assert.Equal(t, 0, reg.Len())
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "submitted_awaiting_note", PhaseSubmittedAwaitingNote.String())
	b, _ := PhaseSubmitting.MarshalText()
	assert.Equal(t, "submitting", string(b))
}
