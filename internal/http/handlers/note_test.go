package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/advanced-rating/internal/data/eventstore"
	"github.com/yungbote/advanced-rating/internal/noteeditor"
	"github.com/yungbote/advanced-rating/internal/observability"
)

type amendFunc func(ctx context.Context, index int, note string) error

func (f amendFunc) Amend(ctx context.Context, index int, note string) error {
	return f(ctx, index, note)
}

func noteEngine(t *testing.T, amender noteeditor.Amender) (*gin.Engine, *noteeditor.Manager, *observability.Metrics) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	notes := noteeditor.NewManager(amender, nil)
	metrics := observability.New(nil)
	h := NewNoteHandlerWithDeps(NoteHandlerDeps{Notes: notes, Metrics: metrics})
	r := gin.New()
	r.POST("/api/notes/:id/blur", h.Blur)
	return r, notes, metrics
}

func blurNote(r *gin.Engine, ed *noteeditor.Editor) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/notes/"+ed.ID.String()+"/blur", nil))
	return rec
}

func scrapeMetrics(t *testing.T, m *observability.Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestBlurCountsFailedAmendAsFailed(t *testing.T) {
	r, notes, metrics := noteEngine(t, amendFunc(func(context.Context, int, string) error {
		return eventstore.ErrWriteUnavailable
	}))
	ed := notes.Open(context.Background(), noteeditor.Anchor{}, 0)
	require.True(t, ed.SetText("great live album"))

	rec := blurNote(r, ed)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "note_not_saved")

	body := scrapeMetrics(t, metrics)
	assert.Contains(t, body, `advanced_rating_notes_total{outcome="failed"} 1`)
	assert.False(t, strings.Contains(body, `advanced_rating_notes_total{outcome="saved"}`), body)
}

func TestBlurCountsSavedNote(t *testing.T) {
	var got string
	r, notes, metrics := noteEngine(t, amendFunc(func(_ context.Context, _ int, note string) error {
		got = note
		return nil
	}))
	ed := notes.Open(context.Background(), noteeditor.Anchor{}, 0)
	require.True(t, ed.SetText("great live album"))

	rec := blurNote(r, ed)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "great live album", got)
	assert.Contains(t, scrapeMetrics(t, metrics), `advanced_rating_notes_total{outcome="saved"} 1`)
}

func TestBlurOtherErrorIs500(t *testing.T) {
	r, notes, _ := noteEngine(t, amendFunc(func(context.Context, int, string) error {
		return errors.New("index out of range")
	}))
	ed := notes.Open(context.Background(), noteeditor.Anchor{}, 3)
	require.True(t, ed.SetText("x"))

	assert.Equal(t, http.StatusInternalServerError, blurNote(r, ed).Code)
}
