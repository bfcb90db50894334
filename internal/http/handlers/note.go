package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/advanced-rating/internal/data/eventstore"
	"github.com/yungbote/advanced-rating/internal/http/response"
	"github.com/yungbote/advanced-rating/internal/noteeditor"
	"github.com/yungbote/advanced-rating/internal/observability"
)

type NoteHandlerDeps struct {
	Notes   *noteeditor.Manager
	Metrics *observability.Metrics
}

type NoteHandler struct {
	notes   *noteeditor.Manager
	metrics *observability.Metrics
}

func NewNoteHandlerWithDeps(deps NoteHandlerDeps) *NoteHandler {
	return &NoteHandler{notes: deps.Notes, metrics: deps.Metrics}
}

func (h *NoteHandler) editor(c *gin.Context) (*noteeditor.Editor, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_editor_id", err)
		return nil, false
	}
	ed, ok := h.notes.Get(id)
	if !ok {
		response.RespondError(c, http.StatusNotFound, "editor_not_open", errors.New("note editor is not open"))
		return nil, false
	}
	return ed, true
}

type noteTextRequest struct {
	Text string `json:"text"`
}

// PUT /api/notes/:id/text
func (h *NoteHandler) SetText(c *gin.Context) {
	var req noteTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	ed, ok := h.editor(c)
	if !ok {
		return
	}
	if !ed.SetText(req.Text) {
		response.RespondError(c, http.StatusConflict, "editor_closed", errors.New("note editor already closed"))
		return
	}
	response.RespondOK(c, gin.H{"id": ed.ID, "draft": ed.Draft()})
}

// POST /api/notes/:id/blur
func (h *NoteHandler) Blur(c *gin.Context) {
	ed, ok := h.editor(c)
	if !ok {
		return
	}
	out, err := ed.Blur(c.Request.Context())
	h.metrics.IncNote(string(out))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, eventstore.ErrWriteUnavailable) {
			status = http.StatusServiceUnavailable
		}
		response.RespondError(c, status, "note_not_saved", err)
		return
	}
	response.RespondOK(c, gin.H{"id": ed.ID, "outcome": out})
}

// POST /api/notes/:id/escape
func (h *NoteHandler) Escape(c *gin.Context) {
	ed, ok := h.editor(c)
	if !ok {
		return
	}
	out := ed.Escape()
	h.metrics.IncNote(string(out))
	response.RespondOK(c, gin.H{"id": ed.ID, "outcome": out})
}
