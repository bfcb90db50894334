package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/advanced-rating/internal/domain/rating"
	"github.com/yungbote/advanced-rating/internal/http/response"
	"github.com/yungbote/advanced-rating/internal/markup"
	"github.com/yungbote/advanced-rating/internal/noteeditor"
	"github.com/yungbote/advanced-rating/internal/platform/ctxutil"
	"github.com/yungbote/advanced-rating/internal/widget"
)

type EventLister interface {
	GetAll(ctx context.Context) []rating.Event
}

type RatingHandlerDeps struct {
	Registry *widget.Registry
	Events   EventLister
}

type RatingHandler struct {
	registry *widget.Registry
	events   EventLister
}

func NewRatingHandlerWithDeps(deps RatingHandlerDeps) *RatingHandler {
	return &RatingHandler{registry: deps.Registry, events: deps.Events}
}

type submitRequest struct {
	// Either Markup or the explicit entity fields describe the control.
	Markup            string `json:"markup"`
	EntityType        string `json:"entity_type"`
	EntityID          string `json:"entity_id"`
	CurrentPercentage int    `json:"current_percentage"`
	IsRated           bool   `json:"is_rated"`

	Value    *int              `json:"value" binding:"required"`
	ReturnTo string            `json:"return_to"`
	Anchor   noteeditor.Anchor `json:"anchor"`
}

func (r submitRequest) state() (rating.WidgetState, error) {
	if strings.TrimSpace(r.Markup) != "" {
		return markup.DeriveFromMarkup(r.Markup)
	}
	return rating.WidgetState{
		EntityType: strings.TrimSpace(r.EntityType),
		EntityID:   strings.TrimSpace(r.EntityID),
		Percentage: rating.ClampPercentage(float64(r.CurrentPercentage)),
		IsRated:    r.IsRated,
	}, nil
}

type EditorView struct {
	ID         uuid.UUID            `json:"id"`
	EventIndex int                  `json:"event_index"`
	Placement  noteeditor.Placement `json:"placement"`
}

// POST /api/ratings
func (h *RatingHandler) Submit(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	st, err := req.state()
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_markup", err)
		return
	}

	opts := widget.SelectOptions{ReturnTo: req.ReturnTo, Anchor: req.Anchor}
	if ud := ctxutil.GetUpstreamData(c.Request.Context()); ud != nil {
		opts.Cookie = ud.Cookie
		if opts.ReturnTo == "" {
			opts.ReturnTo = ud.ReturnTo
		}
	}

	w := h.registry.Bind(st)
	res, err := w.Select(c.Request.Context(), *req.Value, opts)
	if err != nil {
		respondSelectError(c, err)
		return
	}

	view, err := newWidgetView(res.State, res.Phase)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "render_failed", err)
		return
	}
	var ed *EditorView
	if res.Editor != nil {
		ed = &EditorView{ID: res.Editor.ID, EventIndex: res.Editor.EventIndex, Placement: res.Editor.Placement}
	}
	response.RespondOK(c, gin.H{
		"widget":      view,
		"logged":      res.Logged,
		"event_index": res.EventIndex,
		"event":       res.Event,
		"editor":      ed,
	})
}

func respondSelectError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, widget.ErrInvalidRating):
		response.RespondError(c, http.StatusBadRequest, "invalid_rating", err)
	case errors.Is(err, widget.ErrSubmissionDisabled):
		response.RespondError(c, http.StatusUnprocessableEntity, "submission_disabled", err)
	case errors.Is(err, widget.ErrSubmitting):
		response.RespondError(c, http.StatusConflict, "submission_in_flight", err)
	case errors.Is(err, widget.ErrSubmissionFailed):
		_ = c.Error(err)
		response.RespondError(c, http.StatusBadGateway, "submission_failed", errors.New("Failed to submit rating"))
	default:
		response.RespondAPIError(c, err)
	}
}

// GET /api/events
func (h *RatingHandler) ListEvents(c *gin.Context) {
	events := h.events.GetAll(c.Request.Context())
	response.RespondOK(c, gin.H{"events": events, "count": len(events)})
}
