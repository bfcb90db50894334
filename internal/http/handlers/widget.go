package handlers

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/advanced-rating/internal/domain/rating"
	"github.com/yungbote/advanced-rating/internal/http/response"
	"github.com/yungbote/advanced-rating/internal/markup"
	"github.com/yungbote/advanced-rating/internal/platform/logger"
	"github.com/yungbote/advanced-rating/internal/render"
	"github.com/yungbote/advanced-rating/internal/widget"
)

type WidgetHandlerDeps struct {
	Registry *widget.Registry
	Bars     *render.BarRenderer
	Log      *logger.Logger
}

type WidgetHandler struct {
	registry *widget.Registry
	bars     *render.BarRenderer
	log      *logger.Logger
}

func NewWidgetHandlerWithDeps(deps WidgetHandlerDeps) *WidgetHandler {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	return &WidgetHandler{registry: deps.Registry, bars: deps.Bars, log: log.With("handler", "WidgetHandler")}
}

type WidgetView struct {
	State     rating.WidgetState `json:"state"`
	Phase     widget.Phase       `json:"phase"`
	CanSubmit bool               `json:"can_submit"`
	Options   []rating.Option    `json:"options"`
	HTML      string             `json:"html"`
}

func newWidgetView(st rating.WidgetState, phase widget.Phase) (WidgetView, error) {
	out, err := markup.RenderHTML(st)
	if err != nil {
		return WidgetView{}, err
	}
	return WidgetView{
		State:     st,
		Phase:     phase,
		CanSubmit: st.CanSubmit(),
		Options:   rating.Options(st.Percentage),
		HTML:      out,
	}, nil
}

type deriveRequest struct {
	Markup string `json:"markup" binding:"required"`
}

// POST /api/widgets/derive
func (h *WidgetHandler) Derive(c *gin.Context) {
	var req deriveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	st, err := markup.DeriveFromMarkup(req.Markup)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_markup", err)
		return
	}
	w := h.registry.Bind(st)
	view, err := newWidgetView(w.State(), w.Phase())
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "render_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"widget": view})
}

// POST /api/pages/rewrite
func (h *WidgetHandler) RewritePage(c *gin.Context) {
	var out bytes.Buffer
	states, err := markup.RewritePage(c.Request.Body, &out)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_markup", err)
		return
	}
	for _, st := range states {
		h.registry.Bind(st)
	}
	h.log.Debug("Page rewritten", "widgets", len(states))
	c.Header("X-Rating-Widgets", strconv.Itoa(len(states)))
	c.Data(http.StatusOK, "text/html; charset=utf-8", out.Bytes())
}

// GET /api/widgets/bar.png?percentage=57&rated=true&scale=2
func (h *WidgetHandler) BarPNG(c *gin.Context) {
	if h.bars == nil {
		response.RespondError(c, http.StatusNotImplemented, "render_disabled", nil)
		return
	}
	pct, err := strconv.ParseFloat(c.DefaultQuery("percentage", "0"), 64)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_percentage", err)
		return
	}
	rated, _ := strconv.ParseBool(c.DefaultQuery("rated", "false"))
	scale, _ := strconv.Atoi(c.DefaultQuery("scale", "1"))

	png, err := h.bars.PNG(rating.WidgetState{Percentage: rating.ClampPercentage(pct), IsRated: rated}, scale)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "render_failed", err)
		return
	}
	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, "image/png", png)
}
