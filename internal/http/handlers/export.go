package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/advanced-rating/internal/export"
	"github.com/yungbote/advanced-rating/internal/http/response"
	"github.com/yungbote/advanced-rating/internal/observability"
	"github.com/yungbote/advanced-rating/internal/platform/logger"
)

type ExportHandlerDeps struct {
	Exporter *export.Exporter
	// Sink is optional; without it only downloads are served.
	Sink    export.Sink
	Metrics *observability.Metrics
	Log     *logger.Logger
}

type ExportHandler struct {
	exporter *export.Exporter
	sink     export.Sink
	metrics  *observability.Metrics
	log      *logger.Logger
}

func NewExportHandlerWithDeps(deps ExportHandlerDeps) *ExportHandler {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	return &ExportHandler{exporter: deps.Exporter, sink: deps.Sink, metrics: deps.Metrics, log: log.With("handler", "ExportHandler")}
}

// GET /api/exports/json
func (h *ExportHandler) DownloadJSON(c *gin.Context) {
	art, err := h.exporter.JSON(c.Request.Context())
	h.metrics.IncExport(export.FormatJSON, "download", err == nil)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "export_failed", err)
		return
	}
	attach(c, art)
}

// GET /api/exports/csv
func (h *ExportHandler) DownloadCSV(c *gin.Context) {
	art, ok := h.exporter.CSV(c.Request.Context())
	if !ok {
		c.Status(http.StatusNoContent)
		return
	}
	h.metrics.IncExport(export.FormatCSV, "download", true)
	attach(c, art)
}

func attach(c *gin.Context, art export.Artifact) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, art.Name))
	c.Data(http.StatusOK, art.ContentType, art.Body)
}

// POST /api/exports/:format
func (h *ExportHandler) Save(c *gin.Context) {
	if h.sink == nil {
		response.RespondError(c, http.StatusNotImplemented, "export_sink_disabled", errors.New("no export sink configured"))
		return
	}
	format := c.Param("format")
	art, ok, err := h.exporter.Export(c.Request.Context(), format)
	if errors.Is(err, export.ErrUnknownFormat) {
		response.RespondError(c, http.StatusBadRequest, "unknown_format", err)
		return
	}
	if err != nil {
		h.metrics.IncExport(format, h.sink.Name(), false)
		response.RespondError(c, http.StatusInternalServerError, "export_failed", err)
		return
	}
	if !ok {
		c.Status(http.StatusNoContent)
		return
	}
	location, err := h.sink.Save(c.Request.Context(), art)
	h.metrics.IncExport(format, h.sink.Name(), err == nil)
	if err != nil {
		response.RespondError(c, http.StatusBadGateway, "export_save_failed", err)
		return
	}
	h.log.Info("Export saved", "name", art.Name, "sink", h.sink.Name(), "location", location)
	response.RespondOK(c, gin.H{"name": art.Name, "sink": h.sink.Name(), "location": location})
}
