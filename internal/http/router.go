package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/advanced-rating/internal/http/handlers"
	httpMW "github.com/yungbote/advanced-rating/internal/http/middleware"
	"github.com/yungbote/advanced-rating/internal/observability"
	"github.com/yungbote/advanced-rating/internal/platform/logger"
)

type RouterConfig struct {
	ServiceName     string
	Log             *logger.Logger
	Metrics         *observability.Metrics
	CORSOrigins     []string
	MaxRequestBytes int64

	WidgetHandler *httpH.WidgetHandler
	RatingHandler *httpH.RatingHandler
	NoteHandler   *httpH.NoteHandler
	ExportHandler *httpH.ExportHandler
	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "advanced-rating"
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(serviceName))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))
	r.Use(httpMW.AttachUpstreamContext())
	r.Use(httpMW.LimitBody(cfg.MaxRequestBytes))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")
	{
		// Widgets
		if cfg.WidgetHandler != nil {
			api.POST("/widgets/derive", cfg.WidgetHandler.Derive)
			api.GET("/widgets/bar.png", cfg.WidgetHandler.BarPNG)
			api.POST("/pages/rewrite", cfg.WidgetHandler.RewritePage)
		}

		// Ratings
		if cfg.RatingHandler != nil {
			api.POST("/ratings", cfg.RatingHandler.Submit)
			api.GET("/events", cfg.RatingHandler.ListEvents)
		}

		// Notes
		if cfg.NoteHandler != nil {
			api.PUT("/notes/:id/text", cfg.NoteHandler.SetText)
			api.POST("/notes/:id/blur", cfg.NoteHandler.Blur)
			api.POST("/notes/:id/escape", cfg.NoteHandler.Escape)
		}

		// Exports
		if cfg.ExportHandler != nil {
			api.GET("/exports/json", cfg.ExportHandler.DownloadJSON)
			api.GET("/exports/csv", cfg.ExportHandler.DownloadCSV)
			api.POST("/exports/:format", cfg.ExportHandler.Save)
		}
	}

	return r
}
