package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/advanced-rating/internal/config"
	"github.com/yungbote/advanced-rating/internal/data/eventstore"
	"github.com/yungbote/advanced-rating/internal/data/slot"
	"github.com/yungbote/advanced-rating/internal/export"
	httpserver "github.com/yungbote/advanced-rating/internal/http"
	httpH "github.com/yungbote/advanced-rating/internal/http/handlers"
	"github.com/yungbote/advanced-rating/internal/noteeditor"
	"github.com/yungbote/advanced-rating/internal/observability"
	"github.com/yungbote/advanced-rating/internal/platform/logger"
	"github.com/yungbote/advanced-rating/internal/render"
	"github.com/yungbote/advanced-rating/internal/submission"
	"github.com/yungbote/advanced-rating/internal/widget"
)

const serviceName = "advanced-rating"

type App struct {
	Log      *logger.Logger
	Cfg      *config.Config
	Metrics  *observability.Metrics
	Events   *eventstore.Store
	Notes    *noteeditor.Manager
	Widgets  *widget.Registry
	Exporter *export.Exporter
	Server   *httpserver.Server

	slot         slot.Slot
	sinkCloser   io.Closer
	otelShutdown func(context.Context) error
}

// New loads configuration and builds the companion service.
func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	a, err := NewWithConfig(ctx, log, cfg, clockwork.NewRealClock())
	if err != nil {
		log.Sync()
		return nil, err
	}
	return a, nil
}

func NewWithConfig(ctx context.Context, log *logger.Logger, cfg *config.Config, clock clockwork.Clock) (*App, error) {
	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfigFromEnv(serviceName, cfg.Env, cfg.ScriptVersion))

	var metrics *observability.Metrics
	if observability.Enabled() {
		metrics = observability.New(log)
	}

	events, s, err := OpenEventStore(ctx, log, cfg.Storage)
	if err != nil {
		_ = otelShutdown(context.Background())
		return nil, fmt.Errorf("open rating log: %w", err)
	}

	sink, sinkCloser, err := OpenExportSink(ctx, log, cfg)
	if err != nil {
		_ = s.Close()
		_ = otelShutdown(context.Background())
		return nil, fmt.Errorf("open export sink: %w", err)
	}

	a := &App{
		Log:          log,
		Cfg:          cfg,
		Metrics:      metrics,
		Events:       events,
		slot:         s,
		sinkCloser:   sinkCloser,
		otelShutdown: otelShutdown,
	}
	if err := a.wire(clock, sink); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) wire(clock clockwork.Clock, sink export.Sink) error {
	cfg := a.Cfg
	log := a.Log

	client, err := submission.New(submission.Options{
		BaseURL:   cfg.Upstream.BaseURL,
		UserAgent: cfg.Upstream.UserAgent,
		Timeout:   cfg.Upstream.Timeout.Duration,
		Log:       log,
	})
	if err != nil {
		return fmt.Errorf("init submission client: %w", err)
	}

	bars, err := render.NewBarRenderer(cfg.Render.FontPath)
	if err != nil {
		return fmt.Errorf("init bar renderer: %w", err)
	}

	a.Notes = noteeditor.NewManager(a.Events, log)
	a.Widgets = widget.NewRegistry(widget.Deps{
		Submitter:     client,
		Events:        a.Events,
		Notes:         a.Notes,
		Clock:         clock,
		Log:           log,
		Metrics:       a.Metrics,
		ScriptVersion: cfg.ScriptVersion,
	})
	a.Exporter = export.New(a.Events, clock, cfg.Export.Prefix)

	a.Server = httpserver.NewServer(httpserver.RouterConfig{
		ServiceName:     serviceName,
		Log:             log,
		Metrics:         a.Metrics,
		CORSOrigins:     cfg.HTTP.CORSOrigins,
		MaxRequestBytes: cfg.HTTP.MaxRequestBytes,
		WidgetHandler: httpH.NewWidgetHandlerWithDeps(httpH.WidgetHandlerDeps{
			Registry: a.Widgets,
			Bars:     bars,
			Log:      log,
		}),
		RatingHandler: httpH.NewRatingHandlerWithDeps(httpH.RatingHandlerDeps{
			Registry: a.Widgets,
			Events:   a.Events,
		}),
		NoteHandler: httpH.NewNoteHandlerWithDeps(httpH.NoteHandlerDeps{
			Notes:   a.Notes,
			Metrics: a.Metrics,
		}),
		ExportHandler: httpH.NewExportHandlerWithDeps(httpH.ExportHandlerDeps{
			Exporter: a.Exporter,
			Sink:     sink,
			Metrics:  a.Metrics,
			Log:      log,
		}),
		HealthHandler: httpH.NewHealthHandler(),
	}, httpserver.ServerOptions{
		Addr:              cfg.HTTP.Addr,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout.Duration,
		IdleTimeout:       cfg.HTTP.IdleTimeout.Duration,
		ShutdownTimeout:   cfg.HTTP.ShutdownTimeout.Duration,
	})
	return nil
}

// Run serves HTTP until ctx is cancelled, then blurs any open note editor.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.Server.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		if ed := a.Notes.Current(); ed != nil {
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if _, err := ed.Blur(flushCtx); err != nil {
				a.Log.Warn("Flushing open note failed", "event_index", ed.EventIndex, "error", err)
			}
		}
		return nil
	})
	return g.Wait()
}

func (a *App) Close() error {
	var errs []error
	if a.slot != nil {
		if err := a.slot.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close rating log: %w", err))
		}
	}
	if a.sinkCloser != nil {
		if err := a.sinkCloser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close export sink: %w", err))
		}
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.otelShutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("otel shutdown: %w", err))
		}
		cancel()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
	return errors.Join(errs...)
}
