package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/advanced-rating/internal/app"
	"github.com/yungbote/advanced-rating/internal/config"
	"github.com/yungbote/advanced-rating/internal/export"
	"github.com/yungbote/advanced-rating/internal/platform/logger"
)

func main() {
	var format, dir, prefix string
	var dryRun bool
	flag.StringVar(&format, "format", "both", "json, csv or both")
	flag.StringVar(&dir, "dir", "", "write into this directory instead of the configured export sink")
	flag.StringVar(&prefix, "prefix", "", "file name prefix (default from config)")
	flag.BoolVar(&dryRun, "dry-run", false, "print what would be exported without writing")
	flag.Parse()

	formats, err := parseFormats(format)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("load config: %v\n", err)
		os.Exit(1)
	}
	if strings.TrimSpace(dir) != "" {
		cfg.Export.Sink = config.SinkDir
		cfg.Export.Dir = dir
	}
	if strings.TrimSpace(prefix) != "" {
		cfg.Export.Prefix = prefix
	}
	log, err := logger.New(cfg.Env)
	if err != nil {
		fmt.Printf("init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	events, s, err := app.OpenEventStore(ctx, log, cfg.Storage)
	if err != nil {
		fmt.Printf("open rating log: %v\n", err)
		os.Exit(1)
	}
	defer s.Close()

	exporter := export.New(events, clockwork.NewRealClock(), cfg.Export.Prefix)

	if dryRun {
		n := events.Len(ctx)
		for _, f := range formats {
			art, ok, err := exporter.Export(ctx, f)
			switch {
			case err != nil:
				fmt.Printf("[dry-run] %s: %v\n", f, err)
			case !ok:
				fmt.Printf("[dry-run] %s: log is empty, nothing to write\n", f)
			default:
				fmt.Printf("[dry-run] %s: %s (%d events, %d bytes)\n", f, art.Name, n, len(art.Body))
			}
		}
		return
	}

	sink, closer, err := app.OpenExportSink(ctx, log, cfg)
	if err != nil {
		fmt.Printf("open export sink: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()
	if sink == nil {
		fmt.Println("no export sink configured; pass -dir or set export.sink")
		os.Exit(1)
	}

	var mu sync.Mutex
	written := 0
	g, gctx := errgroup.WithContext(ctx)
	for _, f := range formats {
		g.Go(func() error {
			art, location, err := exporter.SaveTo(gctx, sink, f)
			if errors.Is(err, export.ErrEmptyLog) {
				fmt.Printf("%s: log is empty, skipped\n", f)
				return nil
			}
			if err != nil {
				return fmt.Errorf("%s: %w", f, err)
			}
			mu.Lock()
			written++
			mu.Unlock()
			fmt.Printf("%s: wrote %s to %s\n", f, art.Name, location)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		fmt.Printf("export failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("done; written=%d\n", written)
}

func parseFormats(v string) ([]string, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "both", "":
		return []string{export.FormatJSON, export.FormatCSV}, nil
	case export.FormatJSON:
		return []string{export.FormatJSON}, nil
	case export.FormatCSV:
		return []string{export.FormatCSV}, nil
	default:
		return nil, fmt.Errorf("unknown -format %q (want json, csv or both)", v)
	}
}
