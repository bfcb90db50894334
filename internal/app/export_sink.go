package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/yungbote/advanced-rating/internal/config"
	"github.com/yungbote/advanced-rating/internal/export"
	"github.com/yungbote/advanced-rating/internal/platform/gcp"
	"github.com/yungbote/advanced-rating/internal/platform/logger"
)

var newBucketService = gcp.NewBucketService

type ExportSinkBootstrapErrorCode string

const (
	ExportSinkBootstrapErrorInvalidMode         ExportSinkBootstrapErrorCode = "invalid_mode"
	ExportSinkBootstrapErrorMissingEmulatorHost ExportSinkBootstrapErrorCode = "missing_emulator_host"
	ExportSinkBootstrapErrorInvalidEmulatorHost ExportSinkBootstrapErrorCode = "invalid_emulator_host"
	ExportSinkBootstrapErrorConnectFailed       ExportSinkBootstrapErrorCode = "connect_failed"
)

type ExportSinkBootstrapError struct {
	Code         ExportSinkBootstrapErrorCode
	Mode         string
	EmulatorHost string
	Cause        error
}

func (e *ExportSinkBootstrapError) Error() string {
	if e == nil {
		return "export sink bootstrap failed"
	}
	return fmt.Sprintf(
		"export sink bootstrap failed (code=%s mode=%q emulator_host=%q): %v",
		e.Code,
		e.Mode,
		e.EmulatorHost,
		e.Cause,
	)
}

func (e *ExportSinkBootstrapError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// OpenExportSink builds the configured sink. A nil sink with a nil error means
// exports are download-only. The closer is never nil.
func OpenExportSink(ctx context.Context, log *logger.Logger, cfg *config.Config) (export.Sink, io.Closer, error) {
	switch cfg.Export.Sink {
	case config.SinkNone, "":
		return nil, nopCloser{}, nil

	case config.SinkDir:
		sink, err := export.NewDirSink(cfg.Export.Dir)
		if err != nil {
			return nil, nopCloser{}, err
		}
		log.Info("Export sink ready", "sink", sink.Name(), "dir", cfg.Export.Dir)
		return sink, nopCloser{}, nil

	case config.SinkGCS:
		bucket, err := resolveBucketService(ctx, log, cfg)
		if err != nil {
			return nil, nopCloser{}, err
		}
		log.Info("Export sink ready", "sink", "gcs", "bucket", cfg.Export.Bucket)
		return export.NewBucketSink(bucket, cfg.Export.KeyPrefix), bucket, nil

	default:
		return nil, nopCloser{}, fmt.Errorf("unknown export sink %q", cfg.Export.Sink)
	}
}

func resolveBucketService(ctx context.Context, log *logger.Logger, cfg *config.Config) (gcp.BucketService, error) {
	storageCfg, err := cfg.ObjectStorage()
	if err != nil {
		classified := classifyExportSinkBootstrapError(storageCfg, err)
		log.Error(
			"Export object storage selection failed",
			"mode", cfg.Export.ObjectStorageMode,
			"emulator_host", storageCfg.EmulatorHost,
			"error_code", exportSinkBootstrapErrorCode(classified),
			"error", classified,
		)
		return nil, classified
	}

	log.Info(
		"Selecting export object storage",
		"mode", storageCfg.Mode,
		"emulator_host", storageCfg.EmulatorHost,
	)

	bucket, err := newBucketService(ctx, log, gcp.BucketConfig{
		Bucket:        cfg.Export.Bucket,
		CDNDomain:     cfg.Export.CDNDomain,
		PublicBaseURL: cfg.Export.PublicBaseURL,
		Credentials:   cfg.Export.Credentials,
		Storage:       storageCfg,
	})
	if err != nil {
		classified := classifyExportSinkBootstrapError(storageCfg, err)
		log.Error(
			"Export object storage bootstrap failed",
			"mode", storageCfg.Mode,
			"emulator_host", storageCfg.EmulatorHost,
			"error_code", exportSinkBootstrapErrorCode(classified),
			"error", classified,
		)
		return nil, classified
	}
	return bucket, nil
}

func classifyExportSinkBootstrapError(storageCfg gcp.ObjectStorageConfig, err error) error {
	code := ExportSinkBootstrapErrorConnectFailed
	var cfgErr *gcp.ObjectStorageConfigError
	if errors.As(err, &cfgErr) {
		switch cfgErr.Code {
		case gcp.ObjectStorageConfigErrorInvalidMode:
			code = ExportSinkBootstrapErrorInvalidMode
		case gcp.ObjectStorageConfigErrorMissingEmulatorHost:
			code = ExportSinkBootstrapErrorMissingEmulatorHost
		case gcp.ObjectStorageConfigErrorInvalidEmulatorHost:
			code = ExportSinkBootstrapErrorInvalidEmulatorHost
		}
	}
	return &ExportSinkBootstrapError{
		Code:         code,
		Mode:         string(storageCfg.Mode),
		EmulatorHost: storageCfg.EmulatorHost,
		Cause:        err,
	}
}

func exportSinkBootstrapErrorCode(err error) ExportSinkBootstrapErrorCode {
	var bootstrapErr *ExportSinkBootstrapError
	if errors.As(err, &bootstrapErr) && bootstrapErr.Code != "" {
		return bootstrapErr.Code
	}
	return ExportSinkBootstrapErrorConnectFailed
}
