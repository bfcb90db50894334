package app

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yungbote/advanced-rating/internal/config"
	"github.com/yungbote/advanced-rating/internal/domain/rating"
	"github.com/yungbote/advanced-rating/internal/export"
	"github.com/yungbote/advanced-rating/internal/platform/gcp"
	"github.com/yungbote/advanced-rating/internal/platform/logger"
)

func sampleEvent() rating.Event {
	return rating.Event{
		EntityType:    "artist",
		EntityID:      "7",
		Rating:        60,
		Timestamp:     "2024-05-01T08:00:00.000Z",
		ScriptVersion: rating.DefaultScriptVersion,
	}
}

func TestOpenEventStoreFileDriverPersists(t *testing.T) {
	ctx := context.Background()
	cfg := config.StorageConfig{
		Driver: config.DriverFile,
		Key:    "rating_events",
		Path:   filepath.Join(t.TempDir(), "nested", "events.json"),
	}

	store, s, err := OpenEventStore(ctx, logger.Nop(), cfg)
	if err != nil {
		t.Fatalf("OpenEventStore: %v", err)
	}
	if _, err := store.Append(ctx, sampleEvent()); err != nil {
		t.Fatalf("Append: %v", err)
	}
	_ = s.Close()

	reopened, s2, err := OpenEventStore(ctx, logger.Nop(), cfg)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()
	if got := reopened.Len(ctx); got != 1 {
		t.Fatalf("Len after reopen: want=1 got=%d", got)
	}
}

func TestOpenEventStoreSQLiteDriver(t *testing.T) {
	ctx := context.Background()
	cfg := config.StorageConfig{
		Driver: config.DriverSQLite,
		Key:    "rating_events",
		Path:   filepath.Join(t.TempDir(), "rating.db"),
	}

	store, s, err := OpenEventStore(ctx, logger.Nop(), cfg)
	if err != nil {
		t.Fatalf("OpenEventStore: %v", err)
	}
	defer s.Close()
	if _, err := store.Append(ctx, sampleEvent()); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if got := store.Len(ctx); got != 1 {
		t.Fatalf("Len: want=1 got=%d", got)
	}
}

func TestOpenEventStoreUnknownDriver(t *testing.T) {
	_, _, err := OpenEventStore(context.Background(), logger.Nop(), config.StorageConfig{Driver: "etcd"})
	if err == nil || !strings.Contains(err.Error(), "unknown storage driver") {
		t.Fatalf("want unknown driver error, got=%v", err)
	}
}

func TestOpenExportSinkNone(t *testing.T) {
	cfg := config.Default()
	cfg.Export.Sink = config.SinkNone

	sink, closer, err := OpenExportSink(context.Background(), logger.Nop(), cfg)
	if err != nil {
		t.Fatalf("OpenExportSink: %v", err)
	}
	if sink != nil {
		t.Fatalf("sink: want nil got=%T", sink)
	}
	if closer == nil || closer.Close() != nil {
		t.Fatalf("closer: want usable no-op closer")
	}
}

func TestOpenExportSinkDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	cfg := config.Default()
	cfg.Export.Sink = config.SinkDir
	cfg.Export.Dir = dir

	sink, _, err := OpenExportSink(context.Background(), logger.Nop(), cfg)
	if err != nil {
		t.Fatalf("OpenExportSink: %v", err)
	}
	if sink.Name() != "dir" {
		t.Fatalf("name: want=dir got=%q", sink.Name())
	}
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("dir not created: %v", err)
	}
}

type fakeBucket struct {
	closed bool
}

func (f *fakeBucket) UploadFile(context.Context, string, io.Reader, string) error { return nil }
func (f *fakeBucket) GetPublicURL(key string) string                              { return "https://cdn.example/" + key }
func (f *fakeBucket) Close() error                                                { f.closed = true; return nil }

func withBucketFactory(t *testing.T, fn func(context.Context, *logger.Logger, gcp.BucketConfig) (gcp.BucketService, error)) {
	t.Helper()
	prev := newBucketService
	newBucketService = fn
	t.Cleanup(func() { newBucketService = prev })
}

func TestOpenExportSinkGCSUsesBucket(t *testing.T) {
	fb := &fakeBucket{}
	var gotCfg gcp.BucketConfig
	withBucketFactory(t, func(_ context.Context, _ *logger.Logger, cfg gcp.BucketConfig) (gcp.BucketService, error) {
		gotCfg = cfg
		return fb, nil
	})

	cfg := config.Default()
	cfg.Export.Sink = config.SinkGCS
	cfg.Export.Bucket = "ratings"
	cfg.Export.KeyPrefix = "exports"
	cfg.Export.EmulatorHost = "http://fake-gcs:4443"

	sink, closer, err := OpenExportSink(context.Background(), logger.Nop(), cfg)
	if err != nil {
		t.Fatalf("OpenExportSink: %v", err)
	}
	if _, ok := sink.(*export.BucketSink); !ok {
		t.Fatalf("sink: want *export.BucketSink got=%T", sink)
	}
	if gotCfg.Bucket != "ratings" || gotCfg.Storage.Mode != gcp.ObjectStorageModeGCSEmulator {
		t.Fatalf("bucket config: got=%+v", gotCfg)
	}
	if err := closer.Close(); err != nil || !fb.closed {
		t.Fatalf("closer should close the bucket: err=%v closed=%v", err, fb.closed)
	}
}

func TestOpenExportSinkGCSConnectFailed(t *testing.T) {
	withBucketFactory(t, func(context.Context, *logger.Logger, gcp.BucketConfig) (gcp.BucketService, error) {
		return nil, errors.New("dial tcp: connection refused")
	})

	cfg := config.Default()
	cfg.Export.Sink = config.SinkGCS
	cfg.Export.Bucket = "ratings"

	_, _, err := OpenExportSink(context.Background(), logger.Nop(), cfg)
	var got *ExportSinkBootstrapError
	if !errors.As(err, &got) {
		t.Fatalf("expected ExportSinkBootstrapError, got=%T", err)
	}
	if got.Code != ExportSinkBootstrapErrorConnectFailed {
		t.Fatalf("code: want=%q got=%q", ExportSinkBootstrapErrorConnectFailed, got.Code)
	}
}

func TestOpenExportSinkGCSInvalidMode(t *testing.T) {
	cfg := config.Default()
	cfg.Export.Sink = config.SinkGCS
	cfg.Export.Bucket = "ratings"
	cfg.Export.ObjectStorageMode = "s3"

	_, _, err := OpenExportSink(context.Background(), logger.Nop(), cfg)
	if code := exportSinkBootstrapErrorCode(err); code != ExportSinkBootstrapErrorInvalidMode {
		t.Fatalf("code: want=%q got=%q", ExportSinkBootstrapErrorInvalidMode, code)
	}
}

func TestClassifyExportSinkBootstrapError(t *testing.T) {
	cases := []struct {
		name string
		code gcp.ObjectStorageConfigErrorCode
		want ExportSinkBootstrapErrorCode
	}{
		{"invalid mode", gcp.ObjectStorageConfigErrorInvalidMode, ExportSinkBootstrapErrorInvalidMode},
		{"missing emulator host", gcp.ObjectStorageConfigErrorMissingEmulatorHost, ExportSinkBootstrapErrorMissingEmulatorHost},
		{"invalid emulator host", gcp.ObjectStorageConfigErrorInvalidEmulatorHost, ExportSinkBootstrapErrorInvalidEmulatorHost},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			storageCfg := gcp.ObjectStorageConfig{Mode: gcp.ObjectStorageModeGCSEmulator, EmulatorHost: "fake-gcs:4443"}
			err := classifyExportSinkBootstrapError(storageCfg, &gcp.ObjectStorageConfigError{Code: tc.code})

			var got *ExportSinkBootstrapError
			if !errors.As(err, &got) {
				t.Fatalf("expected ExportSinkBootstrapError, got=%T", err)
			}
			if got.Code != tc.want {
				t.Fatalf("code: want=%q got=%q", tc.want, got.Code)
			}
			if got.EmulatorHost != "fake-gcs:4443" {
				t.Fatalf("emulator host: got=%q", got.EmulatorHost)
			}
		})
	}
}
