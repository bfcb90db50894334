package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/yungbote/advanced-rating/internal/platform/gcp"
)

var (
	ErrUnknownFormat = errors.New("unknown export format")
	ErrEmptyLog      = errors.New("rating log is empty")
)

// Sink stores an artifact somewhere and returns where it went.
type Sink interface {
	Name() string
	Save(ctx context.Context, art Artifact) (string, error)
}

type DirSink struct {
	Dir string
}

func NewDirSink(dir string) (*DirSink, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("export dir required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}
	return &DirSink{Dir: dir}, nil
}

func (s *DirSink) Name() string { return "dir" }

func (s *DirSink) Save(_ context.Context, art Artifact) (string, error) {
	p := filepath.Join(s.Dir, filepath.Base(art.Name))
	if err := os.WriteFile(p, art.Body, 0o644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	return p, nil
}

type BucketSink struct {
	bucket gcp.BucketService
	prefix string
}

func NewBucketSink(bucket gcp.BucketService, keyPrefix string) *BucketSink {
	return &BucketSink{bucket: bucket, prefix: strings.Trim(strings.TrimSpace(keyPrefix), "/")}
}

func (s *BucketSink) Name() string { return "gcs" }

func (s *BucketSink) Save(ctx context.Context, art Artifact) (string, error) {
	key := art.Name
	if s.prefix != "" {
		key = path.Join(s.prefix, art.Name)
	}
	if err := s.bucket.UploadFile(ctx, key, bytes.NewReader(art.Body), art.ContentType); err != nil {
		return "", fmt.Errorf("upload export: %w", err)
	}
	return s.bucket.GetPublicURL(key), nil
}

// SaveTo renders format and hands it to sink. An empty CSV export yields
// ErrEmptyLog and writes nothing.
func (e *Exporter) SaveTo(ctx context.Context, sink Sink, format string) (Artifact, string, error) {
	art, ok, err := e.Export(ctx, format)
	if err != nil {
		return Artifact{}, "", err
	}
	if !ok {
		return Artifact{}, "", ErrEmptyLog
	}
	location, err := sink.Save(ctx, art)
	if err != nil {
		return art, "", err
	}
	return art, location, nil
}
