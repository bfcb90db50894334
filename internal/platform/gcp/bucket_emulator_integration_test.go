package gcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/yungbote/advanced-rating/internal/platform/logger"
)

func TestBucketServiceEmulatorUpload(t *testing.T) {
	if !strings.EqualFold(strings.TrimSpace(os.Getenv("RUN_GCS_EMULATOR_INTEGRATION")), "true") {
		t.Skip("set RUN_GCS_EMULATOR_INTEGRATION=true to run emulator integration tests")
	}
	emulatorHost := strings.TrimRight(strings.TrimSpace(os.Getenv("STORAGE_EMULATOR_HOST")), "/")
	if emulatorHost == "" {
		emulatorHost = "http://127.0.0.1:4443"
	}
	if !isEmulatorReachable(emulatorHost) {
		t.Skipf("storage emulator not reachable at %s", emulatorHost)
	}

	bucketName := fmt.Sprintf("ar-it-exports-%d", time.Now().UnixNano())
	createBucketIfMissing(t, emulatorHost, bucketName)

	ctx := context.Background()
	bucket, err := NewBucketService(ctx, logger.Nop(), BucketConfig{
		Bucket:  bucketName,
		Storage: ObjectStorageConfig{Mode: ObjectStorageModeGCSEmulator, EmulatorHost: emulatorHost},
	})
	if err != nil {
		t.Fatalf("NewBucketService: %v", err)
	}
	defer bucket.Close()

	key := "ratings/musicbrainz_ratings_it.json"
	if err := bucket.UploadFile(ctx, key, strings.NewReader(`[]`), "application/json"); err != nil {
		t.Fatalf("UploadFile: %v", err)
	}

	resp, err := http.Get(bucket.GetPublicURL(key))
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(body) != "[]" {
		t.Fatalf("download: status=%d body=%q", resp.StatusCode, string(body))
	}
}

func isEmulatorReachable(emulatorHost string) bool {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(emulatorHost + "/storage/v1/b?project=local-dev")
	if err != nil {
		return false
	}
	_ = resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 500
}

func createBucketIfMissing(t *testing.T, emulatorHost string, bucket string) {
	t.Helper()
	payload, _ := json.Marshal(map[string]string{"name": bucket})
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Post(emulatorHost+"/storage/v1/b?project=local-dev", "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("create bucket %q: %v", bucket, err)
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusConflict:
		return
	}
	b, _ := io.ReadAll(resp.Body)
	t.Fatalf("create bucket %q failed: status=%d body=%s", bucket, resp.StatusCode, strings.TrimSpace(string(b)))
}
