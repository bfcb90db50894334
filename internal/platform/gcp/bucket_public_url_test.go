package gcp

import "testing"

func TestResolvePublicBaseURL(t *testing.T) {
	emu := ObjectStorageConfig{Mode: ObjectStorageModeGCSEmulator, EmulatorHost: "http://fake-gcs:4443"}

	base, source, err := resolvePublicBaseURL("", ObjectStorageConfig{Mode: ObjectStorageModeGCS})
	if err != nil || base != "" || source != "gcs_default" {
		t.Fatalf("gcs default: base=%q source=%q err=%v", base, source, err)
	}
	base, source, err = resolvePublicBaseURL("", emu)
	if err != nil || base != "http://fake-gcs:4443" || source != "storage_emulator_host" {
		t.Fatalf("emulator fallback: base=%q source=%q err=%v", base, source, err)
	}
	base, source, err = resolvePublicBaseURL("http://localhost:4443/", emu)
	if err != nil || base != "http://localhost:4443" || source != "public_base_url" {
		t.Fatalf("override: base=%q source=%q err=%v", base, source, err)
	}
	if _, _, err := resolvePublicBaseURL("localhost:4443", emu); err == nil {
		t.Fatalf("relative override: expected error")
	}
}

func TestGetPublicURL(t *testing.T) {
	cases := []struct {
		name string
		bs   *bucketService
		want string
	}{
		{
			name: "gcs default",
			bs:   &bucketService{bucket: "exports"},
			want: "https://storage.googleapis.com/exports/ratings/musicbrainz_ratings_x.json",
		},
		{
			name: "cdn",
			bs:   &bucketService{bucket: "exports", cdnDomain: "cdn.example.com"},
			want: "https://cdn.example.com/ratings/musicbrainz_ratings_x.json",
		},
		{
			name: "emulator",
			bs:   &bucketService{bucket: "exports", storageMode: ObjectStorageModeGCSEmulator, emulatorHost: "http://fake-gcs:4443"},
			want: "http://fake-gcs:4443/storage/v1/b/exports/o/ratings%2Fmusicbrainz_ratings_x.json?alt=media",
		},
		{
			name: "public base",
			bs:   &bucketService{bucket: "exports", publicBaseURL: "http://files.local"},
			want: "http://files.local/exports/ratings/musicbrainz_ratings_x.json",
		},
	}
	for _, tc := range cases {
		if got := tc.bs.GetPublicURL("/ratings/musicbrainz_ratings_x.json"); got != tc.want {
			t.Fatalf("%s: want=%q got=%q", tc.name, tc.want, got)
		}
	}
}

func TestContentTypeForKey(t *testing.T) {
	if got := contentTypeForKey("a.CSV"); got != "text/csv" {
		t.Fatalf("csv: got=%q", got)
	}
	if got := contentTypeForKey("a.json"); got != "application/json" {
		t.Fatalf("json: got=%q", got)
	}
}
