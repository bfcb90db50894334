package observability

import (
	"context"
	"testing"
)

func TestParseHeaders(t *testing.T) {
	got := parseHeaders(" api-key = abc ,broken, =x,dataset=ratings")
	if len(got) != 2 {
		t.Fatalf("len: want=2 got=%v", got)
	}
	if got["api-key"] != "abc" || got["dataset"] != "ratings" {
		t.Fatalf("headers: got=%v", got)
	}
	if parseHeaders("") != nil {
		t.Fatalf("empty: want nil")
	}
}

func TestParseRatio(t *testing.T) {
	cases := map[string]float64{
		"0.25": 0.25,
		"2":    1,
		"-1":   0,
		"NaN":  defaultSampleRatio,
		"abc":  defaultSampleRatio,
	}
	for in, want := range cases {
		if got := parseRatio(in); got != want {
			t.Fatalf("parseRatio(%q): want=%v got=%v", in, want, got)
		}
	}
}

func TestOtelConfigFromEnv(t *testing.T) {
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4318")
	t.Setenv("OTEL_SAMPLER_RATIO", "0.5")

	cfg := OtelConfigFromEnv("svc", "test", "1.0")
	if !cfg.Enabled || cfg.Endpoint != "collector:4318" || cfg.SampleRatio != 0.5 {
		t.Fatalf("cfg: got=%+v", cfg)
	}
}

func TestInitOTelDisabledReturnsNoop(t *testing.T) {
	shutdown := InitOTel(context.Background(), nil, OtelConfig{})
	if shutdown == nil {
		t.Fatalf("shutdown: want non-nil")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}
