package envutil

import (
	"testing"
	"time"
)

func TestIntFallsBackOnGarbage(t *testing.T) {
	t.Setenv("RATING_TEST_INT", "nope")
	if got := Int("RATING_TEST_INT", 7); got != 7 {
		t.Fatalf("Int: want=7 got=%d", got)
	}
	t.Setenv("RATING_TEST_INT", " 42 ")
	if got := Int("RATING_TEST_INT", 7); got != 42 {
		t.Fatalf("Int: want=42 got=%d", got)
	}
}

func TestBool(t *testing.T) {
	t.Setenv("RATING_TEST_BOOL", "off")
	if Bool("RATING_TEST_BOOL", true) {
		t.Fatalf("Bool: want=false")
	}
	t.Setenv("RATING_TEST_BOOL", "maybe")
	if !Bool("RATING_TEST_BOOL", true) {
		t.Fatalf("Bool: want default true")
	}
}

func TestDuration(t *testing.T) {
	t.Setenv("RATING_TEST_DUR", "1500ms")
	if got := Duration("RATING_TEST_DUR", time.Second); got != 1500*time.Millisecond {
		t.Fatalf("Duration: want=1.5s got=%s", got)
	}
	t.Setenv("RATING_TEST_DUR", "3")
	if got := Duration("RATING_TEST_DUR", time.Second); got != 3*time.Second {
		t.Fatalf("Duration seconds: want=3s got=%s", got)
	}
	t.Setenv("RATING_TEST_DUR", "")
	if got := Duration("RATING_TEST_DUR", time.Second); got != time.Second {
		t.Fatalf("Duration default: want=1s got=%s", got)
	}
}
