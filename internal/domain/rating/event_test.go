package rating

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestNewEventStampsUTCMillis(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	at := time.Date(2024, 11, 17, 23, 21, 14, 123_000_000, loc)

	ev, err := NewEvent("release_group", "1234", 75, 0, at, "")
	if err != nil {
		t.Fatalf("NewEvent: %v", err)
	}
	if ev.Timestamp != "2024-11-17T21:21:14.123Z" {
		t.Fatalf("timestamp: got=%q", ev.Timestamp)
	}
	if ev.ScriptVersion != DefaultScriptVersion {
		t.Fatalf("script version: want=%q got=%q", DefaultScriptVersion, ev.ScriptVersion)
	}
	if ev.Note != "" {
		t.Fatalf("note: want empty got=%q", ev.Note)
	}
}

func TestNewEventRejectsInvalidFields(t *testing.T) {
	at := time.Now()
	cases := []struct {
		name       string
		entityType string
		entityID   string
		value      int
		previous   int
		field      string
	}{
		{name: "empty type", entityType: "", entityID: "1", value: 10, field: "entity_type"},
		{name: "type with dash", entityType: "release-group", entityID: "1", value: 10, field: "entity_type"},
		{name: "empty id", entityType: "artist", entityID: "", value: 10, field: "entity_id"},
		{name: "non numeric id", entityType: "artist", entityID: "12a", value: 10, field: "entity_id"},
		{name: "rating high", entityType: "artist", entityID: "1", value: 101, field: "rating"},
		{name: "rating low", entityType: "artist", entityID: "1", value: -1, field: "rating"},
		{name: "previous high", entityType: "artist", entityID: "1", value: 10, previous: 150, field: "previous_rating"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewEvent(tc.entityType, tc.entityID, tc.value, tc.previous, at, "0.2.0")
			if !errors.Is(err, ErrInvalidEvent) {
				t.Fatalf("err: want ErrInvalidEvent got=%v", err)
			}
			if !strings.Contains(err.Error(), tc.field) {
				t.Fatalf("err: want mention of %q got=%q", tc.field, err.Error())
			}
		})
	}
}

func TestClampPercentage(t *testing.T) {
	cases := map[float64]int{
		-3:    0,
		0:     0,
		33.4:  33,
		89.5:  90,
		100:   100,
		140.2: 100,
	}
	for in, want := range cases {
		if got := ClampPercentage(in); got != want {
			t.Fatalf("ClampPercentage(%v): want=%d got=%d", in, want, got)
		}
	}
}

func TestWidgetStateCanSubmit(t *testing.T) {
	if (WidgetState{EntityID: "1"}).CanSubmit() {
		t.Fatalf("missing type should disable submission")
	}
	if (WidgetState{EntityType: "artist"}).CanSubmit() {
		t.Fatalf("missing id should disable submission")
	}
	if !(WidgetState{EntityType: "artist", EntityID: "1"}).CanSubmit() {
		t.Fatalf("complete identifiers should allow submission")
	}
}
