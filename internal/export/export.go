// Package export turns the rating-event log into downloadable JSON and CSV files.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/yungbote/advanced-rating/internal/domain/rating"
)

const DefaultPrefix = "musicbrainz_ratings"

const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// Columns is the CSV header, in row order.
var Columns = []string{"timestamp", "entity_type", "entity_id", "rating", "previous_rating", "note", "script_version"}

type Source interface {
	GetAll(ctx context.Context) []rating.Event
}

type Artifact struct {
	Name        string
	ContentType string
	Body        []byte
}

type Exporter struct {
	source Source
	clock  clockwork.Clock
	prefix string
}

func New(source Source, clock clockwork.Clock, prefix string) *Exporter {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if strings.TrimSpace(prefix) == "" {
		prefix = DefaultPrefix
	}
	return &Exporter{source: source, clock: clock, prefix: prefix}
}

// JSON always produces a file, "[]" for an empty log.
func (e *Exporter) JSON(ctx context.Context) (Artifact, error) {
	events := e.source.GetAll(ctx)
	body, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return Artifact{}, fmt.Errorf("encode events: %w", err)
	}
	return Artifact{
		Name:        FileName(e.prefix, FormatJSON, e.clock.Now()),
		ContentType: "application/json",
		Body:        body,
	}, nil
}

// CSV reports false and produces nothing when the log is empty.
func (e *Exporter) CSV(ctx context.Context) (Artifact, bool) {
	events := e.source.GetAll(ctx)
	if len(events) == 0 {
		return Artifact{}, false
	}
	return Artifact{
		Name:        FileName(e.prefix, FormatCSV, e.clock.Now()),
		ContentType: "text/csv",
		Body:        []byte(EncodeCSV(events)),
	}, true
}

// Export dispatches on format. ok is false for an empty CSV export.
func (e *Exporter) Export(ctx context.Context, format string) (art Artifact, ok bool, err error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatJSON:
		art, err = e.JSON(ctx)
		return art, err == nil, err
	case FormatCSV:
		art, ok = e.CSV(ctx)
		return art, ok, nil
	default:
		return Artifact{}, false, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// FileName is <prefix>_<ISO timestamp>.<ext>, using the event timestamp layout.
func FileName(prefix, ext string, at time.Time) string {
	return fmt.Sprintf("%s_%s.%s", prefix, rating.FormatTimestamp(at), ext)
}

// EncodeCSV writes one header line and one line per event joined by "\n".
// The note is always quoted with inner quotes doubled; other fields are raw.
func EncodeCSV(events []rating.Event) string {
	lines := make([]string, 0, len(events)+1)
	lines = append(lines, strings.Join(Columns, ","))
	for _, ev := range events {
		lines = append(lines, strings.Join([]string{
			ev.Timestamp,
			ev.EntityType,
			ev.EntityID,
			strconv.Itoa(ev.Rating),
			strconv.Itoa(ev.PreviousRating),
			`"` + strings.ReplaceAll(ev.Note, `"`, `""`) + `"`,
			ev.ScriptVersion,
		}, ","))
	}
	return strings.Join(lines, "\n")
}
