package rating

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	MinValue = 0
	MaxValue = 100

	DefaultScriptVersion = "0.2.0"

	// TimestampLayout matches what browsers emit for Date.toISOString.
	TimestampLayout = "2006-01-02T15:04:05.000Z"
)

var ErrInvalidEvent = errors.New("invalid rating event")

var entityTypePattern = regexp.MustCompile(`^[a-z_]+$`)

// Event is one rating change. Only Note may change after the event is appended.
type Event struct {
	EntityType     string `json:"entity_type" validate:"required,entity_type"`
	EntityID       string `json:"entity_id" validate:"required,number"`
	Rating         int    `json:"rating" validate:"min=0,max=100"`
	PreviousRating int    `json:"previous_rating" validate:"min=0,max=100"`
	Note           string `json:"note"`
	Timestamp      string `json:"timestamp" validate:"required"`
	ScriptVersion  string `json:"script_version" validate:"required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("entity_type", func(fl validator.FieldLevel) bool {
		return entityTypePattern.MatchString(fl.Field().String())
	})
	return v
}

// NewEvent builds a validated event stamped at `at` (converted to UTC).
func NewEvent(entityType, entityID string, value, previous int, at time.Time, scriptVersion string) (Event, error) {
	if strings.TrimSpace(scriptVersion) == "" {
		scriptVersion = DefaultScriptVersion
	}
	ev := Event{
		EntityType:     strings.TrimSpace(entityType),
		EntityID:       strings.TrimSpace(entityID),
		Rating:         value,
		PreviousRating: previous,
		Note:           "",
		Timestamp:      FormatTimestamp(at),
		ScriptVersion:  scriptVersion,
	}
	if err := ev.Validate(); err != nil {
		return Event{}, err
	}
	return ev, nil
}

func (e Event) Validate() error {
	if err := validate.Struct(e); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s(%s)", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidEvent, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	return nil
}

func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ValidValue reports whether v is on the 0–100 scale.
func ValidValue(v int) bool {
	return v >= MinValue && v <= MaxValue
}
