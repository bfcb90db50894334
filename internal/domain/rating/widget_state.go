package rating

import (
	"fmt"
	"math"
)

// WidgetState is what a rendered control knows about its entity. It is
// rebuilt from host markup on every render pass and never persisted.
type WidgetState struct {
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id"`
	Percentage int    `json:"percentage"`
	IsRated    bool   `json:"is_rated"`
}

// CanSubmit is false when the markup did not yield both identifiers; the
// control still renders but selections are ignored.
func (s WidgetState) CanSubmit() bool {
	return s.EntityType != "" && s.EntityID != ""
}

func (s WidgetState) Key() EntityKey {
	return EntityKey{Type: s.EntityType, ID: s.EntityID}
}

type EntityKey struct {
	Type string
	ID   string
}

func (k EntityKey) String() string {
	return fmt.Sprintf("%s:%s", k.Type, k.ID)
}

// ClampPercentage rounds a CSS width percentage onto the integer 0–100 scale.
func ClampPercentage(f float64) int {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	v := int(math.Round(f))
	if v < MinValue {
		return MinValue
	}
	if v > MaxValue {
		return MaxValue
	}
	return v
}
