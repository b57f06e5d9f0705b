package models

import "time"

// Field names shared by every store and by the query parameters.
const (
	FieldID        = "id"
	FieldTimestamp = "timestamp"
	FieldCreatedAt = "createdAt"
)

// RequiredFields lists the body keys a new reading must carry.
var RequiredFields = []string{"value1", "value2", "value3", "value4", "value5"}

// Reading is a persisted record of five values plus its timestamps.
// Values are kept exactly as decoded from JSON.
type Reading struct {
	ID        string    `json:"id"`
	Value1    any       `json:"value1"`
	Value2    any       `json:"value2"`
	Value3    any       `json:"value3"`
	Value4    any       `json:"value4"`
	Value5    any       `json:"value5"`
	Timestamp string    `json:"timestamp"`
	CreatedAt time.Time `json:"createdAt"`
}

// Values returns the five values in field order.
func (r Reading) Values() [5]any {
	return [5]any{r.Value1, r.Value2, r.Value3, r.Value4, r.Value5}
}

// SetValues assigns the five values in field order.
func (r *Reading) SetValues(values [5]any) {
	r.Value1, r.Value2, r.Value3, r.Value4, r.Value5 = values[0], values[1], values[2], values[3], values[4]
}

// NewReading is what the service hands to a store; the store assigns ID and CreatedAt.
type NewReading struct {
	Values    [5]any
	Timestamp string
}
