package repository

import (
	"sort"
	"time"

	"CapIot.readings/internal/models"
)

func (q Query) contains(t time.Time) bool {
	if q.From != nil && t.Before(*q.From) {
		return false
	}
	if q.To != nil && t.After(*q.To) {
		return false
	}
	return true
}

// inverted reports whether the bounds can match nothing.
func (q Query) inverted() bool {
	return q.From != nil && q.To != nil && q.From.After(*q.To)
}

func (q Query) orderField() string {
	if q.OrderBy == "" {
		return models.FieldCreatedAt
	}
	return q.OrderBy
}

// applyQuery filters, orders and limits readings in memory for stores without native ordering.
func applyQuery(readings []models.Reading, q Query) []models.Reading {
	out := make([]models.Reading, 0, len(readings))
	for _, r := range readings {
		if q.contains(r.CreatedAt) {
			out = append(out, r)
		}
	}

	byTimestamp := q.orderField() == models.FieldTimestamp
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if q.Descending {
			a, b = b, a
		}
		if byTimestamp && a.Timestamp != b.Timestamp {
			return a.Timestamp < b.Timestamp
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})

	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}
