package repository

import (
	"context"
	"errors"
	"time"

	"CapIot.readings/internal/models"
)

// ErrNotFound is returned when an id does not resolve to a stored reading.
var ErrNotFound = errors.New("reading not found")

// Query selects readings for the configured account.
type Query struct {
	OrderBy    string
	Descending bool
	Limit      int
	// From and To are inclusive bounds on the creation instant. Nil means unbounded.
	From *time.Time
	To   *time.Time
}

// Repository is the narrow store contract the service depends on.
type Repository interface {
	Create(ctx context.Context, reading models.NewReading) (*models.Reading, error)
	Get(ctx context.Context, id string) (*models.Reading, error)
	Query(ctx context.Context, query Query) ([]models.Reading, error)
	Delete(ctx context.Context, id string) error
	Close(ctx context.Context) error
}
