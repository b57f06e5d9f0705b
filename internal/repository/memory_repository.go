package repository

import (
	"context"
	"sync"
	"time"

	"CapIot.readings/internal/models"
	"github.com/google/uuid"
)

// MemoryRepository keeps readings in process memory.
type MemoryRepository struct {
	mu       sync.RWMutex
	readings map[string]models.Reading
	now      func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		readings: make(map[string]models.Reading),
		now:      time.Now,
	}
}

// WithClock replaces the source of creation instants.
func (r *MemoryRepository) WithClock(now func() time.Time) *MemoryRepository {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
	return r
}

func (r *MemoryRepository) Create(_ context.Context, in models.NewReading) (*models.Reading, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	reading := models.Reading{
		ID:        uuid.NewString(),
		Timestamp: in.Timestamp,
		CreatedAt: r.now().UTC(),
	}
	reading.SetValues(in.Values)
	r.readings[reading.ID] = reading

	out := reading
	return &out, nil
}

func (r *MemoryRepository) Get(_ context.Context, id string) (*models.Reading, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reading, ok := r.readings[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &reading, nil
}

func (r *MemoryRepository) Query(_ context.Context, q Query) ([]models.Reading, error) {
	r.mu.RLock()
	all := make([]models.Reading, 0, len(r.readings))
	for _, reading := range r.readings {
		all = append(all, reading)
	}
	r.mu.RUnlock()

	return applyQuery(all, q), nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.readings[id]; !ok {
		return ErrNotFound
	}
	delete(r.readings, id)
	return nil
}

func (r *MemoryRepository) Close(context.Context) error { return nil }
