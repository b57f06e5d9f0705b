package repository

import (
	"context"
	"errors"
	"time"

	"CapIot.readings/internal/models"
	"go.uber.org/zap"
)

// OperationRecorder receives one observation per store call.
type OperationRecorder interface {
	RecordStoreOperation(operation, status string, duration time.Duration)
}

// InstrumentedRepository decorates a Repository with logging and operation metrics.
type InstrumentedRepository struct {
	next     Repository
	recorder OperationRecorder
	logger   *zap.Logger
}

func NewInstrumentedRepository(next Repository, recorder OperationRecorder, logger *zap.Logger) *InstrumentedRepository {
	return &InstrumentedRepository{next: next, recorder: recorder, logger: logger}
}

func (r *InstrumentedRepository) observe(op string, start time.Time, err error) {
	status := "ok"
	switch {
	case errors.Is(err, ErrNotFound):
		status = "not_found"
	case err != nil:
		status = "error"
		r.logger.Warn("store operation failed", zap.String("operation", op), zap.Error(err))
	}
	r.recorder.RecordStoreOperation(op, status, time.Since(start))
}

func (r *InstrumentedRepository) Create(ctx context.Context, in models.NewReading) (*models.Reading, error) {
	start := time.Now()
	reading, err := r.next.Create(ctx, in)
	r.observe("create", start, err)
	return reading, err
}

func (r *InstrumentedRepository) Get(ctx context.Context, id string) (*models.Reading, error) {
	start := time.Now()
	reading, err := r.next.Get(ctx, id)
	r.observe("get", start, err)
	return reading, err
}

func (r *InstrumentedRepository) Query(ctx context.Context, q Query) ([]models.Reading, error) {
	start := time.Now()
	readings, err := r.next.Query(ctx, q)
	r.observe("query", start, err)
	return readings, err
}

func (r *InstrumentedRepository) Delete(ctx context.Context, id string) error {
	start := time.Now()
	err := r.next.Delete(ctx, id)
	r.observe("delete", start, err)
	return err
}

func (r *InstrumentedRepository) Close(ctx context.Context) error {
	return r.next.Close(ctx)
}
