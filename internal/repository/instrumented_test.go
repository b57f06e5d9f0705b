package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordedOp struct {
	operation string
	status    string
}

type fakeRecorder struct {
	mu  sync.Mutex
	ops []recordedOp
}

func (f *fakeRecorder) RecordStoreOperation(operation, status string, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = append(f.ops, recordedOp{operation: operation, status: status})
}

func TestInstrumentedRepository_RecordsOutcomes(t *testing.T) {
	rec := &fakeRecorder{}
	repo := NewInstrumentedRepository(NewMemoryRepository(), rec, zap.NewNop())
	ctx := context.Background()

	created, err := repo.Create(ctx, newReading(1, 2, 3, 4, 5))
	require.NoError(t, err)
	_, err = repo.Get(ctx, created.ID)
	require.NoError(t, err)
	_, err = repo.Query(ctx, Query{})
	require.NoError(t, err)
	require.NoError(t, repo.Delete(ctx, created.ID))
	assert.ErrorIs(t, repo.Delete(ctx, created.ID), ErrNotFound)

	assert.Equal(t, []recordedOp{
		{"create", "ok"},
		{"get", "ok"},
		{"query", "ok"},
		{"delete", "ok"},
		{"delete", "not_found"},
	}, rec.ops)
}
