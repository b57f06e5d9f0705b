package repository

import (
	"context"
	"testing"
	"time"

	"CapIot.readings/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testClock hands out the instant a store should stamp on the next write.
type testClock struct {
	current time.Time
}

func (c *testClock) Now() time.Time { return c.current }

type repoFactory func(t *testing.T, clock *testClock) Repository

func ptrTime(t time.Time) *time.Time { return &t }

func newReading(values ...any) models.NewReading {
	var in models.NewReading
	copy(in.Values[:], values)
	in.Timestamp = "2024:01:01 05:30:00"
	return in
}

// runRepositoryContract checks the behaviour every store must share.
func runRepositoryContract(t *testing.T, factory repoFactory) {
	ctx := context.Background()

	t.Run("CreateThenGet", func(t *testing.T) {
		clock := &testClock{current: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
		repo := factory(t, clock)

		created, err := repo.Create(ctx, newReading(1.0, "two", true, nil, map[string]any{"k": "v"}))
		require.NoError(t, err)
		require.NotEmpty(t, created.ID)
		assert.Equal(t, clock.current, created.CreatedAt)

		got, err := repo.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
		assert.Equal(t, 1.0, got.Value1)
		assert.Equal(t, "two", got.Value2)
		assert.Equal(t, true, got.Value3)
		assert.Nil(t, got.Value4)
		assert.Equal(t, map[string]any{"k": "v"}, got.Value5)
		assert.Equal(t, "2024:01:01 05:30:00", got.Timestamp)
		assert.True(t, clock.current.Equal(got.CreatedAt))
	})

	t.Run("GetUnknown", func(t *testing.T) {
		repo := factory(t, &testClock{current: time.Now()})

		_, err := repo.Get(ctx, "does-not-exist")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("QueryEmpty", func(t *testing.T) {
		repo := factory(t, &testClock{current: time.Now()})

		readings, err := repo.Query(ctx, Query{Descending: true, Limit: 10})
		require.NoError(t, err)
		assert.Empty(t, readings)
	})

	t.Run("QueryOrderAndLimit", func(t *testing.T) {
		base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
		clock := &testClock{current: base}
		repo := factory(t, clock)

		var ids []string
		for i := 0; i < 5; i++ {
			clock.current = base.Add(time.Duration(i) * time.Minute)
			r, err := repo.Create(ctx, newReading(float64(i), 0.0, 0.0, 0.0, 0.0))
			require.NoError(t, err)
			ids = append(ids, r.ID)
		}

		desc, err := repo.Query(ctx, Query{OrderBy: models.FieldCreatedAt, Descending: true, Limit: 3})
		require.NoError(t, err)
		require.Len(t, desc, 3)
		assert.Equal(t, []string{ids[4], ids[3], ids[2]}, []string{desc[0].ID, desc[1].ID, desc[2].ID})

		asc, err := repo.Query(ctx, Query{OrderBy: models.FieldCreatedAt, Limit: 2})
		require.NoError(t, err)
		require.Len(t, asc, 2)
		assert.Equal(t, []string{ids[0], ids[1]}, []string{asc[0].ID, asc[1].ID})

		all, err := repo.Query(ctx, Query{Descending: true})
		require.NoError(t, err)
		assert.Len(t, all, 5)
	})

	t.Run("QueryRangeInclusive", func(t *testing.T) {
		clock := &testClock{}
		repo := factory(t, clock)

		clock.current = time.Date(2023, 12, 31, 23, 59, 59, 999_000_000, time.UTC)
		_, err := repo.Create(ctx, newReading("before", 0, 0, 0, 0))
		require.NoError(t, err)

		clock.current = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		first, err := repo.Create(ctx, newReading("start", 0, 0, 0, 0))
		require.NoError(t, err)

		clock.current = time.Date(2024, 1, 1, 23, 59, 59, 0, time.UTC)
		last, err := repo.Create(ctx, newReading("end", 0, 0, 0, 0))
		require.NoError(t, err)

		clock.current = time.Date(2024, 1, 2, 0, 0, 0, 1_000_000, time.UTC)
		_, err = repo.Create(ctx, newReading("after", 0, 0, 0, 0))
		require.NoError(t, err)

		readings, err := repo.Query(ctx, Query{
			OrderBy:    models.FieldCreatedAt,
			Descending: true,
			Limit:      100,
			From:       ptrTime(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
			To:         ptrTime(time.Date(2024, 1, 1, 23, 59, 59, 999_000_000, time.UTC)),
		})
		require.NoError(t, err)
		require.Len(t, readings, 2)
		assert.Equal(t, last.ID, readings[0].ID)
		assert.Equal(t, first.ID, readings[1].ID)
	})

	t.Run("QueryInvertedRange", func(t *testing.T) {
		clock := &testClock{current: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)}
		repo := factory(t, clock)

		_, err := repo.Create(ctx, newReading(1, 2, 3, 4, 5))
		require.NoError(t, err)

		readings, err := repo.Query(ctx, Query{
			Descending: true,
			Limit:      100,
			From:       ptrTime(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)),
			To:         ptrTime(time.Date(2024, 1, 1, 23, 59, 59, 999_000_000, time.UTC)),
		})
		require.NoError(t, err)
		assert.Empty(t, readings)
	})

	t.Run("QueryByTimestamp", func(t *testing.T) {
		base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
		clock := &testClock{current: base}
		repo := factory(t, clock)

		in := newReading(1, 2, 3, 4, 5)
		in.Timestamp = "2024:05:01 10:00:00"
		b, err := repo.Create(ctx, in)
		require.NoError(t, err)

		clock.current = base.Add(time.Second)
		in.Timestamp = "2024:05:01 09:00:00"
		a, err := repo.Create(ctx, in)
		require.NoError(t, err)

		readings, err := repo.Query(ctx, Query{OrderBy: models.FieldTimestamp})
		require.NoError(t, err)
		require.Len(t, readings, 2)
		assert.Equal(t, a.ID, readings[0].ID)
		assert.Equal(t, b.ID, readings[1].ID)
	})

	t.Run("DeleteTwice", func(t *testing.T) {
		repo := factory(t, &testClock{current: time.Now().UTC()})

		created, err := repo.Create(ctx, newReading(1, 2, 3, 4, 5))
		require.NoError(t, err)

		require.NoError(t, repo.Delete(ctx, created.ID))
		assert.ErrorIs(t, repo.Delete(ctx, created.ID), ErrNotFound)

		_, err = repo.Get(ctx, created.ID)
		assert.ErrorIs(t, err, ErrNotFound)

		readings, err := repo.Query(ctx, Query{})
		require.NoError(t, err)
		assert.Empty(t, readings)
	})
}
