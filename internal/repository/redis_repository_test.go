package repository

import (
	"context"
	"testing"
	"time"

	"CapIot.readings/internal/config"
	"CapIot.readings/internal/models"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestRedisRepository_Contract(t *testing.T) {
	runRepositoryContract(t, func(t *testing.T, clock *testClock) Repository {
		_, client := setupTestRedis(t)
		repo := NewRedisRepository(client, "acct-1")
		repo.now = clock.Now
		return repo
	})
}

func TestRedisRepository_KeyLayout(t *testing.T) {
	mr, client := setupTestRedis(t)
	repo := NewRedisRepository(client, "acct-1")
	repo.now = func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }

	created, err := repo.Create(context.Background(), newReading(1, 2, 3, 4, 5))
	require.NoError(t, err)

	assert.True(t, mr.Exists("readings:acct-1:doc:"+created.ID))
	members, err := mr.ZMembers("readings:acct-1:created")
	require.NoError(t, err)
	assert.Equal(t, []string{created.ID}, members)

	score, err := mr.ZScore("readings:acct-1:created", created.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(created.CreatedAt.UnixMicro()), score)
}

func TestRedisRepository_SkipsDanglingIndexEntries(t *testing.T) {
	mr, client := setupTestRedis(t)
	repo := NewRedisRepository(client, "acct-1")

	created, err := repo.Create(context.Background(), newReading(1, 2, 3, 4, 5))
	require.NoError(t, err)
	_, err = mr.ZAdd("readings:acct-1:created", 1, "ghost")
	require.NoError(t, err)

	readings, err := repo.Query(context.Background(), Query{OrderBy: models.FieldCreatedAt, Descending: true})
	require.NoError(t, err)
	require.Len(t, readings, 1)
	assert.Equal(t, created.ID, readings[0].ID)
}

func TestRedisRepository_ServerDown(t *testing.T) {
	mr, client := setupTestRedis(t)
	repo := NewRedisRepository(client, "acct-1")
	mr.Close()

	_, err := repo.Create(context.Background(), newReading(1, 2, 3, 4, 5))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)

	_, err = repo.Get(context.Background(), "x")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewRedisClient(context.Background(), config.RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	defer client.Close()

	_, err = NewRedisClient(context.Background(), config.RedisConfig{Addr: " "})
	assert.EqualError(t, err, "redis: addr is empty")
}
