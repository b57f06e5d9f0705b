package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"CapIot.readings/internal/config"
	"CapIot.readings/internal/models"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const (
	defaultRedisDialTimeout  = 5 * time.Second
	defaultRedisReadTimeout  = 3 * time.Second
	defaultRedisWriteTimeout = 3 * time.Second
)

// NewRedisClient returns a configured client and validates the connection with PING.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, errors.New("redis: addr is empty")
	}

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  defaultRedisDialTimeout,
		ReadTimeout:  defaultRedisReadTimeout,
		WriteTimeout: defaultRedisWriteTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, defaultRedisDialTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("could not connect to Redis: %w", err)
	}
	return client, nil
}

// RedisRepository stores each reading as a JSON string and indexes ids in a sorted set
// scored by the creation instant in microseconds.
type RedisRepository struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

func NewRedisRepository(client *redis.Client, account string) *RedisRepository {
	return &RedisRepository{
		client: client,
		prefix: fmt.Sprintf("readings:%s", account),
		now:    time.Now,
	}
}

func (r *RedisRepository) docKey(id string) string {
	return fmt.Sprintf("%s:doc:%s", r.prefix, id)
}

func (r *RedisRepository) indexKey() string {
	return fmt.Sprintf("%s:created", r.prefix)
}

func (r *RedisRepository) Create(ctx context.Context, in models.NewReading) (*models.Reading, error) {
	reading := models.Reading{
		ID:        uuid.NewString(),
		Timestamp: in.Timestamp,
		CreatedAt: r.now().UTC().Truncate(time.Microsecond),
	}
	reading.SetValues(in.Values)

	data, err := json.Marshal(reading)
	if err != nil {
		return nil, fmt.Errorf("error encoding reading: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.docKey(reading.ID), data, 0)
		pipe.ZAdd(ctx, r.indexKey(), &redis.Z{
			Score:  float64(reading.CreatedAt.UnixMicro()),
			Member: reading.ID,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error writing to Redis: %w", err)
	}
	return &reading, nil
}

func (r *RedisRepository) Get(ctx context.Context, id string) (*models.Reading, error) {
	data, err := r.client.Get(ctx, r.docKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error reading from Redis: %w", err)
	}

	var reading models.Reading
	if err := json.Unmarshal(data, &reading); err != nil {
		return nil, fmt.Errorf("error decoding reading %s: %w", id, err)
	}
	return &reading, nil
}

func (r *RedisRepository) Query(ctx context.Context, q Query) ([]models.Reading, error) {
	by := &redis.ZRangeBy{Min: "-inf", Max: "+inf"}
	if q.From != nil {
		by.Min = strconv.FormatInt(q.From.UnixMicro(), 10)
	}
	if q.To != nil {
		by.Max = strconv.FormatInt(q.To.UnixMicro(), 10)
	}

	// The index already orders by creation instant, so the limit can be pushed down.
	native := q.orderField() == models.FieldCreatedAt
	if native && q.Limit > 0 {
		by.Count = int64(q.Limit)
	}

	var (
		ids []string
		err error
	)
	if native && q.Descending {
		ids, err = r.client.ZRevRangeByScore(ctx, r.indexKey(), by).Result()
	} else {
		ids, err = r.client.ZRangeByScore(ctx, r.indexKey(), by).Result()
	}
	if err != nil {
		return nil, fmt.Errorf("error querying Redis index: %w", err)
	}

	readings, err := r.load(ctx, ids)
	if err != nil {
		return nil, err
	}
	if native {
		return readings, nil
	}
	return applyQuery(readings, q), nil
}

func (r *RedisRepository) load(ctx context.Context, ids []string) ([]models.Reading, error) {
	readings := make([]models.Reading, 0, len(ids))
	if len(ids) == 0 {
		return readings, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.docKey(id)
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("error reading from Redis: %w", err)
	}

	for i, raw := range values {
		s, ok := raw.(string)
		if !ok {
			// index entry without a document, skip it
			continue
		}
		var reading models.Reading
		if err := json.Unmarshal([]byte(s), &reading); err != nil {
			return nil, fmt.Errorf("error decoding reading %s: %w", ids[i], err)
		}
		readings = append(readings, reading)
	}
	return readings, nil
}

func (r *RedisRepository) Delete(ctx context.Context, id string) error {
	var del *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, r.docKey(id))
		pipe.ZRem(ctx, r.indexKey(), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("error deleting from Redis: %w", err)
	}
	if del.Val() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *RedisRepository) Close(context.Context) error {
	return r.client.Close()
}
