package alert

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/go-redis/redis/v8"
)

// RedisStore shares alerts between processes. Layout under prefix:
//
//	<prefix>seq         INCR id sequence
//	<prefix>active      sorted set of active ids, scored by id
//	<prefix>alert:<id>  JSON encoded alert
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

var _ Store = (*RedisStore)(nil)

func (s *RedisStore) alertKey(id int64) string {
	return s.prefix + "alert:" + strconv.FormatInt(id, 10)
}

func (s *RedisStore) Create(ctx context.Context, a *Alert) error {
	id, err := s.client.Incr(ctx, s.prefix+"seq").Result()
	if err != nil {
		return fmt.Errorf("failed to allocate alert id: %w", err)
	}
	a.ID = id

	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to marshal alert: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.alertKey(id), data, 0)
		pipe.ZAdd(ctx, s.prefix+"active", &redis.Z{Score: float64(id), Member: strconv.FormatInt(id, 10)})
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store alert: %w", err)
	}
	return nil
}

func (s *RedisStore) Active(ctx context.Context) ([]Alert, error) {
	ids, err := s.client.ZRange(ctx, s.prefix+"active", 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list active alerts: %w", err)
	}
	out := make([]Alert, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.prefix + "alert:" + id
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load alerts: %w", err)
	}
	for i, v := range vals {
		raw, ok := v.(string)
		if !ok {
			// closed between ZRANGE and MGET
			continue
		}
		var a Alert
		if err := json.Unmarshal([]byte(raw), &a); err != nil {
			return nil, fmt.Errorf("failed to unmarshal alert %s: %w", ids[i], err)
		}
		out = append(out, a)
	}
	return out, nil
}

func (s *RedisStore) Close(ctx context.Context, id int64) error {
	var removed *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		removed = pipe.ZRem(ctx, s.prefix+"active", strconv.FormatInt(id, 10))
		pipe.Del(ctx, s.alertKey(id))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to close alert: %w", err)
	}
	if removed.Val() == 0 {
		return fmt.Errorf("alert %d: %w", id, ErrNotFound)
	}
	return nil
}
