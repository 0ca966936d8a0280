package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/GoPolymarket/gaslessgate/internal/model"
	"github.com/GoPolymarket/gaslessgate/internal/service"
	"github.com/redis/go-redis/v9"
)

// RedisSwapStore keeps swap records as JSON strings with a TTL and indexes
// them by creation time in a sorted set.
type RedisSwapStore struct {
	client   *RedisClient
	ttl      time.Duration
	prefix   string
	indexKey string
}

func NewRedisSwapStore(client *RedisClient, ttl time.Duration) *RedisSwapStore {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &RedisSwapStore{
		client:   client,
		ttl:      ttl,
		prefix:   "swap:",
		indexKey: "swaps:index",
	}
}

func (s *RedisSwapStore) Save(ctx context.Context, rec *model.SwapRecord) error {
	if rec == nil || rec.ID == "" {
		return errors.New("swap record requires an id")
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	pipe := s.client.Client.TxPipeline()
	pipe.Set(ctx, s.prefix+rec.ID, payload, s.ttl)
	pipe.ZAdd(ctx, s.indexKey, redis.Z{Score: float64(rec.CreatedAt.UnixMilli()), Member: rec.ID})
	pipe.ZRemRangeByScore(ctx, s.indexKey, "-inf", fmt.Sprintf("(%d", time.Now().Add(-s.ttl).UnixMilli()))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisSwapStore) Get(ctx context.Context, id string) (*model.SwapRecord, error) {
	raw, err := s.client.Client.Get(ctx, s.prefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, service.ErrSwapNotFound
	}
	if err != nil {
		return nil, err
	}
	var rec model.SwapRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode swap %s: %w", id, err)
	}
	return &rec, nil
}

// List returns records newest first. Expired records still in the index
// are skipped.
func (s *RedisSwapStore) List(ctx context.Context, limit int) ([]*model.SwapRecord, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	ids, err := s.client.Client.ZRevRange(ctx, s.indexKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*model.SwapRecord{}, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.prefix + id
	}
	values, err := s.client.Client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	out := make([]*model.SwapRecord, 0, len(values))
	for _, v := range values {
		str, ok := v.(string)
		if !ok {
			continue
		}
		var rec model.SwapRecord
		if err := json.Unmarshal([]byte(str), &rec); err != nil {
			continue
		}
		out = append(out, &rec)
	}
	return out, nil
}
