package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"route-divergence-service/internal/domain"
	"route-divergence-service/internal/platform/obs"
)

const redisKeyPrefix = "poll_records:"

// RedisRecordSink stores each route's records as a Redis list, oldest at the head.
type RedisRecordSink struct {
	client *redis.Client
}

func NewRedisRecordSink(client *redis.Client) *RedisRecordSink {
	return &RedisRecordSink{client: client}
}

// NewRedisClient connects and pings a Redis server.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis %q: %w", addr, err)
	}
	return client, nil
}

func (s *RedisRecordSink) Append(ctx context.Context, routeID string, record domain.PollRecord) (err error) {
	defer obs.Time(ctx, "records.redis.Append")(&err)

	if err := checkAppend(routeID, record); err != nil {
		return err
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("append record: marshal: %w", err)
	}

	if err := s.client.RPush(ctx, redisKeyPrefix+routeID, payload).Err(); err != nil {
		return fmt.Errorf("append record route=%q: %w", routeID, err)
	}
	return nil
}

func (s *RedisRecordSink) ReadAll(ctx context.Context, routeID string) (_ []domain.PollRecord, err error) {
	defer obs.Time(ctx, "records.redis.ReadAll")(&err)
	return s.lrange(ctx, routeID, 0, -1)
}

func (s *RedisRecordSink) ReadLatest(ctx context.Context, routeID string, n int) (_ []domain.PollRecord, err error) {
	defer obs.Time(ctx, "records.redis.ReadLatest")(&err)

	if n <= 0 {
		return []domain.PollRecord{}, nil
	}
	return s.lrange(ctx, routeID, int64(-n), -1)
}

func (s *RedisRecordSink) lrange(ctx context.Context, routeID string, start, stop int64) ([]domain.PollRecord, error) {
	values, err := s.client.LRange(ctx, redisKeyPrefix+routeID, start, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("read records route=%q: %w", routeID, err)
	}

	payloads := make([][]byte, 0, len(values))
	for _, v := range values {
		payloads = append(payloads, []byte(v))
	}
	return decodePayloads(payloads)
}
