// Package clicks records individual click timestamps and aggregates
// them into per-period buckets for the stats endpoint.
package clicks

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/samoylenkodmitry/shrtlin/core"
)

// retention caps how long raw click events are kept. Nothing queries
// further back than the YEAR period.
const retention = 366 * 24 * time.Hour

// RedisClickStore implements ports.ClickStore on a Redis sorted set per
// URL, scored by the click's millisecond timestamp. Members carry a
// random suffix so two clicks in the same millisecond both survive.
type RedisClickStore struct {
	client *redis.Client
}

// NewRedisClickStore creates a click store on an existing Redis client.
func NewRedisClickStore(client *redis.Client) *RedisClickStore {
	return &RedisClickStore{client: client}
}

func clickKey(urlID int64) string {
	return "clicks:url:" + strconv.FormatInt(urlID, 10)
}

// Record appends one click event and trims events past retention.
func (s *RedisClickStore) Record(ctx context.Context, urlID int64, qr bool) error {
	now := time.Now()
	member := uuid.NewString()
	if qr {
		member = "qr:" + member
	}

	key := clickKey(urlID)
	pipe := s.client.Pipeline()
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now.UnixMilli()), Member: member})
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(now.Add(-retention).UnixMilli(), 10))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record click: %w", err)
	}
	return nil
}

// Range counts clicks over the period's window, grouped into buckets of
// the period's width and keyed by the bucket-start millis.
func (s *RedisClickStore) Range(ctx context.Context, urlID int64, period core.Period) (map[string]int, error) {
	bucket, err := period.BucketSeconds()
	if err != nil {
		return nil, err
	}
	window, err := period.WindowSeconds()
	if err != nil {
		return nil, err
	}

	end := time.Now().UnixMilli()
	start := end - window*1000

	scores, err := s.client.ZRangeByScoreWithScores(ctx, clickKey(urlID), &redis.ZRangeBy{
		Min: strconv.FormatInt(start, 10),
		Max: strconv.FormatInt(end, 10),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("range clicks: %w", err)
	}

	return bucketize(scores, bucket), nil
}

func bucketize(scores []redis.Z, bucketSeconds int64) map[string]int {
	width := bucketSeconds * 1000
	out := make(map[string]int)
	for _, z := range scores {
		millis := int64(z.Score)
		bucketStart := millis - millis%width
		out[strconv.FormatInt(bucketStart, 10)]++
	}
	return out
}
