package redisRankStore

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/unilink/leaderboard/pkg/rankStore"
	"github.com/unilink/leaderboard/pkg/types"
	"go.uber.org/zap"
)

type RedisRankStore struct {
	client *redis.Client
	logger *zap.Logger
}

func NewRedisRankStore(client *redis.Client, l *zap.Logger) *RedisRankStore {
	return &RedisRankStore{
		client: client,
		logger: l,
	}
}

func NewRedisClientFromUrl(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return redis.NewClient(opts), nil
}

func (r *RedisRankStore) IncrementScores(ctx context.Context, member string, delta float64, buckets []string, expiring []string, ttl time.Duration) error {
	pipe := r.client.TxPipeline()
	for _, bucket := range buckets {
		pipe.ZIncrBy(ctx, bucket, delta, member)
	}
	if ttl > 0 {
		for _, bucket := range expiring {
			pipe.Expire(ctx, bucket, ttl)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Sugar().Errorw("Failed to increment ranked-set scores",
			zap.String("member", member),
			zap.Strings("buckets", buckets),
			zap.Error(err),
		)
		return types.Unavailable(err)
	}
	return nil
}

func (r *RedisRankStore) ReplaceBucket(ctx context.Context, bucket string, mapping map[string]float64, ttl time.Duration) error {
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, bucket)
	if len(mapping) > 0 {
		members := make([]redis.Z, 0, len(mapping))
		for member, score := range mapping {
			members = append(members, redis.Z{Member: member, Score: score})
		}
		pipe.ZAdd(ctx, bucket, members...)
	}
	if ttl > 0 {
		pipe.Expire(ctx, bucket, ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Sugar().Errorw("Failed to replace ranked-set bucket",
			zap.String("bucket", bucket),
			zap.Int("members", len(mapping)),
			zap.Error(err),
		)
		return types.Unavailable(err)
	}
	return nil
}

func (r *RedisRankStore) TopN(ctx context.Context, bucket string, n int64) ([]rankStore.Entry, error) {
	if n <= 0 {
		return []rankStore.Entry{}, nil
	}
	zs, err := r.client.ZRevRangeWithScores(ctx, bucket, 0, n-1).Result()
	if err != nil {
		return nil, types.Unavailable(err)
	}
	entries := make([]rankStore.Entry, 0, len(zs))
	for _, z := range zs {
		member, _ := z.Member.(string)
		entries = append(entries, rankStore.Entry{Member: member, Score: z.Score})
	}
	return entries, nil
}

func (r *RedisRankStore) RankOf(ctx context.Context, bucket string, member string) (int64, float64, bool, error) {
	rank, err := r.client.ZRevRank(ctx, bucket, member).Result()
	if errors.Is(err, redis.Nil) {
		return 0, 0, false, nil
	}
	if err != nil {
		return 0, 0, false, types.Unavailable(err)
	}
	score, err := r.client.ZScore(ctx, bucket, member).Result()
	if errors.Is(err, redis.Nil) {
		// Removed between the two reads; treat as absent.
		return 0, 0, false, nil
	}
	if err != nil {
		return 0, 0, false, types.Unavailable(err)
	}
	return rank, score, true, nil
}

func (r *RedisRankStore) Score(ctx context.Context, bucket string, member string) (float64, bool, error) {
	score, err := r.client.ZScore(ctx, bucket, member).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, types.Unavailable(err)
	}
	return score, true, nil
}

func (r *RedisRankStore) Delete(ctx context.Context, bucket string) error {
	if err := r.client.Del(ctx, bucket).Err(); err != nil {
		return types.Unavailable(err)
	}
	return nil
}
