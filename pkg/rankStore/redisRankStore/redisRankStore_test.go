package redisRankStore

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/unilink/leaderboard/internal/logger"
	"github.com/unilink/leaderboard/internal/tests"
	"github.com/unilink/leaderboard/pkg/rankStore"
)

func setup(t *testing.T) (*RedisRankStore, *redis.Client, string) {
	cfg := tests.GetConfig()
	l, _ := logger.NewLogger(&logger.LoggerConfig{Debug: cfg.Debug})

	client, err := NewRedisClientFromUrl(cfg.RedisConfig.Url)
	if err != nil {
		t.Fatal(err)
	}

	// Unique key prefix per run so tests never clash on a shared redis.
	prefix := fmt.Sprintf("test:%s", uuid.New().String())
	return NewRedisRankStore(client, l), client, prefix
}

func Test_RedisRankStore(t *testing.T) {
	if !tests.RedisTestsEnabled() {
		t.Skipf("Skipping %s; set TEST_REDIS=true to run", t.Name())
	}

	store, client, prefix := setup(t)
	ctx := context.Background()

	bucketName := func(name string) string {
		return fmt.Sprintf("%s:%s", prefix, name)
	}

	defer func() {
		keys, _ := client.Keys(ctx, prefix+":*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	}()

	t.Run("Should increment scores across buckets in one call", func(t *testing.T) {
		buckets := []string{bucketName("alltime"), bucketName("daily")}

		err := store.IncrementScores(ctx, "1", 3, buckets, []string{bucketName("daily")}, time.Hour)
		assert.Nil(t, err)
		err = store.IncrementScores(ctx, "1", 2, buckets, []string{bucketName("daily")}, time.Hour)
		assert.Nil(t, err)

		for _, bucket := range buckets {
			score, ok, err := store.Score(ctx, bucket, "1")
			assert.Nil(t, err)
			assert.True(t, ok)
			assert.Equal(t, float64(5), score)
		}
	})

	t.Run("Should expire only the expiring buckets", func(t *testing.T) {
		alltimeTtl, err := client.TTL(ctx, bucketName("alltime")).Result()
		assert.Nil(t, err)
		assert.Equal(t, time.Duration(-1), alltimeTtl)

		dailyTtl, err := client.TTL(ctx, bucketName("daily")).Result()
		assert.Nil(t, err)
		assert.True(t, dailyTtl > 0)
	})

	t.Run("Should replace a bucket wholesale", func(t *testing.T) {
		bucket := bucketName("replace")

		err := store.IncrementScores(ctx, "stale", 99, []string{bucket}, nil, 0)
		assert.Nil(t, err)

		err = store.ReplaceBucket(ctx, bucket, map[string]float64{"1": 4, "2": 7}, time.Hour)
		assert.Nil(t, err)

		_, ok, err := store.Score(ctx, bucket, "stale")
		assert.Nil(t, err)
		assert.False(t, ok)

		entries, err := store.TopN(ctx, bucket, 10)
		assert.Nil(t, err)
		assert.Equal(t, []rankStore.Entry{
			{Member: "2", Score: 7},
			{Member: "1", Score: 4},
		}, entries)

		ttl, err := client.TTL(ctx, bucket).Result()
		assert.Nil(t, err)
		assert.True(t, ttl > 0)
	})

	t.Run("Should delete a bucket when replaced with an empty mapping", func(t *testing.T) {
		bucket := bucketName("empty")

		err := store.ReplaceBucket(ctx, bucket, map[string]float64{"1": 4}, 0)
		assert.Nil(t, err)
		err = store.ReplaceBucket(ctx, bucket, map[string]float64{}, 0)
		assert.Nil(t, err)

		entries, err := store.TopN(ctx, bucket, 10)
		assert.Nil(t, err)
		assert.Empty(t, entries)
	})

	t.Run("Should report 0-based descending ranks", func(t *testing.T) {
		bucket := bucketName("ranks")

		err := store.ReplaceBucket(ctx, bucket, map[string]float64{"1": 10, "2": 20, "3": 5}, 0)
		assert.Nil(t, err)

		rank, score, ok, err := store.RankOf(ctx, bucket, "2")
		assert.Nil(t, err)
		assert.True(t, ok)
		assert.Equal(t, int64(0), rank)
		assert.Equal(t, float64(20), score)

		rank, _, ok, err = store.RankOf(ctx, bucket, "3")
		assert.Nil(t, err)
		assert.True(t, ok)
		assert.Equal(t, int64(2), rank)

		_, _, ok, err = store.RankOf(ctx, bucket, "missing")
		assert.Nil(t, err)
		assert.False(t, ok)
	})

	t.Run("Should truncate TopN to the requested size", func(t *testing.T) {
		bucket := bucketName("topn")

		err := store.ReplaceBucket(ctx, bucket, map[string]float64{"1": 1, "2": 2, "3": 3}, 0)
		assert.Nil(t, err)

		entries, err := store.TopN(ctx, bucket, 2)
		assert.Nil(t, err)
		assert.Len(t, entries, 2)
		assert.Equal(t, "3", entries[0].Member)

		entries, err = store.TopN(ctx, bucket, 0)
		assert.Nil(t, err)
		assert.Empty(t, entries)
	})

	t.Run("Should treat a missing bucket as empty", func(t *testing.T) {
		bucket := bucketName("missing")

		entries, err := store.TopN(ctx, bucket, 10)
		assert.Nil(t, err)
		assert.Empty(t, entries)

		_, ok, err := store.Score(ctx, bucket, "1")
		assert.Nil(t, err)
		assert.False(t, ok)

		assert.Nil(t, store.Delete(ctx, bucket))
	})
}
