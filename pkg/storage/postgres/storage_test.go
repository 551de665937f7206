package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/unilink/leaderboard/internal/config"
	"github.com/unilink/leaderboard/internal/logger"
	"github.com/unilink/leaderboard/internal/tests"
	"github.com/unilink/leaderboard/pkg/period"
	"github.com/unilink/leaderboard/pkg/postgres"
	"github.com/unilink/leaderboard/pkg/postgres/migrations"
	"github.com/unilink/leaderboard/pkg/storage"
	"github.com/unilink/leaderboard/pkg/types"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setup() (string, *gorm.DB, *config.Config, *zap.Logger, error) {
	cfg := tests.GetConfig()
	l, _ := logger.NewLogger(&logger.LoggerConfig{Debug: cfg.Debug})

	dbName, db, grm, err := postgres.GetTestPostgresDatabase(cfg.DatabaseConfig, l)
	if err != nil {
		return dbName, nil, nil, nil, err
	}

	migrator := migrations.NewMigrator(db, grm, l)
	if err := migrator.MigrateAll(); err != nil {
		return dbName, nil, nil, nil, err
	}

	return dbName, grm, cfg, l, nil
}

func Test_PostgresTransactionStore(t *testing.T) {
	if !tests.PostgresTestsEnabled() {
		t.Skipf("Skipping %s; set TEST_POSTGRES=true to run", t.Name())
	}

	dbName, grm, cfg, l, err := setup()
	if err != nil {
		t.Fatal(err)
	}
	defer postgres.TeardownTestDatabase(dbName, cfg, grm, l)

	ctx := context.Background()
	store := NewPostgresTransactionStore(grm, l)

	insert := func(t *testing.T, giverId uint64, postId string, authorId uint64, points int, at time.Time) *storage.RewardTransaction {
		tx, err := store.InsertTransaction(ctx, &storage.RewardTransaction{
			GiverId:        giverId,
			ExternalPostId: postId,
			AuthorId:       authorId,
			Points:         points,
			CreatedAt:      at,
		})
		assert.Nil(t, err)
		return tx
	}

	day := time.Date(2025, 11, 11, 0, 0, 0, 0, time.UTC)

	t.Run("Should insert transactions with monotonically increasing ids", func(t *testing.T) {
		first := insert(t, 1, "post-a", 10, 3, day.Add(1*time.Hour))
		second := insert(t, 2, "post-a", 10, 5, day.Add(2*time.Hour))

		assert.True(t, first.Id > 0)
		assert.True(t, second.Id > first.Id)

		count, err := store.Count(ctx)
		assert.Nil(t, err)
		assert.Equal(t, int64(2), count)
	})

	t.Run("Should reject a duplicate (giver, post) pair", func(t *testing.T) {
		_, err := store.InsertTransaction(ctx, &storage.RewardTransaction{
			GiverId:        1,
			ExternalPostId: "post-a",
			AuthorId:       10,
			Points:         5,
			CreatedAt:      day.Add(3 * time.Hour),
		})
		assert.ErrorIs(t, err, types.ErrAlreadyRewarded)

		count, err := store.Count(ctx)
		assert.Nil(t, err)
		assert.Equal(t, int64(2), count)
	})

	t.Run("Should allow the same giver on a different post", func(t *testing.T) {
		insert(t, 1, "post-b", 20, 2, day.Add(4*time.Hour))

		count, err := store.Count(ctx)
		assert.Nil(t, err)
		assert.Equal(t, int64(3), count)
	})

	t.Run("Should aggregate the full log when the window is unbounded", func(t *testing.T) {
		totals, err := store.AggregateByAuthor(ctx, period.Window{})
		assert.Nil(t, err)
		assert.Equal(t, map[uint64]float64{10: 8, 20: 2}, totals)
	})

	t.Run("Should aggregate half-open windows on created_at", func(t *testing.T) {
		insert(t, 3, "post-c", 10, 1, day.AddDate(0, 0, 1))

		totals, err := store.AggregateByAuthor(ctx, period.DayWindow(day))
		assert.Nil(t, err)
		assert.Equal(t, map[uint64]float64{10: 8, 20: 2}, totals)

		totals, err = store.AggregateByAuthor(ctx, period.DayWindow(day.AddDate(0, 0, 1)))
		assert.Nil(t, err)
		assert.Equal(t, map[uint64]float64{10: 1}, totals)
	})

	t.Run("Should return an empty aggregate for a window with no transactions", func(t *testing.T) {
		totals, err := store.AggregateByAuthor(ctx, period.DayWindow(day.AddDate(0, 0, 30)))
		assert.Nil(t, err)
		assert.Empty(t, totals)
	})
}
