package storage

import (
	"context"
	"time"

	"github.com/unilink/leaderboard/pkg/period"
)

// RewardTransaction is one row of the durable reward log. Rows are written
// once by ingest and never updated or deleted; author_id is captured at
// submission time and later post-ownership changes do not rewrite it.
type RewardTransaction struct {
	Id             uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	GiverId        uint64    `gorm:"column:giver_id"`
	ExternalPostId string    `gorm:"column:external_post_id"`
	AuthorId       uint64    `gorm:"column:author_id"`
	Points         int       `gorm:"column:points"`
	CreatedAt      time.Time `gorm:"column:created_at"`
}

func (RewardTransaction) TableName() string {
	return "reward_points_transactions"
}

// TransactionStore is the source of truth for reward points.
type TransactionStore interface {
	// InsertTransaction appends a transaction to the log. Returns
	// types.ErrAlreadyRewarded if (giver_id, external_post_id) exists and
	// types.ErrUnavailable on transport failure. Durable on success.
	InsertTransaction(ctx context.Context, tx *RewardTransaction) (*RewardTransaction, error)

	// AggregateByAuthor sums points per author over created_at in window.
	// An unbounded window aggregates the whole log.
	AggregateByAuthor(ctx context.Context, window period.Window) (map[uint64]float64, error)

	Count(ctx context.Context) (int64, error)
}
