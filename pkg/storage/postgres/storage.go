package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/unilink/leaderboard/pkg/period"
	"github.com/unilink/leaderboard/pkg/storage"
	"github.com/unilink/leaderboard/pkg/types"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const pgUniqueViolationCode = "23505"

type PostgresTransactionStore struct {
	Db     *gorm.DB
	logger *zap.Logger
}

func NewPostgresTransactionStore(grm *gorm.DB, l *zap.Logger) *PostgresTransactionStore {
	return &PostgresTransactionStore{
		Db:     grm,
		logger: l,
	}
}

func (s *PostgresTransactionStore) InsertTransaction(ctx context.Context, tx *storage.RewardTransaction) (*storage.RewardTransaction, error) {
	res := s.Db.WithContext(ctx).Model(&storage.RewardTransaction{}).Create(tx)
	if res.Error != nil {
		var pgErr *pgconn.PgError
		if errors.As(res.Error, &pgErr) && pgErr.Code == pgUniqueViolationCode {
			return nil, types.ErrAlreadyRewarded
		}
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return nil, types.ErrAlreadyRewarded
		}
		s.logger.Sugar().Errorw("Failed to insert reward transaction",
			zap.Uint64("giverId", tx.GiverId),
			zap.String("externalPostId", tx.ExternalPostId),
			zap.Error(res.Error),
		)
		return nil, types.Unavailable(res.Error)
	}
	return tx, nil
}

const aggregateAllQuery = `
	select
		author_id,
		sum(points)::float8 as total
	from reward_points_transactions
	group by author_id
`

const aggregateWindowQuery = `
	select
		author_id,
		sum(points)::float8 as total
	from reward_points_transactions
	where created_at >= ? and created_at < ?
	group by author_id
`

type authorTotal struct {
	AuthorId uint64
	Total    float64
}

func (s *PostgresTransactionStore) AggregateByAuthor(ctx context.Context, window period.Window) (map[uint64]float64, error) {
	rows := make([]*authorTotal, 0)

	var res *gorm.DB
	if window.IsUnbounded() {
		res = s.Db.WithContext(ctx).Raw(aggregateAllQuery).Scan(&rows)
	} else {
		res = s.Db.WithContext(ctx).Raw(aggregateWindowQuery, window.Start, window.End).Scan(&rows)
	}
	if res.Error != nil {
		s.logger.Sugar().Errorw("Failed to aggregate reward transactions", zap.Error(res.Error))
		return nil, types.Unavailable(res.Error)
	}

	totals := make(map[uint64]float64, len(rows))
	for _, row := range rows {
		totals[row.AuthorId] = row.Total
	}
	return totals, nil
}

func (s *PostgresTransactionStore) Count(ctx context.Context) (int64, error) {
	var count int64
	res := s.Db.WithContext(ctx).Model(&storage.RewardTransaction{}).Count(&count)
	if res.Error != nil {
		return 0, types.Unavailable(res.Error)
	}
	return count, nil
}
