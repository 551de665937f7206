// Package leaderboard implements the reward-points ranking engine. The
// transaction log is the source of truth; the ranked-set store is a serving
// cache that ingest updates best-effort and scheduled recomputation rebuilds
// wholesale. Queries read only the ranked-set store.
package leaderboard

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"time"

	"github.com/unilink/leaderboard/internal/metrics"
	"github.com/unilink/leaderboard/internal/metrics/metricsTypes"
	"github.com/unilink/leaderboard/pkg/period"
	"github.com/unilink/leaderboard/pkg/rankStore"
	"github.com/unilink/leaderboard/pkg/storage"
	"github.com/unilink/leaderboard/pkg/types"
	"go.uber.org/zap"
)

const (
	MinPoints = 1
	MaxPoints = 5

	ingestTimeout    = 5 * time.Second
	recomputeTimeout = 60 * time.Second
)

// PostAuthorResolver maps an external post id to the local author id. Posts
// live in an external document store; the resolver is a collaborator owned by
// the embedding application.
type PostAuthorResolver interface {
	// ResolvePostAuthor fails with types.ErrNotFound for unknown posts and
	// types.ErrUnavailable for transport failures.
	ResolvePostAuthor(ctx context.Context, externalPostId string) (uint64, error)
}

type Engine struct {
	logger   *zap.Logger
	store    storage.TransactionStore
	ranks    rankStore.RankStore
	resolver PostAuthorResolver
	sink     *metrics.MetricsSink
	metric   string
}

func NewEngine(
	store storage.TransactionStore,
	ranks rankStore.RankStore,
	resolver PostAuthorResolver,
	sink *metrics.MetricsSink,
	l *zap.Logger,
) *Engine {
	return &Engine{
		logger:   l,
		store:    store,
		ranks:    ranks,
		resolver: resolver,
		sink:     sink,
		metric:   period.MetricPoints,
	}
}

func memberFor(authorId uint64) string {
	return strconv.FormatUint(authorId, 10)
}

// SubmitReward validates and appends one reward transaction, then fans the
// points out into the four live buckets. The call is committed once the log
// append succeeds; a failed fan-out is logged as an inconsistency and left
// for the next scheduled recomputation to repair.
func (e *Engine) SubmitReward(ctx context.Context, giverId uint64, externalPostId string, points int, now time.Time) (uint64, error) {
	start := time.Now()

	if points < MinPoints || points > MaxPoints {
		return 0, types.InvalidInput("points must be between %d and %d, got %d", MinPoints, MaxPoints, points)
	}
	if externalPostId == "" {
		return 0, types.InvalidInput("external post id is required")
	}

	authorId, err := e.resolver.ResolvePostAuthor(ctx, externalPostId)
	if err != nil {
		return 0, err
	}

	insertCtx, cancel := context.WithTimeout(ctx, ingestTimeout)
	defer cancel()

	tx, err := e.store.InsertTransaction(insertCtx, &storage.RewardTransaction{
		GiverId:        giverId,
		ExternalPostId: externalPostId,
		AuthorId:       authorId,
		Points:         points,
		CreatedAt:      now.UTC(),
	})
	if err != nil {
		if errors.Is(err, types.ErrAlreadyRewarded) {
			e.incr(metricsTypes.Metric_Incr_RewardDuplicate, nil)
		}
		return 0, err
	}

	// The append is durable; from here on the submission is committed no
	// matter what happens to the ranked-set fan-out.
	buckets := period.KeysFor(e.metric, now)
	expiring := buckets[1:]

	fanoutCtx, cancelFanout := context.WithTimeout(context.WithoutCancel(ctx), ingestTimeout)
	defer cancelFanout()

	if err := e.ranks.IncrementScores(fanoutCtx, memberFor(authorId), float64(points), buckets, expiring, period.BucketTTL); err != nil {
		e.logger.Sugar().Errorw("Ranked-set fan-out failed after durable append; next recomputation repairs",
			zap.Uint64("transactionId", tx.Id),
			zap.Uint64("authorId", authorId),
			zap.Strings("buckets", buckets),
			zap.Error(err),
		)
		e.incr(metricsTypes.Metric_Incr_FanoutFailure, []metricsTypes.MetricsLabel{
			{Name: "bucket", Value: buckets[0]},
		})
	}

	e.incr(metricsTypes.Metric_Incr_RewardIngested, nil)
	e.timing(metricsTypes.Metric_Timing_IngestDuration, time.Since(start), nil)

	return tx.Id, nil
}

// Top returns the top n authors of a period by descending score. Equal
// scores are ordered lexicographically ascending on the author id string, so
// ties are stable across calls.
func (e *Engine) Top(ctx context.Context, periodKey string, n int64) ([]rankStore.Entry, error) {
	bucket := period.BucketKey(e.metric, periodKey)
	entries, err := e.ranks.TopN(ctx, bucket, n)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].Member < entries[j].Member
	})
	return entries, nil
}

// RankOf returns the 0-based rank and score of an author within a period.
// ok is false when the author is not ranked.
func (e *Engine) RankOf(ctx context.Context, periodKey string, authorId uint64) (rank int64, score float64, ok bool, err error) {
	bucket := period.BucketKey(e.metric, periodKey)
	return e.ranks.RankOf(ctx, bucket, memberFor(authorId))
}

// WindowTotal returns an author's cumulative score within a period; absent
// authors score zero.
func (e *Engine) WindowTotal(ctx context.Context, periodKey string, authorId uint64) (float64, error) {
	bucket := period.BucketKey(e.metric, periodKey)
	score, ok, err := e.ranks.Score(ctx, bucket, memberFor(authorId))
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	return score, nil
}

func (e *Engine) incr(name string, labels []metricsTypes.MetricsLabel) {
	if e.sink == nil {
		return
	}
	_ = e.sink.Incr(name, labels, 1)
}

func (e *Engine) timing(name string, d time.Duration, labels []metricsTypes.MetricsLabel) {
	if e.sink == nil {
		return
	}
	_ = e.sink.Timing(name, d, labels)
}
