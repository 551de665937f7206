package leaderboard

import (
	"context"
	"time"

	"github.com/unilink/leaderboard/internal/metrics/metricsTypes"
	"github.com/unilink/leaderboard/pkg/period"
	"github.com/unilink/leaderboard/pkg/types"
	"go.uber.org/zap"
)

// Recomputation rebuilds exactly one bucket from the transaction log. Each
// task is idempotent: rerunning it against an unchanged log produces
// identical bucket contents. Tasks are safe to run concurrently with ingest;
// an increment racing the delete+replace pipeline can be lost temporarily and
// is restored by the next scheduled run.

// RecomputeDaily rebuilds the daily bucket for dateIso (YYYY-MM-DD, UTC).
func (e *Engine) RecomputeDaily(ctx context.Context, dateIso string) error {
	d, err := period.ParseDate(dateIso)
	if err != nil {
		return types.InvalidInput("%v", err)
	}
	return e.recomputeBucket(ctx, period.DailyKey(d), period.DayWindow(d), period.BucketTTL)
}

// RecomputeWeekly rebuilds the weekly bucket for the ISO week containing
// dateIso, or the current UTC week when dateIso is empty.
func (e *Engine) RecomputeWeekly(ctx context.Context, dateIso string) error {
	d, err := e.dateOrNow(dateIso)
	if err != nil {
		return err
	}
	return e.recomputeBucket(ctx, period.WeeklyKey(d), period.ISOWeekWindow(d), period.BucketTTL)
}

// RecomputeMonthly rebuilds the monthly bucket for the calendar month of
// dateIso, or the current UTC month when dateIso is empty.
func (e *Engine) RecomputeMonthly(ctx context.Context, dateIso string) error {
	d, err := e.dateOrNow(dateIso)
	if err != nil {
		return err
	}
	return e.recomputeBucket(ctx, period.MonthlyKey(d), period.MonthWindow(d), period.BucketTTL)
}

// RecomputeAllTime rebuilds the alltime bucket from the full log. The bucket
// carries no TTL.
func (e *Engine) RecomputeAllTime(ctx context.Context) error {
	return e.recomputeBucket(ctx, period.AllTimeKey(), period.Window{}, 0)
}

func (e *Engine) dateOrNow(dateIso string) (time.Time, error) {
	if dateIso == "" {
		return time.Now().UTC(), nil
	}
	d, err := period.ParseDate(dateIso)
	if err != nil {
		return time.Time{}, types.InvalidInput("%v", err)
	}
	return d, nil
}

func (e *Engine) recomputeBucket(ctx context.Context, periodKey string, window period.Window, ttl time.Duration) error {
	start := time.Now()
	target := period.BucketKey(e.metric, periodKey)

	labels := []metricsTypes.MetricsLabel{{Name: "period", Value: periodKey}}
	e.incr(metricsTypes.Metric_Incr_RecomputeRun, labels)

	taskCtx, cancel := context.WithTimeout(ctx, recomputeTimeout)
	defer cancel()

	totals, err := e.store.AggregateByAuthor(taskCtx, window)
	if err != nil {
		e.incr(metricsTypes.Metric_Incr_RecomputeFailure, labels)
		return err
	}

	mapping := make(map[string]float64, len(totals))
	for authorId, total := range totals {
		if total <= 0 {
			continue
		}
		mapping[memberFor(authorId)] = total
	}

	if err := e.ranks.ReplaceBucket(taskCtx, target, mapping, ttl); err != nil {
		e.incr(metricsTypes.Metric_Incr_RecomputeFailure, labels)
		return err
	}

	e.logger.Sugar().Infow("Recomputed leaderboard bucket",
		zap.String("bucket", target),
		zap.Int("members", len(mapping)),
		zap.Duration("duration", time.Since(start)),
	)
	e.timing(metricsTypes.Metric_Timing_RecomputeDuration, time.Since(start), labels)
	return nil
}

// InitResult describes one bucket primed by InitLeaderboards.
type InitResult struct {
	Bucket  string
	Members int
	Top     []string
}

// InitLeaderboards primes every currently-live bucket from the log: alltime,
// today, this ISO week and this month, plus the previous `days` daily
// buckets when days > 0. Intended for first deployment and disaster
// recovery; existing bucket contents are overwritten.
func (e *Engine) InitLeaderboards(ctx context.Context, now time.Time, days int) ([]InitResult, error) {
	now = now.UTC()
	results := make([]InitResult, 0, 4+days)

	if err := e.RecomputeAllTime(ctx); err != nil {
		return results, err
	}
	alltime, err := e.describeBucket(ctx, period.AllTimeKey(), 3)
	if err != nil {
		return results, err
	}
	results = append(results, alltime)

	dailyKeys := []string{now.Format("2006-01-02")}
	for i := 1; i <= days; i++ {
		dailyKeys = append(dailyKeys, now.AddDate(0, 0, -i).Format("2006-01-02"))
	}
	for _, dateIso := range dailyKeys {
		if err := e.RecomputeDaily(ctx, dateIso); err != nil {
			return results, err
		}
		d, _ := period.ParseDate(dateIso)
		res, err := e.describeBucket(ctx, period.DailyKey(d), 0)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}

	if err := e.RecomputeWeekly(ctx, dailyKeys[0]); err != nil {
		return results, err
	}
	weekly, err := e.describeBucket(ctx, period.WeeklyKey(now), 0)
	if err != nil {
		return results, err
	}
	results = append(results, weekly)

	if err := e.RecomputeMonthly(ctx, dailyKeys[0]); err != nil {
		return results, err
	}
	monthly, err := e.describeBucket(ctx, period.MonthlyKey(now), 0)
	if err != nil {
		return results, err
	}
	results = append(results, monthly)

	return results, nil
}

func (e *Engine) describeBucket(ctx context.Context, periodKey string, topN int64) (InitResult, error) {
	bucket := period.BucketKey(e.metric, periodKey)

	// A generous page size; buckets hold one entry per rewarded author.
	entries, err := e.ranks.TopN(ctx, bucket, 1<<20)
	if err != nil {
		return InitResult{}, err
	}

	res := InitResult{
		Bucket:  bucket,
		Members: len(entries),
	}
	if topN > 0 {
		top, err := e.Top(ctx, periodKey, topN)
		if err != nil {
			return InitResult{}, err
		}
		for _, entry := range top {
			res.Top = append(res.Top, entry.Member)
		}
	}
	return res, nil
}
