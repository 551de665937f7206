// Package scheduler wires the wall-clock recomputation triggers. All cron
// expressions run in UTC:
//
//	weekly  - Monday 00:01, rebuilds the current ISO week
//	alltime - daily 02:00, doubles as a long-horizon audit of the log
//	monthly - day 1 00:05, rebuilds the current month
package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/unilink/leaderboard/pkg/recomputeQueue"
	"go.uber.org/zap"
)

type RecomputeScheduler struct {
	cron   *cron.Cron
	queue  *recomputeQueue.RecomputeQueue
	logger *zap.Logger
}

func NewRecomputeScheduler(queue *recomputeQueue.RecomputeQueue, l *zap.Logger) *RecomputeScheduler {
	return &RecomputeScheduler{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		queue:  queue,
		logger: l,
	}
}

func (s *RecomputeScheduler) Start() error {
	entries := []struct {
		spec string
		data recomputeQueue.RecomputationData
	}{
		{"1 0 * * 1", recomputeQueue.RecomputationData{RecomputationType: recomputeQueue.RecomputationType_Weekly}},
		{"0 2 * * *", recomputeQueue.RecomputationData{RecomputationType: recomputeQueue.RecomputationType_AllTime}},
		{"5 0 1 * *", recomputeQueue.RecomputationData{RecomputationType: recomputeQueue.RecomputationType_Monthly}},
	}

	for _, entry := range entries {
		data := entry.data
		_, err := s.cron.AddFunc(entry.spec, func() {
			s.queue.Enqueue(&recomputeQueue.RecomputationMessage{Data: data})
		})
		if err != nil {
			return err
		}
	}

	s.cron.Start()
	s.logger.Sugar().Infow("Recompute scheduler started")
	return nil
}

func (s *RecomputeScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Sugar().Infow("Recompute scheduler stopped")
}
