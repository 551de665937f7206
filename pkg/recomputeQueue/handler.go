package recomputeQueue

import (
	"context"
	"fmt"

	"github.com/unilink/leaderboard/pkg/types"
	"go.uber.org/zap"
)

// Process drains the queue until Close is called. Run it on a background
// goroutine; one worker is enough since recomputations serialize against the
// same stores anyway.
func (rq *RecomputeQueue) Process() {
	for {
		select {
		case <-rq.done:
			rq.logger.Sugar().Infow("Recomputation queue worker stopped")
			return
		case msg := <-rq.queue:
			rq.logger.Sugar().Infow("Processing recomputation message", "data", msg.Data)
			response := rq.processMessage(msg)

			if msg.ResponseChan != nil {
				select {
				case msg.ResponseChan <- response:
				default:
					rq.logger.Sugar().Infow("No receiver for response, dropping", "data", msg.Data)
				}
			} else if response.Error != nil {
				rq.logger.Sugar().Errorw("Recomputation failed terminally",
					"data", msg.Data,
					zap.Error(response.Error),
				)
			}
		}
	}
}

func (rq *RecomputeQueue) processMessage(msg *RecomputationMessage) *RecomputationResponse {
	var err error
	for attempt := 1; attempt <= rq.maxAttempts; attempt++ {
		err = rq.runTask(msg.Data)
		if err == nil {
			return &RecomputationResponse{}
		}
		// Only transient failures are worth retrying; malformed input
		// will not get better.
		if !types.IsUnavailable(err) {
			return &RecomputationResponse{Error: err}
		}
		rq.logger.Sugar().Warnw("Recomputation attempt failed",
			"data", msg.Data,
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		if attempt < rq.maxAttempts {
			rq.retryDelay(attempt)
		}
	}
	return &RecomputationResponse{Error: err}
}

func (rq *RecomputeQueue) runTask(data RecomputationData) error {
	ctx := context.Background()

	switch data.RecomputationType {
	case RecomputationType_Daily:
		if data.DateIso == "" {
			return types.InvalidInput("daily recomputation requires a date")
		}
		return rq.engine.RecomputeDaily(ctx, data.DateIso)
	case RecomputationType_Weekly:
		return rq.engine.RecomputeWeekly(ctx, data.DateIso)
	case RecomputationType_Monthly:
		return rq.engine.RecomputeMonthly(ctx, data.DateIso)
	case RecomputationType_AllTime:
		return rq.engine.RecomputeAllTime(ctx)
	default:
		return fmt.Errorf("unknown recomputation type %s", data.RecomputationType)
	}
}
