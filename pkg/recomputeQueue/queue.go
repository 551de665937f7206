package recomputeQueue

import (
	"context"
	"time"

	"github.com/unilink/leaderboard/pkg/leaderboard"
	"go.uber.org/zap"
)

// Transient failures are retried inside the worker before the task is
// recorded as terminally failed.
const (
	defaultMaxAttempts = 3
	defaultRetryDelay  = 60 * time.Second
)

// NewRecomputeQueue creates a new RecomputeQueue draining into the engine.
func NewRecomputeQueue(engine *leaderboard.Engine, logger *zap.Logger) *RecomputeQueue {
	queue := &RecomputeQueue{
		logger: logger,
		engine: engine,
		// allow the queue to buffer up to 100 messages
		queue:       make(chan *RecomputationMessage, 100),
		done:        make(chan struct{}),
		maxAttempts: defaultMaxAttempts,
		retryDelay: func(attempt int) {
			time.Sleep(defaultRetryDelay)
		},
	}
	return queue
}

// Enqueue adds a new message to the queue and returns immediately.
func (rq *RecomputeQueue) Enqueue(payload *RecomputationMessage) {
	rq.logger.Sugar().Infow("Enqueueing recomputation message", "data", payload.Data)
	rq.queue <- payload
}

// EnqueueAndWait adds a new message to the queue and waits for a response or
// returns when the context is done.
func (rq *RecomputeQueue) EnqueueAndWait(ctx context.Context, data RecomputationData) error {
	responseChan := make(chan *RecomputationResponse, 1)

	payload := &RecomputationMessage{
		Data:         data,
		ResponseChan: responseChan,
	}
	rq.Enqueue(payload)

	select {
	case response := <-responseChan:
		return response.Error
	case <-ctx.Done():
		rq.logger.Sugar().Infow("Received context.Done() while waiting for recomputation")
		return ctx.Err()
	}
}

func (rq *RecomputeQueue) Depth() int {
	return len(rq.queue)
}

func (rq *RecomputeQueue) Close() {
	rq.logger.Sugar().Infow("Closing recomputation queue")
	close(rq.done)
}
