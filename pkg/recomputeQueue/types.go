package recomputeQueue

import (
	"github.com/unilink/leaderboard/pkg/leaderboard"
	"go.uber.org/zap"
)

type RecomputationType string

var (
	RecomputationType_Daily   RecomputationType = "daily"
	RecomputationType_Weekly  RecomputationType = "weekly"
	RecomputationType_Monthly RecomputationType = "monthly"
	RecomputationType_AllTime RecomputationType = "alltime"
)

type RecomputationData struct {
	RecomputationType RecomputationType

	// DateIso selects the target bucket (YYYY-MM-DD). Empty means the
	// current UTC date for weekly/monthly; daily requires it.
	DateIso string
}

type RecomputationMessage struct {
	Data         RecomputationData
	ResponseChan chan *RecomputationResponse
}

type RecomputationResponse struct {
	Error error
}

type RecomputeQueue struct {
	logger *zap.Logger
	engine *leaderboard.Engine
	queue  chan *RecomputationMessage
	done   chan struct{}

	maxAttempts int
	retryDelay  func(attempt int)
}
