package metricsTypes

import "time"

type IMetricsClient interface {
	Incr(name string, labels []MetricsLabel, value float64) error
	Gauge(name string, value float64, labels []MetricsLabel) error
	Timing(name string, value time.Duration, labels []MetricsLabel) error
}

type MetricsLabel struct {
	Name  string
	Value string
}

type MetricsType string

var (
	MetricsType_Incr   MetricsType = "incr"
	MetricsType_Gauge  MetricsType = "gauge"
	MetricsType_Timing MetricsType = "timing"
)

type MetricsTypeConfig struct {
	Name   string
	Labels []string
}

var (
	Metric_Incr_RewardIngested   = "rewardIngested"
	Metric_Incr_RewardDuplicate  = "rewardDuplicate"
	Metric_Incr_FanoutFailure    = "fanoutFailure"
	Metric_Incr_RecomputeRun     = "recomputeRun"
	Metric_Incr_RecomputeFailure = "recomputeFailure"

	Metric_Gauge_QueueDepth = "queueDepth"

	Metric_Timing_IngestDuration    = "ingest.duration"
	Metric_Timing_RecomputeDuration = "recompute.duration"
)

var MetricTypes = map[MetricsType][]MetricsTypeConfig{
	MetricsType_Incr: {
		MetricsTypeConfig{
			Name:   Metric_Incr_RewardIngested,
			Labels: []string{},
		},
		MetricsTypeConfig{
			Name:   Metric_Incr_RewardDuplicate,
			Labels: []string{},
		},
		MetricsTypeConfig{
			Name:   Metric_Incr_FanoutFailure,
			Labels: []string{"bucket"},
		},
		MetricsTypeConfig{
			Name:   Metric_Incr_RecomputeRun,
			Labels: []string{"period"},
		},
		MetricsTypeConfig{
			Name:   Metric_Incr_RecomputeFailure,
			Labels: []string{"period"},
		},
	},
	MetricsType_Gauge: {
		MetricsTypeConfig{
			Name:   Metric_Gauge_QueueDepth,
			Labels: []string{},
		},
	},
	MetricsType_Timing: {
		MetricsTypeConfig{
			Name:   Metric_Timing_IngestDuration,
			Labels: []string{},
		},
		MetricsTypeConfig{
			Name:   Metric_Timing_RecomputeDuration,
			Labels: []string{"period"},
		},
	},
}
