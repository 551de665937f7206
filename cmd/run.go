package cmd

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/unilink/leaderboard/internal/config"
	"github.com/unilink/leaderboard/internal/logger"
	"github.com/unilink/leaderboard/internal/metrics/metricsTypes"
	"github.com/unilink/leaderboard/internal/metrics/prometheus"
	"github.com/unilink/leaderboard/internal/shutdown"
	"github.com/unilink/leaderboard/pkg/recomputeQueue"
	"github.com/unilink/leaderboard/pkg/scheduler"
	"go.uber.org/zap"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the leaderboard worker: recompute queue plus cron triggers",
	Run: func(cmd *cobra.Command, args []string) {
		bindCommandFlags(cmd)
		cfg := config.NewConfigFromViper()

		l, _ := logger.NewLogger(&logger.LoggerConfig{Debug: cfg.Debug})

		engine, sink, cleanup, err := setupEngine(cfg, l)
		if err != nil {
			l.Sugar().Fatalw("Failed to setup leaderboard engine", zap.Error(err))
		}
		defer cleanup()

		queue := recomputeQueue.NewRecomputeQueue(engine, l)
		go queue.Process()

		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for range ticker.C {
				_ = sink.Gauge(metricsTypes.Metric_Gauge_QueueDepth, float64(queue.Depth()), nil)
			}
		}()

		var sched *scheduler.RecomputeScheduler
		if cfg.SchedulerConfig.Enabled {
			sched = scheduler.NewRecomputeScheduler(queue, l)
			if err := sched.Start(); err != nil {
				l.Sugar().Fatalw("Failed to start recompute scheduler", zap.Error(err))
			}
		}

		promShutdown := make(chan bool)
		if cfg.MetricsConfig.PrometheusEnabled {
			promServer := prometheus.NewPrometheusServer(&prometheus.PrometheusServerConfig{
				Port: cfg.MetricsConfig.PrometheusPort,
			}, l)
			if err := promServer.Start(promShutdown); err != nil {
				l.Sugar().Fatalw("Failed to start prometheus server", zap.Error(err))
			}
		}

		l.Sugar().Info("Started leaderboard worker")

		gracefulShutdown := shutdown.CreateGracefulShutdownChannel()

		done := make(chan bool)
		shutdown.ListenForShutdown(gracefulShutdown, done, func() {
			l.Sugar().Info("Shutting down...")
			if sched != nil {
				sched.Stop()
			}
			queue.Close()
			if cfg.MetricsConfig.PrometheusEnabled {
				promShutdown <- true
			}
		}, time.Second*5, l)
	},
}
