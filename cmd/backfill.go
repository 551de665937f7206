package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/unilink/leaderboard/internal/config"
	"github.com/unilink/leaderboard/internal/logger"
	"github.com/unilink/leaderboard/pkg/leaderboard"
	"github.com/unilink/leaderboard/pkg/period"
	"github.com/unilink/leaderboard/pkg/recomputeQueue"
	"go.uber.org/zap"
)

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Recompute leaderboard buckets over a historical date range",
	Run: func(cmd *cobra.Command, args []string) {
		bindCommandFlags(cmd)
		cfg := config.NewConfigFromViper()

		l, _ := logger.NewLogger(&logger.LoggerConfig{Debug: cfg.Debug})

		daily := viper.GetBool(config.KebabToSnakeCase(config.BackfillDaily))
		weekly := viper.GetBool(config.KebabToSnakeCase(config.BackfillWeekly))
		alltime := viper.GetBool(config.KebabToSnakeCase(config.BackfillAllTime))
		runSync := viper.GetBool(config.KebabToSnakeCase(config.BackfillRunSync))
		fromDate := viper.GetString(config.KebabToSnakeCase(config.BackfillFromDate))
		toDate := viper.GetString(config.KebabToSnakeCase(config.BackfillToDate))

		if !daily && !weekly && !alltime {
			fmt.Fprintln(os.Stderr, "nothing to do: pass at least one of --daily, --weekly, --alltime")
			os.Exit(ExitInvalidArgs)
		}

		var from, to time.Time
		if daily || weekly {
			var err error
			from, to, err = parseBackfillRange(fromDate, toDate)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(ExitInvalidArgs)
			}
		}

		tasks := make([]recomputeQueue.RecomputationData, 0)
		if daily {
			for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
				tasks = append(tasks, recomputeQueue.RecomputationData{
					RecomputationType: recomputeQueue.RecomputationType_Daily,
					DateIso:           d.Format("2006-01-02"),
				})
			}
		}
		if weekly {
			for d := period.MondayOf(from); !d.After(to); d = d.AddDate(0, 0, 7) {
				tasks = append(tasks, recomputeQueue.RecomputationData{
					RecomputationType: recomputeQueue.RecomputationType_Weekly,
					DateIso:           d.Format("2006-01-02"),
				})
			}
		}
		if alltime {
			tasks = append(tasks, recomputeQueue.RecomputationData{
				RecomputationType: recomputeQueue.RecomputationType_AllTime,
			})
		}

		engine, _, cleanup, err := setupEngine(cfg, l)
		if err != nil {
			l.Sugar().Errorw("Failed to setup leaderboard engine", zap.Error(err))
			os.Exit(ExitTaskFailure)
		}

		err = runBackfillTasks(engine, tasks, runSync, l)
		cleanup()
		if err != nil {
			l.Sugar().Errorw("Backfill failed", zap.Error(err))
			os.Exit(ExitTaskFailure)
		}
	},
}

func parseBackfillRange(fromDate string, toDate string) (time.Time, time.Time, error) {
	if fromDate == "" || toDate == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("--%s and --%s are required for daily/weekly backfill", config.BackfillFromDate, config.BackfillToDate)
	}
	from, err := period.ParseDate(fromDate)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := period.ParseDate(toDate)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("--%s must not be before --%s", config.BackfillToDate, config.BackfillFromDate)
	}
	return from, to, nil
}

// runBackfillTasks either executes tasks inline or pushes them through the
// recompute queue so they get the worker's retry policy.
func runBackfillTasks(engine *leaderboard.Engine, tasks []recomputeQueue.RecomputationData, runSync bool, l *zap.Logger) error {
	ctx := context.Background()

	if runSync {
		for _, task := range tasks {
			l.Sugar().Infow("Running backfill task inline", "data", task)
			if err := runBackfillTaskInline(ctx, engine, task); err != nil {
				return err
			}
		}
		return nil
	}

	queue := recomputeQueue.NewRecomputeQueue(engine, l)
	go queue.Process()
	defer queue.Close()

	for _, task := range tasks {
		if err := queue.EnqueueAndWait(ctx, task); err != nil {
			return err
		}
	}
	return nil
}

func runBackfillTaskInline(ctx context.Context, engine *leaderboard.Engine, task recomputeQueue.RecomputationData) error {
	switch task.RecomputationType {
	case recomputeQueue.RecomputationType_Daily:
		return engine.RecomputeDaily(ctx, task.DateIso)
	case recomputeQueue.RecomputationType_Weekly:
		return engine.RecomputeWeekly(ctx, task.DateIso)
	case recomputeQueue.RecomputationType_Monthly:
		return engine.RecomputeMonthly(ctx, task.DateIso)
	case recomputeQueue.RecomputationType_AllTime:
		return engine.RecomputeAllTime(ctx)
	default:
		return fmt.Errorf("unknown recomputation type %s", task.RecomputationType)
	}
}
