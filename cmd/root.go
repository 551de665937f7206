package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/unilink/leaderboard/internal/config"
)

// Exit codes for the one-shot commands.
const (
	ExitOk          = 0
	ExitTaskFailure = 1
	ExitInvalidArgs = 2
)

var rootCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Reward-points leaderboard engine: time-bucketed author rankings backed by a durable transaction log",
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(ExitTaskFailure)
	}
}

func init() {
	initConfig(rootCmd)

	rootCmd.PersistentFlags().Bool(config.Debug, false, `"true" or "false"`)

	rootCmd.PersistentFlags().String(config.DatabaseHost, "localhost", `PostgreSQL host`)
	rootCmd.PersistentFlags().Int(config.DatabasePort, 5432, `PostgreSQL port`)
	rootCmd.PersistentFlags().String(config.DatabaseUser, "", `PostgreSQL username`)
	rootCmd.PersistentFlags().String(config.DatabasePassword, "", `PostgreSQL password`)
	rootCmd.PersistentFlags().String(config.DatabaseDbName, "leaderboard", `PostgreSQL database name`)
	rootCmd.PersistentFlags().String(config.DatabaseSchema, "", `PostgreSQL schema name (default "public")`)
	rootCmd.PersistentFlags().String(config.DatabaseUrl, "", `PostgreSQL url, overrides the discrete database flags`)

	rootCmd.PersistentFlags().String(config.RedisUrl, "", `Redis url for the ranked-set store, e.g. "redis://localhost:6379/0"`)

	rootCmd.PersistentFlags().Bool(config.SchedulerEnabled, true, `Run the cron recomputation triggers in "run" mode`)

	rootCmd.PersistentFlags().Bool(config.PrometheusEnabled, false, `e.g. "true" or "false"`)
	rootCmd.PersistentFlags().Int(config.PrometheusPort, 2112, `The port to run the prometheus server on`)

	rootCmd.PersistentFlags().Bool(config.StatsdEnabled, false, `e.g. "true" or "false"`)
	rootCmd.PersistentFlags().String(config.StatsdUrl, "", `e.g. "localhost:8125"`)
	rootCmd.PersistentFlags().Float64(config.StatsdSampleRate, 1.0, `The sample rate to use for statsd metrics`)

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(initLeaderboardsCmd)
	rootCmd.AddCommand(backfillCmd)
	rootCmd.AddCommand(runDatabaseCmd)
	rootCmd.AddCommand(runVersionCmd)

	initLeaderboardsCmd.PersistentFlags().Int(config.InitDays, 0, "Also prime the previous N daily buckets")

	backfillCmd.PersistentFlags().String(config.BackfillFromDate, "", "Start date YYYY-MM-DD (inclusive)")
	backfillCmd.PersistentFlags().String(config.BackfillToDate, "", "End date YYYY-MM-DD (inclusive)")
	backfillCmd.PersistentFlags().Bool(config.BackfillDaily, false, "Recompute one daily bucket per date in range")
	backfillCmd.PersistentFlags().Bool(config.BackfillWeekly, false, "Recompute one weekly bucket per ISO week in range")
	backfillCmd.PersistentFlags().Bool(config.BackfillAllTime, false, "Recompute the alltime bucket")
	backfillCmd.PersistentFlags().Bool(config.BackfillRunSync, false, "Execute inline instead of through the task queue")

	rootCmd.PersistentFlags().VisitAll(func(f *pflag.Flag) {
		key := config.KebabToSnakeCase(f.Name)
		viper.BindPFlag(key, f) //nolint:errcheck
		viper.BindEnv(key)      //nolint:errcheck
	})

	// Spec'd short-form environment variables.
	viper.BindEnv(config.KebabToSnakeCase(config.DatabaseUrl), "LEADERBOARD_DB_URL") //nolint:errcheck
	viper.BindEnv(config.KebabToSnakeCase(config.RedisUrl), "LEADERBOARD_REDIS_URL") //nolint:errcheck
}

func initConfig(cmd *cobra.Command) {
	viper.SetEnvPrefix(config.ENV_VAR_PREFIX)

	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	viper.AutomaticEnv()
}
