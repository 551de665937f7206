package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/unilink/leaderboard/internal/config"
	"github.com/unilink/leaderboard/internal/logger"
	"go.uber.org/zap"
)

var initLeaderboardsCmd = &cobra.Command{
	Use:   "init-leaderboards",
	Short: "Prime all currently-live leaderboard buckets from the transaction log",
	Long: `Computes and writes the alltime, daily, weekly and monthly buckets for the
current UTC date from the transaction log, overwriting whatever the ranked-set
store currently holds. Run once on first deployment, or any time the serving
index needs to be rebuilt from scratch.`,
	Run: func(cmd *cobra.Command, args []string) {
		bindCommandFlags(cmd)
		cfg := config.NewConfigFromViper()

		l, _ := logger.NewLogger(&logger.LoggerConfig{Debug: cfg.Debug})

		days := viper.GetInt(config.KebabToSnakeCase(config.InitDays))
		if days < 0 {
			fmt.Fprintf(os.Stderr, "--%s must be >= 0\n", config.InitDays)
			os.Exit(ExitInvalidArgs)
		}

		engine, _, cleanup, err := setupEngine(cfg, l)
		if err != nil {
			l.Sugar().Errorw("Failed to setup leaderboard engine", zap.Error(err))
			os.Exit(ExitTaskFailure)
		}

		results, err := engine.InitLeaderboards(context.Background(), time.Now().UTC(), days)
		for _, res := range results {
			line := fmt.Sprintf("%s: %d members", res.Bucket, res.Members)
			if len(res.Top) > 0 {
				line = fmt.Sprintf("%s (top: %s)", line, strings.Join(res.Top, ", "))
			}
			fmt.Println(line)
		}
		cleanup()
		if err != nil {
			l.Sugar().Errorw("Failed to initialize leaderboards", zap.Error(err))
			os.Exit(ExitTaskFailure)
		}
	},
}
