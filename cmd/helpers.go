package cmd

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/unilink/leaderboard/internal/config"
	"github.com/unilink/leaderboard/internal/metrics"
	"github.com/unilink/leaderboard/pkg/leaderboard"
	"github.com/unilink/leaderboard/pkg/postgres"
	"github.com/unilink/leaderboard/pkg/postgres/migrations"
	"github.com/unilink/leaderboard/pkg/rankStore/redisRankStore"
	pgStorage "github.com/unilink/leaderboard/pkg/storage/postgres"
	"go.uber.org/zap"
)

// setupEngine wires the store handles the engine needs. The post-author
// resolver is nil: CLI commands only recompute and query, they never ingest.
func setupEngine(cfg *config.Config, l *zap.Logger) (*leaderboard.Engine, *metrics.MetricsSink, func(), error) {
	pgConfig := postgres.PostgresConfigFromDbConfig(&cfg.DatabaseConfig)

	pg, err := postgres.NewPostgres(pgConfig)
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "failed to setup postgres connection")
	}

	grm, err := postgres.NewGormFromPostgresConnection(pg.Db)
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "failed to create gorm instance")
	}

	migrator := migrations.NewMigrator(pg.Db, grm, l)
	if err = migrator.MigrateAll(); err != nil {
		return nil, nil, nil, errors.Wrap(err, "failed to migrate")
	}

	redisClient, err := redisRankStore.NewRedisClientFromUrl(cfg.RedisConfig.Url)
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "failed to setup redis connection")
	}

	clients, err := metrics.InitMetricsSinksFromConfig(cfg, l)
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "failed to setup metrics clients")
	}
	sink, err := metrics.NewMetricsSink(&metrics.MetricsSinkConfig{}, clients)
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "failed to setup metrics sink")
	}

	store := pgStorage.NewPostgresTransactionStore(grm, l)
	ranks := redisRankStore.NewRedisRankStore(redisClient, l)

	engine := leaderboard.NewEngine(store, ranks, nil, sink, l)

	cleanup := func() {
		_ = redisClient.Close()
		_ = pg.Db.Close()
	}
	return engine, sink, cleanup, nil
}

func bindCommandFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if err := viper.BindPFlag(config.KebabToSnakeCase(f.Name), f); err != nil {
			fmt.Printf("Failed to bind flag '%s' - %+v\n", f.Name, err)
		}
		if err := viper.BindEnv(f.Name); err != nil {
			fmt.Printf("Failed to bind env '%s' - %+v\n", f.Name, err)
		}
	})
}
