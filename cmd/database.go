package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/unilink/leaderboard/internal/config"
	"github.com/unilink/leaderboard/internal/logger"
	"github.com/unilink/leaderboard/pkg/postgres"
	"github.com/unilink/leaderboard/pkg/postgres/migrations"
	"go.uber.org/zap"
)

var runDatabaseCmd = &cobra.Command{
	Use:   "database",
	Short: "Create the database if needed and run migrations",
	Run: func(cmd *cobra.Command, args []string) {
		bindCommandFlags(cmd)
		cfg := config.NewConfigFromViper()

		l, _ := logger.NewLogger(&logger.LoggerConfig{Debug: cfg.Debug})

		pgConfig := postgres.PostgresConfigFromDbConfig(&cfg.DatabaseConfig)
		pgConfig.CreateDbIfNotExists = true

		pg, err := postgres.NewPostgres(pgConfig)
		if err != nil {
			l.Sugar().Errorw("Failed to setup postgres connection", zap.Error(err))
			os.Exit(ExitTaskFailure)
		}
		defer pg.Db.Close()

		grm, err := postgres.NewGormFromPostgresConnection(pg.Db)
		if err != nil {
			l.Sugar().Errorw("Failed to create gorm instance", zap.Error(err))
			os.Exit(ExitTaskFailure)
		}

		migrator := migrations.NewMigrator(pg.Db, grm, l)
		if err := migrator.MigrateAll(); err != nil {
			l.Sugar().Errorw("Failed to migrate", zap.Error(err))
			os.Exit(ExitTaskFailure)
		}
	},
}
