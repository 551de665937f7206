package tests

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/unilink/leaderboard/internal/config"
)

func GetConfig() *config.Config {
	return config.NewConfig()
}

func GetDbConfigFromEnv() *config.DatabaseConfig {
	cfg := config.NewConfig()
	return &cfg.DatabaseConfig
}

// GenerateTestDbName returns a unique, postgres-safe database name so that
// each test run gets its own schema.
func GenerateTestDbName() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("test_%s", strings.ReplaceAll(id.String(), "-", "")), nil
}

// PostgresTestsEnabled gates integration tests that need a live database.
func PostgresTestsEnabled() bool {
	return os.Getenv("TEST_POSTGRES") == "true"
}

// RedisTestsEnabled gates integration tests that need a live redis.
func RedisTestsEnabled() bool {
	return os.Getenv("TEST_REDIS") == "true"
}
