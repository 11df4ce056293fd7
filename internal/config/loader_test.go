package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/raidluck/internal/config"
)

func clearConfigEnvVars() {
	for _, key := range []string{
		"RAIDLUCK_CONFIG",
		"RAIDLUCK_ADDR",
		"RAIDLUCK_STORAGE",
		"RAIDLUCK_SQLITE_PATH",
		"RAIDLUCK_SHARD_COUNT",
		"RAIDLUCK_DEDUPE_SIZE",
		"RAIDLUCK_MAX_LEADERBOARD_LIMIT",
		"RAIDLUCK_EVIDENCE_QUEUE_SIZE",
		"RAIDLUCK_EVIDENCE_WORKER_COUNT",
		"RAIDLUCK_EVIDENCE_LOG_PATH",
		"RAIDLUCK_LOG_LEVEL",
	} {
		_ = os.Unsetenv(key)
	}
}

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.Storage, convey.ShouldEqual, "memory")
				convey.So(cfg.ShardCount, convey.ShouldEqual, 8)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("RAIDLUCK_ADDR", ":8080")
			_ = os.Setenv("RAIDLUCK_STORAGE", "sqlite")
			_ = os.Setenv("RAIDLUCK_SQLITE_PATH", "/tmp/ledger.db")
			_ = os.Setenv("RAIDLUCK_SHARD_COUNT", "16")
			_ = os.Setenv("RAIDLUCK_DEDUPE_SIZE", "250000")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.Storage, convey.ShouldEqual, "sqlite")
				convey.So(cfg.SQLitePath, convey.ShouldEqual, "/tmp/ledger.db")
				convey.So(cfg.ShardCount, convey.ShouldEqual, 16)
				convey.So(cfg.DedupeSize, convey.ShouldEqual, 250000)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
addr: ":9090"
shard_count: 4
max_leaderboard_limit: 50
rarity_baselines:
  en: 0.00463
  fr: 0.009
`
			tmpFile := createTempConfigFile(t, yamlContent)
			_ = os.Setenv("RAIDLUCK_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.ShardCount, convey.ShouldEqual, 4)
				convey.So(cfg.MaxLeaderboardLimit, convey.ShouldEqual, 50)
				convey.So(cfg.RarityBaselines["fr"], convey.ShouldEqual, 0.009)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
addr: ":9090"
shard_count: 4
`
			tmpFile := createTempConfigFile(t, yamlContent)
			_ = os.Setenv("RAIDLUCK_CONFIG", tmpFile)
			_ = os.Setenv("RAIDLUCK_ADDR", ":7070")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then env vars should take precedence over the file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.ShardCount, convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When the storage backend is invalid", func() {
			_ = os.Setenv("RAIDLUCK_STORAGE", "etcd")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then validation should reject it", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a rarity baseline is out of range", func() {
			yamlContent := `
rarity_baselines:
  en: 1.5
`
			tmpFile := createTempConfigFile(t, yamlContent)
			_ = os.Setenv("RAIDLUCK_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then validation should reject it", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the config file does not exist", func() {
			_ = os.Setenv("RAIDLUCK_CONFIG", "/nonexistent/config.yaml")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then loading should fail", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})
	})
}
