// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"runtime"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// Storage selects the ledger backend: memory or sqlite.
	Storage string `koanf:"storage"`

	// SQLitePath locates the database file for the sqlite backend.
	SQLitePath string `koanf:"sqlite_path"`

	// ShardCount configures the number of ledger lock shards.
	ShardCount int `koanf:"shard_count"`

	// DedupeSize sets the size of the deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// EvidenceQueueSize bounds the in-memory evidence queue.
	EvidenceQueueSize int `koanf:"evidence_queue_size"`

	// EvidenceWorkerCount sets the number of evidence archiver workers.
	EvidenceWorkerCount int `koanf:"evidence_worker_count"`

	// EvidenceLogPath locates the append-only evidence journal.
	EvidenceLogPath string `koanf:"evidence_log_path"`

	// RarityBaselines maps locale codes to the probability of a perfect
	// raid under that locale's item pool.
	RarityBaselines map[string]float64 `koanf:"rarity_baselines"`
}

// New creates a Config with default values.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":9080",
		Storage:             "memory",
		SQLitePath:          "raidluck.db",
		ShardCount:          8,
		DedupeSize:          100_000,
		MaxLeaderboardLimit: 100,
		EvidenceQueueSize:   10_000,
		EvidenceWorkerCount: runtime.NumCPU(),
		EvidenceLogPath:     "evidence.log",
		RarityBaselines: map[string]float64{
			"en":    0.00463,
			"es_ES": 0.0078,
			"es_MX": 0.0123,
		},
	}
}
