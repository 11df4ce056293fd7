package repository

import "time"

// ledgerConfig collects options shared by the ledger implementations.
type ledgerConfig struct {
	shardCount int
	now        func() time.Time
}

// Option applies a configuration option to a ledger.
type Option func(*ledgerConfig)

// WithShardCount sets the number of shards in the per-nickname lock
// table.
func WithShardCount(count int) Option {
	return func(c *ledgerConfig) {
		if count > 0 {
			c.shardCount = count
		}
	}
}

// WithClock overrides the time source used for lastUpdated stamps.
// The ledger never depends on wall-clock time for correctness; this
// exists so tests can pin timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *ledgerConfig) {
		if now != nil {
			c.now = now
		}
	}
}

func applyOptions(opts []Option) ledgerConfig {
	cfg := ledgerConfig{
		shardCount: defaultShardCount,
		now:        func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
