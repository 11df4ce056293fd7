package repository

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/okian/raidluck/internal/domain/catalog"
	"github.com/okian/raidluck/internal/domain/model"
	"github.com/okian/raidluck/pkg/metrics"
)

// defaultShardCount is used when no option overrides it.
const defaultShardCount = 8

// shard holds a slice of the keyspace under its own lock, so updates to
// different nicknames rarely contend while updates to the same nickname
// always serialize.
type shard struct {
	mu      sync.RWMutex
	records map[string]model.PlayerRecord
}

// MemoryLedger is the in-memory Ledger implementation: a sharded lock
// table keyed by nickname hash.
type MemoryLedger struct {
	shards  []*shard
	catalog *catalog.Catalog
	now     func() time.Time
}

// NewMemoryLedger constructs a memory ledger scoring against cat.
func NewMemoryLedger(cat *catalog.Catalog, opts ...Option) *MemoryLedger {
	cfg := applyOptions(opts)
	l := &MemoryLedger{
		shards:  make([]*shard, cfg.shardCount),
		catalog: cat,
		now:     cfg.now,
	}
	for i := range l.shards {
		l.shards[i] = &shard{records: make(map[string]model.PlayerRecord)}
	}
	metrics.UpdateLedgerShardCount(len(l.shards))
	return l
}

func (l *MemoryLedger) shardFor(nickname string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(nickname))
	return l.shards[int(h.Sum32())%len(l.shards)]
}

// Upsert implements Ledger.Upsert. The whole read-modify-write happens
// under the shard lock, so concurrent batches for one nickname apply as
// if sequential.
func (l *MemoryLedger) Upsert(ctx context.Context, sub model.Submission) (model.PlayerRecord, error) {
	start := time.Now()
	defer func() {
		metrics.RecordLedgerUpdateLatency(float64(time.Since(start).Milliseconds()))
	}()

	baseline, err := l.catalog.BaselineFor(sub.Locale)
	if err != nil {
		return model.PlayerRecord{}, err
	}

	sh := l.shardFor(sub.Nickname)
	sh.mu.Lock()
	rec := applyBatch(sh.records[sub.Nickname], sub, baseline, l.now())
	sh.records[sub.Nickname] = rec
	sh.mu.Unlock()

	metrics.UpdatePlayerCount(l.Count(ctx))
	return rec, nil
}

// Get implements Ledger.Get.
func (l *MemoryLedger) Get(_ context.Context, nickname string) (model.PlayerRecord, error) {
	sh := l.shardFor(nickname)
	sh.mu.RLock()
	rec, ok := sh.records[nickname]
	sh.mu.RUnlock()
	if !ok {
		return model.PlayerRecord{}, ErrNotFound
	}
	return rec, nil
}

// All implements Ledger.All. Each shard is copied under its read lock;
// records are values, so no caller can observe a partial update.
func (l *MemoryLedger) All(_ context.Context) ([]model.PlayerRecord, error) {
	out := make([]model.PlayerRecord, 0, 64)
	for _, sh := range l.shards {
		sh.mu.RLock()
		for _, rec := range sh.records {
			out = append(out, rec)
		}
		sh.mu.RUnlock()
	}
	return out, nil
}

// Count implements Ledger.Count.
func (l *MemoryLedger) Count(_ context.Context) int {
	n := 0
	for _, sh := range l.shards {
		sh.mu.RLock()
		n += len(sh.records)
		sh.mu.RUnlock()
	}
	return n
}
