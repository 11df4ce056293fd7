package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/okian/raidluck/internal/domain/catalog"
	"github.com/okian/raidluck/internal/domain/model"
	"github.com/okian/raidluck/pkg/metrics"

	_ "modernc.org/sqlite" // sqlite driver
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS player_records (
    nickname       TEXT PRIMARY KEY,
    team           TEXT NOT NULL,
    locale         TEXT NOT NULL,
    raids          INTEGER NOT NULL,
    total_perfects INTEGER NOT NULL,
    luck_score     REAL NOT NULL,
    perfect_rate   REAL NOT NULL,
    version        INTEGER NOT NULL,
    last_updated   INTEGER NOT NULL
);
`

// SQLiteLedger is the durable, write-through Ledger implementation.
// Per-nickname serialization comes from the same sharded lock table the
// memory ledger uses; SQLite provides durability, not the locking.
type SQLiteLedger struct {
	sqlDB   *sql.DB
	locks   []*sync.Mutex
	catalog *catalog.Catalog
	now     func() time.Time
}

// OpenSQLiteLedger opens (or creates) the database at path and ensures
// the schema. Scores are computed against cat.
func OpenSQLiteLedger(path string, cat *catalog.Catalog, opts ...Option) (*SQLiteLedger, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: storage path is required", ErrStorageUnavailable)
	}
	cfg := applyOptions(opts)

	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open: %v", ErrStorageUnavailable, err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("%w: ping: %v", ErrStorageUnavailable, err)
	}
	if _, err := sqlDB.Exec(schemaSQL); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("%w: ensure schema: %v", ErrStorageUnavailable, err)
	}

	l := &SQLiteLedger{
		sqlDB:   sqlDB,
		locks:   make([]*sync.Mutex, cfg.shardCount),
		catalog: cat,
		now:     cfg.now,
	}
	for i := range l.locks {
		l.locks[i] = &sync.Mutex{}
	}
	metrics.UpdateLedgerShardCount(len(l.locks))
	return l, nil
}

// Close closes the underlying database handle.
func (l *SQLiteLedger) Close() error {
	if l == nil || l.sqlDB == nil {
		return nil
	}
	return l.sqlDB.Close()
}

func (l *SQLiteLedger) lockFor(nickname string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(nickname))
	return l.locks[int(h.Sum32())%len(l.locks)]
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Upsert implements Ledger.Upsert with a write-through row update.
func (l *SQLiteLedger) Upsert(ctx context.Context, sub model.Submission) (model.PlayerRecord, error) {
	start := time.Now()
	defer func() {
		metrics.RecordLedgerUpdateLatency(float64(time.Since(start).Milliseconds()))
	}()

	baseline, err := l.catalog.BaselineFor(sub.Locale)
	if err != nil {
		return model.PlayerRecord{}, err
	}

	mu := l.lockFor(sub.Nickname)
	mu.Lock()
	defer mu.Unlock()

	prev, err := l.get(ctx, sub.Nickname)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return model.PlayerRecord{}, err
	}

	rec := applyBatch(prev, sub, baseline, l.now())

	_, err = l.sqlDB.ExecContext(
		ctx,
		`INSERT INTO player_records (
		   nickname, team, locale, raids, total_perfects,
		   luck_score, perfect_rate, version, last_updated
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(nickname) DO UPDATE SET
		   team = excluded.team,
		   locale = excluded.locale,
		   raids = excluded.raids,
		   total_perfects = excluded.total_perfects,
		   luck_score = excluded.luck_score,
		   perfect_rate = excluded.perfect_rate,
		   version = excluded.version,
		   last_updated = excluded.last_updated`,
		rec.Nickname,
		rec.Team,
		rec.Locale,
		rec.Raids,
		rec.TotalPerfects,
		rec.LuckScore,
		rec.PerfectRate,
		rec.Version,
		toMillis(rec.LastUpdated),
	)
	if err != nil {
		metrics.RecordErrorByComponent("ledger", "storage_unavailable")
		return model.PlayerRecord{}, fmt.Errorf("%w: upsert: %v", ErrStorageUnavailable, err)
	}

	metrics.UpdatePlayerCount(l.Count(ctx))
	return rec, nil
}

// Get implements Ledger.Get.
func (l *SQLiteLedger) Get(ctx context.Context, nickname string) (model.PlayerRecord, error) {
	return l.get(ctx, nickname)
}

func (l *SQLiteLedger) get(ctx context.Context, nickname string) (model.PlayerRecord, error) {
	row := l.sqlDB.QueryRowContext(
		ctx,
		`SELECT nickname, team, locale, raids, total_perfects,
		        luck_score, perfect_rate, version, last_updated
		 FROM player_records WHERE nickname = ?`,
		nickname,
	)
	return scanRecord(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (model.PlayerRecord, error) {
	var rec model.PlayerRecord
	var millis int64
	err := row.Scan(
		&rec.Nickname,
		&rec.Team,
		&rec.Locale,
		&rec.Raids,
		&rec.TotalPerfects,
		&rec.LuckScore,
		&rec.PerfectRate,
		&rec.Version,
		&millis,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.PlayerRecord{}, ErrNotFound
	}
	if err != nil {
		return model.PlayerRecord{}, fmt.Errorf("%w: scan: %v", ErrStorageUnavailable, err)
	}
	rec.LastUpdated = fromMillis(millis)
	return rec, nil
}

// All implements Ledger.All.
func (l *SQLiteLedger) All(ctx context.Context) ([]model.PlayerRecord, error) {
	rows, err := l.sqlDB.QueryContext(
		ctx,
		`SELECT nickname, team, locale, raids, total_perfects,
		        luck_score, perfect_rate, version, last_updated
		 FROM player_records`,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: query: %v", ErrStorageUnavailable, err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.PlayerRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: rows: %v", ErrStorageUnavailable, err)
	}
	return out, nil
}

// Count implements Ledger.Count. Returns 0 when the store is
// unreachable; callers that care about failures use All.
func (l *SQLiteLedger) Count(ctx context.Context) int {
	var n int
	if err := l.sqlDB.QueryRowContext(ctx, `SELECT COUNT(*) FROM player_records`).Scan(&n); err != nil {
		return 0
	}
	return n
}
