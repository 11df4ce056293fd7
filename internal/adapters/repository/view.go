package repository

import (
	"context"
	"sort"
	"time"

	"github.com/okian/raidluck/internal/domain/model"
	"github.com/okian/raidluck/internal/domain/types"
	"github.com/okian/raidluck/pkg/metrics"
)

// View derives the ordered, ranked leaderboard from a ledger on demand.
// Full recompute per snapshot: correct for boards of this size, and
// every upsert committed before the call began is visible because the
// ledger read happens under its shard locks.
type View struct {
	ledger Ledger
}

// NewView constructs a leaderboard view over ledger.
func NewView(ledger Ledger) *View {
	return &View{ledger: ledger}
}

// Snapshot returns every player as a ranked entry in total order:
// luck desc, then perfectRate desc, then raids desc, then nickname asc.
// The nickname tie-break makes the order strict, so ranks are a plain
// 1-based sequence with no shared positions.
func (v *View) Snapshot(ctx context.Context) ([]types.Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordSnapshotLatency(float64(time.Since(start).Milliseconds()))
	}()

	records, err := v.ledger.All(ctx)
	if err != nil {
		return nil, err
	}

	sortRecords(records)

	entries := make([]types.Entry, len(records))
	for i, rec := range records {
		entries[i] = toEntry(rec, i+1)
	}
	return entries, nil
}

// EntryFor returns the ranked entry for one nickname, or ErrNotFound.
// The rank comes from the same total order a full snapshot would use.
func (v *View) EntryFor(ctx context.Context, nickname string) (types.Entry, error) {
	if _, err := v.ledger.Get(ctx, nickname); err != nil {
		return types.Entry{}, err
	}

	records, err := v.ledger.All(ctx)
	if err != nil {
		return types.Entry{}, err
	}
	sortRecords(records)

	for i, rec := range records {
		if rec.Nickname == nickname {
			return toEntry(rec, i+1), nil
		}
	}
	// The record was deleted between Get and All; treat as unknown.
	return types.Entry{}, ErrNotFound
}

func toEntry(rec model.PlayerRecord, rank int) types.Entry {
	return types.Entry{
		Rank:          rank,
		Team:          rec.Team,
		Nickname:      rec.Nickname,
		Raids:         rec.Raids,
		TotalPerfects: rec.TotalPerfects,
		PerfectRate:   rec.PerfectRate,
		Luck:          rec.LuckScore,
	}
}

// sortRecords orders records by the ranking chain. The final nickname
// comparison guarantees a deterministic, reproducible order regardless
// of storage iteration order.
func sortRecords(records []model.PlayerRecord) {
	sort.Slice(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.LuckScore != b.LuckScore {
			return a.LuckScore > b.LuckScore
		}
		if a.PerfectRate != b.PerfectRate {
			return a.PerfectRate > b.PerfectRate
		}
		if a.Raids != b.Raids {
			return a.Raids > b.Raids
		}
		return a.Nickname < b.Nickname
	})
}
