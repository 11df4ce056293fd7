// Package repository defines the player ledger, its implementations,
// and the leaderboard projection over it.
package repository

import (
	"context"
	"time"

	"github.com/okian/raidluck/internal/domain/model"
	"github.com/okian/raidluck/internal/domain/scoring"
)

// Ledger provides read/write access to cumulative player records.
//
// Upsert applies one validated submission batch. Read-modify-write on a
// single nickname is atomic with respect to other writers of that
// nickname; submissions for different nicknames proceed in parallel.
type Ledger interface {
	// Upsert folds a submission into the nickname's record and returns
	// the updated record. First submission creates the record at
	// version 1; repeats accumulate raids and perfects, overwrite team
	// and locale, bump the version, and re-score from the cumulative
	// totals against the latest locale's baseline.
	Upsert(ctx context.Context, sub model.Submission) (model.PlayerRecord, error)

	// Get returns the current record for a nickname.
	// Returns ErrNotFound if the nickname is unknown.
	Get(ctx context.Context, nickname string) (model.PlayerRecord, error)

	// All returns a point-in-time copy of every record, in no
	// particular order. No record is ever a torn read.
	All(ctx context.Context) ([]model.PlayerRecord, error)

	// Count returns the number of players tracked in the ledger.
	Count(ctx context.Context) int
}

// applyBatch folds sub into rec as a new batch of raids. Luck is always
// re-derived from the cumulative totals, never blended incrementally.
func applyBatch(rec model.PlayerRecord, sub model.Submission, baseline float64, now time.Time) model.PlayerRecord {
	if rec.Nickname == "" {
		rec.Nickname = sub.Nickname
	}
	rec.Raids += sub.Raids
	rec.TotalPerfects += sub.TotalPerfects()
	rec.Team = sub.Team
	rec.Locale = sub.Locale
	rec.Version++
	rec.PerfectRate = scoring.Rate(rec.TotalPerfects, rec.Raids)
	rec.LuckScore = scoring.Score(rec.Raids, rec.TotalPerfects, baseline)
	rec.LastUpdated = now
	return rec
}
