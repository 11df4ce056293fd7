package repository

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/okian/raidluck/internal/domain/catalog"
	"github.com/okian/raidluck/internal/domain/model"
	"github.com/okian/raidluck/internal/domain/scoring"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New(map[string]float64{
		"en":    0.01,
		"es_MX": 0.05,
	})
	if err != nil {
		t.Fatalf("building catalog: %v", err)
	}
	return cat
}

func floatEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-10
}

func TestMemoryLedger_FirstSubmission(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryLedger(testCatalog(t))

	rec, err := ledger.Upsert(ctx, model.Submission{
		Nickname:       "ash",
		Team:           model.TeamValor,
		Locale:         "en",
		Raids:          100,
		PerfectCurrent: 2,
		PerfectLegacy:  1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.Version != 1 {
		t.Errorf("expected version 1, got %d", rec.Version)
	}
	if rec.Raids != 100 || rec.TotalPerfects != 3 {
		t.Errorf("expected 100 raids / 3 perfects, got %d / %d", rec.Raids, rec.TotalPerfects)
	}
	if !floatEqual(rec.LuckScore, scoring.Score(100, 3, 0.01)) {
		t.Errorf("unexpected luck score %f", rec.LuckScore)
	}
	if !floatEqual(rec.PerfectRate, 0.03) {
		t.Errorf("unexpected perfect rate %f", rec.PerfectRate)
	}
	if rec.LastUpdated.IsZero() {
		t.Error("expected lastUpdated to be set")
	}
	if count := ledger.Count(ctx); count != 1 {
		t.Errorf("expected count 1, got %d", count)
	}
}

func TestMemoryLedger_Accumulation(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryLedger(testCatalog(t))

	// Scenario: 100 raids / 3 perfects, then 50 raids / 0 perfects.
	if _, err := ledger.Upsert(ctx, model.Submission{
		Nickname: "ash", Team: model.TeamValor, Locale: "en",
		Raids: 100, PerfectCurrent: 3,
	}); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	rec, err := ledger.Upsert(ctx, model.Submission{
		Nickname: "ash", Team: model.TeamValor, Locale: "en",
		Raids: 50,
	})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	if rec.Raids != 150 || rec.TotalPerfects != 3 {
		t.Errorf("expected cumulative 150 / 3, got %d / %d", rec.Raids, rec.TotalPerfects)
	}
	if rec.Version != 2 {
		t.Errorf("expected version 2, got %d", rec.Version)
	}
	want := scoring.Score(150, 3, 0.01)
	if !floatEqual(rec.LuckScore, want) {
		t.Errorf("expected luck %f from cumulative totals, got %f", want, rec.LuckScore)
	}

	// Accumulation law: two batches equal one combined batch.
	combined, err := NewMemoryLedger(testCatalog(t)).Upsert(ctx, model.Submission{
		Nickname: "ash", Team: model.TeamValor, Locale: "en",
		Raids: 150, PerfectCurrent: 3,
	})
	if err != nil {
		t.Fatalf("combined upsert: %v", err)
	}
	if combined.Raids != rec.Raids || combined.TotalPerfects != rec.TotalPerfects {
		t.Errorf("accumulation law broken: split %d/%d vs combined %d/%d",
			rec.Raids, rec.TotalPerfects, combined.Raids, combined.TotalPerfects)
	}
	if !floatEqual(combined.LuckScore, rec.LuckScore) {
		t.Errorf("expected identical cumulative luck, got %f vs %f", combined.LuckScore, rec.LuckScore)
	}
}

func TestMemoryLedger_TeamAndLocaleOverwrite(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryLedger(testCatalog(t))

	if _, err := ledger.Upsert(ctx, model.Submission{
		Nickname: "misty", Team: model.TeamMystic, Locale: "en",
		Raids: 40, PerfectCurrent: 1,
	}); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	rec, err := ledger.Upsert(ctx, model.Submission{
		Nickname: "misty", Team: model.TeamInstinct, Locale: "es_MX",
		Raids: 10,
	})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	if rec.Team != model.TeamInstinct {
		t.Errorf("expected latest team, got %s", rec.Team)
	}
	if rec.Locale != "es_MX" {
		t.Errorf("expected latest locale, got %s", rec.Locale)
	}
	// Scoring uses the latest locale's baseline against the full history.
	want := scoring.Score(50, 1, 0.05)
	if !floatEqual(rec.LuckScore, want) {
		t.Errorf("expected luck %f against latest baseline, got %f", want, rec.LuckScore)
	}
}

func TestMemoryLedger_GetNotFound(t *testing.T) {
	ledger := NewMemoryLedger(testCatalog(t))
	if _, err := ledger.Get(context.Background(), "nobody"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryLedger_UnknownLocale(t *testing.T) {
	ledger := NewMemoryLedger(testCatalog(t))
	_, err := ledger.Upsert(context.Background(), model.Submission{
		Nickname: "ash", Team: model.TeamValor, Locale: "fr", Raids: 1,
	})
	if !errors.Is(err, catalog.ErrUnknownLocale) {
		t.Errorf("expected ErrUnknownLocale, got %v", err)
	}
}

func TestMemoryLedger_ConcurrentSameNickname(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryLedger(testCatalog(t), WithShardCount(4))

	const writers = 50
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ledger.Upsert(ctx, model.Submission{
				Nickname: "contested", Team: model.TeamValor, Locale: "en",
				Raids: 10, PerfectCurrent: 1,
			})
			if err != nil {
				t.Errorf("upsert failed: %v", err)
			}
		}()
	}
	wg.Wait()

	rec, err := ledger.Get(ctx, "contested")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.Raids != writers*10 {
		t.Errorf("lost update: expected %d raids, got %d", writers*10, rec.Raids)
	}
	if rec.TotalPerfects != writers {
		t.Errorf("lost update: expected %d perfects, got %d", writers, rec.TotalPerfects)
	}
	if rec.Version != writers {
		t.Errorf("expected version %d, got %d", writers, rec.Version)
	}
}

func TestMemoryLedger_ConcurrentDistinctNicknames(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryLedger(testCatalog(t))

	const players = 100
	var wg sync.WaitGroup
	for i := 0; i < players; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := ledger.Upsert(ctx, model.Submission{
				Nickname: fmt.Sprintf("player-%03d", i),
				Team:     model.TeamValor, Locale: "en",
				Raids: 20, PerfectCurrent: 1,
			})
			if err != nil {
				t.Errorf("upsert failed: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if count := ledger.Count(ctx); count != players {
		t.Errorf("expected %d players, got %d", players, count)
	}
	all, err := ledger.All(ctx)
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(all) != players {
		t.Errorf("expected %d records, got %d", players, len(all))
	}
}
