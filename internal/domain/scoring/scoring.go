// Package scoring computes luck scores from raid statistics.
//
// The perfect count over a batch of raids is modeled as a binomial
// outcome: raids independent trials, each succeeding with the locale's
// baseline probability. The luck score is the standardized deviation
// (z-score) of the observed count from its expectation, which makes
// scores comparable across players with very different raid counts.
package scoring

import (
	"context"
	"math"
)

// Input abstracts the cumulative totals needed for scoring.
type Input struct {
	Nickname string
	Raids    int64
	Perfects int64
	Baseline float64 // expected perfect probability, in (0,1)
}

// Result contains the computed luck score for a player.
type Result struct {
	Nickname string
	Luck     float64
}

// Scorer computes a luck score from an input.
type Scorer interface {
	Score(ctx context.Context, in Input) (Result, error)
}

// Score returns the binomial z-score for perfects over raids at
// baseline p0. Pure and deterministic: identical inputs produce the
// identical float64 on every call. The result is unbounded in either
// direction; it is never clamped.
//
// The divisor is strictly positive whenever raids >= 1 and 0 < p0 < 1,
// both of which are enforced upstream (validator and catalog).
func Score(raids, perfects int64, p0 float64) float64 {
	expected := float64(raids) * p0
	variance := float64(raids) * p0 * (1 - p0)
	return (float64(perfects) - expected) / math.Sqrt(variance)
}

// Rate returns perfects/raids, the raw perfect rate used as a ranking
// tie-breaker and display column.
func Rate(perfects, raids int64) float64 {
	if raids == 0 {
		return 0
	}
	return float64(perfects) / float64(raids)
}

// BinomialScorer implements Scorer with the pure z-score formula.
type BinomialScorer struct{}

// NewBinomialScorer creates the standard luck scorer.
func NewBinomialScorer() *BinomialScorer {
	return &BinomialScorer{}
}

// Score computes the luck score for the given input.
func (s *BinomialScorer) Score(_ context.Context, in Input) (Result, error) {
	return Result{
		Nickname: in.Nickname,
		Luck:     Score(in.Raids, in.Perfects, in.Baseline),
	}, nil
}
