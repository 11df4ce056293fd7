package testsubmissions

import (
	"fmt"
	"log"
	"sort"
)

// verifyResults verifies the consistency of rankings and leaderboard.
func verifyResults(config *Config, rankings, leaderboard []Entry, stats *Stats) error {
	log.Println("🔍 Verifying results...")

	if len(rankings) == 0 {
		return fmt.Errorf("no rankings to verify")
	}

	if len(leaderboard) > 0 {
		if err := verifyLeaderboardOrder(leaderboard); err != nil {
			return fmt.Errorf("leaderboard order violated: %w", err)
		}
		log.Println("✅ Leaderboard ordering verified")

		if err := verifyRankConsistency(rankings, leaderboard); err != nil {
			log.Printf("⚠️  Rank consistency warning: %v", err)
		} else {
			log.Println("✅ Rank consistency verified")
		}
	}

	displayTopPerformers(rankings, leaderboard, config.Verbose)

	log.Println("✅ Result verification completed")
	return nil
}

// less reports whether a should be ranked above b under the board's
// total order: luck desc, perfect rate desc, raids desc, nickname asc.
func less(a, b Entry) bool {
	if a.Luck != b.Luck {
		return a.Luck > b.Luck
	}
	if a.PerfectRate != b.PerfectRate {
		return a.PerfectRate > b.PerfectRate
	}
	if a.Raids != b.Raids {
		return a.Raids > b.Raids
	}
	return a.Nickname < b.Nickname
}

// verifyLeaderboardOrder checks ranks are strict 1..N and entries obey
// the total order.
func verifyLeaderboardOrder(leaderboard []Entry) error {
	for i, entry := range leaderboard {
		if entry.Rank != i+1 {
			return fmt.Errorf("entry %d has rank %d, want %d", i, entry.Rank, i+1)
		}
		if i > 0 && less(entry, leaderboard[i-1]) {
			return fmt.Errorf("entry %d (%s) outranks entry %d (%s)",
				i, entry.Nickname, i-1, leaderboard[i-1].Nickname)
		}
	}
	return nil
}

// verifyRankConsistency cross-checks /rank answers against the board.
func verifyRankConsistency(rankings, leaderboard []Entry) error {
	byNickname := make(map[string]Entry, len(rankings))
	for _, entry := range rankings {
		byNickname[entry.Nickname] = entry
	}

	for _, boardEntry := range leaderboard {
		rankEntry, ok := byNickname[boardEntry.Nickname]
		if !ok {
			continue // player not part of this test run
		}
		if rankEntry.Rank != boardEntry.Rank {
			return fmt.Errorf("player %s: /rank says %d, leaderboard says %d",
				boardEntry.Nickname, rankEntry.Rank, boardEntry.Rank)
		}
		if rankEntry.Luck != boardEntry.Luck {
			return fmt.Errorf("player %s: /rank luck %.3f, leaderboard luck %.3f",
				boardEntry.Nickname, rankEntry.Luck, boardEntry.Luck)
		}
	}
	return nil
}

// displayTopPerformers shows the top performers from rankings and leaderboard.
func displayTopPerformers(rankings, leaderboard []Entry, verbose bool) {
	sorted := make([]Entry, len(rankings))
	copy(sorted, rankings)
	sort.Slice(sorted, func(i, j int) bool { return less(sorted[i], sorted[j]) })

	topN := 10
	if len(sorted) < topN {
		topN = len(sorted)
	}

	log.Printf("🏆 Top %d luckiest players from rankings:", topN)
	for i := 0; i < topN; i++ {
		entry := sorted[i]
		log.Printf("   %d. %s [%s] - luck: %.3f (%d/%d perfect)",
			i+1, entry.Nickname, entry.Team, entry.Luck, entry.TotalPerfects, entry.Raids)
	}

	if len(leaderboard) > 0 {
		boardTopN := topN
		if len(leaderboard) < boardTopN {
			boardTopN = len(leaderboard)
		}

		log.Printf("🥇 Top %d from leaderboard:", boardTopN)
		for i := 0; i < boardTopN; i++ {
			entry := leaderboard[i]
			log.Printf("   %d. %s [%s] - luck: %.3f (%d/%d perfect)",
				entry.Rank, entry.Nickname, entry.Team, entry.Luck, entry.TotalPerfects, entry.Raids)
		}
	}

	if verbose && len(sorted) > 0 {
		avgLuck := 0.0
		for _, entry := range sorted {
			avgLuck += entry.Luck
		}
		avgLuck /= float64(len(sorted))

		log.Printf(`📊 Luck statistics:
   Average: %.3f
   Maximum: %.3f
   Minimum: %.3f
`, avgLuck, sorted[0].Luck, sorted[len(sorted)-1].Luck)
	}
}
