package testsubmissions

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/okian/raidluck/pkg/logger"
)

// Constants for random number generation.
const (
	randomFloatDivisor = 1000000
	luckProfileDivisor = 6
)

// Constants for raid count ranges.
const (
	casualRaidsMin  = 1
	casualRaidsMax  = 30
	regularRaidsMin = 30
	regularRaidsMax = 200
	whaleRaidsMin   = 200
	whaleRaidsMax   = 1000
)

// Constants for luck profile cases. The multiplier scales the locale
// baseline when drawing perfect counts, so profiles spread players
// across the luck axis.
const (
	caseUnluckyPlayer   = 0
	caseAveragePlayer   = 1
	caseSlightlyLucky   = 2
	caseLuckyPlayer     = 3
	caseVeryLuckyPlayer = 4
	caseJackpotPlayer   = 5
)

var teams = []string{"Valor", "Instinct", "Mystic"}

var locales = []string{"en", "es_ES", "es_MX"}

// approximate launch baselines, used only to shape generated data
var baselines = map[string]float64{
	"en":    0.00463,
	"es_ES": 0.0078,
	"es_MX": 0.0123,
}

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// getRandomInt returns a random int in [0, n) using crypto/rand.
func getRandomInt(n int64) int64 {
	v, _ := rand.Int(rand.Reader, big.NewInt(n))
	return v.Int64()
}

// generateSubmissions creates the specified number of submissions with
// unique nicknames.
func generateSubmissions(ctx context.Context, config *Config, stats *Stats) ([]Submission, error) {
	logger.Get().Info(ctx, "generating submissions with unique nicknames", logger.Int("numSubmissions", config.NumSubmissions))

	submissions := make([]Submission, config.NumSubmissions)

	// Pre-allocate nicknames to ensure uniqueness
	nicknames := make([]string, config.NumSubmissions)
	for i := 0; i < config.NumSubmissions; i++ {
		nicknames[i] = "trainer-" + uuid.New().String()[:13]
	}

	type result struct {
		index      int
		submission Submission
		err        error
	}

	resultChan := make(chan result, config.NumSubmissions)

	// Use worker pool for generation
	workerCount := minInt(config.Workers, config.NumSubmissions)
	perWorker := config.NumSubmissions / workerCount

	for worker := 0; worker < workerCount; worker++ {
		start := worker * perWorker
		end := start + perWorker
		if worker == workerCount-1 {
			end = config.NumSubmissions // Last worker gets the remainder
		}

		go func(start, end int) {
			for i := start; i < end; i++ {
				select {
				case <-ctx.Done():
					resultChan <- result{index: i, err: ctx.Err()}
					return
				default:
					resultChan <- result{index: i, submission: generateSingleSubmission(i, nicknames[i])}
				}
			}
		}(start, end)
	}

	// Collect results
	for i := 0; i < config.NumSubmissions; i++ {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("context cancelled during submission generation: %w", ctx.Err())
		case r := <-resultChan:
			if r.err != nil {
				return nil, fmt.Errorf("failed to generate submission %d: %w", r.index, r.err)
			}
			submissions[r.index] = r.submission
		}
	}

	stats.SubmissionsGenerated = len(submissions)
	logger.Get().Info(ctx, "generated submissions successfully", logger.Int("count", len(submissions)))

	return submissions, nil
}

// generateSingleSubmission creates one raid batch for the given nickname.
func generateSingleSubmission(index int, nickname string) Submission {
	team := teams[getRandomInt(int64(len(teams)))]
	locale := locales[getRandomInt(int64(len(locales)))]
	raids := generateRaidCount()
	current, legacy := generatePerfectCounts(raids, baselines[locale])

	submissionID := "sub_" + strconv.Itoa(index) + "_" + strconv.FormatInt(time.Now().Unix(), 10) + "_" + strconv.FormatInt(getRandomInt(10000), 10)

	return Submission{
		SubmissionID:        submissionID,
		Nickname:            nickname,
		Team:                team,
		Language:            locale,
		Raids:               raids,
		PerfectCurrentCount: current,
		PerfectLegacyCount:  legacy,
	}
}

// generateRaidCount draws a raid count skewed toward regular players.
func generateRaidCount() int64 {
	switch getRandomInt(4) {
	case 0:
		return casualRaidsMin + getRandomInt(casualRaidsMax-casualRaidsMin)
	case 3:
		return whaleRaidsMin + getRandomInt(whaleRaidsMax-whaleRaidsMin)
	default:
		return regularRaidsMin + getRandomInt(regularRaidsMax-regularRaidsMin)
	}
}

// generatePerfectCounts draws perfect counts around the locale baseline
// scaled by a luck profile, split randomly between current and legacy
// items. The combined count never exceeds raids.
func generatePerfectCounts(raids int64, baseline float64) (current, legacy int64) {
	var multiplier float64
	switch getRandomInt(luckProfileDivisor) {
	case caseUnluckyPlayer:
		multiplier = 0
	case caseAveragePlayer:
		multiplier = 1.0
	case caseSlightlyLucky:
		multiplier = 1.5
	case caseLuckyPlayer:
		multiplier = 3.0
	case caseVeryLuckyPlayer:
		multiplier = 6.0
	case caseJackpotPlayer:
		multiplier = 12.0
	}

	expected := float64(raids) * baseline * multiplier
	total := int64(expected + getRandomFloat())
	if total > raids {
		total = raids
	}
	if total < 0 {
		total = 0
	}

	if total == 0 {
		return 0, 0
	}
	current = getRandomInt(total + 1)
	legacy = total - current
	return current, legacy
}

// minInt returns the minimum of two integers.
func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
