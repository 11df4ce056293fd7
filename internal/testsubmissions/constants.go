package testsubmissions

import "time"

// HTTP status code constants.
const (
	StatusOK = 200
)

// Worker configuration constants.
const (
	WorkerChannelMultiplier = 2
)

// Runner configuration constants.
const (
	// SettleDelay gives the evidence pipeline a moment to drain; ledger
	// updates themselves are synchronous.
	SettleDelay          = 2 * time.Second
	PercentageMultiplier = 100
)
