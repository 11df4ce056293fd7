package repository

import "errors"

// Sentinel kinds for ledger errors.
var (
	ErrNotFound           = errors.New("player not found")
	ErrInvalidLimit       = errors.New("invalid leaderboard limit")
	ErrStorageUnavailable = errors.New("storage unavailable")
)
