// Package types contains common types used across the application.
package types

// Entry represents a ranked leaderboard row. Field names mirror the
// table rendered by the presentation layer.
type Entry struct {
	Rank          int     `json:"rank"`
	Team          string  `json:"team"`
	Nickname      string  `json:"nickname"`
	Raids         int64   `json:"raids"`
	TotalPerfects int64   `json:"totalPerfects"`
	PerfectRate   float64 `json:"perfectRate"`
	Luck          float64 `json:"luck"`
}
