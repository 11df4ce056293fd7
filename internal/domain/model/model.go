// Package model contains domain models passed between layers.
package model

import "time"

// Teams a player can belong to.
const (
	TeamValor    = "Valor"
	TeamInstinct = "Instinct"
	TeamMystic   = "Mystic"
)

// ValidTeam reports whether team is one of the three known values.
func ValidTeam(team string) bool {
	switch team {
	case TeamValor, TeamInstinct, TeamMystic:
		return true
	}
	return false
}

// Submission is one validated batch of raids reported by a player.
// Evidence refs are opaque handles owned by an external blob store;
// they are carried through and never interpreted.
type Submission struct {
	ID                 string // idempotency key / ack id, may be caller-supplied
	Nickname           string
	Team               string
	Locale             string // key into the rarity catalog
	Raids              int64
	PerfectCurrent     int64
	PerfectLegacy      int64
	CurrentEvidenceRef string
	LegacyEvidenceRef  string
}

// TotalPerfects returns the combined perfect count of the batch.
func (s Submission) TotalPerfects() int64 {
	return s.PerfectCurrent + s.PerfectLegacy
}

// PlayerRecord is the durable, cumulative state for one nickname.
// Nickname is the primary key, case-sensitive, unique across teams.
type PlayerRecord struct {
	Nickname      string
	Team          string
	Locale        string // locale of the most recent submission
	Raids         int64  // cumulative
	TotalPerfects int64  // cumulative, current + legacy
	LuckScore     float64
	PerfectRate   float64
	Version       int64 // monotonic update counter
	LastUpdated   time.Time
}

// EvidenceNote records the opaque evidence references attached to an
// accepted submission, for asynchronous journaling.
type EvidenceNote struct {
	SubmissionID string    `json:"submission_id"`
	Nickname     string    `json:"nickname"`
	CurrentRef   string    `json:"current_ref,omitempty"`
	LegacyRef    string    `json:"legacy_ref,omitempty"`
	ObservedAt   time.Time `json:"observed_at"`
}
