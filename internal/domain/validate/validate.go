// Package validate normalizes and rejects malformed submissions before
// they reach the ledger.
package validate

import (
	"strings"

	"github.com/okian/raidluck/internal/domain/catalog"
	"github.com/okian/raidluck/internal/domain/model"
)

// maxNicknameLen bounds the nickname after trimming.
const maxNicknameLen = 64

// Raw is an unvalidated submission as received from the presentation
// layer.
type Raw struct {
	Nickname           string
	Team               string
	Locale             string
	Raids              int64
	PerfectCurrent     int64
	PerfectLegacy      int64
	CurrentEvidenceRef string
	LegacyEvidenceRef  string
}

// ValidationError identifies the first offending field of a rejected
// submission.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}

// Validate checks raw in a fixed order and returns the normalized
// submission, failing fast on the first violation. Locale resolution is
// delegated to the catalog; its ErrUnknownLocale propagates unchanged.
// Evidence refs pass through untouched. No side effects.
func Validate(raw Raw, cat *catalog.Catalog) (model.Submission, error) {
	nickname := strings.TrimSpace(raw.Nickname)
	if nickname == "" {
		return model.Submission{}, &ValidationError{Field: "nickname", Reason: "must not be empty"}
	}
	if len(nickname) > maxNicknameLen {
		return model.Submission{}, &ValidationError{Field: "nickname", Reason: "must be at most 64 characters"}
	}
	if !model.ValidTeam(raw.Team) {
		return model.Submission{}, &ValidationError{Field: "team", Reason: "must be one of Valor, Instinct, Mystic"}
	}
	if _, err := cat.BaselineFor(raw.Locale); err != nil {
		return model.Submission{}, err
	}
	if raw.Raids < 1 {
		return model.Submission{}, &ValidationError{Field: "raids", Reason: "must be at least 1"}
	}
	if raw.PerfectCurrent < 0 {
		return model.Submission{}, &ValidationError{Field: "perfectCurrentCount", Reason: "must not be negative"}
	}
	if raw.PerfectLegacy < 0 {
		return model.Submission{}, &ValidationError{Field: "perfectLegacyCount", Reason: "must not be negative"}
	}
	if raw.PerfectCurrent+raw.PerfectLegacy > raw.Raids {
		return model.Submission{}, &ValidationError{Field: "perfectCurrentCount", Reason: "combined perfect counts exceed raids"}
	}

	return model.Submission{
		Nickname:           nickname,
		Team:               raw.Team,
		Locale:             raw.Locale,
		Raids:              raw.Raids,
		PerfectCurrent:     raw.PerfectCurrent,
		PerfectLegacy:      raw.PerfectLegacy,
		CurrentEvidenceRef: raw.CurrentEvidenceRef,
		LegacyEvidenceRef:  raw.LegacyEvidenceRef,
	}, nil
}
