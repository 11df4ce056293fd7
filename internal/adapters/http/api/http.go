// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/raidluck/internal/domain/dedupe"
	"github.com/okian/raidluck/internal/domain/model"
	"github.com/okian/raidluck/internal/domain/types"
	"github.com/okian/raidluck/internal/domain/validate"
)

// Dependencies required by HTTP handlers. Using an interface bundle
// keeps the handler layer loosely coupled to implementations in other
// packages.
type Dependencies interface {
	dedupe.Deduper

	// Submit validates and applies one submission batch. submissionID
	// may be empty; the returned id is the one to acknowledge.
	Submit(ctx context.Context, raw validate.Raw, submissionID string) (model.PlayerRecord, string, error)

	// Read operations expose leaderboard data.
	Snapshot(ctx context.Context) ([]types.Entry, error)
	EntryFor(ctx context.Context, nickname string) (types.Entry, error)
}

// Entry mirrors the read shape returned by leaderboard queries.
type Entry = types.Entry

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	registerHandler    *RegisterHandler
	leaderboardHandler *LeaderboardHandler
	rankHandler        *RankHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxLeaderboardLimit int) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		registerHandler:    NewRegisterHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps, maxLeaderboardLimit),
		rankHandler:        NewRankHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/register", MetricsMiddleware(s.registerHandler.HandleRegister, "register"))
	mux.HandleFunc("/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("/rank/", MetricsMiddleware(s.rankHandler.HandleGetRank, "rank"))
}

// registerRequest mirrors the fields of the submission form. Evidence
// refs are opaque handles minted by the external blob store.
type registerRequest struct {
	SubmissionID        string `json:"submissionId"`
	Nickname            string `json:"nickname"`
	Team                string `json:"team"`
	Language            string `json:"language"`
	Raids               int64  `json:"raids"`
	PerfectCurrentCount int64  `json:"perfectCurrentCount"`
	PerfectLegacyCount  int64  `json:"perfectLegacyCount"`
	CurrentEvidenceRef  string `json:"currentEvidenceRef"`
	LegacyEvidenceRef   string `json:"legacyEvidenceRef"`
}

func (r registerRequest) raw() validate.Raw {
	return validate.Raw{
		Nickname:           r.Nickname,
		Team:               r.Team,
		Locale:             r.Language,
		Raids:              r.Raids,
		PerfectCurrent:     r.PerfectCurrentCount,
		PerfectLegacy:      r.PerfectLegacyCount,
		CurrentEvidenceRef: r.CurrentEvidenceRef,
		LegacyEvidenceRef:  r.LegacyEvidenceRef,
	}
}

// playerPayload is the record shape echoed back on an accepted submission.
type playerPayload struct {
	Nickname      string  `json:"nickname"`
	Team          string  `json:"team"`
	Raids         int64   `json:"raids"`
	TotalPerfects int64   `json:"totalPerfects"`
	PerfectRate   float64 `json:"perfectRate"`
	Luck          float64 `json:"luck"`
	Version       int64   `json:"version"`
}

func toPlayerPayload(rec model.PlayerRecord) *playerPayload {
	return &playerPayload{
		Nickname:      rec.Nickname,
		Team:          rec.Team,
		Raids:         rec.Raids,
		TotalPerfects: rec.TotalPerfects,
		PerfectRate:   rec.PerfectRate,
		Luck:          rec.LuckScore,
		Version:       rec.Version,
	}
}

type ackResponse struct {
	Status       string         `json:"status"`
	SubmissionID string         `json:"submissionId"`
	Duplicate    bool           `json:"duplicate"`
	Record       *playerPayload `json:"record,omitempty"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
