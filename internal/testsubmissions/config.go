package testsubmissions

import "time"

// Config holds configuration for the submission test
type Config struct {
	BaseURL        string        // Base URL of the service
	NumSubmissions int           // Number of submissions to generate
	TopN           int           // Number of top entries to fetch
	Workers        int           // Number of concurrent workers
	Timeout        time.Duration // HTTP request timeout
	OutputFile     string        // Output file for submissions
	LogFile        string        // Log file for test output
	Verbose        bool          // Enable verbose logging
}

// Submission represents a raid batch to be submitted
type Submission struct {
	SubmissionID        string `json:"submissionId"`
	Nickname            string `json:"nickname"`
	Team                string `json:"team"`
	Language            string `json:"language"`
	Raids               int64  `json:"raids"`
	PerfectCurrentCount int64  `json:"perfectCurrentCount"`
	PerfectLegacyCount  int64  `json:"perfectLegacyCount"`
}

// Entry represents a leaderboard entry
type Entry struct {
	Rank          int     `json:"rank"`
	Team          string  `json:"team"`
	Nickname      string  `json:"nickname"`
	Raids         int64   `json:"raids"`
	TotalPerfects int64   `json:"totalPerfects"`
	PerfectRate   float64 `json:"perfectRate"`
	Luck          float64 `json:"luck"`
}

// AckResponse represents the response from submission
type AckResponse struct {
	Status       string `json:"status"`
	SubmissionID string `json:"submissionId"`
	Duplicate    bool   `json:"duplicate"`
}

// Stats holds test statistics
type Stats struct {
	SubmissionsGenerated int
	SubmissionsSubmitted int
	SubmissionsAccepted  int
	SubmissionsDuplicate int
	SubmissionsFailed    int
	RankingsRetrieved    int
	LeaderboardEntries   int
	StartTime            time.Time
	EndTime              time.Time
	Duration             time.Duration
}
