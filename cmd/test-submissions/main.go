package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/raidluck/internal/testsubmissions"
)

// Default configuration constants.
const (
	defaultNumSubmissions = 10000
	defaultTopN           = 50
	defaultWorkers        = 2 // multiplier for runtime.NumCPU()
	defaultTimeout        = 30 * time.Second
	defaultTestTimeout    = 10 * time.Minute
)

func main() {
	var (
		baseURL        = flag.String("url", "http://localhost:9080", "Base URL of the service")
		numSubmissions = flag.Int("submissions", defaultNumSubmissions, "Number of submissions to generate and submit")
		topN           = flag.Int("top", defaultTopN, "Number of top entries to fetch from leaderboard")
		workers        = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout        = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		outputFile     = flag.String("output", "", "Output file for generated submissions (default: generated_submissions_TIMESTAMP.json)")
		logFile        = flag.String("log", "", "Log file for test output (default: test_log_TIMESTAMP.log)")
		verbose        = flag.Bool("verbose", false, "Enable verbose logging")
		help           = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		testsubmissions.ShowHelp()
		return
	}

	// Setup logging
	if err := testsubmissions.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	// Create context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	// Create test configuration
	config := &testsubmissions.Config{
		BaseURL:        *baseURL,
		NumSubmissions: *numSubmissions,
		TopN:           *topN,
		Workers:        *workers,
		Timeout:        *timeout,
		OutputFile:     *outputFile,
		LogFile:        *logFile,
		Verbose:        *verbose,
	}

	// Run the test
	if err := testsubmissions.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Test failed: " + err.Error() + "\n")
		return
	}
}
