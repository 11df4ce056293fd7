// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/raidluck/internal/adapters/evidence"
	evidencequeue "github.com/okian/raidluck/internal/adapters/mq/queue"
	workerpool "github.com/okian/raidluck/internal/adapters/mq/worker"
	"github.com/okian/raidluck/internal/adapters/repository"
	"github.com/okian/raidluck/internal/domain/catalog"
	"github.com/okian/raidluck/internal/domain/dedupe"
	"github.com/okian/raidluck/internal/domain/model"
	"github.com/okian/raidluck/internal/domain/types"
	"github.com/okian/raidluck/internal/domain/validate"
	"github.com/okian/raidluck/pkg/logger"
	"github.com/okian/raidluck/pkg/metrics"
)

// Storage backend names accepted by WithStorage.
const (
	StorageMemory = "memory"
	StorageSQLite = "sqlite"
)

// Service implements the API dependencies for the luck ranking system.
type Service struct {
	mu sync.RWMutex

	// Core components
	catalog       *catalog.Catalog
	ledger        repository.Ledger
	view          *repository.View
	deduper       dedupe.Deduper
	evidenceQueue evidencequeue.Queue
	journal       *evidence.Journal
	workerPool    *workerpool.Pool

	// Configuration
	baselines       map[string]float64
	storage         string
	sqlitePath      string
	shardCount      int
	dedupeSize      int
	queueSize       int
	workerCount     int
	evidenceLogPath string

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithBaselines sets the locale to perfect-probability baselines.
func WithBaselines(baselines map[string]float64) Option {
	return func(s *Service) {
		if len(baselines) > 0 {
			s.baselines = baselines
		}
	}
}

// WithStorage selects the ledger backend, "memory" or "sqlite".
func WithStorage(storage string) Option {
	return func(s *Service) {
		if storage != "" {
			s.storage = storage
		}
	}
}

// WithSQLitePath sets the database file used by the sqlite backend.
func WithSQLitePath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.sqlitePath = path
		}
	}
}

// WithShardCount sets the number of ledger lock shards.
func WithShardCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.shardCount = count
		}
	}
}

// WithDedupeSize sets the size of the deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithEvidenceQueueSize sets the capacity of the evidence queue.
func WithEvidenceQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithEvidenceWorkerCount sets the number of evidence archiver workers.
func WithEvidenceWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithEvidenceLogPath sets the journal file evidence refs are archived to.
func WithEvidenceLogPath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.evidenceLogPath = path
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		baselines: map[string]float64{
			"en": 1.0 / 216.0,
		},
		storage:         StorageMemory,
		sqlitePath:      "raidluck.db",
		shardCount:      8,
		dedupeSize:      100000,
		queueSize:       10000,
		workerCount:     runtime.NumCPU(),
		evidenceLogPath: "evidence.log",
		logger:          nil, // Will be replaced when service starts
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting luck ranking service...")

	cat, err := catalog.New(s.baselines)
	if err != nil {
		return fmt.Errorf("building rarity catalog: %w", err)
	}
	s.catalog = cat

	switch s.storage {
	case StorageSQLite:
		ledger, err := repository.OpenSQLiteLedger(s.sqlitePath, cat, repository.WithShardCount(s.shardCount))
		if err != nil {
			return fmt.Errorf("opening sqlite ledger: %w", err)
		}
		s.ledger = ledger
		s.logger.Info(ctx, "using sqlite ledger", logger.String("path", s.sqlitePath))
	case StorageMemory:
		s.ledger = repository.NewMemoryLedger(cat, repository.WithShardCount(s.shardCount))
		s.logger.Info(ctx, "using in-memory ledger")
	default:
		return fmt.Errorf("unknown storage backend %q", s.storage)
	}
	s.view = repository.NewView(s.ledger)

	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)

	journal, err := evidence.Open(s.evidenceLogPath)
	if err != nil {
		return fmt.Errorf("opening evidence journal: %w", err)
	}
	s.journal = journal

	s.evidenceQueue = evidencequeue.NewInMemoryQueue(
		evidencequeue.WithCapacity(s.queueSize),
	)
	s.workerPool = workerpool.NewPool(s.workerCount, s.evidenceQueue, s.journal)
	s.workerPool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "luck ranking service started",
		logger.String("storage", s.storage),
		logger.Int("shards", s.shardCount),
		logger.Int("evidenceWorkers", s.workerCount),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Any("locales", s.catalog.Locales()),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping luck ranking service...")

	// Stop accepting evidence, then let workers drain what remains.
	if q, ok := s.evidenceQueue.(*evidencequeue.InMemoryQueue); ok {
		_ = q.Close()
	}
	if s.workerPool != nil {
		s.workerPool.Stop()
	}
	if s.journal != nil {
		_ = s.journal.Close()
	}
	if closer, ok := s.ledger.(interface{ Close() error }); ok {
		_ = closer.Close()
	}

	s.started = false
	s.logger.Info(context.Background(), "luck ranking service stopped")
}

// SeenAndRecord atomically checks if a submission id was seen and records
// it if not. Returns true if the id was already seen.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	seen := s.deduper.SeenAndRecord(ctx, id)
	if seen {
		metrics.RecordSubmissionDuplicate()
	}
	return seen
}

// Unrecord removes a submission id from the seen list, allowing a retry.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// Submit validates raw, applies the batch to the ledger, and queues
// any evidence refs for archival. The returned id is submissionID, or a
// freshly minted one when the caller supplied none. The ledger update is
// synchronous: when Submit returns nil the record is already visible to
// leaderboard reads.
func (s *Service) Submit(ctx context.Context, raw validate.Raw, submissionID string) (model.PlayerRecord, string, error) {
	sub, err := validate.Validate(raw, s.catalog)
	if err != nil {
		metrics.RecordSubmissionRejected(rejectionReason(err))
		return model.PlayerRecord{}, "", err
	}
	if submissionID == "" {
		submissionID = uuid.NewString()
	}
	sub.ID = submissionID

	rec, err := s.ledger.Upsert(ctx, sub)
	if err != nil {
		metrics.RecordErrorByComponent("ledger", "upsert")
		return model.PlayerRecord{}, "", err
	}
	metrics.RecordSubmissionAccepted()

	if sub.CurrentEvidenceRef != "" || sub.LegacyEvidenceRef != "" {
		note := model.EvidenceNote{
			SubmissionID: sub.ID,
			Nickname:     sub.Nickname,
			CurrentRef:   sub.CurrentEvidenceRef,
			LegacyRef:    sub.LegacyEvidenceRef,
			ObservedAt:   time.Now().UTC(),
		}
		if !s.evidenceQueue.Enqueue(ctx, note) {
			// Evidence archival is best effort; the scored batch stands.
			s.logger.Warn(ctx, "evidence queue full, dropping refs",
				logger.String("submissionID", sub.ID),
				logger.String("nickname", sub.Nickname),
			)
		}
	}

	s.logger.Debug(ctx, "submission applied",
		logger.String("submissionID", sub.ID),
		logger.String("nickname", rec.Nickname),
		logger.Int64("raids", rec.Raids),
		logger.Float64("luck", rec.LuckScore),
	)

	return rec, submissionID, nil
}

func rejectionReason(err error) string {
	var verr *validate.ValidationError
	if errors.As(err, &verr) {
		return verr.Field
	}
	if errors.Is(err, catalog.ErrUnknownLocale) {
		return "language"
	}
	return "unknown"
}

// Snapshot returns the full ordered leaderboard.
func (s *Service) Snapshot(ctx context.Context) ([]types.Entry, error) {
	return s.view.Snapshot(ctx)
}

// EntryFor returns the ranked entry for a given nickname.
func (s *Service) EntryFor(ctx context.Context, nickname string) (types.Entry, error) {
	return s.view.EntryFor(ctx, nickname)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":         s.started,
		"storage":         s.storage,
		"shardCount":      s.shardCount,
		"evidenceWorkers": s.workerCount,
		"dedupeSize":      s.dedupeSize,
	}

	if s.started {
		queueLen := s.evidenceQueue.Len(ctx)
		playerCount := s.ledger.Count(ctx)

		stats["evidenceQueueLength"] = queueLen
		stats["playerCount"] = playerCount
		stats["locales"] = s.catalog.Locales()

		metrics.UpdateEvidenceQueueSize(queueLen)
		metrics.UpdatePlayerCount(playerCount)
		metrics.UpdateEvidenceWorkerCount(s.workerCount)
		metrics.UpdateLedgerShardCount(s.shardCount)
	}

	return stats
}

// Size returns the current number of entries in the deduper.
func (s *Service) Size() int64 {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}
