package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/raidluck/internal/adapters/evidence"
	"github.com/okian/raidluck/internal/adapters/repository"
	service "github.com/okian/raidluck/internal/app"
	"github.com/okian/raidluck/internal/domain/catalog"
	"github.com/okian/raidluck/internal/domain/validate"
	"github.com/okian/raidluck/pkg/logger"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

func newTestService(t *testing.T, opts ...service.Option) *service.Service {
	t.Helper()
	base := []service.Option{
		service.WithBaselines(map[string]float64{"en": 0.01, "es_MX": 0.05}),
		service.WithEvidenceLogPath(filepath.Join(t.TempDir(), "evidence.log")),
	}
	return service.New(append(base, opts...)...)
}

func validRaw() validate.Raw {
	return validate.Raw{
		Nickname:       "ash",
		Team:           "Valor",
		Locale:         "en",
		Raids:          100,
		PerfectCurrent: 2,
		PerfectLegacy:  1,
	}
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it should have sensible defaults", func() {
			So(svc, ShouldNotBeNil)
			stats := svc.GetStats()
			So(stats["started"], ShouldEqual, false)
			So(stats["storage"], ShouldEqual, service.StorageMemory)
		})
	})

	Convey("Given a new service with custom options", t, func() {
		svc := service.New(
			service.WithShardCount(2),
			service.WithDedupeSize(25_000),
			service.WithEvidenceQueueSize(500),
			service.WithEvidenceWorkerCount(2),
		)

		Convey("Then it should be created successfully", func() {
			So(svc, ShouldNotBeNil)
		})
	})
}

func TestService_StartStop(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := newTestService(t)
		defer svc.Stop()

		Convey("When starting the service", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			err := svc.Start(ctx)

			Convey("Then it should start successfully", func() {
				So(err, ShouldBeNil)
				So(svc.GetStats()["started"], ShouldEqual, true)
			})

			Convey("And stopping should mark it stopped", func() {
				svc.Stop()
				So(svc.GetStats()["started"], ShouldEqual, false)
			})
		})
	})

	Convey("Given a service with an unknown storage backend", t, func() {
		svc := newTestService(t, service.WithStorage("etcd"))

		Convey("Then start should fail", func() {
			So(svc.Start(context.Background()), ShouldNotBeNil)
		})
	})

	Convey("Given a service with the sqlite backend", t, func() {
		svc := newTestService(t,
			service.WithStorage(service.StorageSQLite),
			service.WithSQLitePath(filepath.Join(t.TempDir(), "ledger.db")),
		)
		defer svc.Stop()

		Convey("Then start should succeed and accept submissions", func() {
			ctx := context.Background()
			So(svc.Start(ctx), ShouldBeNil)
			rec, _, err := svc.Submit(ctx, validRaw(), "")
			So(err, ShouldBeNil)
			So(rec.Raids, ShouldEqual, 100)
		})
	})
}

func TestService_Submit(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := newTestService(t)
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When submitting a valid batch", func() {
			rec, id, err := svc.Submit(ctx, validRaw(), "sub-1")

			Convey("Then the record should reflect the batch", func() {
				So(err, ShouldBeNil)
				So(id, ShouldEqual, "sub-1")
				So(rec.Nickname, ShouldEqual, "ash")
				So(rec.Raids, ShouldEqual, 100)
				So(rec.TotalPerfects, ShouldEqual, 3)
				So(rec.Version, ShouldEqual, 1)
			})

			Convey("And the record should already be visible to reads", func() {
				entry, err := svc.EntryFor(ctx, "ash")
				So(err, ShouldBeNil)
				So(entry.Rank, ShouldEqual, 1)
				So(entry.TotalPerfects, ShouldEqual, 3)

				entries, err := svc.Snapshot(ctx)
				So(err, ShouldBeNil)
				So(len(entries), ShouldEqual, 1)
			})
		})

		Convey("When submitting without a submission id", func() {
			_, id, err := svc.Submit(ctx, validRaw(), "")

			Convey("Then the service should mint one", func() {
				So(err, ShouldBeNil)
				So(id, ShouldNotBeEmpty)
			})
		})

		Convey("When submitting two batches for the same player", func() {
			first, _, err := svc.Submit(ctx, validRaw(), "")
			So(err, ShouldBeNil)
			second, _, err := svc.Submit(ctx, validRaw(), "")
			So(err, ShouldBeNil)

			Convey("Then totals should accumulate", func() {
				So(second.Raids, ShouldEqual, first.Raids+100)
				So(second.TotalPerfects, ShouldEqual, first.TotalPerfects+3)
				So(second.Version, ShouldEqual, 2)
			})
		})

		Convey("When the batch is malformed", func() {
			raw := validRaw()
			raw.Raids = 0
			_, _, err := svc.Submit(ctx, raw, "")

			Convey("Then a validation error should name the field", func() {
				var verr *validate.ValidationError
				So(errors.As(err, &verr), ShouldBeTrue)
				So(verr.Field, ShouldEqual, "raids")
			})
		})

		Convey("When the locale is unknown", func() {
			raw := validRaw()
			raw.Locale = "fr"
			_, _, err := svc.Submit(ctx, raw, "")
			So(errors.Is(err, catalog.ErrUnknownLocale), ShouldBeTrue)
		})
	})
}

func TestService_EvidenceArchival(t *testing.T) {
	Convey("Given a started service", t, func() {
		logPath := filepath.Join(t.TempDir(), "evidence.log")
		svc := service.New(
			service.WithBaselines(map[string]float64{"en": 0.01}),
			service.WithEvidenceLogPath(logPath),
			service.WithEvidenceWorkerCount(1),
		)
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)

		Convey("When submitting a batch with evidence refs", func() {
			raw := validRaw()
			raw.CurrentEvidenceRef = "blob://abc"
			raw.LegacyEvidenceRef = "blob://def"
			_, id, err := svc.Submit(ctx, raw, "")
			So(err, ShouldBeNil)

			// Stop drains the queue and flushes the journal.
			svc.Stop()

			Convey("Then the refs should land in the journal", func() {
				notes, err := evidence.ReadAll(logPath)
				So(err, ShouldBeNil)
				So(len(notes), ShouldEqual, 1)
				So(notes[0].SubmissionID, ShouldEqual, id)
				So(notes[0].Nickname, ShouldEqual, "ash")
				So(notes[0].CurrentRef, ShouldEqual, "blob://abc")
				So(notes[0].LegacyRef, ShouldEqual, "blob://def")
			})
		})
	})
}

func TestService_SeenAndRecord(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := newTestService(t)
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When checking a new submission id", func() {
			So(svc.SeenAndRecord(ctx, "sub-123"), ShouldBeFalse)

			Convey("Then checking it again should report seen", func() {
				So(svc.SeenAndRecord(ctx, "sub-123"), ShouldBeTrue)
			})

			Convey("And unrecording should make it fresh again", func() {
				svc.Unrecord(ctx, "sub-123")
				So(svc.SeenAndRecord(ctx, "sub-123"), ShouldBeFalse)
			})
		})
	})
}

func TestService_EntryFor_NotFound(t *testing.T) {
	Convey("Given a started service with no players", t, func() {
		svc := newTestService(t)
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("Then looking up an unknown nickname should fail with not found", func() {
			_, err := svc.EntryFor(ctx, "ghost")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})
	})
}

func TestService_GetStats(t *testing.T) {
	Convey("Given a started service with one player", t, func() {
		svc := newTestService(t)
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()
		_, _, err := svc.Submit(ctx, validRaw(), "")
		So(err, ShouldBeNil)

		Convey("Then stats should report the player count", func() {
			stats := svc.GetStats()
			So(stats["started"], ShouldEqual, true)
			So(stats["playerCount"], ShouldEqual, 1)
		})
	})
}
