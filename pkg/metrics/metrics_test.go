package metrics_test

import (
	"testing"

	"github.com/okian/raidluck/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManager(t *testing.T) {
	Convey("Given a metrics manager on a fresh registry", t, func() {
		reg := prometheus.NewRegistry()
		m := metrics.NewManager(metrics.WithRegistry(reg))

		Convey("Then it should register without panicking", func() {
			So(m, ShouldNotBeNil)
		})

		Convey("And the registry should gather the registered families", func() {
			families, err := reg.Gather()
			So(err, ShouldBeNil)
			So(len(families), ShouldBeGreaterThan, 0)
		})
	})
}

func TestPackageHelpers(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording submission outcomes", func() {
			So(func() {
				metrics.RecordSubmissionAccepted()
				metrics.RecordSubmissionRejected("validation")
				metrics.RecordSubmissionDuplicate()
			}, ShouldNotPanic)
		})

		Convey("When recording ledger and queue activity", func() {
			So(func() {
				metrics.RecordLedgerUpdateLatency(1.5)
				metrics.RecordSnapshotLatency(0.5)
				metrics.UpdatePlayerCount(10)
				metrics.UpdateLedgerShardCount(8)
				metrics.UpdateEvidenceQueueSize(3)
				metrics.UpdateEvidenceQueueCapacity(100)
				metrics.UpdateEvidenceQueueUtilization(0.03)
				metrics.RecordEvidenceEnqueued()
				metrics.RecordEvidenceDequeued()
				metrics.RecordEvidenceArchived()
			}, ShouldNotPanic)
		})

		Convey("When recording HTTP and error metrics", func() {
			So(func() {
				metrics.RecordHTTPRequest("register", "POST", "200")
				metrics.RecordHTTPRequestDuration("register", "POST", "200", 2.0)
				metrics.RecordErrorByComponent("ledger", "storage_unavailable")
			}, ShouldNotPanic)
		})

		Convey("Then the global registry should be available", func() {
			So(metrics.GetRegistry(), ShouldNotBeNil)
		})
	})
}
