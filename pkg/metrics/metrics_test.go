package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test_ns"),
				WithSubsystem("test_sub"),
				WithHistogramBuckets([]float64{1, 5, 10}),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			manager.divisionsTotal.WithLabelValues("BALANCED", OutcomeOK).Inc()

			Convey("Then metric names carry the namespace and subsystem", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
				for _, f := range families {
					So(strings.HasPrefix(f.GetName(), "test_ns_test_sub_"), ShouldBeTrue)
				}
			})

			Convey("And constant labels are attached", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				found := false
				for _, f := range families {
					if f.GetName() != "test_ns_test_sub_divisions_total" {
						continue
					}
					for _, lp := range f.GetMetric()[0].GetLabel() {
						if lp.GetName() == "env" && lp.GetValue() == "test" {
							found = true
						}
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When empty options are passed", func() {
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithCustomLabels(nil),
				WithPrometheusRegistry(prometheus.NewRegistry()),
			)

			Convey("Then the defaults are kept", func() {
				So(manager.namespace, ShouldEqual, "clubhouse")
				So(manager.subsystem, ShouldEqual, "division")
				So(manager.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
			})
		})
	})
}

func TestDivisionMetrics(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When a successful division is recorded", func() {
			before := testutil.ToFloat64(globalManager.divisionsTotal.WithLabelValues("RANDOM", OutcomeOK))
			RecordDivision("RANDOM", OutcomeOK, 1.5)

			Convey("Then the counter for that strategy and outcome grows", func() {
				after := testutil.ToFloat64(globalManager.divisionsTotal.WithLabelValues("RANDOM", OutcomeOK))
				So(after-before, ShouldEqual, 1)
			})
		})

		Convey("When a balancing run is recorded", func() {
			score := testutil.ToFloat64(globalManager.balancingSwaps.WithLabelValues("score"))
			capped := testutil.ToFloat64(globalManager.balancingOutcome.WithLabelValues("capped"))
			RecordBalancing(1000, 3, 2, false)

			Convey("Then swaps and the capped outcome are counted", func() {
				So(testutil.ToFloat64(globalManager.balancingSwaps.WithLabelValues("score"))-score, ShouldEqual, 3)
				So(testutil.ToFloat64(globalManager.balancingOutcome.WithLabelValues("capped"))-capped, ShouldEqual, 1)
			})
		})

		Convey("When gauges are updated", func() {
			UpdateMembersTotal(42)
			UpdateQueueSize(7)

			Convey("Then they hold the last value", func() {
				So(testutil.ToFloat64(globalManager.membersTotal), ShouldEqual, 42)
				So(testutil.ToFloat64(globalManager.queueSize), ShouldEqual, 7)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given metrics recording helpers", t, func() {
		Convey("Then none of them should panic", func() {
			So(func() {
				RecordDivisionParticipants(12)
				RecordFormationSaved()
				RecordJobSubmitted()
				RecordJobDuplicate()
				RecordJobCompleted("done")
				RecordHTTPRequest("/team-division/divide", "POST", "200")
				RecordHTTPRequestDuration("/team-division/divide", "POST", "200", 3)
				RecordRepositoryOperation("memory", "find_members", OutcomeOK, 0.2)
				UpdateQueueCapacity(100)
				UpdateQueueUtilization(0.5)
				RecordQueueEnqueue()
				RecordQueueDequeue()
				RecordQueueEnqueueError()
				RecordQueueProcessingLatency(4)
				UpdateWorkerCount(4)
				UpdateWorkerActiveCount(2)
				RecordWorkerProcessingLatency(9)
				RecordWorkerError()
				RecordErrorByComponent("queue", "queue_full")
				RecordErrorByType("validation_error", "low")
				RecordErrorByEndpoint("/members", "POST", "bad_request")
				RecordErrorLatency("http", "not_found", 1)
				UpdateSystemMemoryUsage(1 << 20)
				UpdateSystemGoroutineCount(12)
				RecordSystemGCPauseTime(0.3)
			}, ShouldNotPanic)
		})

		Convey("Then the global registry exposes the recorded families", func() {
			RecordJobSubmitted()
			count, err := testutil.GatherAndCount(GetRegistry(), "clubhouse_division_jobs_submitted_total")
			So(err, ShouldBeNil)
			So(count, ShouldEqual, 1)
		})
	})
}
