package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a private registry and custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{1, 10, 100}),
				WithPrometheusRegistry(registry),
			)
			manager.RecordSubmission(OutcomeAccepted)

			Convey("Then collectors use the configured names", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := map[string]bool{}
				for _, f := range families {
					names[f.GetName()] = true
				}
				So(names["test_unit_submissions_total"], ShouldBeTrue)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given a manager on a fresh registry", t, func() {
		registry := prometheus.NewRegistry()
		m := NewManager(WithPrometheusRegistry(registry))

		Convey("Submission outcomes are counted per label", func() {
			m.RecordSubmission(OutcomeAccepted)
			m.RecordSubmission(OutcomeAccepted)
			m.RecordSubmission(OutcomeSpam)
			So(testutil.ToFloat64(m.submissions.WithLabelValues(OutcomeAccepted)), ShouldEqual, 2)
			So(testutil.ToFloat64(m.submissions.WithLabelValues(OutcomeSpam)), ShouldEqual, 1)
		})

		Convey("Gauges hold the latest value", func() {
			m.UpdateStoredRecords(7)
			m.UpdateAlertQueue(3, 64)
			m.UpdateVital("fps", 58)
			m.UpdateVital("fps", 41)
			So(testutil.ToFloat64(m.storedRecords), ShouldEqual, 7)
			So(testutil.ToFloat64(m.alertQueueSize), ShouldEqual, 3)
			So(testutil.ToFloat64(m.alertQueueCap), ShouldEqual, 64)
			So(testutil.ToFloat64(m.vitals.WithLabelValues("fps")), ShouldEqual, 41)
		})

		Convey("Alerts and deliveries are counted", func() {
			m.RecordAlert("high")
			m.RecordAlertDelivery("failed")
			m.RecordNotification("error")
			So(testutil.ToFloat64(m.alertsBySeverity.WithLabelValues("high")), ShouldEqual, 1)
			So(testutil.ToFloat64(m.alertDeliveries.WithLabelValues("failed")), ShouldEqual, 1)
			So(testutil.ToFloat64(m.notifications.WithLabelValues("error")), ShouldEqual, 1)
		})

		Convey("HTTP requests feed the counter and the histogram", func() {
			m.RecordHTTPRequest("/api/submit", "POST", "200", 12)
			So(testutil.ToFloat64(m.httpRequests.WithLabelValues("/api/submit", "POST", "200")), ShouldEqual, 1)
			So(testutil.CollectAndCount(m.httpRequestDuration), ShouldEqual, 1)
		})
	})

	Convey("Global helpers never panic", t, func() {
		So(func() {
			RecordSubmission(OutcomeRateLimited)
			RecordStoreWriteLatency(1.5)
			UpdateStoredRecords(1)
			RecordHTTPRequest("/healthz", "GET", "200", 0.3)
			RecordErrorByType("store_failure", "high")
			RecordAlert("low")
			RecordAlertDelivery("ok")
			UpdateAlertQueue(0, 10)
			RecordNotification("info")
			UpdateVital("cls", 0.02)
			UpdateSystem(1024, 4)
		}, ShouldNotPanic)
		So(GetRegistry(), ShouldNotBeNil)
	})
}

func TestGlobalManagerLayout(t *testing.T) {
	Convey("Given the process wide registry", t, func() {
		RecordHTTPRequest("/layout", "GET", "200", 3)

		families, err := GetRegistry().Gather()
		So(err, ShouldBeNil)

		var buckets []float64
		for _, f := range families {
			So(f.GetName(), ShouldStartWith, Namespace+"_"+Subsystem+"_")
			if f.GetName() == "portfolio_api_http_request_duration_milliseconds" {
				for _, b := range f.GetMetric()[0].GetHistogram().GetBucket() {
					buckets = append(buckets, b.GetUpperBound())
				}
			}
		}

		Convey("Latency histograms use millisecond buckets", func() {
			So(buckets, ShouldResemble, LatencyBucketsMs)
		})
	})

	Convey("Given a manager without options", t, func() {
		registry := prometheus.NewRegistry()
		NewManager(WithPrometheusRegistry(registry)).RecordSubmission(OutcomeSpam)

		families, err := registry.Gather()
		So(err, ShouldBeNil)
		names := map[string]bool{}
		for _, f := range families {
			names[f.GetName()] = true
		}
		So(names["submissions_total"], ShouldBeTrue)
	})
}
