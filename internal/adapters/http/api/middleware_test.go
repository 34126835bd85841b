package api

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/clubhouse/internal/adapters/mq/queue"
	"github.com/okian/clubhouse/pkg/metrics"
)

// errorSeries returns the error_type labels recorded for endpoint.
func errorSeries(endpoint string) []string {
	families, err := metrics.GetRegistry().Gather()
	So(err, ShouldBeNil)
	var types []string
	for _, f := range families {
		if f.GetName() != "clubhouse_division_errors_by_endpoint_total" {
			continue
		}
		for _, m := range f.GetMetric() {
			labels := map[string]string{}
			for _, l := range m.GetLabel() {
				labels[l.GetName()] = l.GetValue()
			}
			if labels["endpoint"] == endpoint {
				types = append(types, labels["error_type"])
			}
		}
	}
	return types
}

func TestMetricsMiddleware(t *testing.T) {
	Convey("Given a handler wrapped in the metrics middleware", t, func() {
		Convey("An API error is recorded under its response code", func() {
			h := MetricsMiddleware(func(w http.ResponseWriter, r *http.Request) {
				writeError(r.Context(), w, fmt.Errorf("submit: %w", queue.ErrQueueFull))
			}, "mw_backpressure")
			w := httptest.NewRecorder()
			h(w, httptest.NewRequest(http.MethodPost, "/x", http.NoBody))

			So(w.Code, ShouldEqual, http.StatusTooManyRequests)
			So(errorSeries("mw_backpressure"), ShouldResemble, []string{"backpressure"})
		})

		Convey("A bare error status falls back to an http code", func() {
			h := MetricsMiddleware(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusTeapot)
				w.WriteHeader(http.StatusOK)
			}, "mw_teapot")
			w := httptest.NewRecorder()
			h(w, httptest.NewRequest(http.MethodGet, "/x", http.NoBody))

			So(w.Code, ShouldEqual, http.StatusTeapot)
			So(errorSeries("mw_teapot"), ShouldResemble, []string{"http_418"})
		})

		Convey("A success records no error", func() {
			h := MetricsMiddleware(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte("ok"))
			}, "mw_ok")
			w := httptest.NewRecorder()
			h(w, httptest.NewRequest(http.MethodGet, "/x", http.NoBody))

			So(w.Code, ShouldEqual, http.StatusOK)
			So(errorSeries("mw_ok"), ShouldBeEmpty)
		})
	})

	Convey("Severity grades statuses", t, func() {
		So(severity(http.StatusInternalServerError), ShouldEqual, "high")
		So(severity(http.StatusServiceUnavailable), ShouldEqual, "high")
		So(severity(http.StatusTooManyRequests), ShouldEqual, "medium")
		So(severity(http.StatusNotFound), ShouldEqual, "low")
	})
}
