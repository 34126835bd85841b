package testdivisions

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/clubhouse/internal/adapters/http/api"
	service "github.com/okian/clubhouse/internal/app"
	"github.com/okian/clubhouse/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func newTestServer(ctx context.Context) (*httptest.Server, *service.Service) {
	svc := service.New(service.WithWorkerCount(2), service.WithQueueSize(64))
	So(svc.Start(ctx), ShouldBeNil)

	mux := http.NewServeMux()
	api.NewServer(svc, svc).Register(ctx, mux)
	return httptest.NewServer(mux), svc
}

func TestRun(t *testing.T) {
	Convey("Given a running service", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		srv, svc := newTestServer(ctx)
		defer srv.Close()
		defer svc.Stop()

		var out bytes.Buffer
		config := &Config{
			BaseURL:    srv.URL,
			NumMembers: 24,
			MinTeams:   2,
			MaxTeams:   6,
			Workers:    4,
			Timeout:    5 * time.Second,
			Seed:       42,
			Out:        &out,
		}

		Convey("Synchronous divisions all verify", func() {
			config.OutputFile = filepath.Join(t.TempDir(), "reports", "report.json")
			So(Run(ctx, config), ShouldBeNil)

			So(out.String(), ShouldContainSubstring, "STRATEGY")
			So(out.String(), ShouldContainSubstring, "POSITION_BALANCED")
			So(out.String(), ShouldNotContainSubstring, "FAIL")

			data, err := os.ReadFile(config.OutputFile)
			So(err, ShouldBeNil)
			var outcomes []Outcome
			So(json.Unmarshal(data, &outcomes), ShouldBeNil)
			So(len(outcomes), ShouldEqual, 20)
		})

		Convey("Divisions through the job queue all verify", func() {
			config.UseJobs = true
			config.MinTeams, config.MaxTeams = 3, 4
			So(Run(ctx, config), ShouldBeNil)
			So(out.String(), ShouldNotContainSubstring, "FAIL")
		})
	})

	Convey("Given an unreachable service", t, func() {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()
		config := &Config{BaseURL: srv.URL, NumMembers: 10, MinTeams: 2, MaxTeams: 3, Workers: 1, Timeout: time.Second}

		Convey("Run fails the health check", func() {
			err := Run(context.Background(), config)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "health check")
		})
	})

	Convey("Given an invalid configuration", t, func() {
		Convey("Run fails before contacting the service", func() {
			So(Run(context.Background(), &Config{}), ShouldNotBeNil)
		})
	})
}
