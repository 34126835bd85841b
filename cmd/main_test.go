package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/clubhouse/internal/config"
	"github.com/okian/clubhouse/internal/domain/model"
	"github.com/okian/clubhouse/pkg/logger"
	"github.com/okian/clubhouse/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestNewService(t *testing.T) {
	convey.Convey("Given a default configuration", t, func() {
		ctx := context.Background()
		cfg := config.New()

		convey.Convey("When building the service on the memory store", func() {
			svc, store, err := newService(ctx, cfg)
			convey.So(err, convey.ShouldBeNil)
			defer func() { _ = store.Close() }()

			convey.Convey("Then it resolves members with the configured rater", func() {
				m, err := svc.CreateMember(ctx, model.Member{FullName: "Keeper", Position: model.Goalkeeper, MembershipType: model.MembershipTrial})
				convey.So(err, convey.ShouldBeNil)
				convey.So(m.Skill, convey.ShouldEqual, 2.8)
			})
		})

		convey.Convey("When the skill weights are changed", func() {
			cfg.SkillBase = 4.0
			cfg.SkillMembershipBonus = 1.0
			svc, store, err := newService(ctx, cfg)
			convey.So(err, convey.ShouldBeNil)
			defer func() { _ = store.Close() }()

			convey.Convey("Then member skills follow them", func() {
				m, err := svc.CreateMember(ctx, model.Member{FullName: "Wing", Position: model.Forward, MembershipType: model.MembershipOfficial})
				convey.So(err, convey.ShouldBeNil)
				convey.So(m.Skill, convey.ShouldEqual, 5.0)
			})
		})

		convey.Convey("When building the service on sqlite", func() {
			cfg.DBDriver = config.DBDriverSQLite
			cfg.DBDSN = filepath.Join(t.TempDir(), "clubhouse.db")
			svc, store, err := newService(ctx, cfg)
			convey.So(err, convey.ShouldBeNil)
			defer func() { _ = store.Close() }()

			convey.Convey("Then members persist through the SQL store", func() {
				m, err := svc.CreateMember(ctx, model.Member{FullName: "Back", Position: model.Defender, MembershipType: model.MembershipOfficial})
				convey.So(err, convey.ShouldBeNil)
				got, err := svc.GetMember(ctx, m.ID)
				convey.So(err, convey.ShouldBeNil)
				convey.So(got.FullName, convey.ShouldEqual, "Back")
			})
		})

		convey.Convey("When the driver is unknown", func() {
			cfg.DBDriver = "mysql"
			_, _, err := newService(ctx, cfg)

			convey.Convey("Then building fails", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestNewHTTPServer(t *testing.T) {
	convey.Convey("Given the HTTP server", t, func() {
		ctx := context.Background()
		svc, store, err := newService(ctx, config.New())
		convey.So(err, convey.ShouldBeNil)
		defer func() { _ = store.Close() }()

		srv := newHTTPServer(ctx, ":0", svc)

		convey.Convey("Then it is configured with timeouts", func() {
			convey.So(srv.Addr, convey.ShouldEqual, ":0")
			convey.So(srv.ReadTimeout, convey.ShouldEqual, readTimeout)
			convey.So(srv.WriteTimeout, convey.ShouldEqual, writeTimeout)
			convey.So(srv.ReadHeaderTimeout, convey.ShouldEqual, readHeaderTimeout)
		})

		convey.Convey("Then API and docs routes are wired", func() {
			for _, path := range []string{"/healthz", "/stats", "/members", "/team-division/formations", "/api-docs", "/openapi.yaml"} {
				w := httptest.NewRecorder()
				srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, http.NoBody))
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			}
		})

		convey.Convey("Then a division runs end to end", func() {
			var ids []string
			for i := 0; i < 6; i++ {
				body := `{"fullName":"P","position":"` + model.Positions[i%model.PositionCount].String() + `","membershipType":"OFFICIAL"}`
				w := httptest.NewRecorder()
				srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/members", strings.NewReader(body)))
				convey.So(w.Code, convey.ShouldEqual, http.StatusCreated)
				var created struct {
					ID string `json:"id"`
				}
				convey.So(json.Unmarshal(w.Body.Bytes(), &created), convey.ShouldBeNil)
				ids = append(ids, created.ID)
			}

			body := `{"participantIds":["` + strings.Join(ids, `","`) + `"],"numberOfTeams":3,"balanceStrategy":"POSITION_BALANCED"}`
			w := httptest.NewRecorder()
			srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/team-division/divide", strings.NewReader(body)))
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(w.Body.String(), convey.ShouldContainSubstring, `"name":"Team 3"`)
		})
	})
}

func TestRun(t *testing.T) {
	convey.Convey("Given a configuration on a free port", t, func() {
		cfg := config.New()
		cfg.Addr = "127.0.0.1:0"

		convey.Convey("When the context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan error, 1)
			go func() { done <- run(ctx, cfg) }()
			time.Sleep(100 * time.Millisecond)
			cancel()

			convey.Convey("Then run shuts down cleanly", func() {
				select {
				case err := <-done:
					convey.So(err, convey.ShouldBeNil)
				case <-time.After(10 * time.Second):
					t.Fatal("run did not return after cancel")
				}
			})
		})

		convey.Convey("When the store cannot be opened", func() {
			cfg.DBDriver = "mysql"

			convey.Convey("Then run fails immediately", func() {
				convey.So(run(context.Background(), cfg), convey.ShouldNotBeNil)
			})
		})
	})
}

func TestUpdateSystemMetrics(t *testing.T) {
	convey.Convey("When updating system metrics", t, func() {
		updateSystemMetrics()

		convey.Convey("Then the goroutine gauge is populated", func() {
			n, err := testutil.GatherAndCount(metrics.GetRegistry(), "clubhouse_division_system_goroutines")
			convey.So(err, convey.ShouldBeNil)
			convey.So(n, convey.ShouldEqual, 1)
		})
	})
}

func TestInitLogging(t *testing.T) {
	convey.Convey("Given a config with a log file", t, func() {
		cfg := config.New()
		cfg.LogFile = filepath.Join(t.TempDir(), "logs", "clubhouse.log")
		cfg.LogLevel = "verbose"
		cfg.LogJSON = true

		convey.Convey("Then logging initializes and falls back to info", func() {
			convey.So(initLogging(context.Background(), cfg), convey.ShouldBeNil)
			convey.So(logger.Sync(), convey.ShouldBeNil)
			convey.So(logger.Init(), convey.ShouldBeNil)
		})
	})
}
