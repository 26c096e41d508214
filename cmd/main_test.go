package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/healthtwin/riskengine/internal/adapters/http/api"
	"github.com/healthtwin/riskengine/internal/adapters/http/swagger"
	service "github.com/healthtwin/riskengine/internal/app"
	"github.com/healthtwin/riskengine/internal/config"
	"github.com/healthtwin/riskengine/pkg/logger"
)

func init() {
	if err := logger.Init(logger.WithOutput(io.Discard)); err != nil {
		panic(err)
	}
}

func TestNewStore(t *testing.T) {
	convey.Convey("Given a configuration without a database URL", t, func() {
		cfg := config.New()

		convey.Convey("Then no external store is created", func() {
			store, err := newStore(context.Background(), cfg)
			convey.So(err, convey.ShouldBeNil)
			convey.So(store, convey.ShouldBeNil)
		})
	})

	convey.Convey("Given a database URL with an unsupported scheme", t, func() {
		cfg := config.New()
		cfg.DatabaseURL = "nosuchdb://localhost/risk"

		convey.Convey("Then migration fails before any pool is opened", func() {
			store, err := newStore(context.Background(), cfg)
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(store, convey.ShouldBeNil)
		})
	})
}

func TestRollback(t *testing.T) {
	convey.Convey("Given a configuration without a database URL", t, func() {
		err := rollback(context.Background(), config.New(), logger.Get())

		convey.Convey("Then there is nothing to roll back", func() {
			convey.So(errors.Is(err, errNoDatabase), convey.ShouldBeTrue)
		})
	})

	convey.Convey("Given a database URL with an unsupported scheme", t, func() {
		cfg := config.New()
		cfg.DatabaseURL = "nosuchdb://localhost/risk"
		err := rollback(context.Background(), cfg, logger.Get())

		convey.Convey("Then the migrator cannot be created", func() {
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(err.Error(), convey.ShouldContainSubstring, "create migrator")
		})
	})
}

func TestApplyLogLevel(t *testing.T) {
	convey.Convey("Given the global logger", t, func() {
		log := logger.Get()
		defer func() { _ = logger.SetLevelString("info") }()

		convey.Convey("Then a valid level is applied", func() {
			applyLogLevel(context.Background(), log, "debug")
			convey.So(logger.Level().String(), convey.ShouldEqual, "DEBUG")
		})

		convey.Convey("Then an invalid level falls back to info", func() {
			applyLogLevel(context.Background(), log, "chatty")
			convey.So(logger.Level().String(), convey.ShouldEqual, "INFO")
		})
	})
}

func TestSystemMetrics(t *testing.T) {
	convey.Convey("Given the system metrics updater", t, func() {
		convey.Convey("Then a single update does not panic", func() {
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
		})

		convey.Convey("Then the loop returns when the context ends", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()

			done := make(chan struct{})
			go func() {
				startSystemMetricsUpdater(ctx)
				close(done)
			}()

			select {
			case <-done:
				convey.So(true, convey.ShouldBeTrue)
			case <-time.After(time.Second):
				convey.So("updater still running", convey.ShouldBeEmpty)
			}
		})
	})
}

func TestRoutesWiring(t *testing.T) {
	convey.Convey("Given the router as main assembles it", t, func() {
		svc := service.New(service.WithRecordHistory(false))
		convey.So(svc.Start(context.Background()), convey.ShouldBeNil)
		defer func() { _ = svc.Stop(context.Background()) }()

		h := api.NewServer(svc).Routes(swagger.Register)

		for _, path := range []string{"/", "/stats", "/metrics", "/openapi.yaml", "/api-docs"} {
			req := httptest.NewRequest(http.MethodGet, path, http.NoBody)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
		}

		convey.Convey("Then scoring a healthy snapshot works end to end", func() {
			body := `{"age":45,"resting_hr":72,"hrv_sdnn":120,"hrv_rmssd":40,"systolic_bp":118,"diastolic_bp":76,"bmi":23.5}`
			req := httptest.NewRequest(http.MethodPost, "/api/v1/risk/cardiac", strings.NewReader(body))
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(w.Body.String(), convey.ShouldContainSubstring, `"risk_score":0,"risk_level":"Low","risk_factors":[]`)
		})

		convey.Convey("Then low SDNN alone lands in Moderate", func() {
			body := `{"age":45,"resting_hr":72,"hrv_sdnn":45,"hrv_rmssd":30,"systolic_bp":118,"diastolic_bp":76,"bmi":23.5}`
			req := httptest.NewRequest(http.MethodPost, "/api/v1/risk/cardiac", strings.NewReader(body))
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(w.Body.String(), convey.ShouldContainSubstring, `"risk_score":30,"risk_level":"Moderate"`)
		})
	})
}

func TestRun(t *testing.T) {
	convey.Convey("Given a configuration on an ephemeral port", t, func() {
		cfg := config.New()
		cfg.Addr = "127.0.0.1:0"
		cfg.HistorySize = 16

		convey.Convey("Then run stops cleanly when the context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			errc := make(chan error, 1)
			go func() { errc <- run(ctx, cfg, logger.Get()) }()

			time.Sleep(50 * time.Millisecond)
			cancel()

			select {
			case err := <-errc:
				convey.So(err, convey.ShouldBeNil)
			case <-time.After(5 * time.Second):
				convey.So("run did not return", convey.ShouldBeEmpty)
			}
		})
	})

	convey.Convey("Given an address that cannot be bound", t, func() {
		cfg := config.New()
		cfg.Addr = "256.0.0.1:bad"

		convey.Convey("Then run reports a serve error", func() {
			err := run(context.Background(), cfg, logger.Get())
			convey.So(errors.Is(err, api.ErrServe), convey.ShouldBeTrue)
		})
	})
}
