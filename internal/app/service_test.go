package app_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"go.uber.org/goleak"

	"github.com/okian/portfolio/internal/adapters/mq/worker"
	"github.com/okian/portfolio/internal/adapters/repository"
	"github.com/okian/portfolio/internal/app"
	"github.com/okian/portfolio/internal/domain/model"
	"github.com/okian/portfolio/internal/domain/validation"
	"github.com/okian/portfolio/internal/ui/monitor"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type sink struct {
	mu     sync.Mutex
	alerts []model.Alert
}

func (s *sink) Deliver(_ context.Context, a model.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = append(s.alerts, a)
	return nil
}

func (s *sink) messages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.alerts))
	for i, a := range s.alerts {
		out[i] = a.Message
	}
	return out
}

func validRequest() app.SubmitRequest {
	return app.SubmitRequest{
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Email:        "ada@example.com",
		ResumeHeader: "Analytical Engineer",
		Skills:       "Go, Maths",
	}
}

func TestSubmit(t *testing.T) {
	Convey("Given a service over a temp submissions file", t, func() {
		ctx := context.Background()
		clock := &fakeClock{now: time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)}
		store := repository.NewJSONFileStore(filepath.Join(t.TempDir(), "submissions.json"))
		svc := app.New(app.WithStore(store), app.WithClock(clock.Now))
		defer func() { So(svc.Stop(ctx), ShouldBeNil) }()

		Convey("A valid request is stored with a server timestamp", func() {
			outcome, err := svc.Submit(ctx, validRequest())
			So(err, ShouldBeNil)
			So(outcome, ShouldEqual, app.OutcomeAccepted)

			records, err := svc.List(ctx)
			So(err, ShouldBeNil)
			So(records, ShouldResemble, []model.SubmissionRecord{{
				FirstName:    "Ada",
				LastName:     "Lovelace",
				Email:        "ada@example.com",
				ResumeHeader: "Analytical Engineer",
				Skills:       "Go, Maths",
				SubmittedAt:  "2026-03-04T05:06:07.000Z",
			}})
		})

		Convey("Identical requests are both kept", func() {
			_, err := svc.Submit(ctx, validRequest())
			So(err, ShouldBeNil)
			_, err = svc.Submit(ctx, validRequest())
			So(err, ShouldBeNil)
			records, err := svc.List(ctx)
			So(err, ShouldBeNil)
			So(records, ShouldHaveLength, 2)
		})

		Convey("A missing field is rejected", func() {
			req := validRequest()
			req.Skills = ""
			outcome, err := svc.Submit(ctx, req)
			So(outcome, ShouldEqual, app.OutcomeInvalid)
			So(errors.Is(err, validation.ErrInvalid), ShouldBeTrue)
			So(err.Error(), ShouldEqual, app.MsgFieldsRequired)

			var verr *validation.Error
			So(errors.As(err, &verr), ShouldBeTrue)
			So(verr.Field, ShouldEqual, "skills")
		})

		Convey("A malformed email is rejected", func() {
			req := validRequest()
			req.Email = "not-an-email"
			_, err := svc.Submit(ctx, req)
			So(err.Error(), ShouldEqual, app.MsgInvalidEmail)
		})

		Convey("A missing field wins over a malformed email", func() {
			req := validRequest()
			req.Email = "nope"
			req.FirstName = ""
			_, err := svc.Submit(ctx, req)
			So(err.Error(), ShouldEqual, app.MsgFieldsRequired)
		})

		Convey("A filled honeypot looks accepted but stores nothing", func() {
			req := validRequest()
			req.Honeypot = "http://spam.example"
			outcome, err := svc.Submit(ctx, req)
			So(err, ShouldBeNil)
			So(outcome, ShouldEqual, app.OutcomeSpam)
			records, err := svc.List(ctx)
			So(err, ShouldBeNil)
			So(records, ShouldBeEmpty)
		})

		Convey("The honeypot does not bypass validation", func() {
			req := validRequest()
			req.Honeypot = "x"
			req.LastName = ""
			outcome, err := svc.Submit(ctx, req)
			So(outcome, ShouldEqual, app.OutcomeInvalid)
			So(err.Error(), ShouldEqual, app.MsgFieldsRequired)
		})
	})

	Convey("Given a store that cannot be written", t, func() {
		ctx := context.Background()
		store := repository.NewJSONFileStore(filepath.Join(t.TempDir(), "missing", "submissions.json"))
		svc := app.New(app.WithStore(store))
		defer func() { So(svc.Stop(ctx), ShouldBeNil) }()

		outcome, err := svc.Submit(ctx, validRequest())
		So(outcome, ShouldEqual, app.OutcomeStoreError)
		So(errors.Is(err, app.ErrStore), ShouldBeTrue)
		So(errors.Is(err, repository.ErrWrite), ShouldBeTrue)
	})
}

func TestAllowSubmission(t *testing.T) {
	Convey("Given a service limited to five submissions a minute", t, func() {
		ctx := context.Background()
		clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
		svc := app.New(
			app.WithStore(repository.NewJSONFileStore(filepath.Join(t.TempDir(), "s.json"))),
			app.WithClock(clock.Now),
			app.WithRateLimit(5, time.Minute),
		)
		defer func() { So(svc.Stop(ctx), ShouldBeNil) }()

		for i := 0; i < 5; i++ {
			So(svc.AllowSubmission(ctx, "10.0.0.1").Allowed, ShouldBeTrue)
		}

		Convey("The sixth attempt is refused", func() {
			info := svc.AllowSubmission(ctx, "10.0.0.1")
			So(info.Allowed, ShouldBeFalse)
			So(info.RetryAfter, ShouldEqual, time.Minute)
		})

		Convey("Other clients are unaffected", func() {
			So(svc.AllowSubmission(ctx, "10.0.0.2").Allowed, ShouldBeTrue)
		})

		Convey("The window slides", func() {
			clock.Advance(time.Minute + time.Second)
			So(svc.AllowSubmission(ctx, "10.0.0.1").Allowed, ShouldBeTrue)
		})
	})
}

func TestAlertPipeline(t *testing.T) {
	Convey("Given a started service with a recording deliverer", t, func() {
		ctx := context.Background()
		out := &sink{}
		svc := app.New(
			app.WithStore(repository.NewJSONFileStore(filepath.Join(t.TempDir(), "s.json"))),
			app.WithDeliverer(out),
			app.WithAlertWorkers(1),
		)
		So(svc.Start(ctx), ShouldBeNil)
		So(svc.Start(ctx), ShouldBeNil)

		Convey("Ingested alerts are completed and delivered", func() {
			a, err := svc.IngestAlert(ctx, model.Alert{ID: "a-1", Message: "Theme CSS failed to load"})
			So(err, ShouldBeNil)
			So(a.Severity, ShouldEqual, model.SeverityHigh)
			So(a.Timestamp, ShouldNotBeEmpty)

			_, err = svc.IngestAlert(ctx, model.Alert{ID: "a-1", Message: "Theme CSS failed to load"})
			So(errors.Is(err, app.ErrDuplicate), ShouldBeTrue)

			fresh, err := svc.IngestAlert(ctx, model.Alert{Message: "note"})
			So(err, ShouldBeNil)
			So(fresh.ID, ShouldNotBeEmpty)

			So(svc.Stop(ctx), ShouldBeNil)
			So(out.messages(), ShouldHaveLength, 2)
			So(svc.Alerts(), ShouldHaveLength, 2)
		})

		Convey("Vitals past their targets raise delivered alerts", func() {
			raised := svc.RecordVitals(ctx, model.PerformanceSnapshot{FPS: 12, LCPMs: 4000}, 0)
			So(raised, ShouldHaveLength, 2)
			So(svc.Stop(ctx), ShouldBeNil)
			So(out.messages(), ShouldContain, monitor.MsgLowFPS)
			So(out.messages(), ShouldContain, monitor.MsgLCP)
		})

		Convey("Stop is idempotent and Start after Stop does nothing", func() {
			So(svc.Stop(ctx), ShouldBeNil)
			So(svc.Stop(ctx), ShouldBeNil)
			So(svc.Start(ctx), ShouldBeNil)
			So(svc.GetStats(ctx)["started"], ShouldEqual, false)
		})

		Reset(func() { _ = svc.Stop(ctx) })
	})
}

func TestDiagnosticsAndStats(t *testing.T) {
	Convey("Given a service with a page shell", t, func() {
		ctx := context.Background()
		shell := `<html data-theme="creative-gradient"><body><div class="glass-card" role="region"></div></body></html>`
		svc := app.New(
			app.WithStore(repository.NewJSONFileStore(filepath.Join(t.TempDir(), "s.json"))),
			app.WithShellHTML(shell),
			app.WithDeliverer(worker.DelivererFunc(func(context.Context, model.Alert) error { return nil })),
		)
		So(svc.Start(ctx), ShouldBeNil)
		defer func() { So(svc.Stop(ctx), ShouldBeNil) }()

		Convey("Diagnostics run against the shell", func() {
			results, err := svc.Diagnostics(ctx, monitor.ModernEnvironment("Chrome"))
			So(err, ShouldBeNil)
			So(results, ShouldHaveLength, 5)
			for _, r := range results {
				So(r.Status, ShouldEqual, model.DiagnosticPass)
			}
		})

		Convey("The theme catalog is exposed", func() {
			So(svc.Themes(), ShouldHaveLength, 4)
		})

		Convey("Stats report the pipeline state", func() {
			_, err := svc.Submit(ctx, validRequest())
			So(err, ShouldBeNil)
			svc.AllowSubmission(ctx, "1.2.3.4")

			stats := svc.GetStats(ctx)
			So(stats["started"], ShouldEqual, true)
			So(stats["storedRecords"], ShouldEqual, 1)
			So(stats["alertQueueCapacity"], ShouldEqual, 1024)
			So(stats["rateLimit"], ShouldEqual, 5)
			So(stats["rateWindowMs"], ShouldEqual, int64(60_000))
			So(stats["rateTrackedClients"], ShouldEqual, 1)
		})
	})
}

func TestAllowAlert(t *testing.T) {
	Convey("Given a service with separate submission and alert windows", t, func() {
		ctx := context.Background()
		clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
		svc := app.New(
			app.WithStore(repository.NewJSONFileStore(filepath.Join(t.TempDir(), "s.json"))),
			app.WithClock(clock.Now),
			app.WithRateLimit(5, time.Minute),
			app.WithAlertRateLimit(3, time.Minute),
		)
		defer func() { So(svc.Stop(ctx), ShouldBeNil) }()

		for range 3 {
			So(svc.AllowAlert(ctx, "10.0.0.1").Allowed, ShouldBeTrue)
		}

		Convey("The fourth report is refused", func() {
			info := svc.AllowAlert(ctx, "10.0.0.1")
			So(info.Allowed, ShouldBeFalse)
			So(info.Limit, ShouldEqual, 3)
			So(info.RetryAfter, ShouldEqual, time.Minute)
		})

		Convey("Alert reports do not spend the submission window", func() {
			So(svc.AllowSubmission(ctx, "10.0.0.1").Allowed, ShouldBeTrue)
			So(svc.AllowSubmission(ctx, "10.0.0.1").Remaining, ShouldEqual, 3)
		})

		Convey("Stats report both windows", func() {
			stats := svc.GetStats(ctx)
			So(stats["alertRateLimit"], ShouldEqual, 3)
			So(stats["alertTrackedClients"], ShouldEqual, 1)
		})
	})
}

func TestAlertHistory(t *testing.T) {
	Convey("Given a service keeping three alerts", t, func() {
		ctx := context.Background()
		svc := app.New(
			app.WithStore(repository.NewJSONFileStore(filepath.Join(t.TempDir(), "s.json"))),
			app.WithDeliverer(worker.DelivererFunc(func(context.Context, model.Alert) error { return nil })),
			app.WithAlertHistory(3),
		)
		So(svc.Start(ctx), ShouldBeNil)
		defer func() { So(svc.Stop(ctx), ShouldBeNil) }()

		for _, id := range []string{"a-1", "a-2", "a-3", "a-4", "a-5"} {
			_, err := svc.IngestAlert(ctx, model.Alert{ID: id, Message: "note"})
			So(err, ShouldBeNil)
		}

		Convey("Only the newest alerts are retained", func() {
			alerts := svc.Alerts()
			So(alerts, ShouldHaveLength, 3)
			So(alerts[0].ID, ShouldEqual, "a-3")
			So(alerts[2].ID, ShouldEqual, "a-5")
			So(svc.GetStats(ctx)["alertsRaised"], ShouldEqual, 3)
		})
	})
}

func TestFullQueueForgetsAlert(t *testing.T) {
	Convey("Given an unstarted service whose queue holds one alert", t, func() {
		ctx := context.Background()
		svc := app.New(
			app.WithStore(repository.NewJSONFileStore(filepath.Join(t.TempDir(), "s.json"))),
			app.WithAlertQueueSize(1),
		)
		defer func() { So(svc.Stop(ctx), ShouldBeNil) }()

		_, err := svc.IngestAlert(ctx, model.Alert{ID: "a-1", Message: "note"})
		So(err, ShouldBeNil)
		So(waitFor(func() bool { return svc.GetStats(ctx)["alertQueueLength"] == 1 }), ShouldBeTrue)

		Convey("An alert dropped by the full queue may be sent again", func() {
			_, err := svc.IngestAlert(ctx, model.Alert{ID: "a-2", Message: "note"})
			So(err, ShouldBeNil)

			resent := waitFor(func() bool {
				_, err := svc.IngestAlert(ctx, model.Alert{ID: "a-2", Message: "note"})
				return err == nil
			})
			So(resent, ShouldBeTrue)
		})

		Convey("A queued alert stays deduplicated", func() {
			_, err := svc.IngestAlert(ctx, model.Alert{ID: "a-1", Message: "note"})
			So(errors.Is(err, app.ErrDuplicate), ShouldBeTrue)
		})
	})
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}
