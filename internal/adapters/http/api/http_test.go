package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"path/filepath"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/portfolio/internal/adapters/http/api"
	"github.com/okian/portfolio/internal/adapters/mq/worker"
	"github.com/okian/portfolio/internal/adapters/repository"
	"github.com/okian/portfolio/internal/app"
	"github.com/okian/portfolio/internal/domain/model"
)

const validBody = `{"firstName":"Ada","lastName":"Lovelace","email":"ada@example.com","resumeHeader":"Engineer","skills":"Go"}`

type response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

func decode(rec *httptest.ResponseRecorder) response {
	var out response
	So(json.Unmarshal(rec.Body.Bytes(), &out), ShouldBeNil)
	return out
}

type fixture struct {
	mux   *http.ServeMux
	svc   *app.Service
	store *repository.JSONFileStore
}

func newFixture(t *testing.T, path string, opts ...api.Option) *fixture {
	return newFixtureWith(t, path, nil, opts...)
}

func newFixtureWith(t *testing.T, path string, appOpts []app.Option, opts ...api.Option) *fixture {
	store := repository.NewJSONFileStore(path)
	svc := app.New(append([]app.Option{
		app.WithStore(store),
		app.WithShellHTML(`<html data-theme="creative-gradient"><body></body></html>`),
		app.WithDeliverer(worker.DelivererFunc(func(context.Context, model.Alert) error { return nil })),
	}, appOpts...)...)
	mux := http.NewServeMux()
	api.NewServer(svc, svc, opts...).Register(context.Background(), mux)
	return &fixture{mux: mux, svc: svc, store: store}
}

func (f *fixture) do(method, target, body string, headers ...string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	req.RemoteAddr = "192.0.2.10:5555"
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)
	return rec
}

func TestSubmitEndpoint(t *testing.T) {
	Convey("Given the API over a temp submissions file", t, func() {
		f := newFixture(t, filepath.Join(t.TempDir(), "submissions.json"))
		defer func() { _ = f.svc.Stop(context.Background()) }()

		Convey("A valid request is stored", func() {
			rec := f.do(http.MethodPost, "/api/submit", validBody)
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldEqual, "{\"success\":true}\n")
			So(rec.Header().Get("Access-Control-Allow-Origin"), ShouldEqual, "*")

			records, err := f.store.List(context.Background())
			So(err, ShouldBeNil)
			So(records, ShouldHaveLength, 1)
			So(records[0].Email, ShouldEqual, "ada@example.com")
			_, err = records[0].SubmittedTime()
			So(err, ShouldBeNil)
		})

		Convey("A missing field is a 400", func() {
			rec := f.do(http.MethodPost, "/api/submit", `{"firstName":"Ada"}`)
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
			body := decode(rec)
			So(body.Success, ShouldBeFalse)
			So(body.Error, ShouldEqual, "All fields are required.")
		})

		Convey("A malformed email is a 400", func() {
			rec := f.do(http.MethodPost, "/api/submit", strings.Replace(validBody, "ada@example.com", "ada@example", 1))
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
			So(decode(rec).Error, ShouldEqual, "Invalid email address.")
		})

		Convey("A filled honeypot succeeds without storing", func() {
			rec := f.do(http.MethodPost, "/api/submit", strings.Replace(validBody, "}", `,"_gotcha":"bot"}`, 1))
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(decode(rec).Success, ShouldBeTrue)
			count, err := f.store.Count(context.Background())
			So(err, ShouldBeNil)
			So(count, ShouldEqual, 0)
		})

		Convey("Malformed JSON is a 400", func() {
			rec := f.do(http.MethodPost, "/api/submit", `{"firstName":`)
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
			So(decode(rec).Error, ShouldEqual, api.MsgInvalidBody)
		})

		Convey("Other methods are not found", func() {
			So(f.do(http.MethodGet, "/api/submit", "").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("Preflight requests get 204 and are not charged", func() {
			for i := 0; i < 10; i++ {
				rec := f.do(http.MethodOptions, "/api/submit", "", "Access-Control-Request-Headers", "content-type")
				So(rec.Code, ShouldEqual, http.StatusNoContent)
				So(rec.Header().Get("Access-Control-Allow-Headers"), ShouldEqual, "content-type")
			}
			So(f.do(http.MethodPost, "/api/submit", validBody).Code, ShouldEqual, http.StatusOK)
		})

		Convey("The sixth attempt in a minute is refused", func() {
			for i := 0; i < 5; i++ {
				So(f.do(http.MethodPost, "/api/submit", `{}`).Code, ShouldEqual, http.StatusBadRequest)
			}
			rec := f.do(http.MethodPost, "/api/submit", validBody)
			So(rec.Code, ShouldEqual, http.StatusTooManyRequests)
			So(rec.Body.String(), ShouldEqual, api.MsgRateLimited)
			So(rec.Header().Get("Retry-After"), ShouldEqual, "60")

			Convey("A forwarded header from an untrusted peer changes nothing", func() {
				rec := f.do(http.MethodPost, "/api/submit", validBody, "X-Forwarded-For", "203.0.113.7")
				So(rec.Code, ShouldEqual, http.StatusTooManyRequests)
			})
		})

		Convey("Rotating X-Forwarded-For does not reset the window", func() {
			for i := 1; i <= 5; i++ {
				rec := f.do(http.MethodPost, "/api/submit", validBody, "X-Forwarded-For", fmt.Sprintf("10.0.0.%d", i))
				So(rec.Code, ShouldEqual, http.StatusOK)
			}
			rec := f.do(http.MethodPost, "/api/submit", validBody, "X-Forwarded-For", "10.0.0.6")
			So(rec.Code, ShouldEqual, http.StatusTooManyRequests)
		})
	})

	Convey("Given the API behind a trusted proxy", t, func() {
		f := newFixture(t, filepath.Join(t.TempDir(), "submissions.json"),
			api.WithTrustedProxies([]netip.Prefix{netip.MustParsePrefix("192.0.2.0/24")}))
		defer func() { _ = f.svc.Stop(context.Background()) }()

		for range 5 {
			rec := f.do(http.MethodPost, "/api/submit", validBody, "X-Forwarded-For", "203.0.113.7, 192.0.2.99")
			So(rec.Code, ShouldEqual, http.StatusOK)
		}

		Convey("The nearest untrusted hop is the client", func() {
			rec := f.do(http.MethodPost, "/api/submit", validBody, "X-Forwarded-For", "203.0.113.7")
			So(rec.Code, ShouldEqual, http.StatusTooManyRequests)

			rec = f.do(http.MethodPost, "/api/submit", validBody, "X-Forwarded-For", "198.51.100.4, 192.0.2.99")
			So(rec.Code, ShouldEqual, http.StatusOK)
		})

		Convey("Hops left of the client cannot be spoofed", func() {
			rec := f.do(http.MethodPost, "/api/submit", validBody, "X-Forwarded-For", "198.51.100.4, 203.0.113.7")
			So(rec.Code, ShouldEqual, http.StatusTooManyRequests)
		})
	})

	Convey("Given a store that cannot be written", t, func() {
		f := newFixture(t, filepath.Join(t.TempDir(), "missing", "submissions.json"))
		defer func() { _ = f.svc.Stop(context.Background()) }()

		rec := f.do(http.MethodPost, "/api/submit", validBody)
		So(rec.Code, ShouldEqual, http.StatusInternalServerError)
		So(decode(rec).Error, ShouldEqual, api.MsgStoreFailure)
	})
}

func TestMonitorEndpoints(t *testing.T) {
	Convey("Given the API", t, func() {
		f := newFixture(t, filepath.Join(t.TempDir(), "submissions.json"))
		defer func() { _ = f.svc.Stop(context.Background()) }()

		Convey("A theme alert is accepted once", func() {
			body := `{"id":"a-1","message":"Theme CSS failed to load","data":{"href":"/x.css"}}`
			rec := f.do(http.MethodPost, "/api/theme-alerts", body)
			So(rec.Code, ShouldEqual, http.StatusAccepted)
			So(string(decode(rec).Data), ShouldEqual, `{"id":"a-1","severity":"high","duplicate":false}`)

			rec = f.do(http.MethodPost, "/api/theme-alerts", body)
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(string(decode(rec).Data), ShouldEqual, `{"id":"a-1","duplicate":true}`)
			So(f.svc.Alerts(), ShouldHaveLength, 1)
		})

		Convey("Alerts off schema are rejected", func() {
			rec := f.do(http.MethodPost, "/api/theme-alerts", `{"severity":"urgent"}`)
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
			msg := decode(rec).Error
			So(msg, ShouldContainSubstring, "message")
			So(msg, ShouldContainSubstring, "severity")

			rec = f.do(http.MethodPost, "/api/theme-alerts", `not json`)
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("Vitals past their targets come back as alerts", func() {
			rec := f.do(http.MethodPost, "/api/vitals", `{"fps":20,"cls":0.02}`)
			So(rec.Code, ShouldEqual, http.StatusOK)
			var data struct {
				Alerts []model.Alert `json:"alerts"`
			}
			So(json.Unmarshal(decode(rec).Data, &data), ShouldBeNil)
			So(data.Alerts, ShouldHaveLength, 1)
			So(data.Alerts[0].Message, ShouldEqual, "Low FPS detected")
		})

		Convey("Healthy vitals return an empty list", func() {
			rec := f.do(http.MethodPost, "/api/vitals", `{"fps":60}`)
			So(string(decode(rec).Data), ShouldEqual, `{"alerts":[]}`)
		})

		Convey("Negative vitals are rejected", func() {
			So(f.do(http.MethodPost, "/api/vitals", `{"fps":-1}`).Code, ShouldEqual, http.StatusBadRequest)
			So(f.do(http.MethodPost, "/api/vitals", `{}`).Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("Theme alerts and vitals share their own window", func() {
			So(f.do(http.MethodPost, "/api/vitals", `{"fps":60}`).Header().Get("RateLimit-Limit"), ShouldEqual, "60")
			So(f.do(http.MethodPost, "/api/submit", validBody).Header().Get("RateLimit-Remaining"), ShouldEqual, "4")
		})

		Convey("The theme catalog is listed", func() {
			rec := f.do(http.MethodGet, "/api/themes", "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			var themes []model.ThemeDescriptor
			So(json.Unmarshal(decode(rec).Data, &themes), ShouldBeNil)
			So(themes, ShouldHaveLength, 4)
		})

		Convey("Diagnostics run for the caller's browser", func() {
			rec := f.do(http.MethodGet, "/api/diagnostics", "", "User-Agent", "Mozilla/5.0 Firefox/120")
			So(rec.Code, ShouldEqual, http.StatusOK)
			var results []model.DiagnosticResult
			So(json.Unmarshal(decode(rec).Data, &results), ShouldBeNil)
			So(results, ShouldHaveLength, 5)
			So(results[4].Details["browser"], ShouldEqual, "Firefox")
		})

		Convey("Diagnostics take an environment in the body", func() {
			rec := f.do(http.MethodPost, "/api/diagnostics", `{"hardwareConcurrency":2}`)
			So(rec.Code, ShouldEqual, http.StatusOK)
			var results []model.DiagnosticResult
			So(json.Unmarshal(decode(rec).Data, &results), ShouldBeNil)
			So(results[1].Status, ShouldEqual, model.DiagnosticWarning)
		})
	})
}

func TestReportRateLimit(t *testing.T) {
	Convey("Given the API allowing three reports a minute", t, func() {
		f := newFixtureWith(t, filepath.Join(t.TempDir(), "submissions.json"),
			[]app.Option{app.WithAlertRateLimit(3, time.Minute)})
		defer func() { _ = f.svc.Stop(context.Background()) }()

		for i := range 3 {
			body := fmt.Sprintf(`{"id":"a-%d","message":"note"}`, i)
			So(f.do(http.MethodPost, "/api/theme-alerts", body).Code, ShouldEqual, http.StatusAccepted)
		}

		Convey("The next alert is refused", func() {
			rec := f.do(http.MethodPost, "/api/theme-alerts", `{"id":"a-9","message":"note"}`)
			So(rec.Code, ShouldEqual, http.StatusTooManyRequests)
			So(rec.Body.String(), ShouldEqual, api.MsgAlertRateLimited)
			So(rec.Header().Get("Retry-After"), ShouldEqual, "60")
			So(f.svc.Alerts(), ShouldHaveLength, 3)
		})

		Convey("Vitals draw from the same window", func() {
			rec := f.do(http.MethodPost, "/api/vitals", `{"fps":60}`)
			So(rec.Code, ShouldEqual, http.StatusTooManyRequests)
		})

		Convey("Rotating X-Forwarded-For does not help", func() {
			rec := f.do(http.MethodPost, "/api/vitals", `{"fps":60}`, "X-Forwarded-For", "10.9.9.9")
			So(rec.Code, ShouldEqual, http.StatusTooManyRequests)
		})

		Convey("Submissions keep their own budget", func() {
			So(f.do(http.MethodPost, "/api/submit", validBody).Code, ShouldEqual, http.StatusOK)
		})
	})
}

func TestAdminEndpoints(t *testing.T) {
	const secret = "test-secret"

	Convey("Without a secret the listing does not exist", t, func() {
		f := newFixture(t, filepath.Join(t.TempDir(), "s.json"))
		defer func() { _ = f.svc.Stop(context.Background()) }()
		So(f.do(http.MethodGet, "/api/requests", "").Code, ShouldEqual, http.StatusNotFound)
	})

	Convey("Given the API with a secret and one stored request", t, func() {
		f := newFixture(t, filepath.Join(t.TempDir(), "s.json"), api.WithJWTSecret(secret))
		defer func() { _ = f.svc.Stop(context.Background()) }()
		So(f.do(http.MethodPost, "/api/submit", validBody).Code, ShouldEqual, http.StatusOK)

		Convey("A valid token lists the requests", func() {
			token, err := api.IssueToken(secret, "admin", time.Hour, time.Now())
			So(err, ShouldBeNil)
			rec := f.do(http.MethodGet, "/api/requests", "", "Authorization", "Bearer "+token)
			So(rec.Code, ShouldEqual, http.StatusOK)
			var records []model.SubmissionRecord
			So(json.Unmarshal(decode(rec).Data, &records), ShouldBeNil)
			So(records, ShouldHaveLength, 1)
		})

		Convey("Missing, foreign and expired tokens are refused", func() {
			So(f.do(http.MethodGet, "/api/requests", "").Code, ShouldEqual, http.StatusUnauthorized)

			foreign, err := api.IssueToken("other", "admin", time.Hour, time.Now())
			So(err, ShouldBeNil)
			So(f.do(http.MethodGet, "/api/requests", "", "Authorization", "Bearer "+foreign).Code,
				ShouldEqual, http.StatusUnauthorized)

			expired, err := api.IssueToken(secret, "admin", time.Minute, time.Now().Add(-time.Hour))
			So(err, ShouldBeNil)
			rec := f.do(http.MethodGet, "/api/requests", "", "Authorization", "Bearer "+expired)
			So(rec.Code, ShouldEqual, http.StatusUnauthorized)
			So(decode(rec).Error, ShouldEqual, api.MsgUnauthorized)
		})
	})

	Convey("Tokens round trip", t, func() {
		token, err := api.IssueToken(secret, "ops", time.Hour, time.Now())
		So(err, ShouldBeNil)
		claims, err := api.ParseToken(secret, token)
		So(err, ShouldBeNil)
		So(claims.Subject, ShouldEqual, "ops")
		So(claims.Issuer, ShouldEqual, api.TokenIssuer)

		_, err = api.ParseToken(secret, "garbage")
		So(errors.Is(err, api.ErrUnauthorized), ShouldBeTrue)
		_, err = api.IssueToken("", "ops", time.Hour, time.Now())
		So(err, ShouldNotBeNil)
	})
}

func TestOperatorEndpoints(t *testing.T) {
	Convey("Given the API", t, func() {
		f := newFixture(t, filepath.Join(t.TempDir(), "s.json"))
		defer func() { _ = f.svc.Stop(context.Background()) }()

		Convey("Health serves the metrics exposition", func() {
			rec := f.do(http.MethodGet, "/healthz", "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, "portfolio_")
		})

		Convey("Stats are JSON", func() {
			rec := f.do(http.MethodGet, "/stats", "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			var stats map[string]any
			So(json.Unmarshal(rec.Body.Bytes(), &stats), ShouldBeNil)
			So(stats, ShouldContainKey, "storedRecords")
			So(f.do(http.MethodPost, "/stats", "").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("The dashboard is served", func() {
			rec := f.do(http.MethodGet, "/dashboard", "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, "Portfolio API")
		})
	})
}

func TestErrors(t *testing.T) {
	Convey("Wrapped errors match their kind and cause", t, func() {
		cause := errors.New("boom")
		err := api.WrapKind("api.op", api.ErrBadRequest, cause)
		So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
		So(errors.Is(err, cause), ShouldBeTrue)
		So(err.Error(), ShouldEqual, "api.op: bad request: boom")

		So(api.Wrap("api.op", nil), ShouldBeNil)
		So(api.Wrap("api.op", cause).Error(), ShouldEqual, "api.op: boom")
		So(api.NewKind("api.op", api.ErrUnauthorized).Error(), ShouldEqual, "api.op: unauthorized")
	})
}
