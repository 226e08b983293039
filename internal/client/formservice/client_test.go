package formservice_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"go.uber.org/goleak"

	"github.com/okian/portfolio/internal/client/formservice"
	"github.com/okian/portfolio/internal/domain/model"
	"github.com/okian/portfolio/internal/ui/platform"
	"github.com/okian/portfolio/internal/ui/platform/platformtest"
	"github.com/okian/portfolio/internal/ui/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"))
}

type toast struct {
	kind, title, message string
}

type recorder struct {
	mu     sync.Mutex
	toasts []toast
}

func (r *recorder) ShowSuccess(title, message string) string {
	return r.add("success", title, message)
}

func (r *recorder) ShowError(title, message string) string {
	return r.add("error", title, message)
}

func (r *recorder) add(kind, title, message string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toasts = append(r.toasts, toast{kind, title, message})
	return kind
}

func (r *recorder) all() []toast {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]toast(nil), r.toasts...)
}

func TestSubmitPortfolioRequest(t *testing.T) {
	Convey("Given a client pointed at a fake API", t, func() {
		ctx := context.Background()
		var (
			gotPath string
			gotType string
			gotBody map[string]any
		)
		reply := `{"success":true}`
		status := http.StatusOK
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotType = r.Header.Get("Content-Type")
			_ = json.NewDecoder(r.Body).Decode(&gotBody)
			w.WriteHeader(status)
			_, _ = w.Write([]byte(reply))
		}))
		defer srv.Close()

		notes := &recorder{}
		client := formservice.New(srv.URL+"/api/", notes, formservice.WithTimeout(time.Second))
		req := formservice.PortfolioRequest{
			FirstName:    "Ada",
			LastName:     "Lovelace",
			Email:        "ada@example.com",
			ResumeHeader: "Engineer",
			Skills:       "Go",
		}

		Convey("An accepted request shows the thank-you toast", func() {
			res, err := client.SubmitPortfolioRequest(ctx, req)

			So(err, ShouldBeNil)
			So(res.Success, ShouldBeTrue)
			So(res.Data["success"], ShouldEqual, true)
			So(gotPath, ShouldEqual, "/api/submit")
			So(gotType, ShouldEqual, "application/json")
			So(gotBody["firstName"], ShouldEqual, "Ada")
			So(gotBody, ShouldNotContainKey, "_gotcha")
			So(notes.all(), ShouldResemble, []toast{{
				"success", "Submission Successful", "Thank you for your interest! We will contact you soon.",
			}})
		})

		Convey("A rejection shows the server message and returns no error", func() {
			status = http.StatusBadRequest
			reply = `{"success":false,"error":"Invalid email address."}`

			res, err := client.SubmitPortfolioRequest(ctx, req)

			So(err, ShouldBeNil)
			So(res.Success, ShouldBeFalse)
			So(res.Error, ShouldEqual, "Invalid email address.")
			So(notes.all(), ShouldResemble, []toast{{"error", "Submission Failed", "Invalid email address."}})
		})

		Convey("A rejection without a message falls back to the form text", func() {
			reply = `{"success":false}`

			res, err := client.SubmitPortfolioRequest(ctx, req)

			So(err, ShouldBeNil)
			So(res.Error, ShouldEqual, "Submission failed. Please try again.")
		})

		Convey("A plain-text reply is a network error", func() {
			status = http.StatusTooManyRequests
			reply = "Too many submissions, please try again later."

			_, err := client.SubmitPortfolioRequest(ctx, req)

			So(errors.Is(err, formservice.ErrNetwork), ShouldBeTrue)
			So(notes.all(), ShouldResemble, []toast{{"error", "Connection Error", formservice.MsgNetwork}})
		})

		Convey("Generic submissions use the default texts", func() {
			res, err := client.Submit(ctx, "contact", map[string]string{"msg": "hi"}, formservice.Messages{})

			So(err, ShouldBeNil)
			So(res.Success, ShouldBeTrue)
			So(gotPath, ShouldEqual, "/api/contact")
			So(notes.all(), ShouldResemble, []toast{{"success", "Success", "Form submitted successfully!"}})
		})
	})

	Convey("Given an unreachable API", t, func() {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		notes := &recorder{}
		client := formservice.New(url, notes)

		_, err := client.SubmitPortfolioRequest(context.Background(), formservice.PortfolioRequest{})

		So(errors.Is(err, formservice.ErrNetwork), ShouldBeTrue)
		So(notes.all(), ShouldHaveLength, 1)
		So(notes.all()[0].title, ShouldEqual, "Connection Error")
	})

	Convey("Given no notifier", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"success":true}`))
		}))
		defer srv.Close()

		res, err := formservice.New(srv.URL, nil).Submit(context.Background(), "submit", struct{}{}, formservice.DefaultMessages)

		So(err, ShouldBeNil)
		So(res.Success, ShouldBeTrue)
	})

	Convey("Given the UI store as the notifier", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"success":false,"error":"All fields are required."}`))
		}))
		defer srv.Close()

		doc, err := platform.ParseHTMLString(`<html><body></body></html>`)
		So(err, ShouldBeNil)
		clock := platformtest.NewManualClock(time.Unix(0, 0))
		ui := store.New(doc, platform.NewMemoryStorage(nil), store.WithClock(clock))

		_, err = formservice.New(srv.URL, ui).SubmitPortfolioRequest(context.Background(), formservice.PortfolioRequest{})
		So(err, ShouldBeNil)

		notes := ui.Notifications()
		So(notes, ShouldHaveLength, 1)
		So(notes[0].Type, ShouldEqual, model.NotificationError)
		So(notes[0].Title, ShouldEqual, "Submission Failed")
		So(notes[0].Message, ShouldEqual, "All fields are required.")

		clock.Advance(store.ErrorNotificationDuration)
		So(ui.Notifications(), ShouldBeEmpty)
	})
}
