package worker_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/okian/portfolio/internal/adapters/mq/queue"
	"github.com/okian/portfolio/internal/adapters/mq/worker"
	"github.com/okian/portfolio/internal/domain/model"
	"github.com/okian/portfolio/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
	)
}

type recorder struct {
	mu   sync.Mutex
	ids  []string
	fail bool
}

func (r *recorder) Deliver(_ context.Context, a model.Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, a.ID)
	if r.fail {
		return errors.New("endpoint down")
	}
	return nil
}

func (r *recorder) seen() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.ids...)
}

func TestPool(t *testing.T) {
	ctx := context.Background()

	Convey("Given a pool over a queue", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(8))
		rec := &recorder{}
		pool := worker.NewPool(q, rec, worker.WithWorkers(3), worker.WithLogger(logger.Nop()))
		pool.Start(ctx)
		pool.Start(ctx)

		Convey("Shutdown drains every queued alert", func() {
			for _, id := range []string{"a", "b", "c", "d"} {
				So(q.Enqueue(ctx, model.Alert{ID: id}), ShouldBeNil)
			}
			sctx, cancel := context.WithTimeout(ctx, 2*time.Second)
			defer cancel()
			So(pool.Shutdown(sctx), ShouldBeNil)
			So(rec.seen(), ShouldHaveLength, 4)
		})

		Convey("Failed deliveries are dropped without retry", func() {
			rec.mu.Lock()
			rec.fail = true
			rec.mu.Unlock()
			So(q.Enqueue(ctx, model.Alert{ID: "x"}), ShouldBeNil)
			So(pool.Shutdown(ctx), ShouldBeNil)
			So(rec.seen(), ShouldResemble, []string{"x"})
		})
	})

	Convey("Shutdown of a pool that never started returns at once", t, func() {
		q := queue.NewInMemoryQueue()
		pool := worker.NewPool(q, &recorder{})
		So(pool.Shutdown(ctx), ShouldBeNil)
	})
}

func TestHTTPDeliverer(t *testing.T) {
	Convey("Given an alert endpoint", t, func() {
		var got model.Alert
		status := http.StatusNoContent
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewDecoder(r.Body).Decode(&got)
			w.WriteHeader(status)
		}))
		defer srv.Close()
		d := worker.NewHTTPDeliverer(srv.URL, time.Second)

		Convey("The alert is posted as JSON", func() {
			err := d.Deliver(context.Background(), model.Alert{ID: "1", Message: "Low FPS detected", Severity: model.SeverityMedium})
			So(err, ShouldBeNil)
			So(got.Message, ShouldEqual, "Low FPS detected")
			So(got.Severity, ShouldEqual, model.SeverityMedium)
		})

		Convey("A server error is reported", func() {
			status = http.StatusBadGateway
			err := d.Deliver(context.Background(), model.Alert{ID: "1"})
			So(err, ShouldNotBeNil)
		})
	})

	Convey("LogDeliverer never fails", t, func() {
		d := worker.LogDeliverer{Logger: logger.Nop()}
		So(d.Deliver(context.Background(), model.Alert{ID: "1"}), ShouldBeNil)
	})
}
