package ratelimit_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/portfolio/internal/domain/ratelimit"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func TestLimiter(t *testing.T) {
	Convey("Given a limiter of 5 per minute on a fake clock", t, func() {
		clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
		l := ratelimit.New(ratelimit.WithClock(clock.Now))

		So(l.Limit(), ShouldEqual, 5)
		So(l.Window(), ShouldEqual, time.Minute)

		for i := 0; i < 5; i++ {
			info := l.Allow("1.2.3.4")
			So(info.Allowed, ShouldBeTrue)
			So(info.Remaining, ShouldEqual, 4-i)
			clock.Advance(time.Second)
		}

		Convey("The sixth request inside the window is rejected", func() {
			info, err := l.Check("1.2.3.4")
			So(errors.Is(err, ratelimit.ErrLimited), ShouldBeTrue)
			So(info.Allowed, ShouldBeFalse)
			So(info.RetryAfter, ShouldEqual, 55*time.Second)
		})

		Convey("Other clients have their own budget", func() {
			So(l.Allow("5.6.7.8").Allowed, ShouldBeTrue)
		})

		Convey("The window slides one request at a time", func() {
			clock.Advance(55 * time.Second) // first hit is now exactly a minute old
			So(l.Allow("1.2.3.4").Allowed, ShouldBeTrue)
			So(l.Allow("1.2.3.4").Allowed, ShouldBeFalse)
		})

		Convey("After the full window every slot frees up", func() {
			clock.Advance(time.Minute)
			So(l.Allow("1.2.3.4").Allowed, ShouldBeTrue)
			So(l.Sweep(), ShouldEqual, 1)
		})

		Convey("Sweep forgets idle clients", func() {
			clock.Advance(2 * time.Minute)
			So(l.Sweep(), ShouldEqual, 0)
		})
	})

	Convey("Options reject non-positive values", t, func() {
		l := ratelimit.New(ratelimit.WithLimit(0), ratelimit.WithWindow(-time.Second))
		So(l.Limit(), ShouldEqual, ratelimit.DefaultLimit)
		So(l.Window(), ShouldEqual, ratelimit.DefaultWindow)
	})
}
