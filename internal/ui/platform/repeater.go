package platform

import (
	"sync"
	"time"
)

type repeater struct {
	mu       sync.Mutex
	clock    Clock
	interval time.Duration
	fn       func()
	timer    Timer
	stopped  bool
}

func (r *repeater) arm() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return
	}
	r.timer = r.clock.AfterFunc(r.interval, r.tick)
}

func (r *repeater) tick() {
	r.mu.Lock()
	stopped := r.stopped
	r.mu.Unlock()
	if stopped {
		return
	}
	r.fn()
	r.arm()
}

func (r *repeater) stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopped = true
	if r.timer != nil {
		r.timer.Stop()
	}
}
