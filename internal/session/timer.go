package session

import (
	"sync"
	"time"
)

// Countdown is a cancellable per-question timer. It ticks once per interval
// (one second in production), exposes the remaining seconds for the read
// model, and invokes the expiry callback with the question index it was
// armed for so stale expiries can be discarded. It is armed and cancelled
// only by state-machine transitions, never by rendering concerns.
type Countdown struct {
	mu        sync.Mutex
	index     int
	remaining int
	stop      chan struct{}
	stopped   bool
	onExpire  func(questionIndex int)
	interval  time.Duration
}

// NewCountdown arms a countdown for the question at index with the given
// duration in seconds. A non-positive duration expires on the first tick.
func NewCountdown(index, seconds int, interval time.Duration, onExpire func(questionIndex int)) *Countdown {
	if interval <= 0 {
		interval = time.Second
	}

	c := &Countdown{
		index:     index,
		remaining: seconds,
		stop:      make(chan struct{}),
		onExpire:  onExpire,
		interval:  interval,
	}

	go c.run()
	return c
}

func (c *Countdown) run() {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			if c.tick() {
				c.onExpire(c.index)
				return
			}
		}
	}
}

// tick decrements the counter and reports expiry.
func (c *Countdown) tick() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped {
		return false
	}
	c.remaining--
	if c.remaining <= 0 {
		c.stopped = true
		return true
	}
	return false
}

// Remaining returns the seconds left on the countdown.
func (c *Countdown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.remaining < 0 {
		return 0
	}
	return c.remaining
}

// Index returns the question index the countdown was armed for.
func (c *Countdown) Index() int {
	return c.index
}

// Cancel stops the countdown. Safe to call more than once; a cancelled
// countdown never fires its expiry callback.
func (c *Countdown) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped {
		return
	}
	c.stopped = true
	close(c.stop)
}
