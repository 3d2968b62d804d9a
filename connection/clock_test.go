package connection

import (
	"sync"
	"time"

	"github.com/juju/clock"
)

// fakeClock advances its own time whenever a caller waits on it.
type fakeClock struct {
	clock.Clock

	mtx    sync.Mutex
	now    time.Time
	waited time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{
		now: time.Date(2019, 3, 28, 12, 0, 0, 0, time.UTC),
	}
}

func (c *fakeClock) Now() time.Time {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	return c.now
}

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.mtx.Lock()
	c.now = c.now.Add(d)
	c.waited += d
	now := c.now
	c.mtx.Unlock()

	ch := make(chan time.Time, 1)
	ch <- now

	return ch
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	c.now = c.now.Add(d)
}

func (c *fakeClock) Waited() time.Duration {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	return c.waited
}

// gatedClock holds every wait until gate is closed and signals waiting on
// the first one.
type gatedClock struct {
	clock.Clock

	gate    chan struct{}
	waiting chan struct{}
}

func newGatedClock() *gatedClock {
	return &gatedClock{
		gate:    make(chan struct{}),
		waiting: make(chan struct{}, 1),
	}
}

func (c *gatedClock) Now() time.Time {
	return time.Time{}
}

func (c *gatedClock) After(d time.Duration) <-chan time.Time {
	select {
	case c.waiting <- struct{}{}:
	default:
	}

	ch := make(chan time.Time, 1)

	go func() {
		<-c.gate
		ch <- time.Time{}
	}()

	return ch
}
