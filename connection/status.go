package connection

import (
	"sync"
	"time"

	"github.com/juju/clock"
	"github.com/the-lightning-land/wifid/network"
)

// StatusCache memoizes the driver's link status for an interval. Managers
// sharing one radio can share one cache.
type StatusCache struct {
	mtx      sync.Mutex
	driver   network.Driver
	clock    clock.Clock
	interval time.Duration
	next     time.Time
	last     bool
}

func NewStatusCache(driver network.Driver, interval time.Duration, clk clock.Clock) *StatusCache {
	if clk == nil {
		clk = clock.WallClock
	}

	return &StatusCache{
		driver:   driver,
		clock:    clk,
		interval: interval,
	}
}

// IsConnected queries the driver when immediate is set or the cached value
// has expired, and returns the cached value otherwise.
func (c *StatusCache) IsConnected(immediate bool) bool {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	now := c.clock.Now()

	if immediate || now.After(c.next) {
		c.next = now.Add(c.interval)
		c.last = c.query()
	}

	return c.last
}

func (c *StatusCache) query() bool {
	status, err := c.driver.Status()
	if err != nil {
		return false
	}

	switch status {
	case network.StatusConnected, network.StatusScanCompleted, network.StatusIdle:
		return true
	default:
		return false
	}
}
