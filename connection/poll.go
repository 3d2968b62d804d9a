package connection

import (
	"time"

	"github.com/juju/clock"
)

// poll evaluates cond until it holds, waiting interval between evaluations.
// It gives up once the waits add up to timeout.
func poll(clk clock.Clock, interval time.Duration, timeout time.Duration, cond func() bool) bool {
	if interval <= 0 {
		return cond()
	}

	countdown := timeout

	for !cond() {
		<-clk.After(interval)

		countdown -= interval
		if countdown <= 0 {
			return false
		}
	}

	return true
}
