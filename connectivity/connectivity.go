package connectivity

import (
	"context"
	"time"

	"github.com/juju/clock"
)

const DefaultInterval = 1 * time.Second

type State int

const (
	Offline State = iota
	Online
)

func (s State) String() string {
	switch s {
	case Offline:
		return "OFFLINE"
	case Online:
		return "ONLINE"
	default:
		return "INVALID STATE"
	}
}

type Reporter interface {
	CurrentState() State
	WaitForStateChange(context.Context, State) bool
}

// Checker reports whether the station link is up. A connection.Manager
// satisfies it.
type Checker interface {
	IsConnected(immediate bool) bool
}

// LinkReporter derives the connectivity state from a Checker.
type LinkReporter struct {
	checker  Checker
	clock    clock.Clock
	interval time.Duration
}

// check LinkReporter compliance to its interface during compile time
var _ Reporter = (*LinkReporter)(nil)

func NewReporter(checker Checker, clk clock.Clock, interval time.Duration) *LinkReporter {
	if clk == nil {
		clk = clock.WallClock
	}

	if interval <= 0 {
		interval = DefaultInterval
	}

	return &LinkReporter{
		checker:  checker,
		clock:    clk,
		interval: interval,
	}
}

// CurrentState may return a value cached by the checker.
func (r *LinkReporter) CurrentState() State {
	if r.checker.IsConnected(false) {
		return Online
	}

	return Offline
}

// WaitForStateChange blocks until the state differs from state and reports
// true, or returns false once ctx is done.
func (r *LinkReporter) WaitForStateChange(ctx context.Context, state State) bool {
	for {
		if r.CurrentState() != state {
			return true
		}

		select {
		case <-ctx.Done():
			return false
		case <-r.clock.After(r.interval):
		}
	}
}
