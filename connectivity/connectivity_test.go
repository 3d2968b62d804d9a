package connectivity

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/juju/clock"
	"github.com/stretchr/testify/assert"
)

// scriptedChecker answers with the queued values, repeating the last one.
type scriptedChecker struct {
	mtx    sync.Mutex
	values []bool
	calls  int
}

func (c *scriptedChecker) IsConnected(immediate bool) bool {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	i := c.calls
	if i >= len(c.values) {
		i = len(c.values) - 1
	}

	c.calls++

	return c.values[i]
}

// instantClock fires every timer immediately.
type instantClock struct {
	clock.Clock
}

func (instantClock) After(d time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	ch <- time.Time{}

	return ch
}

func TestCurrentState(t *testing.T) {
	assert.Equal(t, Online, NewReporter(&scriptedChecker{values: []bool{true}}, nil, 0).CurrentState())
	assert.Equal(t, Offline, NewReporter(&scriptedChecker{values: []bool{false}}, nil, 0).CurrentState())
}

func TestWaitForStateChange(t *testing.T) {
	checker := &scriptedChecker{values: []bool{false, false, false, true}}
	r := NewReporter(checker, instantClock{}, time.Second)

	changed := r.WaitForStateChange(context.Background(), Offline)

	assert.True(t, changed)
	assert.Equal(t, 4, checker.calls)
	assert.Equal(t, Online, r.CurrentState())
}

func TestWaitForStateChangeReturnsImmediatelyWhenDifferent(t *testing.T) {
	checker := &scriptedChecker{values: []bool{true}}
	r := NewReporter(checker, instantClock{}, time.Second)

	assert.True(t, r.WaitForStateChange(context.Background(), Offline))
	assert.Equal(t, 1, checker.calls)
}

func TestWaitForStateChangeCancelled(t *testing.T) {
	checker := &scriptedChecker{values: []bool{false}}
	r := NewReporter(checker, nil, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	assert.False(t, r.WaitForStateChange(ctx, Offline))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "ONLINE", Online.String())
	assert.Equal(t, "OFFLINE", Offline.String())
	assert.Equal(t, "INVALID STATE", State(7).String())
}
