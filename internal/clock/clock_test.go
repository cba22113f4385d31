package clock_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vytor/quizdeck/internal/clock"
)

func TestFake_AdvanceRunsDueCallbacksInOrder(t *testing.T) {
	c := clock.NewFake(time.Unix(0, 0))
	var order []int

	c.AfterFunc(2*time.Second, func() { order = append(order, 2) })
	c.AfterFunc(1*time.Second, func() { order = append(order, 1) })
	c.AfterFunc(5*time.Second, func() { order = append(order, 5) })

	c.Advance(3 * time.Second)

	assert.Equal(t, []int{1, 2}, order)
	assert.Equal(t, 1, c.Pending())
	assert.Equal(t, time.Unix(3, 0), c.Now())
}

func TestFake_StopPreventsCallback(t *testing.T) {
	c := clock.NewFake(time.Unix(0, 0))
	fired := false

	tm := c.AfterFunc(time.Second, func() { fired = true })
	assert.True(t, tm.Stop())
	assert.False(t, tm.Stop(), "second stop is a no-op")

	c.Advance(time.Minute)
	assert.False(t, fired)
}

func TestFake_ChainedCallbacksFireWithinWindow(t *testing.T) {
	c := clock.NewFake(time.Unix(0, 0))
	ticks := 0

	var tick func()
	tick = func() {
		ticks++
		if ticks < 10 {
			c.AfterFunc(time.Second, tick)
		}
	}
	c.AfterFunc(time.Second, tick)

	c.Advance(4 * time.Second)
	assert.Equal(t, 4, ticks)

	c.Advance(time.Hour)
	assert.Equal(t, 10, ticks)
	assert.Zero(t, c.Pending())
}
