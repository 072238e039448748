package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManualSchedulerFiresInOrder(t *testing.T) {
	clock := NewManualClock(time.Unix(0, 0))
	s := NewManualScheduler(clock)
	var got []string
	s.Every(2*time.Second, func() { got = append(got, "slow@"+clock.Now().Format("05")) })
	s.Every(time.Second, func() { got = append(got, "fast@"+clock.Now().Format("05")) })

	s.Advance(2 * time.Second)
	assert.Equal(t, []string{"fast@01", "slow@02", "fast@02"}, got)
	assert.Equal(t, time.Unix(2, 0), clock.Now())
}

func TestManualSchedulerCancel(t *testing.T) {
	clock := NewManualClock(time.Unix(0, 0))
	s := NewManualScheduler(clock)
	count := 0
	var cancel func()
	cancel = s.Every(time.Second, func() {
		count++
		if count == 2 {
			cancel()
		}
	})
	s.Advance(5 * time.Second)
	assert.Equal(t, 2, count)
	assert.Zero(t, s.Active())
}

func TestManualSchedulerIgnoresNonPositiveInterval(t *testing.T) {
	clock := NewManualClock(time.Unix(0, 0))
	s := NewManualScheduler(clock)
	s.Every(0, func() { t.Fatalf("must not fire") })
	s.Advance(time.Second)
	assert.Zero(t, s.Active())
}
