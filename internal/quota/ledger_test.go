package quota

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeClock lets tests move wall-clock time forward deterministically.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLedger(daily, minute int) (*Ledger, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)}
	l := NewLedger(daily, minute)
	l.now = clock.now
	return l, clock
}

func TestReserve_DailyLimit(t *testing.T) {
	l, clock := newTestLedger(3, 100)

	for i := 0; i < 3; i++ {
		assert.True(t, l.Reserve("k1"), "reservation %d should succeed", i+1)
		clock.advance(time.Minute) // keep the per-minute window out of the way
	}
	assert.False(t, l.Reserve("k1"), "fourth reservation must fail")

	// Other keys are unaffected.
	assert.True(t, l.Reserve("k2"))

	// Crossing the day boundary restores capacity.
	clock.advance(24 * time.Hour)
	assert.True(t, l.Reserve("k1"))
}

func TestReserve_MinuteLimit(t *testing.T) {
	l, clock := newTestLedger(100, 2)

	assert.True(t, l.Reserve("k1"))
	assert.True(t, l.Reserve("k1"))
	assert.False(t, l.Reserve("k1"), "per-minute window full")

	clock.advance(time.Minute)
	assert.True(t, l.Reserve("k1"), "per-minute window rolled over")
}

func TestReserve_FailureHasNoSideEffects(t *testing.T) {
	l, clock := newTestLedger(5, 1)

	assert.True(t, l.Reserve("k1"))
	day, _ := l.Usage("k1")
	assert.Equal(t, 1, day)

	// Minute window is full: the failed reserve must not consume daily quota.
	assert.False(t, l.Reserve("k1"))
	day, _ = l.Usage("k1")
	assert.Equal(t, 1, day)

	clock.advance(time.Minute)
	assert.True(t, l.Reserve("k1"))
	day, _ = l.Usage("k1")
	assert.Equal(t, 2, day)
}

func TestMarkExhausted_PinsKeyUntilNextDay(t *testing.T) {
	l, clock := newTestLedger(100, 100)

	assert.True(t, l.Reserve("k1"))
	l.MarkExhausted("k1")
	assert.False(t, l.Reserve("k1"), "exhausted key must be ineligible")

	// Even with fresh minute windows the key stays out for the day.
	clock.advance(2 * time.Minute)
	assert.False(t, l.Reserve("k1"))

	clock.advance(24 * time.Hour)
	assert.True(t, l.Reserve("k1"), "key becomes eligible after the daily boundary")
}

func TestReserve_DailyWindowOutlivesMinuteWindow(t *testing.T) {
	l, clock := newTestLedger(1, 10)

	assert.True(t, l.Reserve("k1"))
	clock.advance(5 * time.Minute)
	assert.False(t, l.Reserve("k1"),
		"daily window still open: per-minute capacity alone is not enough")
}
