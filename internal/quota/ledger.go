// Package quota tracks per-key request consumption against fixed daily and
// per-minute windows, mirroring how the upstream API accounts usage.
package quota

import (
	"sync"
	"time"
)

// Ledger is the shared consumption counter for a pool of API keys. A
// reservation consumes capacity in both windows atomically or not at all;
// consumption is never refunded, since a failed upstream call still counts
// against the real quota.
type Ledger struct {
	mu          sync.Mutex
	dailyLimit  int
	minuteLimit int
	now         func() time.Time
	keys        map[string]*keyState
}

type keyState struct {
	dayStart    time.Time
	dayCount    int
	minuteStart time.Time
	minuteCount int

	// exhaustedUntil pins the key ineligible after the backend reported
	// quota exhaustion, regardless of the local counters.
	exhaustedUntil time.Time
}

// NewLedger creates a ledger enforcing the given per-key limits.
func NewLedger(dailyLimit, minuteLimit int) *Ledger {
	return &Ledger{
		dailyLimit:  dailyLimit,
		minuteLimit: minuteLimit,
		now:         time.Now,
		keys:        make(map[string]*keyState),
	}
}

// Reserve checks capacity in both windows for the key and, if available,
// increments both counters and returns true. On any shortfall it returns
// false without side effects.
func (l *Ledger) Reserve(keyID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	t := l.now()
	st := l.state(keyID)
	l.roll(st, t)

	if t.Before(st.exhaustedUntil) {
		return false
	}
	if st.dayCount >= l.dailyLimit || st.minuteCount >= l.minuteLimit {
		return false
	}
	st.dayCount++
	st.minuteCount++
	return true
}

// MarkExhausted makes the key ineligible for the remainder of its daily
// window. Called when the backend reports quota exhaustion even though the
// local ledger still had headroom.
func (l *Ledger) MarkExhausted(keyID string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	t := l.now()
	st := l.state(keyID)
	st.exhaustedUntil = dayStart(t).AddDate(0, 0, 1)
}

// Usage reports the current counters for the key, for logging.
func (l *Ledger) Usage(keyID string) (day, minute int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	st := l.state(keyID)
	l.roll(st, l.now())
	return st.dayCount, st.minuteCount
}

func (l *Ledger) state(keyID string) *keyState {
	st, ok := l.keys[keyID]
	if !ok {
		st = &keyState{}
		l.keys[keyID] = st
	}
	return st
}

// roll resets a window's counter once wall-clock time crosses its boundary.
func (l *Ledger) roll(st *keyState, t time.Time) {
	if ds := dayStart(t); !ds.Equal(st.dayStart) {
		st.dayStart = ds
		st.dayCount = 0
	}
	if ms := t.Truncate(time.Minute); !ms.Equal(st.minuteStart) {
		st.minuteStart = ms
		st.minuteCount = 0
	}
}

func dayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
