package clock

import "time"

// Clock abstracts time so expiration logic stays deterministic in tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

// NewSystem returns a clock backed by time.Now.  All timestamps are
// normalized to UTC to match how the database stores them.
func NewSystem() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

// Fixed is a clock pinned to a settable instant, useful for tests that
// need to move time forward without sleeping.
type Fixed struct {
	now time.Time
}

// NewFixed returns a clock that reports the given instant until advanced.
func NewFixed(t time.Time) *Fixed {
	return &Fixed{now: t.UTC()}
}

func (f *Fixed) Now() time.Time {
	return f.now
}

// Advance moves the fixed clock forward by d.
func (f *Fixed) Advance(d time.Duration) {
	f.now = f.now.Add(d)
}

// Set pins the fixed clock to t.
func (f *Fixed) Set(t time.Time) {
	f.now = t.UTC()
}
