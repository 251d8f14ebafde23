package simulator

import "time"

// Clock abstracts wall time and timer scheduling so tests can drive the
// activity state machine with virtual time instead of sleeps.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// AfterFunc schedules f to run after d and returns a handle to stop it.
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a cancelable scheduled function.
type Timer interface {
	// Stop prevents the function from firing. Returns false if it already
	// fired or was stopped.
	Stop() bool
}

// RealClock uses the time package.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

func (RealClock) AfterFunc(d time.Duration, f func()) Timer {
	return realTimer{t: time.AfterFunc(d, f)}
}

type realTimer struct {
	t *time.Timer
}

func (r realTimer) Stop() bool { return r.t.Stop() }

// Timestamp formats t the way the capability contract expects: RFC3339, UTC,
// second precision.
func Timestamp(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(time.RFC3339)
}
