package netconn

import "time"

// Timer is a stoppable one-shot timer.
type Timer interface {
	Stop() bool
}

// Clock abstracts wall time and timer scheduling so that reconnect and
// connect-timeout behavior can be driven deterministically in tests.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

// RealClock returns the wall Clock backed by the time package.
func RealClock() Clock { return realClock{} }

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
