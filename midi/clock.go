package midi

import "time"

// Timer is a pending deferred call
type Timer interface {
	Stop() bool
}

// Clock schedules deferred calls. The real one wraps time.AfterFunc.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// RealClock is the wall clock
var RealClock Clock = realClock{}
