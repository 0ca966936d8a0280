package service

import "time"

// Scheduler abstracts waiting so the poller can be driven by a virtual clock.
type Scheduler interface {
	After(d time.Duration) <-chan time.Time
	Now() time.Time
}

type realScheduler struct{}

// RealScheduler waits on the wall clock.
func RealScheduler() Scheduler {
	return realScheduler{}
}

func (realScheduler) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

func (realScheduler) Now() time.Time {
	return time.Now()
}
