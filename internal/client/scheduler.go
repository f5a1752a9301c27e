package client

import (
	"sync"
	"time"
)

// Timer is a cancellable scheduled operation.
type Timer interface {
	// Stop prevents further firings. It reports whether the timer was still live.
	Stop() bool
}

// Scheduler creates the progress-tick and progress-hide timers.
type Scheduler interface {
	Every(d time.Duration, fn func()) Timer
	After(d time.Duration, fn func()) Timer
}

type realScheduler struct{}

// RealScheduler schedules on wall-clock time.
func RealScheduler() Scheduler { return realScheduler{} } //nolint:ireturn

func (realScheduler) After(d time.Duration, fn func()) Timer { //nolint:ireturn
	return time.AfterFunc(d, fn)
}

func (realScheduler) Every(d time.Duration, fn func()) Timer { //nolint:ireturn
	t := &ticker{stop: make(chan struct{})}
	tk := time.NewTicker(d)
	go func() {
		defer tk.Stop()
		for {
			select {
			case <-t.stop:
				return
			case <-tk.C:
				fn()
			}
		}
	}()
	return t
}

type ticker struct {
	once sync.Once
	stop chan struct{}
}

func (t *ticker) Stop() bool {
	stopped := false
	t.once.Do(func() {
		close(t.stop)
		stopped = true
	})
	return stopped
}
