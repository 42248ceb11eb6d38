// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"sync"
	"time"
)

// Ticker re-runs a lifecycle computation on a fixed interval. Time passing
// is never pushed to callers, so anything that depends on status has to be
// recomputed periodically. The owner must call Stop when it is torn down.
type Ticker struct {
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// StartTicker calls fn with clock.Now() immediately and then every interval
// until Stop is called. Calls never overlap.
func StartTicker(clock Clock, interval time.Duration, fn func(now time.Time)) *Ticker {
	if clock == nil {
		clock = SystemClock
	}
	t := &Ticker{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}

	go func() {
		defer close(t.done)
		fn(clock.Now())

		tk := time.NewTicker(interval)
		defer tk.Stop()
		for {
			select {
			case <-t.stop:
				return
			case <-tk.C:
				fn(clock.Now())
			}
		}
	}()

	return t
}

// Stop ends the ticker and waits for an in-progress call to return.
// Safe to call more than once.
func (t *Ticker) Stop() {
	t.stopOnce.Do(func() { close(t.stop) })
	<-t.done
}
