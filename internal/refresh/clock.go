package refresh

import (
	"sync"
	"time"
)

// Timer is a running periodic callback. Stop is idempotent.
type Timer interface {
	Stop()
}

// Clock is the time source for the orchestrator. Every calls fn every d until
// the returned Timer is stopped.
type Clock interface {
	Now() time.Time
	Every(d time.Duration, fn func()) Timer
}

// SystemClock is the wall clock.
func SystemClock() Clock { return systemClock{} }

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) Every(d time.Duration, fn func()) Timer {
	t := &tickerTimer{ticker: time.NewTicker(d), done: make(chan struct{})}
	go func() {
		for {
			select {
			case <-t.done:
				return
			case <-t.ticker.C:
				fn()
			}
		}
	}()
	return t
}

type tickerTimer struct {
	ticker *time.Ticker
	done   chan struct{}
	once   sync.Once
}

func (t *tickerTimer) Stop() {
	t.once.Do(func() {
		t.ticker.Stop()
		close(t.done)
	})
}
