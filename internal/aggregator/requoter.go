package aggregator

import (
	"sync"
	"time"
)

// Requoter re-issues a quote on a fixed whole-second countdown. The owner
// stops it when the token pair changes and starts a fresh one; Reset rewinds
// the countdown without firing.
type Requoter struct {
	seconds int
	refresh func()

	mu        sync.Mutex
	remaining int
	stop      chan struct{}
	done      chan struct{}
	started   bool
}

// NewRequoter creates a countdown of `seconds` that calls refresh each time
// it reaches zero, then rewinds
func NewRequoter(seconds int, refresh func()) *Requoter {
	if seconds <= 0 {
		seconds = 1
	}
	return &Requoter{
		seconds:   seconds,
		refresh:   refresh,
		remaining: seconds,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start launches the countdown goroutine. Calling Start twice is a no-op.
func (r *Requoter) Start() {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return
	}
	r.started = true
	r.mu.Unlock()

	go r.run()
}

func (r *Requoter) run() {
	defer close(r.done)
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			r.mu.Lock()
			r.remaining--
			expired := r.remaining <= 0
			if expired {
				r.remaining = r.seconds
			}
			r.mu.Unlock()

			if expired {
				r.refresh()
			}
		}
	}
}

// Remaining returns the seconds left until the next refresh
func (r *Requoter) Remaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.remaining
}

// Reset rewinds the countdown to its full interval without firing
func (r *Requoter) Reset() {
	r.mu.Lock()
	r.remaining = r.seconds
	r.mu.Unlock()
}

// Stop tears the countdown down and waits for the goroutine to exit. Safe to
// call more than once.
func (r *Requoter) Stop() {
	r.mu.Lock()
	if !r.started {
		r.started = true
		close(r.stop)
		close(r.done)
		r.mu.Unlock()
		return
	}
	select {
	case <-r.stop:
		r.mu.Unlock()
		return
	default:
	}
	close(r.stop)
	r.mu.Unlock()
	<-r.done
}
