// Package debounce collapses bursts of calls into one trailing invocation.
package debounce

import (
	"sync"
	"time"
)

// DefaultWindow is the quiescence window used for keystroke searches.
const DefaultWindow = 300 * time.Millisecond

// Debouncer runs a scheduled action once the window has elapsed without a
// newer Schedule call. It owns at most one pending timer.
type Debouncer struct {
	mu      sync.Mutex
	window  time.Duration
	timer   *time.Timer
	seq     uint64
	pending bool
}

// New creates a debouncer with the given window; non-positive windows use
// DefaultWindow.
func New(window time.Duration) *Debouncer {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Debouncer{window: window}
}

// Schedule arms fn to run one window from now, discarding any pending action.
func (d *Debouncer) Schedule(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.cancelLocked()
	d.seq++
	seq := d.seq
	d.pending = true
	d.timer = time.AfterFunc(d.window, func() {
		d.mu.Lock()
		// a newer Schedule or Cancel won the race with this timer
		if seq != d.seq || !d.pending {
			d.mu.Unlock()
			return
		}
		d.pending = false
		d.timer = nil
		d.mu.Unlock()
		fn()
	})
}

// Cancel discards the pending action, if any. It reports whether one was
// discarded.
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cancelLocked()
}

func (d *Debouncer) cancelLocked() bool {
	if !d.pending {
		return false
	}
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = false
	d.seq++
	return true
}

// Pending reports whether an action is waiting to run.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

// SetWindow changes the window for subsequent Schedule calls.
func (d *Debouncer) SetWindow(window time.Duration) {
	if window <= 0 {
		return
	}
	d.mu.Lock()
	d.window = window
	d.mu.Unlock()
}

func (d *Debouncer) Window() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.window
}
