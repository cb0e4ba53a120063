// Package watcher reloads an input file when it changes on disk.
package watcher

import (
	"sync"
	"time"
)

// DefaultDebounce is used when a zero window is configured.
const DefaultDebounce = 250 * time.Millisecond

// Debouncer coalesces bursts of file events into one callback.
// Only the most recently triggered callback runs.
type Debouncer struct {
	window time.Duration
	timer  *time.Timer
	mu     sync.Mutex
	seq    uint64
}

// NewDebouncer creates a Debouncer. A zero window means DefaultDebounce.
func NewDebouncer(window time.Duration) *Debouncer {
	if window <= 0 {
		window = DefaultDebounce
	}
	return &Debouncer{window: window}
}

// Trigger schedules fn after the window, replacing any pending callback.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	seq := d.seq

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, func() {
		d.mu.Lock()
		current := seq == d.seq
		if current {
			d.timer = nil
		}
		d.mu.Unlock()

		// A stale timer can fire after Stop lost the race.
		if current {
			fn()
		}
	})
}

// Cancel drops any pending callback.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Window returns the debounce window.
func (d *Debouncer) Window() time.Duration {
	return d.window
}
