package fs

import (
	"sync"
	"time"
)

// debouncer coalesces bursts of work per key: only the last callback
// scheduled for a key within the window runs.
type debouncer struct {
	window  time.Duration
	mu      sync.Mutex
	timers  map[string]*time.Timer
	stopped bool
	wg      sync.WaitGroup
}

func newDebouncer(window time.Duration) *debouncer {
	return &debouncer{
		window: window,
		timers: make(map[string]*time.Timer),
	}
}

// add schedules fn for key, replacing whatever was pending for it.
// It is a no-op once the debouncer is stopped.
func (d *debouncer) add(key string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if prev, ok := d.timers[key]; ok {
		if prev.Stop() {
			d.wg.Done()
		}
	}

	d.wg.Add(1)
	var t *time.Timer
	t = time.AfterFunc(d.window, func() {
		defer d.wg.Done()

		// add holds the lock until t is assigned.
		d.mu.Lock()
		if d.stopped {
			d.mu.Unlock()
			return
		}
		if d.timers[key] == t {
			delete(d.timers, key)
		}
		d.mu.Unlock()

		fn()
	})
	d.timers[key] = t
}

// stopAndWait rejects new work, cancels pending timers and waits up to
// timeout for callbacks already running.
func (d *debouncer) stopAndWait(timeout time.Duration) {
	d.mu.Lock()
	d.stopped = true
	for key, t := range d.timers {
		if t.Stop() {
			d.wg.Done()
		}
		delete(d.timers, key)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
	}
}
