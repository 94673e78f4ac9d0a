package watcher

import (
	"slices"
	"sync"
	"time"
)

// DefaultDebounceWindow is how long the plan must stay quiet before it is
// re-validated. Editors often write a file in several steps.
const DefaultDebounceWindow = 150 * time.Millisecond

// Debouncer coalesces bursts of changed paths into one sorted batch.
type Debouncer struct {
	mu       sync.Mutex
	pending  map[string]struct{}
	timer    *time.Timer
	inflight sync.WaitGroup
	window   time.Duration
	callback func(paths []string)
}

// NewDebouncer creates a debouncer that calls callback once window has
// passed without a new path.
func NewDebouncer(window time.Duration, callback func(paths []string)) *Debouncer {
	return &Debouncer{
		pending:  make(map[string]struct{}),
		window:   window,
		callback: callback,
	}
}

// Add records a changed path and restarts the window.
func (d *Debouncer) Add(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending[path] = struct{}{}
	d.stopTimer()

	var t *time.Timer
	d.inflight.Add(1)
	t = time.AfterFunc(d.window, func() { d.fire(&t) })
	d.timer = t
}

// fire reads its own timer under mu, after Add has assigned it.
func (d *Debouncer) fire(t **time.Timer) {
	defer d.inflight.Done()

	d.mu.Lock()
	if d.timer == *t {
		d.timer = nil
	}
	paths := d.drain()
	d.mu.Unlock()

	d.deliver(paths)
}

// Flush delivers pending paths now and returns once every delivery started
// so far has finished.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	d.stopTimer()
	paths := d.drain()
	d.mu.Unlock()

	d.deliver(paths)
	d.inflight.Wait()
}

// Stop discards pending paths without calling back.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopTimer()
	clear(d.pending)
}

func (d *Debouncer) deliver(paths []string) {
	if len(paths) > 0 && d.callback != nil {
		d.callback(paths)
	}
}

// stopTimer must be called with mu held. A timer that already fired is left
// to finish its delivery.
func (d *Debouncer) stopTimer() {
	if d.timer == nil {
		return
	}
	if d.timer.Stop() {
		d.inflight.Done()
	}
	d.timer = nil
}

// drain must be called with mu held.
func (d *Debouncer) drain() []string {
	paths := make([]string, 0, len(d.pending))
	for p := range d.pending {
		paths = append(paths, p)
	}
	clear(d.pending)
	slices.Sort(paths)
	return paths
}
