package evloop

import "sync"

// Tracker counts goroutines the loop has spawned so shutdown can wait for
// them. Detached tasks (timers) and blocking tasks (file writes) get
// separate trackers so the loop can reason about them independently.
type Tracker struct {
	wg sync.WaitGroup
}

// Go runs fn on its own goroutine and tracks its completion.
func (t *Tracker) Go(fn func()) {
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		fn()
	}()
}

// Wait blocks until every tracked goroutine has finished. Tasks must
// observe cancellation themselves; Wait does not interrupt them.
func (t *Tracker) Wait() {
	t.wg.Wait()
}
