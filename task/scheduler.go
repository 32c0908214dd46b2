package task

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Scheduler runs one-off and periodic background tasks. Independent
// tasks run concurrently; ordering is only guaranteed between the
// firings of a single repeating task.
type Scheduler struct {
	log zerolog.Logger

	mu      sync.Mutex
	handles []*Handle
	stopped bool

	wg sync.WaitGroup
}

func NewScheduler(log zerolog.Logger) *Scheduler {
	return &Scheduler{log: log}
}

// RunOnce executes fn once, off the calling goroutine.
func (scheduler *Scheduler) RunOnce(fn func()) {
	scheduler.mu.Lock()
	if scheduler.stopped {
		scheduler.mu.Unlock()
		return
	}
	scheduler.wg.Add(1)
	scheduler.mu.Unlock()

	go func() {
		defer scheduler.wg.Done()
		fn()
	}()
}

// RunRepeating executes fn every interval until the returned handle is
// cancelled. Cancellation prevents future firings but never interrupts
// a firing already in progress.
func (scheduler *Scheduler) RunRepeating(fn func(), interval time.Duration) *Handle {
	handle := &Handle{done: make(chan struct{})}

	scheduler.mu.Lock()
	if scheduler.stopped {
		scheduler.mu.Unlock()
		handle.Cancel()
		return handle
	}
	scheduler.handles = append(scheduler.handles, handle)
	scheduler.wg.Add(1)
	scheduler.mu.Unlock()

	go func() {
		defer scheduler.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-handle.done:
				return
			case <-ticker.C:
				select {
				case <-handle.done:
					return
				default:
				}
				fn()
			}
		}
	}()

	return handle
}

// Stop cancels all repeating tasks and waits for running executions to
// finish. The scheduler accepts no new tasks afterwards.
func (scheduler *Scheduler) Stop() {
	scheduler.mu.Lock()
	if scheduler.stopped {
		scheduler.mu.Unlock()
		return
	}
	scheduler.stopped = true
	handles := scheduler.handles
	scheduler.handles = nil
	scheduler.mu.Unlock()

	for _, handle := range handles {
		handle.Cancel()
	}
	scheduler.wg.Wait()
	scheduler.log.Debug().Msg("scheduler stopped")
}

// Handle cancels a repeating task. Safe to use from any goroutine, any
// number of times.
type Handle struct {
	once sync.Once
	done chan struct{}
}

func (handle *Handle) Cancel() {
	handle.once.Do(func() {
		close(handle.done)
	})
}

// Cancelled reports whether the task was cancelled.
func (handle *Handle) Cancelled() bool {
	select {
	case <-handle.done:
		return true
	default:
		return false
	}
}
