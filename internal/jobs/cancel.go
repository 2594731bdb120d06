package jobs

import (
	"sync"
	"sync/atomic"
)

// Controller holds the process-wide stop flag and per-job cancellation
// flags. Workers consult it at chunk boundaries only; larger chunk
// sizes therefore increase worst-case cancellation latency.
type Controller struct {
	stop atomic.Bool

	mu        sync.Mutex
	cancelled map[string]struct{}
}

// NewController creates a controller with no flags set.
func NewController() *Controller {
	return &Controller{cancelled: make(map[string]struct{})}
}

// RequestStop sets the global stop flag. All workers observe it at
// their next checkpoint; it is never cleared.
func (c *Controller) RequestStop() {
	c.stop.Store(true)
}

// Stopped reports whether a global stop has been requested.
func (c *Controller) Stopped() bool {
	return c.stop.Load()
}

// RequestCancel flags a single job for cancellation.
func (c *Controller) RequestCancel(jobID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelled[jobID] = struct{}{}
}

// Cancelled reports whether the given job should stop, either because
// it was individually cancelled or because of a global stop.
func (c *Controller) Cancelled(jobID string) bool {
	if c.stop.Load() {
		return true
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.cancelled[jobID]
	return ok
}
