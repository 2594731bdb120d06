package jobs

import (
	"errors"
	"sync"
)

// ErrQueueClosed is returned by Enqueue after Close; enqueueing on a
// closed queue is a caller bug.
var ErrQueueClosed = errors.New("enqueue on closed job queue")

// Queue is a thread-safe FIFO holding area for pending jobs. Dequeue
// blocks until a job arrives or the queue is closed and drained.
// FIFO order is guaranteed relative to a single producer's call order.
type Queue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	jobs   []*FileJob
	closed bool
}

// NewQueue creates an open, empty queue.
func NewQueue() *Queue {
	q := &Queue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Enqueue appends a job to the tail and wakes one blocked consumer.
func (q *Queue) Enqueue(job *FileJob) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}

	q.jobs = append(q.jobs, job)
	q.cond.Signal()
	return nil
}

// Dequeue removes and returns the head job, blocking while the queue is
// open and empty. After Close, remaining jobs are drained in order and
// then ok is false.
func (q *Queue) Dequeue() (*FileJob, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.jobs) == 0 && !q.closed {
		q.cond.Wait()
	}
	if len(q.jobs) == 0 {
		return nil, false
	}

	job := q.jobs[0]
	q.jobs[0] = nil
	q.jobs = q.jobs[1:]
	return job, true
}

// Close signals that no further jobs will be enqueued and wakes all
// blocked consumers. Close is idempotent.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.closed = true
	q.cond.Broadcast()
}

// Len reports the number of pending jobs.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}
