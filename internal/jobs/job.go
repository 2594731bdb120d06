// Package jobs contains the scheduling core: the FileJob state machine,
// the FIFO job queue, the worker pool, the cancellation controller, and
// the progress event bus.
package jobs

import (
	"errors"
	"fmt"
	"sync"

	"website-cleaner/internal/domain"
	"website-cleaner/internal/validate"
)

// ErrUnknownJob is returned when an operation names a job ID that was
// never submitted.
var ErrUnknownJob = errors.New("unknown job")

// FileJob is the unit of work: one input file, its resolved output path,
// and its validation rule compiled at submission time. Once dequeued a
// job is exclusively owned by one worker; only that worker and the
// cancellation controller touch its state.
type FileJob struct {
	ID   string
	Spec domain.JobSpec
	Rule validate.Rule

	mu    sync.Mutex
	state domain.JobState
}

// NewFileJob creates a queued job with a pre-compiled validation rule.
func NewFileJob(id string, spec domain.JobSpec, rule validate.Rule) *FileJob {
	return &FileJob{
		ID:    id,
		Spec:  spec,
		Rule:  rule,
		state: domain.JobStateQueued,
	}
}

// State returns the job's current lifecycle state.
func (j *FileJob) State() domain.JobState {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.state
}

// Snapshot returns the job as a plain value for reporting.
func (j *FileJob) Snapshot() domain.Job {
	return domain.Job{
		ID:         j.ID,
		InputPath:  j.Spec.InputPath,
		OutputPath: j.Spec.OutputPath,
		State:      j.State(),
	}
}

// Transition validates and applies a state change. States move only
// forward: Queued → Running → {Completed, Failed, Cancelled}, with
// Queued → Failed reserved for up-front submission failures.
func (j *FileJob) Transition(to domain.JobState) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if !isValidTransition(j.state, to) {
		return fmt.Errorf("invalid transition: %s -> %s", j.state, to)
	}
	j.state = to
	return nil
}

// isValidTransition enforces the allowed job state machine edges.
func isValidTransition(from, to domain.JobState) bool {
	switch from {
	case domain.JobStateQueued:
		return to == domain.JobStateRunning || to == domain.JobStateFailed
	case domain.JobStateRunning:
		return to == domain.JobStateCompleted ||
			to == domain.JobStateFailed ||
			to == domain.JobStateCancelled
	default:
		return false
	}
}
