package jobs

import (
	"errors"
	"log/slog"
	"sync"

	"website-cleaner/internal/clean"
	"website-cleaner/internal/domain"
)

// runFunc executes the per-file pipeline; injectable for tests.
type runFunc func(req clean.Request) (clean.Summary, error)

// Pool drains the job queue with a fixed number of concurrent workers.
// Files are parallelized across workers; chunks within one file are
// processed sequentially by the file's assigned worker, which is what
// keeps per-file output order trivial.
type Pool struct {
	workers int
	queue   *Queue
	ctrl    *Controller
	events  *EventBus
	logger  *slog.Logger
	run     runFunc
	wg      sync.WaitGroup
}

// NewPool creates a pool of n workers over the given queue. Workers do
// not start until Start is called.
func NewPool(n int, queue *Queue, ctrl *Controller, events *EventBus, logger *slog.Logger) *Pool {
	if n < 1 {
		n = 1
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Pool{
		workers: n,
		queue:   queue,
		ctrl:    ctrl,
		events:  events,
		logger:  logger,
		run:     clean.Run,
	}
}

// NewPoolForTests creates a pool with an injected pipeline function.
func NewPoolForTests(n int, queue *Queue, ctrl *Controller, events *EventBus, run runFunc) *Pool {
	p := NewPool(n, queue, ctrl, events, slog.Default())
	p.run = run
	return p
}

// Start launches the workers.
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Wait blocks until every worker has exited. Workers exit when the
// queue is closed and drained, or at the first checkpoint after a stop
// request. After Wait returns, no worker writes to any output file.
func (p *Pool) Wait() {
	p.wg.Wait()
}

// Stop requests a global stop, closes the queue, and waits for all
// workers to reach a checkpoint and exit. In-flight jobs finish their
// current chunk, not the whole file.
func (p *Pool) Stop() {
	p.ctrl.RequestStop()
	p.queue.Close()
	p.wg.Wait()
}

// worker loops dequeue → run-pipeline until the queue is drained or a
// stop is observed.
func (p *Pool) worker(id int) {
	defer p.wg.Done()

	for {
		if p.ctrl.Stopped() {
			return
		}
		job, ok := p.queue.Dequeue()
		if !ok {
			return
		}
		if p.ctrl.Stopped() {
			// Stop raced the dequeue; the job is never started.
			p.logger.Info("job skipped by stop request", "worker", id, "job", job.ID)
			return
		}

		p.runJob(id, job)
	}
}

// runJob executes one file's pipeline and emits exactly one terminal
// event for the job.
func (p *Pool) runJob(workerID int, job *FileJob) {
	if err := job.Transition(domain.JobStateRunning); err != nil {
		p.logger.Error("job start rejected", "worker", workerID, "job", job.ID, "error", err)
		return
	}

	p.logger.Info("job started",
		"worker", workerID,
		"job", job.ID,
		"input", job.Spec.InputPath,
	)

	summary, err := p.run(clean.Request{
		InputPath:  job.Spec.InputPath,
		OutputPath: job.Spec.OutputPath,
		ChunkSize:  job.Spec.ChunkSize,
		Rule:       job.Rule,
		Aliases:    job.Spec.Aliases,
		Cancelled: func() bool {
			return p.ctrl.Cancelled(job.ID)
		},
		OnChunk: func(chunkRows, totalRows int) {
			p.logger.Debug("chunk processed", "job", job.ID, "rows", chunkRows, "total", totalRows)
			p.events.Publish(Event{
				JobID:         job.ID,
				Type:          EventTypeChunk,
				State:         domain.JobStateRunning,
				RowsProcessed: chunkRows,
				TotalRows:     totalRows,
			})
		},
	})

	switch {
	case errors.Is(err, clean.ErrCancelled):
		if terr := job.Transition(domain.JobStateCancelled); terr != nil {
			p.logger.Error("cancel transition failed", "job", job.ID, "error", terr)
		}
		p.logger.Info("job cancelled", "job", job.ID, "rowsRead", summary.RowsRead)
		p.events.Publish(Event{
			JobID:     job.ID,
			Type:      EventTypeCancelled,
			State:     domain.JobStateCancelled,
			TotalRows: summary.RowsRead,
			RowsKept:  summary.RowsKept,
			RowErrors: summary.RowErrors,
			Message:   "stopped at chunk boundary",
		})

	case err != nil:
		if terr := job.Transition(domain.JobStateFailed); terr != nil {
			p.logger.Error("fail transition failed", "job", job.ID, "error", terr)
		}
		p.logger.Error("job failed", "job", job.ID, "error", err)
		p.events.Publish(Event{
			JobID:     job.ID,
			Type:      EventTypeFailed,
			State:     domain.JobStateFailed,
			TotalRows: summary.RowsRead,
			RowsKept:  summary.RowsKept,
			RowErrors: summary.RowErrors,
			Message:   err.Error(),
		})

	default:
		if terr := job.Transition(domain.JobStateCompleted); terr != nil {
			p.logger.Error("complete transition failed", "job", job.ID, "error", terr)
		}
		p.logger.Info("job completed",
			"job", job.ID,
			"output", job.Spec.OutputPath,
			"rowsRead", summary.RowsRead,
			"rowsKept", summary.RowsKept,
			"rowErrors", summary.RowErrors,
		)
		p.events.Publish(Event{
			JobID:      job.ID,
			Type:       EventTypeCompleted,
			State:      domain.JobStateCompleted,
			TotalRows:  summary.RowsRead,
			RowsKept:   summary.RowsKept,
			RowErrors:  summary.RowErrors,
			OutputPath: job.Spec.OutputPath,
		})
	}
}
