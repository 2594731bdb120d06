package jobs

import (
	"testing"

	"website-cleaner/internal/domain"
)

func testSpec() domain.JobSpec {
	return domain.JobSpec{
		InputPath:  "/in/a.csv",
		OutputPath: "/out/a.csv",
		ChunkSize:  100,
	}
}

// TestFileJobLifecycle verifies normal progression to completed state.
func TestFileJobLifecycle(t *testing.T) {
	job := NewFileJob("job-1", testSpec(), nil)
	if job.State() != domain.JobStateQueued {
		t.Fatalf("state = %s, want queued", job.State())
	}

	if err := job.Transition(domain.JobStateRunning); err != nil {
		t.Fatalf("to running: %v", err)
	}
	if err := job.Transition(domain.JobStateCompleted); err != nil {
		t.Fatalf("to completed: %v", err)
	}
	if !job.State().Terminal() {
		t.Fatal("completed should be terminal")
	}
}

// TestFileJobQueuedToFailed covers up-front submission failures.
func TestFileJobQueuedToFailed(t *testing.T) {
	job := NewFileJob("job-1", testSpec(), nil)
	if err := job.Transition(domain.JobStateFailed); err != nil {
		t.Fatalf("queued -> failed: %v", err)
	}
}

// TestFileJobRejectsBackwardTransitions checks states only move forward.
func TestFileJobRejectsBackwardTransitions(t *testing.T) {
	job := NewFileJob("job-1", testSpec(), nil)

	if err := job.Transition(domain.JobStateCompleted); err == nil {
		t.Fatal("queued -> completed must be rejected")
	}

	if err := job.Transition(domain.JobStateRunning); err != nil {
		t.Fatalf("to running: %v", err)
	}
	if err := job.Transition(domain.JobStateCancelled); err != nil {
		t.Fatalf("to cancelled: %v", err)
	}
	if err := job.Transition(domain.JobStateRunning); err == nil {
		t.Fatal("cancelled -> running must be rejected")
	}
}

// TestFileJobSnapshot verifies the reporting value copy.
func TestFileJobSnapshot(t *testing.T) {
	job := NewFileJob("job-1", testSpec(), nil)
	snap := job.Snapshot()
	if snap.ID != "job-1" || snap.State != domain.JobStateQueued {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if snap.InputPath != "/in/a.csv" || snap.OutputPath != "/out/a.csv" {
		t.Fatalf("unexpected paths: %+v", snap)
	}
}
