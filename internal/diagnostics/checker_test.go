package diagnostics

import (
	"os"
	"path/filepath"
	"testing"

	"website-cleaner/internal/domain"
)

// TestCheckerPasses verifies the all-good path with real files.
func TestCheckerPasses(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.csv")
	if err := os.WriteFile(input, []byte("a,b\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	report := NewChecker().Run([]string{input}, filepath.Join(dir, "out"))
	if report.HasFailures {
		t.Fatalf("unexpected failures: %+v", report.Items)
	}
	if len(report.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(report.Items))
	}
}

// TestCheckerMissingInput verifies missing files fail the report.
func TestCheckerMissingInput(t *testing.T) {
	dir := t.TempDir()
	report := NewChecker().Run([]string{filepath.Join(dir, "missing.csv")}, dir)
	if !report.HasFailures {
		t.Fatal("expected failure for missing input")
	}
}

// TestCheckerUnsupportedExtension verifies format gating.
func TestCheckerUnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.parquet")
	if err := os.WriteFile(input, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	report := NewChecker().Run([]string{input}, dir)
	if !report.HasFailures {
		t.Fatal("expected failure for unsupported extension")
	}
	if report.Items[0].Hint == "" {
		t.Fatal("expected a hint for unsupported formats")
	}
}

// TestCheckerEmptyOutputDir verifies the unset-directory failure.
func TestCheckerEmptyOutputDir(t *testing.T) {
	report := NewChecker().Run(nil, "  ")
	if !report.HasFailures {
		t.Fatal("expected failure for empty output dir")
	}
	if report.Items[0].Status != domain.DiagnosticStatusFail {
		t.Fatalf("status = %s, want fail", report.Items[0].Status)
	}
}

// TestCheckerUnwritableOutputDir uses injected deps to simulate a
// read-only destination.
func TestCheckerUnwritableOutputDir(t *testing.T) {
	checker := NewCheckerForTests(
		os.Stat,
		func(string, os.FileMode) error { return nil },
		func(string, string) (*os.File, error) { return nil, os.ErrPermission },
		os.Remove,
	)

	report := checker.Run(nil, "/read-only")
	if !report.HasFailures {
		t.Fatal("expected failure for unwritable output dir")
	}
}
