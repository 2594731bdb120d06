// Package diagnostics validates inputs and the output location before
// any job is submitted, so predictable problems surface as one report
// instead of N failed jobs.
package diagnostics

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"website-cleaner/internal/domain"
)

// supportedExts lists the input formats the chunk reader understands.
var supportedExts = map[string]bool{
	".csv":  true,
	".xlsx": true,
}

// Checker validates input files and the output directory.
type Checker struct {
	stat       func(string) (os.FileInfo, error)
	mkdirAll   func(string, os.FileMode) error
	createTemp func(string, string) (*os.File, error)
	remove     func(string) error
}

// NewChecker builds a checker using real OS dependencies.
func NewChecker() *Checker {
	return &Checker{
		stat:       os.Stat,
		mkdirAll:   os.MkdirAll,
		createTemp: os.CreateTemp,
		remove:     os.Remove,
	}
}

// NewCheckerForTests builds a checker with injectable OS dependencies.
func NewCheckerForTests(
	stat func(string) (os.FileInfo, error),
	mkdirAll func(string, os.FileMode) error,
	createTemp func(string, string) (*os.File, error),
	remove func(string) error,
) *Checker {
	return &Checker{stat: stat, mkdirAll: mkdirAll, createTemp: createTemp, remove: remove}
}

// Run executes all preflight checks and returns a combined report.
func (c *Checker) Run(inputPaths []string, outputDir string) domain.DiagnosticReport {
	items := make([]domain.DiagnosticItem, 0, len(inputPaths)+1)
	for _, path := range inputPaths {
		items = append(items, c.checkInput(path))
	}
	items = append(items, c.checkOutputDir(outputDir))

	hasFailures := false
	for _, item := range items {
		if item.Status == domain.DiagnosticStatusFail {
			hasFailures = true
			break
		}
	}

	return domain.DiagnosticReport{
		GeneratedAt: time.Now().UTC(),
		HasFailures: hasFailures,
		Items:       items,
	}
}

// checkInput verifies an input file exists, is a regular file, and has
// a supported extension.
func (c *Checker) checkInput(path string) domain.DiagnosticItem {
	id := "input_" + filepath.Base(path)

	info, err := c.stat(path)
	if err != nil {
		return domain.DiagnosticItem{
			ID:      id,
			Name:    path,
			Status:  domain.DiagnosticStatusFail,
			Message: fmt.Sprintf("File not found: %s", path),
		}
	}
	if info.IsDir() {
		return domain.DiagnosticItem{
			ID:      id,
			Name:    path,
			Status:  domain.DiagnosticStatusFail,
			Message: fmt.Sprintf("Not a file: %s", path),
		}
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !supportedExts[ext] {
		return domain.DiagnosticItem{
			ID:      id,
			Name:    path,
			Status:  domain.DiagnosticStatusFail,
			Message: fmt.Sprintf("Unsupported file type: %q", ext),
			Hint:    "Supported input formats are .csv and .xlsx.",
		}
	}

	return domain.DiagnosticItem{
		ID:      id,
		Name:    path,
		Status:  domain.DiagnosticStatusPass,
		Message: fmt.Sprintf("Readable %s file (%d bytes)", ext, info.Size()),
	}
}

// checkOutputDir verifies the output directory exists (creating it if
// needed) and is writable, using a temp-file probe.
func (c *Checker) checkOutputDir(dir string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{ID: "output_dir", Name: dir}

	if strings.TrimSpace(dir) == "" {
		item.Status = domain.DiagnosticStatusFail
		item.Message = "Output directory is not set"
		item.Hint = "Pass --out or set outputDir in settings."
		return item
	}

	if err := c.mkdirAll(dir, 0o755); err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Cannot create output directory: %v", err)
		return item
	}

	probe, err := c.createTemp(dir, ".write-probe-*")
	if err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Output directory is not writable: %v", err)
		return item
	}
	name := probe.Name()
	probe.Close()
	if err := c.remove(name); err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Cannot clean up write probe: %v", err)
		return item
	}

	item.Status = domain.DiagnosticStatusPass
	item.Message = "Output directory is writable"
	return item
}
