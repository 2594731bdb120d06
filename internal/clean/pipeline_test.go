package clean

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"website-cleaner/internal/domain"
	"website-cleaner/internal/resolve"
	"website-cleaner/internal/validate"
)

func defaultAliases() domain.ColumnAliases {
	return domain.ColumnAliases{
		Title:   []string{"title", "titel", "titulo", "заголовок", "titolo"},
		Website: []string{"website", "web", "url", "site", "homepage"},
	}
}

func defaultRule(t *testing.T) validate.Rule {
	t.Helper()
	rule, err := validate.NewRule(domain.ValidationConfig{Mode: domain.ValidationModeDefault})
	if err != nil {
		t.Fatalf("NewRule: %v", err)
	}
	return rule
}

func writeInput(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	return path
}

func runOnce(t *testing.T, input string, chunkSize int, rule validate.Rule) (string, Summary, error) {
	t.Helper()
	output := filepath.Join(t.TempDir(), "out.csv")
	summary, err := Run(Request{
		InputPath:  input,
		OutputPath: output,
		ChunkSize:  chunkSize,
		Rule:       rule,
		Aliases:    defaultAliases(),
	})
	return output, summary, err
}

// TestRunScenario covers the canonical cleaning case: one valid row
// kept, invalid and empty website rows excluded.
func TestRunScenario(t *testing.T) {
	input := writeInput(t, "in.csv", "Name,URL\nAcme,https://acme.com\nBad,not-a-url\nEmpty,\n")

	output := filepath.Join(t.TempDir(), "out.csv")
	summary, err := Run(Request{
		InputPath:  input,
		OutputPath: output,
		ChunkSize:  100,
		Rule:       defaultRule(t),
		Aliases:    defaultAliases(),
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if summary.RowsRead != 3 || summary.RowsKept != 1 || summary.RowErrors != 0 {
		t.Fatalf("summary = %+v", summary)
	}
	if summary.Mapping.WebsiteIndex != 1 {
		t.Fatalf("website index = %d, want 1", summary.Mapping.WebsiteIndex)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	want := "\xEF\xBB\xBFName,URL\nAcme,https://acme.com\n"
	if string(data) != want {
		t.Fatalf("output = %q, want %q", data, want)
	}
}

// TestRunChunkSizeInvariance: different chunk sizes yield byte-identical
// output. Chunking is an implementation detail.
func TestRunChunkSizeInvariance(t *testing.T) {
	var b strings.Builder
	b.WriteString("Title,Website\n")
	for i := 0; i < 57; i++ {
		if i%3 == 0 {
			b.WriteString("bad,not-a-url\n")
		} else {
			b.WriteString("ok,https://example.com/x\n")
		}
	}
	input := writeInput(t, "in.csv", b.String())
	rule := defaultRule(t)

	out1, _, err := runOnce(t, input, 1, rule)
	if err != nil {
		t.Fatalf("chunk=1: %v", err)
	}
	out7, _, err := runOnce(t, input, 7, rule)
	if err != nil {
		t.Fatalf("chunk=7: %v", err)
	}
	out100, _, err := runOnce(t, input, 100, rule)
	if err != nil {
		t.Fatalf("chunk=100: %v", err)
	}

	d1, _ := os.ReadFile(out1)
	d7, _ := os.ReadFile(out7)
	d100, _ := os.ReadFile(out100)
	if string(d1) != string(d7) || string(d7) != string(d100) {
		t.Fatal("output differs across chunk sizes")
	}
}

// TestRunIdempotent: re-running the same job produces identical content.
func TestRunIdempotent(t *testing.T) {
	input := writeInput(t, "in.csv", "Name,URL\nAcme,https://acme.com\nBad,nope\n")
	rule := defaultRule(t)

	out1, _, err := runOnce(t, input, 10, rule)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	out2, _, err := runOnce(t, input, 10, rule)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	d1, _ := os.ReadFile(out1)
	d2, _ := os.ReadFile(out2)
	if string(d1) != string(d2) {
		t.Fatal("re-run output differs")
	}
}

// TestRunCustomPattern checks pattern-mode exclusion, including blanks.
func TestRunCustomPattern(t *testing.T) {
	input := writeInput(t, "in.csv", "Name,URL\na,ftp://x.com\nb,http://x.com\nc,\n")
	rule, err := validate.NewRule(domain.ValidationConfig{
		Mode:    domain.ValidationModePattern,
		Pattern: `^https?://.*`,
	})
	if err != nil {
		t.Fatalf("NewRule: %v", err)
	}

	output, summary, err := runOnce(t, input, 10, rule)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.RowsKept != 1 {
		t.Fatalf("rowsKept = %d, want 1", summary.RowsKept)
	}

	data, _ := os.ReadFile(output)
	if !strings.Contains(string(data), "http://x.com") || strings.Contains(string(data), "ftp://") {
		t.Fatalf("output = %q", data)
	}
}

// TestRunShortRowsCountAsRowErrors: rows missing the website cell are
// recorded and skipped without aborting the file.
func TestRunShortRowsCountAsRowErrors(t *testing.T) {
	input := writeInput(t, "in.csv", "Name,URL\nshorty\nAcme,https://acme.com\n")

	_, summary, err := runOnce(t, input, 10, defaultRule(t))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.RowErrors != 1 {
		t.Fatalf("rowErrors = %d, want 1", summary.RowErrors)
	}
	if summary.RowsKept != 1 {
		t.Fatalf("rowsKept = %d, want 1", summary.RowsKept)
	}
}

// TestRunResolutionErrorFailsBeforeAnyChunk verifies the fail-fast path
// and that no output is staged or published.
func TestRunResolutionErrorFailsBeforeAnyChunk(t *testing.T) {
	input := writeInput(t, "in.csv", "Name,Phone\na,123\n")
	outDir := t.TempDir()
	output := filepath.Join(outDir, "out.csv")

	chunks := 0
	_, err := Run(Request{
		InputPath:  input,
		OutputPath: output,
		ChunkSize:  10,
		Rule:       defaultRule(t),
		Aliases:    defaultAliases(),
		OnChunk:    func(int, int) { chunks++ },
	})
	if !errors.Is(err, resolve.ErrNoWebsiteColumn) {
		t.Fatalf("err = %v, want ErrNoWebsiteColumn", err)
	}
	if chunks != 0 {
		t.Fatalf("chunks = %d, want 0", chunks)
	}

	entries, _ := os.ReadDir(outDir)
	if len(entries) != 0 {
		t.Fatalf("output dir not empty: %v", entries)
	}

	var perr *PipelineError
	if !errors.As(err, &perr) || perr.Stage != "resolve" {
		t.Fatalf("expected resolve-stage pipeline error, got %v", err)
	}
}

// TestRunCancellationLeavesNoOutput verifies a stop observed at a chunk
// boundary discards the staged file and never publishes.
func TestRunCancellationLeavesNoOutput(t *testing.T) {
	var b strings.Builder
	b.WriteString("Name,URL\n")
	for i := 0; i < 50; i++ {
		b.WriteString("a,https://acme.com\n")
	}
	input := writeInput(t, "in.csv", b.String())
	outDir := t.TempDir()
	output := filepath.Join(outDir, "out.csv")

	cancelled := false
	summary, err := Run(Request{
		InputPath:  input,
		OutputPath: output,
		ChunkSize:  10,
		Rule:       defaultRule(t),
		Aliases:    defaultAliases(),
		OnChunk: func(chunkRows, totalRows int) {
			if totalRows >= 20 {
				cancelled = true
			}
		},
		Cancelled: func() bool { return cancelled },
	})
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("err = %v, want ErrCancelled", err)
	}
	if summary.RowsRead != 20 {
		t.Fatalf("rowsRead = %d, want 20 (two chunks)", summary.RowsRead)
	}

	entries, _ := os.ReadDir(outDir)
	if len(entries) != 0 {
		t.Fatalf("cancellation left files behind: %v", entries)
	}
}

// TestRunProgressCallback verifies chunk accounting.
func TestRunProgressCallback(t *testing.T) {
	var b strings.Builder
	b.WriteString("Name,URL\n")
	for i := 0; i < 25; i++ {
		b.WriteString("a,https://acme.com\n")
	}
	input := writeInput(t, "in.csv", b.String())

	var totals []int
	_, err := Run(Request{
		InputPath:  input,
		OutputPath: filepath.Join(t.TempDir(), "out.csv"),
		ChunkSize:  10,
		Rule:       defaultRule(t),
		Aliases:    defaultAliases(),
		OnChunk:    func(chunkRows, totalRows int) { totals = append(totals, totalRows) },
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(totals) != 3 || totals[0] != 10 || totals[1] != 20 || totals[2] != 25 {
		t.Fatalf("totals = %v", totals)
	}
}

// TestRunMissingInputFails maps unreadable files to a read-stage error.
func TestRunMissingInputFails(t *testing.T) {
	_, _, err := runOnce(t, filepath.Join(t.TempDir(), "nope.csv"), 10, defaultRule(t))
	var perr *PipelineError
	if !errors.As(err, &perr) || perr.Stage != "read" {
		t.Fatalf("err = %v, want read-stage error", err)
	}
}
