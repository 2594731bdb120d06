// Package clean runs the per-file pipeline: stream chunks, resolve the
// website column once from the header, validate rows, and stage cleaned
// output that is published atomically on completion.
package clean

import (
	"errors"
	"fmt"
	"io"

	"website-cleaner/internal/domain"
	"website-cleaner/internal/resolve"
	"website-cleaner/internal/tabular"
	"website-cleaner/internal/validate"
)

// ErrCancelled marks a cooperative stop observed at a chunk boundary.
// It is a terminal outcome of its own, not a failure.
var ErrCancelled = errors.New("job cancelled")

// PipelineError is a stage-aware error describing where a job failed.
type PipelineError struct {
	Stage   string
	Message string
	Err     error
}

// Error formats pipeline failures for logs and events.
func (e *PipelineError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Stage, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Stage, e.Message, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As.
func (e *PipelineError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Request contains one file's inputs and execution callbacks.
type Request struct {
	InputPath  string
	OutputPath string
	ChunkSize  int
	Rule       validate.Rule
	Aliases    domain.ColumnAliases

	// Resolver defaults to the fuzzy resolver when nil.
	Resolver *resolve.Resolver

	// Cancelled is consulted after each chunk; when it reports true the
	// staged output is discarded and Run returns ErrCancelled.
	Cancelled func() bool

	// OnChunk receives per-chunk progress: rows in the finished chunk
	// and total rows read so far.
	OnChunk func(chunkRows, totalRows int)
}

// Summary aggregates one job's row accounting.
type Summary struct {
	RowsRead  int
	RowsKept  int
	RowErrors int
	Mapping   resolve.Mapping
}

// Run executes the pipeline for one file. Row order in the output
// matches input order; the final output path is only ever observed
// fully written.
func Run(req Request) (Summary, error) {
	resolver := req.Resolver
	if resolver == nil {
		resolver = resolve.NewResolver()
	}

	reader, err := tabular.Open(req.InputPath, req.ChunkSize)
	if err != nil {
		return Summary{}, &PipelineError{
			Stage:   "read",
			Message: fmt.Sprintf("cannot open input: %s", req.InputPath),
			Err:     err,
		}
	}
	defer reader.Close()

	mapping, err := resolver.Resolve(reader.Header(), req.Aliases)
	if err != nil {
		return Summary{}, &PipelineError{
			Stage:   "resolve",
			Message: fmt.Sprintf("header %v", reader.Header()),
			Err:     err,
		}
	}

	writer, err := tabular.Create(req.OutputPath)
	if err != nil {
		return Summary{Mapping: mapping}, &PipelineError{
			Stage:   "write",
			Message: fmt.Sprintf("cannot stage output: %s", req.OutputPath),
			Err:     err,
		}
	}
	if err := writer.WriteHeader(reader.Header()); err != nil {
		writer.Discard()
		return Summary{Mapping: mapping}, &PipelineError{
			Stage:   "write",
			Message: "write header",
			Err:     err,
		}
	}

	summary := Summary{Mapping: mapping}
	for {
		chunk, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			writer.Discard()
			return summary, &PipelineError{
				Stage:   "read",
				Message: fmt.Sprintf("read chunk %d", chunk.Seq),
				Err:     err,
			}
		}

		kept := make([][]string, 0, len(chunk.Rows))
		for _, row := range chunk.Rows {
			if mapping.WebsiteIndex >= len(row) {
				// Short row: the website cell does not exist.
				summary.RowErrors++
				continue
			}
			if req.Rule.Valid(row[mapping.WebsiteIndex]) {
				kept = append(kept, row)
			}
		}

		if err := writer.WriteRows(kept); err != nil {
			writer.Discard()
			return summary, &PipelineError{
				Stage:   "write",
				Message: fmt.Sprintf("write chunk %d", chunk.Seq),
				Err:     err,
			}
		}

		summary.RowsRead += len(chunk.Rows)
		summary.RowsKept += len(kept)
		if req.OnChunk != nil {
			req.OnChunk(len(chunk.Rows), summary.RowsRead)
		}

		if req.Cancelled != nil && req.Cancelled() {
			writer.Discard()
			return summary, ErrCancelled
		}
	}

	if err := writer.Publish(); err != nil {
		return summary, &PipelineError{
			Stage:   "write",
			Message: fmt.Sprintf("publish output: %s", req.OutputPath),
			Err:     err,
		}
	}
	return summary, nil
}
