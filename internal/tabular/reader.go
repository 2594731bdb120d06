// Package tabular provides chunked, format-agnostic access to tabular
// files. Readers stream bounded row batches so peak memory stays flat
// regardless of file size; writers stage output in a temporary file and
// publish it with a rename so a final path is never partially visible.
package tabular

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Chunk is a bounded, ordered batch of rows. Seq increases monotonically
// per file starting at 1, and the writer appends chunks in Seq order.
type Chunk struct {
	Seq  int
	Rows [][]string
}

// Reader yields a file's rows as a lazy, finite sequence of chunks.
// Next never re-reads a row already yielded; a fresh reader is required
// to reread a file. Next returns io.EOF after the last chunk.
type Reader interface {
	Header() []string
	Next() (Chunk, error)
	Close() error
}

// Open picks a reader implementation from the file extension.
// The header row is consumed during Open; an unreadable header is an
// open error, not a row error.
func Open(path string, chunkSize int) (Reader, error) {
	if chunkSize < 1 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return openCSVReader(path, chunkSize)
	case ".xlsx":
		return openExcelReader(path, chunkSize)
	default:
		return nil, fmt.Errorf("unsupported input file type: %q", filepath.Ext(path))
	}
}
