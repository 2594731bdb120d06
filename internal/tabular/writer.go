package tabular

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Writer appends rows to a staged output file. Publish atomically moves
// the staged file to the final path; Discard removes it. Exactly one of
// the two must be called.
type Writer interface {
	WriteHeader(header []string) error
	WriteRows(rows [][]string) error
	Publish() error
	Discard() error
}

// Create picks a writer implementation from the final path's extension.
// The staged file lives in the destination directory so the publishing
// rename never crosses filesystems.
func Create(finalPath string) (Writer, error) {
	switch strings.ToLower(filepath.Ext(finalPath)) {
	case ".csv":
		return newCSVWriter(finalPath)
	case ".xlsx":
		return newExcelWriter(finalPath)
	default:
		return nil, fmt.Errorf("unsupported output file type: %q", filepath.Ext(finalPath))
	}
}

// stageFile creates the temporary output file next to the final path.
func stageFile(finalPath string) (*os.File, error) {
	dir := filepath.Dir(finalPath)
	base := filepath.Base(finalPath)
	return os.CreateTemp(dir, "."+base+".partial-*")
}

// csvWriter streams cleaned rows into a staged CSV file. The output
// starts with a UTF-8 BOM so spreadsheet tools on Windows detect the
// encoding (utf-8-sig).
type csvWriter struct {
	finalPath string
	staged    *os.File
	records   *csv.Writer
}

func newCSVWriter(finalPath string) (*csvWriter, error) {
	staged, err := stageFile(finalPath)
	if err != nil {
		return nil, err
	}
	if _, err := staged.Write(utf8BOM); err != nil {
		staged.Close()
		os.Remove(staged.Name())
		return nil, err
	}

	return &csvWriter{
		finalPath: finalPath,
		staged:    staged,
		records:   csv.NewWriter(staged),
	}, nil
}

// WriteHeader implements Writer.
func (w *csvWriter) WriteHeader(header []string) error {
	return w.records.Write(header)
}

// WriteRows implements Writer.
func (w *csvWriter) WriteRows(rows [][]string) error {
	return w.records.WriteAll(rows)
}

// Publish implements Writer.
func (w *csvWriter) Publish() error {
	w.records.Flush()
	if err := w.records.Error(); err != nil {
		w.Discard()
		return err
	}
	if err := w.staged.Close(); err != nil {
		os.Remove(w.staged.Name())
		return err
	}
	return os.Rename(w.staged.Name(), w.finalPath)
}

// Discard implements Writer.
func (w *csvWriter) Discard() error {
	w.staged.Close()
	return os.Remove(w.staged.Name())
}
