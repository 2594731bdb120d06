package tabular

import (
	"os"

	"github.com/xuri/excelize/v2"
)

// excelWriter accumulates cleaned rows through the excelize stream
// writer and serializes the workbook to a staged file on Publish.
// Workbook serialization cannot be appended incrementally the way CSV
// can, but the stream writer keeps row data out of the worksheet DOM.
type excelWriter struct {
	finalPath string
	book      *excelize.File
	stream    *excelize.StreamWriter
	nextRow   int
}

func newExcelWriter(finalPath string) (*excelWriter, error) {
	book := excelize.NewFile()
	stream, err := book.NewStreamWriter("Sheet1")
	if err != nil {
		book.Close()
		return nil, err
	}

	return &excelWriter{
		finalPath: finalPath,
		book:      book,
		stream:    stream,
		nextRow:   1,
	}, nil
}

// WriteHeader implements Writer.
func (w *excelWriter) WriteHeader(header []string) error {
	return w.writeRow(header)
}

// WriteRows implements Writer.
func (w *excelWriter) WriteRows(rows [][]string) error {
	for _, row := range rows {
		if err := w.writeRow(row); err != nil {
			return err
		}
	}
	return nil
}

func (w *excelWriter) writeRow(row []string) error {
	cell, err := excelize.CoordinatesToCellName(1, w.nextRow)
	if err != nil {
		return err
	}

	cells := make([]interface{}, len(row))
	for i, v := range row {
		cells[i] = v
	}
	if err := w.stream.SetRow(cell, cells); err != nil {
		return err
	}

	w.nextRow++
	return nil
}

// Publish implements Writer.
func (w *excelWriter) Publish() error {
	defer w.book.Close()

	if err := w.stream.Flush(); err != nil {
		return err
	}

	staged, err := stageFile(w.finalPath)
	if err != nil {
		return err
	}
	if err := w.book.Write(staged); err != nil {
		staged.Close()
		os.Remove(staged.Name())
		return err
	}
	if err := staged.Close(); err != nil {
		os.Remove(staged.Name())
		return err
	}

	return os.Rename(staged.Name(), w.finalPath)
}

// Discard implements Writer. Nothing is staged before Publish, so
// dropping the in-memory workbook is enough.
func (w *excelWriter) Discard() error {
	return w.book.Close()
}
