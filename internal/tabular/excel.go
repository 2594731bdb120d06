package tabular

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// excelReader streams the first sheet of an xlsx workbook in row-count
// chunks using the excelize row iterator, so the workbook is never fully
// materialized in memory.
type excelReader struct {
	file      *excelize.File
	rows      *excelize.Rows
	header    []string
	chunkSize int
	seq       int
}

// openExcelReader opens the workbook and consumes the header row of the
// first sheet.
func openExcelReader(path string, chunkSize int) (*excelReader, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		file.Close()
		return nil, fmt.Errorf("workbook has no sheets: %s", path)
	}

	rows, err := file.Rows(sheets[0])
	if err != nil {
		file.Close()
		return nil, err
	}

	if !rows.Next() {
		rows.Close()
		file.Close()
		return nil, fmt.Errorf("empty sheet: %s", path)
	}
	header, err := rows.Columns()
	if err != nil {
		rows.Close()
		file.Close()
		return nil, fmt.Errorf("read header: %w", err)
	}

	return &excelReader{
		file:      file,
		rows:      rows,
		header:    header,
		chunkSize: chunkSize,
	}, nil
}

// Header implements Reader.
func (r *excelReader) Header() []string {
	return r.header
}

// Next implements Reader.
func (r *excelReader) Next() (Chunk, error) {
	out := make([][]string, 0, r.chunkSize)
	for len(out) < r.chunkSize && r.rows.Next() {
		row, err := r.rows.Columns()
		if err != nil {
			return Chunk{}, err
		}
		out = append(out, row)
	}

	if len(out) == 0 {
		if err := r.rows.Error(); err != nil {
			return Chunk{}, err
		}
		return Chunk{}, io.EOF
	}

	r.seq++
	return Chunk{Seq: r.seq, Rows: out}, nil
}

// Close implements Reader.
func (r *excelReader) Close() error {
	rowsErr := r.rows.Close()
	if err := r.file.Close(); err != nil {
		return err
	}
	return rowsErr
}
