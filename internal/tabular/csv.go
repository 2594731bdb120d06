package tabular

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// csvReader streams a delimited text file in row-count chunks.
type csvReader struct {
	file      *os.File
	records   *csv.Reader
	header    []string
	chunkSize int
	seq       int
	done      bool
}

// openCSVReader opens the file, skips a UTF-8 BOM if present, and
// consumes the header row. Windows tools commonly prepend the BOM
// (utf-8-sig), so it must not leak into the first header name.
func openCSVReader(path string, chunkSize int) (*csvReader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	buf := bufio.NewReader(file)
	if lead, _ := buf.Peek(len(utf8BOM)); bytes.Equal(lead, utf8BOM) {
		if _, err := buf.Discard(len(utf8BOM)); err != nil {
			file.Close()
			return nil, err
		}
	}

	records := csv.NewReader(buf)
	// Ragged rows and sloppy quoting are handled downstream as
	// row-level validation failures, not reader failures.
	records.FieldsPerRecord = -1
	records.LazyQuotes = true

	header, err := records.Read()
	if err != nil {
		file.Close()
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty file: %s", path)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	return &csvReader{
		file:      file,
		records:   records,
		header:    header,
		chunkSize: chunkSize,
	}, nil
}

// Header implements Reader.
func (r *csvReader) Header() []string {
	return r.header
}

// Next implements Reader.
func (r *csvReader) Next() (Chunk, error) {
	if r.done {
		return Chunk{}, io.EOF
	}

	rows := make([][]string, 0, r.chunkSize)
	for len(rows) < r.chunkSize {
		record, err := r.records.Read()
		if errors.Is(err, io.EOF) {
			r.done = true
			break
		}
		if err != nil {
			return Chunk{}, err
		}
		rows = append(rows, record)
	}

	if len(rows) == 0 {
		return Chunk{}, io.EOF
	}

	r.seq++
	return Chunk{Seq: r.seq, Rows: rows}, nil
}

// Close implements Reader.
func (r *csvReader) Close() error {
	return r.file.Close()
}
