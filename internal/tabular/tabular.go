// Package tabular wraps encoding/csv with the header handling every
// kodepos CSV input shares: BOM stripping, trimmed column names, required
// column checks and by-name cell access.
package tabular

import (
	"bufio"
	"encoding/csv"
	"io"
	"slices"
	"strings"
)

// Reader reads a CSV stream whose first record is a header.
type Reader struct {
	csv    *csv.Reader
	header Header
	line   int
}

// Header maps column names to positions.
type Header map[string]int

// NewReader reads the header from r. It returns io.EOF when r is empty.
func NewReader(r io.Reader, comma rune) (*Reader, error) {
	cr := csv.NewReader(bufio.NewReader(r))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	if comma != 0 {
		cr.Comma = comma
	}

	rec, err := cr.Read()
	if err != nil {
		return nil, err
	}
	return &Reader{csv: cr, header: parseHeader(rec), line: 1}, nil
}

// Header returns the parsed header.
func (r *Reader) Header() Header {
	return r.header
}

// Line returns the 1-based line number of the last record read.
func (r *Reader) Line() int {
	return r.line
}

// Next returns the next data row, or io.EOF at the end of the stream.
// Quotes inside unquoted fields are kept literally. A *csv.ParseError
// leaves the reader positioned at the following record.
func (r *Reader) Next() (Row, error) {
	rec, err := r.csv.Read()
	if err == io.EOF {
		return Row{}, io.EOF
	}
	r.line++
	if err != nil {
		return Row{}, err
	}
	return Row{header: r.header, cells: rec}, nil
}

// Missing returns the required columns absent from h, sorted.
func (h Header) Missing(required ...string) []string {
	var missing []string
	for _, name := range required {
		if _, ok := h[name]; !ok {
			missing = append(missing, name)
		}
	}
	slices.Sort(missing)
	return missing
}

// Has reports whether the column exists.
func (h Header) Has(name string) bool {
	_, ok := h[name]
	return ok
}

// Row is one data record addressed by column name.
type Row struct {
	header Header
	cells  []string
}

// Get returns the trimmed cell for column name, or "" when the column is
// unknown or the row is short.
func (r Row) Get(name string) string {
	i, ok := r.header[name]
	if !ok || i >= len(r.cells) {
		return ""
	}
	return strings.TrimSpace(r.cells[i])
}

// Width returns the number of cells in the row.
func (r Row) Width() int {
	return len(r.cells)
}

func parseHeader(rec []string) Header {
	h := make(Header, len(rec))
	for i, name := range rec {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		h[strings.TrimSpace(name)] = i
	}
	return h
}
