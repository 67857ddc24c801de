package sources

import (
	"context"
	"encoding/csv"
	"io"

	"github.com/kodepos-id/kodepos/internal/tabular"
	"github.com/kodepos-id/kodepos/pkg/errors"
)

// CSVAdapter reads a delimited file with a header row.
type CSVAdapter struct {
	Source       ID
	CodeColumn   string
	PostalColumn string
	// Comma is the field delimiter; zero means ','.
	Comma rune
	// Name is used in error messages; defaults to the source label.
	Name string
}

// ID implements Adapter.
func (a *CSVAdapter) ID() ID { return a.Source }

// Format implements Adapter.
func (a *CSVAdapter) Format() Format { return FormatCSV }

// Load implements Adapter. A missing code or postal column is a schema
// error. Rows too short to reach either column, or rows the CSV reader
// cannot parse, are skipped.
func (a *CSVAdapter) Load(ctx context.Context, r io.Reader) (*Mapping, error) {
	name := a.Name
	if name == "" {
		name = a.Source.String()
	}

	reader, err := tabular.NewReader(r, a.Comma)
	if err != nil {
		if err == io.EOF {
			return nil, errors.NewSchemaError(name, []string{a.CodeColumn, a.PostalColumn})
		}
		return nil, errors.WrapParse("csv", name, err)
	}
	header := reader.Header()
	if missing := header.Missing(a.CodeColumn, a.PostalColumn); len(missing) > 0 {
		return nil, errors.NewSchemaError(name, missing)
	}
	need := max(header[a.CodeColumn], header[a.PostalColumn]) + 1

	m := NewMapping(a.Source)
	for {
		row, err := reader.Next()
		if err == io.EOF {
			break
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			m.Skip(SkipMalformed)
			continue
		}
		if err != nil {
			return nil, &errors.ParseError{Format: "csv", File: name, Line: reader.Line(), Message: err.Error(), Err: err}
		}
		if reader.Line()%10000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if row.Width() < need {
			m.Skip(SkipShortRow)
			continue
		}
		m.Set(row.Get(a.CodeColumn), row.Get(a.PostalColumn))
	}
	return m, nil
}
