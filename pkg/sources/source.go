// Package sources reads postal-code source datasets into mappings keyed by
// canonical village code.
//
// Each dataset is read by an Adapter that knows its format and column
// names. Adapters apply the same filtering policy: rows whose code
// normalizes to nothing, and rows whose postal code is blank or the "0"
// placeholder, never reach the mapping. Later rows overwrite earlier ones.
//
// Example usage:
//
//	m, err := sources.LoadFile(ctx, sources.OpenDataJabar(), "kode_pos.csv")
//	if err != nil {
//	    return err
//	}
//	postal, ok := m.Lookup("3204012001")
package sources

import (
	"context"
	"io"
	"slices"
)

// ID is the provenance label a source stamps on the records it wins.
type ID string

// String returns the string representation of a source ID.
func (id ID) String() string {
	return string(id)
}

// Known source labels.
const (
	OpenDataJabarID ID = "OPENDATA_JABAR"
	PosIndonesiaID  ID = "POSINDONESIA_LOOKUP"
	// NoneID marks records no source could fill.
	NoneID ID = "NONE"
)

// IDs returns the labels of the bundled sources.
func IDs() []ID {
	return []ID{OpenDataJabarID, PosIndonesiaID}
}

// IsValid returns true if the ID is one of the bundled source labels.
func (id ID) IsValid() bool {
	return slices.Contains(IDs(), id)
}

// Format is the on-disk encoding of a source dataset.
type Format string

// Supported formats.
const (
	FormatCSV   Format = "csv"
	FormatJSONL Format = "jsonl"
)

// Adapter reads one source dataset.
type Adapter interface {
	// ID returns the label stamped on records filled from this source
	ID() ID

	// Format returns the encoding the adapter expects
	Format() Format

	// Load reads r and returns the filtered mapping
	Load(ctx context.Context, r io.Reader) (*Mapping, error)
}
