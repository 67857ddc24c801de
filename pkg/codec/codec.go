// Package codec serializes canonical records and writes output artifacts.
//
// Writers are deterministic: identical input yields byte-identical output.
// WriteFile writes through a temporary file and renames it into place, so a
// failed build never leaves a partial artifact behind.
package codec

import (
	"encoding/csv"
	"encoding/json"
	"io"

	"github.com/kodepos-id/kodepos/pkg/dataset"
)

// Rower is a value that renders as one CSV row.
type Rower interface {
	Row() []string
}

// WriteCSV writes header followed by one row per item.
func WriteCSV[T Rower](w io.Writer, header []string, items []T) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, item := range items {
		if err := cw.Write(item.Row()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteRecordsCSV writes records with the canonical header.
func WriteRecordsCSV(w io.Writer, records []dataset.Record) error {
	return WriteCSV(w, dataset.Header, records)
}

// WriteEnrichedCSV writes enriched records with the extended header.
func WriteEnrichedCSV(w io.Writer, records []dataset.EnrichedRecord) error {
	return WriteCSV(w, dataset.EnrichedHeader, records)
}

// WriteJSON writes v as two-space indented JSON followed by a newline.
// HTML characters are not escaped.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteJSONL writes one compact JSON object per line.
func WriteJSONL[T any](w io.Writer, items []T) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, item := range items {
		if err := enc.Encode(item); err != nil {
			return err
		}
	}
	return nil
}
