package coverage

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/kodepos-id/kodepos/pkg/dataset"
	"github.com/kodepos-id/kodepos/pkg/errors"
	"github.com/kodepos-id/kodepos/pkg/sources"
	"github.com/kodepos-id/kodepos/pkg/villagecode"
)

// SeenSet is the set of normalized village codes a source or build covered.
type SeenSet map[string]struct{}

// NewSeenSet returns a set holding the normalized form of codes.
func NewSeenSet(codes ...string) SeenSet {
	s := make(SeenSet, len(codes))
	for _, c := range codes {
		s.Add(c)
	}
	return s
}

// Add normalizes code and inserts it unless it normalizes to "".
func (s SeenSet) Add(code string) {
	if code = villagecode.Normalize(code); code != "" {
		s[code] = struct{}{}
	}
}

// Contains normalizes code and reports whether it is in the set.
func (s SeenSet) Contains(code string) bool {
	_, ok := s[villagecode.Normalize(code)]
	return ok
}

// Len returns the set size.
func (s SeenSet) Len() int {
	return len(s)
}

// SeenFromRecords collects the codes of records that carry a postal code.
func SeenFromRecords(records []dataset.Record) SeenSet {
	s := make(SeenSet, len(records))
	for _, r := range records {
		if r.Assigned() {
			s.Add(r.VillageCode)
		}
	}
	return s
}

// SeenFromMapping collects every code of a source mapping.
func SeenFromMapping(m *sources.Mapping) SeenSet {
	return NewSeenSet(m.Codes()...)
}

// ReadSeenJSONL collects the key field of every object line of r. Blank
// and malformed lines are ignored.
func ReadSeenJSONL(ctx context.Context, r io.Reader, key string) (SeenSet, error) {
	s := make(SeenSet)
	err := sources.ScanObjects(ctx, r, func(obj map[string]any) {
		if code := villagecode.NormalizeAny(obj[key]); code != "" {
			s[code] = struct{}{}
		}
	}, nil)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Format names the layout of a file the seen set is read from.
type Format string

// Seen-set input formats.
const (
	// FormatJSONL is an ingestion result, one object per line
	FormatJSONL Format = "jsonl"
	// FormatOpenDataCSV is the Open Data Jabar export
	FormatOpenDataCSV Format = "csv-opendata"
	// FormatRecords is a canonical JSON array of records
	FormatRecords Format = "records"
)

// ReadSeenFile reads a seen set from path in the given format. A missing
// file is a configuration error.
func ReadSeenFile(ctx context.Context, path string, format Format) (SeenSet, error) {
	if format == FormatOpenDataCSV {
		m, err := sources.LoadFile(ctx, sources.OpenDataJabar(), path)
		if err != nil {
			return nil, err
		}
		return SeenFromMapping(m), nil
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewConfigError("coverage", "missing ingestion output: "+path, err)
		}
		return nil, errors.WrapIO("open", path, err)
	}
	defer f.Close() //nolint:errcheck

	switch format {
	case FormatJSONL, "":
		s, err := ReadSeenJSONL(ctx, f, "village_code")
		if err != nil {
			return nil, errors.WrapParse("jsonl", path, err)
		}
		return s, nil
	case FormatRecords:
		var records []dataset.Record
		if err := json.NewDecoder(f).Decode(&records); err != nil {
			return nil, errors.WrapParse("json", path, err)
		}
		return SeenFromRecords(records), nil
	}
	return nil, errors.NewValidationError("format", format, "unknown seen-set format")
}
