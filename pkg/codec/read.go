package codec

import (
	"encoding/json"
	"io"
	"os"

	"github.com/kodepos-id/kodepos/pkg/dataset"
	"github.com/kodepos-id/kodepos/pkg/errors"
)

// ReadRecords decodes a canonical JSON array and checks every record.
func ReadRecords(r io.Reader) ([]dataset.Record, error) {
	var records []dataset.Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, errors.WrapParse("json", "", err)
	}
	for i, rec := range records {
		if err := rec.Validate(); err != nil {
			return nil, errors.NewValidationError("records", i, err.Error())
		}
	}
	return records, nil
}

// ReadRecordsFile reads a canonical JSON array from path.
func ReadRecordsFile(path string) ([]dataset.Record, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewConfigError("codec", "missing dataset: "+path, err)
		}
		return nil, errors.WrapIO("open", path, err)
	}
	defer func() { _ = f.Close() }()

	records, err := ReadRecords(f)
	if err != nil {
		var pe *errors.ParseError
		if errors.As(err, &pe) {
			pe.File = path
		}
		return nil, err
	}
	return records, nil
}
