package sources

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/kodepos-id/kodepos/pkg/constants"
	"github.com/kodepos-id/kodepos/pkg/errors"
	"github.com/kodepos-id/kodepos/pkg/villagecode"
)

// JSONLAdapter reads one JSON object per line.
//
// Blank lines are ignored. Lines that are not a JSON object, or that lack
// either key, are skipped and counted rather than failing the load.
type JSONLAdapter struct {
	Source    ID
	CodeKey   string
	PostalKey string
	// Name is used in error messages; defaults to the source label.
	Name string
}

// ID implements Adapter.
func (a *JSONLAdapter) ID() ID { return a.Source }

// Format implements Adapter.
func (a *JSONLAdapter) Format() Format { return FormatJSONL }

// Load implements Adapter.
func (a *JSONLAdapter) Load(ctx context.Context, r io.Reader) (*Mapping, error) {
	name := a.Name
	if name == "" {
		name = a.Source.String()
	}

	m := NewMapping(a.Source)
	err := ScanObjects(ctx, r, func(obj map[string]any) {
		rawCode, okCode := obj[a.CodeKey]
		rawPostal, okPostal := obj[a.PostalKey]
		if !okCode || !okPostal {
			m.Skip(SkipMissingKey)
			return
		}
		m.Set(villagecode.NormalizeAny(rawCode), scalarString(rawPostal))
	}, func() {
		m.Skip(SkipMalformed)
	})
	if err != nil {
		return nil, errors.WrapParse("jsonl", name, err)
	}
	return m, nil
}

// ScanObjects calls fn for every line of r that decodes to a JSON object
// and bad for every other non-blank line. Only read failures and lines
// longer than constants.MaxJSONLLineBytes end the scan with an error.
func ScanObjects(ctx context.Context, r io.Reader, fn func(map[string]any), bad func()) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), constants.MaxJSONLLineBytes)

	line := 0
	for scanner.Scan() {
		line++
		if line%10000 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}

		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		var obj map[string]any
		if err := dec.Decode(&obj); err != nil || obj == nil {
			if bad != nil {
				bad()
			}
			continue
		}
		fn(obj)
	}
	return scanner.Err()
}

// scalarString renders a decoded JSON scalar the way it appears in the
// source file. Objects, arrays and null render as "".
func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}
