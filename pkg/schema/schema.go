// Package schema validates published record files against the record
// JSON Schema (draft 2020-12).
package schema

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/kodepos-id/kodepos/pkg/constants"
	"github.com/kodepos-id/kodepos/pkg/errors"
)

//go:embed postal_code.schema.json
var defaultSchema []byte

const resourceName = "postal_code.schema.json"

// Validator checks records against a compiled schema.
type Validator struct {
	schema  *jsonschema.Schema
	printer *message.Printer
}

// Default returns a validator for the bundled record schema.
func Default() (*Validator, error) {
	return compile(resourceName, defaultSchema)
}

// DefaultSchema returns a copy of the bundled schema document.
func DefaultSchema() []byte {
	return bytes.Clone(defaultSchema)
}

// Load compiles the schema at path. A missing file is a configuration error.
func Load(path string) (*Validator, error) {
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewConfigError("schema", "missing schema file: "+path, err)
		}
		return nil, errors.WrapIO("read", path, err)
	}
	return compile(path, data)
}

func compile(name string, data []byte) (*Validator, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, errors.WrapParse("json", name, err)
	}
	c := jsonschema.NewCompiler()
	c.DefaultDraft(jsonschema.Draft2020)
	if err := c.AddResource(name, doc); err != nil {
		return nil, errors.NewConfigError("schema", "adding schema resource", err)
	}
	sch, err := c.Compile(name)
	if err != nil {
		return nil, errors.NewConfigError("schema", "compiling "+name, err)
	}
	return &Validator{schema: sch, printer: message.NewPrinter(language.English)}, nil
}

// Violation is one schema failure of one record.
type Violation struct {
	Index       int    `json:"index"`
	VillageCode string `json:"village_code,omitempty"`
	Location    string `json:"location"`
	Message     string `json:"message"`
}

// String formats the violation the way the validate command prints it.
func (v Violation) String() string {
	loc := ""
	if v.Location != "" {
		loc = " at " + v.Location
	}
	return fmt.Sprintf("Record #%d (%s)%s: %s", v.Index, v.VillageCode, loc, v.Message)
}

// Report is the outcome of validating a record file.
type Report struct {
	Records    int         `json:"records"`
	Violations []Violation `json:"violations,omitempty"`
	// Truncated is set when validation stopped at the violation limit.
	Truncated bool `json:"truncated,omitempty"`
}

// Valid reports whether no violation was found.
func (r *Report) Valid() bool {
	return len(r.Violations) == 0
}

// ValidateRecords reads a JSON array from r and validates each element.
// It stops after max violations; max <= 0 means constants.MaxSchemaViolations.
// An input that is not a JSON array is an error, not a violation.
func (v *Validator) ValidateRecords(r io.Reader, max int) (*Report, error) {
	if max <= 0 {
		max = constants.MaxSchemaViolations
	}

	inst, err := jsonschema.UnmarshalJSON(r)
	if err != nil {
		return nil, errors.WrapParse("json", "records", err)
	}
	records, ok := inst.([]any)
	if !ok {
		return nil, errors.NewValidationError("", nil, "records file must be an array of records")
	}

	report := &Report{Records: len(records)}
	for i, rec := range records {
		for _, viol := range v.validate(i, rec) {
			if len(report.Violations) >= max {
				report.Truncated = true
				return report, nil
			}
			report.Violations = append(report.Violations, viol)
		}
	}
	return report, nil
}

// ValidateFile validates the records file at path.
func (v *Validator) ValidateFile(path string, max int) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewConfigError("schema", "missing data file: "+path, err)
		}
		return nil, errors.WrapIO("open", path, err)
	}
	defer f.Close() //nolint:errcheck
	return v.ValidateRecords(f, max)
}

func (v *Validator) validate(index int, rec any) []Violation {
	err := v.schema.Validate(rec)
	if err == nil {
		return nil
	}

	code := ""
	if obj, ok := rec.(map[string]any); ok {
		if s, ok := obj["village_code"].(string); ok {
			code = s
		}
	}

	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return []Violation{{Index: index, VillageCode: code, Message: err.Error()}}
	}

	var out []Violation
	for _, leaf := range leaves(ve) {
		out = append(out, Violation{
			Index:       index,
			VillageCode: code,
			Location:    pointer(leaf.InstanceLocation),
			Message:     leaf.ErrorKind.LocalizedString(v.printer),
		})
	}
	slices.SortStableFunc(out, func(a, b Violation) int {
		return strings.Compare(a.Location, b.Location)
	})
	return out
}

func leaves(ve *jsonschema.ValidationError) []*jsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return []*jsonschema.ValidationError{ve}
	}
	var out []*jsonschema.ValidationError
	for _, c := range ve.Causes {
		out = append(out, leaves(c)...)
	}
	return out
}

func pointer(tokens []string) string {
	if len(tokens) == 0 {
		return ""
	}
	return "/" + strings.Join(tokens, "/")
}
