// Package dataset defines the canonical postal-code record and its
// serialized forms.
package dataset

import (
	"strconv"

	"github.com/kodepos-id/kodepos/pkg/errors"
)

// Status classifies how a record's postal code was obtained.
type Status string

// Record statuses.
const (
	StatusOfficial   Status = "OFFICIAL"
	StatusAugmented  Status = "AUGMENTED"
	StatusUnassigned Status = "UNASSIGNED"
)

// Statuses returns every status in display order.
func Statuses() []Status {
	return []Status{StatusOfficial, StatusAugmented, StatusUnassigned}
}

// String returns the status label.
func (s Status) String() string {
	return string(s)
}

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	switch s {
	case StatusOfficial, StatusAugmented, StatusUnassigned:
		return true
	}
	return false
}

// SourceNone is the source label of records no source could fill.
const SourceNone = "NONE"

// Confidence is a score in [0, 1]. It always serializes with at least one
// decimal place, so 1 is written as 1.0.
type Confidence float64

// String formats c the way it is written to CSV.
func (c Confidence) String() string {
	s := strconv.FormatFloat(float64(c), 'f', -1, 64)
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			return s
		}
	}
	return s + ".0"
}

// MarshalJSON implements json.Marshaler.
func (c Confidence) MarshalJSON() ([]byte, error) {
	return []byte(c.String()), nil
}

// MarshalYAML implements yaml.BytesMarshaler.
func (c Confidence) MarshalYAML() ([]byte, error) {
	return []byte(c.String()), nil
}

// Validate checks the range.
func (c Confidence) Validate() error {
	if c < 0 || c > 1 {
		return errors.NewValidationError("confidence", float64(c), "must be between 0 and 1")
	}
	return nil
}

// Record is one canonical output row. Field order is the serialized order.
type Record struct {
	PostalCode  *string    `json:"postal_code" yaml:"postal_code"`
	VillageCode string     `json:"village_code" yaml:"village_code"`
	VillageName string     `json:"village_name" yaml:"village_name"`
	VillageType string     `json:"village_type" yaml:"village_type"`
	Source      string     `json:"source" yaml:"source"`
	Confidence  Confidence `json:"confidence" yaml:"confidence"`
	Year        int        `json:"year" yaml:"year"`
	Status      Status     `json:"status" yaml:"status"`
}

// Header is the CSV header of Record.
var Header = []string{
	"postal_code", "village_code", "village_name", "village_type",
	"source", "confidence", "year", "status",
}

// Postal returns the postal code or "" for unassigned records.
func (r Record) Postal() string {
	if r.PostalCode == nil {
		return ""
	}
	return *r.PostalCode
}

// Assigned reports whether the record carries a postal code.
func (r Record) Assigned() bool {
	return r.PostalCode != nil
}

// Row returns the record as CSV cells in Header order. A null postal code
// is an empty cell.
func (r Record) Row() []string {
	return []string{
		r.Postal(),
		r.VillageCode,
		r.VillageName,
		r.VillageType,
		r.Source,
		r.Confidence.String(),
		strconv.Itoa(r.Year),
		r.Status.String(),
	}
}

// Validate checks the coupling between postal code, status, source and
// confidence.
func (r Record) Validate() error {
	if r.VillageCode == "" {
		return errors.NewValidationError("village_code", r.VillageCode, "must not be empty")
	}
	if !r.Status.IsValid() {
		return errors.NewValidationError("status", r.Status, "unknown status")
	}
	if err := r.Confidence.Validate(); err != nil {
		return err
	}
	unassigned := r.Status == StatusUnassigned
	switch {
	case unassigned != (r.PostalCode == nil):
		return errors.NewValidationError("postal_code", r.Postal(), "must be null exactly when status is UNASSIGNED")
	case unassigned != (r.Source == SourceNone):
		return errors.NewValidationError("source", r.Source, "must be NONE exactly when status is UNASSIGNED")
	case unassigned && r.Confidence != 0:
		return errors.NewValidationError("confidence", float64(r.Confidence), "must be 0.0 when status is UNASSIGNED")
	}
	return nil
}

// EnrichedRecord is a Record followed by the registry ancestors.
type EnrichedRecord struct {
	Record
	DistrictCode string `json:"district_code" yaml:"district_code"`
	DistrictName string `json:"district_name" yaml:"district_name"`
	RegencyCode  string `json:"regency_code" yaml:"regency_code"`
	RegencyName  string `json:"regency_name" yaml:"regency_name"`
	ProvinceCode string `json:"province_code" yaml:"province_code"`
	ProvinceName string `json:"province_name" yaml:"province_name"`
}

// EnrichedHeader is the CSV header of EnrichedRecord.
var EnrichedHeader = append(append([]string{}, Header...),
	"district_code", "district_name",
	"regency_code", "regency_name",
	"province_code", "province_name",
)

// Row returns the enriched record as CSV cells in EnrichedHeader order.
func (r EnrichedRecord) Row() []string {
	return append(r.Record.Row(),
		r.DistrictCode, r.DistrictName,
		r.RegencyCode, r.RegencyName,
		r.ProvinceCode, r.ProvinceName,
	)
}

// Ptr returns a pointer to s, for building assigned records.
func Ptr(s string) *string {
	return &s
}
