package reconcile

import (
	"fmt"

	"github.com/kodepos-id/kodepos/pkg/dataset"
	"github.com/kodepos-id/kodepos/pkg/errors"
	"github.com/kodepos-id/kodepos/pkg/sources"
)

// Policy is the metadata stamped on records a layer wins.
// A zero Year means the build year.
type Policy struct {
	Source     sources.ID         `yaml:"source" json:"source"`
	Status     dataset.Status     `yaml:"status" json:"status"`
	Confidence dataset.Confidence `yaml:"confidence" json:"confidence"`
	Year       int                `yaml:"year,omitempty" json:"year,omitempty"`
}

// Validate checks that p can label an assigned record.
func (p Policy) Validate() error {
	if p.Source == "" || p.Source == sources.NoneID {
		return errors.NewValidationError("source", p.Source, "layer source label must be set and not NONE")
	}
	if !p.Status.IsValid() || p.Status == dataset.StatusUnassigned {
		return errors.NewValidationError("status", p.Status, "layer status must be OFFICIAL or AUGMENTED")
	}
	if err := p.Confidence.Validate(); err != nil {
		return err
	}
	if p.Year < 0 {
		return errors.NewValidationError("year", p.Year, "must not be negative")
	}
	return nil
}

// Layer pairs a source mapping with the policy applied when it wins.
type Layer struct {
	Mapping *sources.Mapping
	Policy  Policy
}

// Label returns the layer's source label.
func (l Layer) Label() string {
	return l.Policy.Source.String()
}

func (l Layer) validate(rank int) error {
	if l.Mapping == nil {
		return errors.NewValidationError("mapping", nil, fmt.Sprintf("layer %d has no mapping", rank))
	}
	return l.Policy.Validate()
}
