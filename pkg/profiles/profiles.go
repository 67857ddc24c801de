// Package profiles names the concrete builds: which sources form the
// precedence chain, what policy each source carries, and where outputs go.
//
// The bundled profiles reproduce the published datasets. Any of them can
// be overridden, and new ones added, under the profiles key of the config
// file.
package profiles

import (
	"fmt"
	"maps"
	"slices"

	"github.com/kodepos-id/kodepos/pkg/constants"
	"github.com/kodepos-id/kodepos/pkg/dataset"
	"github.com/kodepos-id/kodepos/pkg/errors"
	"github.com/kodepos-id/kodepos/pkg/reconcile"
	"github.com/kodepos-id/kodepos/pkg/sources"
)

// Bundled profile names.
const (
	OpenDataJabar = "opendata-jabar"
	PosIndonesia  = "pos-indonesia"
	Combined      = "combined"
)

// Input roles a layer reads from.
const (
	InputOfficial  = "official"
	InputAugmented = "augmented"
)

// Layer configures one link of the precedence chain.
type Layer struct {
	// Input is the role whose file feeds this layer
	Input      string             `mapstructure:"input" yaml:"input"`
	Source     sources.ID         `mapstructure:"source" yaml:"source"`
	Status     dataset.Status     `mapstructure:"status" yaml:"status"`
	Confidence dataset.Confidence `mapstructure:"confidence" yaml:"confidence"`
	// Year is stamped on records this layer wins; 0 means the build year
	Year int `mapstructure:"year" yaml:"year,omitempty"`
}

// Policy returns the reconcile policy of the layer.
func (l Layer) Policy() reconcile.Policy {
	return reconcile.Policy{
		Source:     l.Source,
		Status:     l.Status,
		Confidence: l.Confidence,
		Year:       l.Year,
	}
}

// Adapter returns the source adapter for the layer's source label.
func (l Layer) Adapter() (sources.Adapter, error) {
	return sources.ByName(l.Source.String())
}

// Outputs names the files a profile writes, relative to the output directory.
type Outputs struct {
	CSV  string `mapstructure:"csv" yaml:"csv"`
	JSON string `mapstructure:"json" yaml:"json"`
	// Enriched is written only when set
	Enriched string `mapstructure:"enriched" yaml:"enriched,omitempty"`
}

// Profile is a named build configuration.
type Profile struct {
	Name        string  `mapstructure:"-" yaml:"name"`
	Description string  `mapstructure:"description" yaml:"description"`
	Layers      []Layer `mapstructure:"layers" yaml:"layers"`
	Outputs     Outputs `mapstructure:"outputs" yaml:"outputs"`
}

// Inputs returns the distinct input roles the profile reads, in chain order.
func (p Profile) Inputs() []string {
	var roles []string
	for _, l := range p.Layers {
		if !slices.Contains(roles, l.Input) {
			roles = append(roles, l.Input)
		}
	}
	return roles
}

// Validate checks that the profile can drive a build.
func (p Profile) Validate() error {
	if p.Name == "" {
		return errors.NewValidationError("name", p.Name, "profile name is required")
	}
	if p.Outputs.CSV == "" || p.Outputs.JSON == "" {
		return errors.NewValidationError("outputs", p.Name, "profile must name csv and json outputs")
	}
	for i, l := range p.Layers {
		if l.Input == "" {
			return errors.NewValidationError("input", p.Name, fmt.Sprintf("layer %d has no input role", i))
		}
		if _, err := l.Adapter(); err != nil {
			return errors.NewValidationError("source", l.Source, fmt.Sprintf("layer %d of %s: %v", i, p.Name, err))
		}
		if err := l.Policy().Validate(); err != nil {
			return err
		}
	}
	return nil
}

var (
	officialLayer = Layer{
		Input:      InputOfficial,
		Source:     sources.OpenDataJabarID,
		Status:     dataset.StatusOfficial,
		Confidence: constants.ConfidenceOfficial,
		Year:       constants.OpenDataJabarYear,
	}
	augmentedLayer = Layer{
		Input:      InputAugmented,
		Source:     sources.PosIndonesiaID,
		Status:     dataset.StatusAugmented,
		Confidence: constants.ConfidenceAugmented,
	}
)

// Builtin returns the bundled profiles.
func Builtin() Set {
	return Set{
		OpenDataJabar: {
			Name:        OpenDataJabar,
			Description: "Open Data Jabar as the only official source",
			Layers:      []Layer{officialLayer},
			Outputs: Outputs{
				CSV:  constants.OutputCSV,
				JSON: constants.OutputJSON,
			},
		},
		PosIndonesia: {
			Name:        PosIndonesia,
			Description: "Pos Indonesia lookup results with registry ancestors",
			Layers:      []Layer{augmentedLayer},
			Outputs: Outputs{
				CSV:      "postal_codes_pos_indonesia.csv",
				JSON:     "postal_codes_pos_indonesia.json",
				Enriched: "postal_codes_pos_indonesia_enriched.csv",
			},
		},
		Combined: {
			Name:        Combined,
			Description: "Official values first, Pos Indonesia lookups for the rest",
			Layers:      []Layer{officialLayer, augmentedLayer},
			Outputs: Outputs{
				CSV:      "postal_codes_combined.csv",
				JSON:     "postal_codes_combined.json",
				Enriched: "postal_codes_combined_enriched.csv",
			},
		},
	}
}

// Set holds profiles by name.
type Set map[string]Profile

// Get returns the named profile.
func (s Set) Get(name string) (Profile, error) {
	p, ok := s[name]
	if !ok {
		return Profile{}, &errors.NotFoundError{Resource: "profile", ID: name}
	}
	return p, nil
}

// Names returns the profile names in sorted order.
func (s Set) Names() []string {
	return slices.Sorted(maps.Keys(s))
}
