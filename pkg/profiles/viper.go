package profiles

import (
	"github.com/spf13/viper"

	"github.com/kodepos-id/kodepos/pkg/errors"
)

// ConfigKey is the config file key holding profile overrides.
const ConfigKey = "profiles"

// FromViper returns the bundled profiles merged with those under the
// profiles key of v. A configured profile replaces the bundled one of the
// same name field by field: layers, when given, replace the whole chain,
// and empty output names keep the bundled value.
func FromViper(v *viper.Viper) (Set, error) {
	set := Builtin()
	if v == nil || !v.IsSet(ConfigKey) {
		return set, nil
	}

	var configured map[string]Profile
	if err := v.UnmarshalKey(ConfigKey, &configured); err != nil {
		return nil, errors.NewConfigError("profiles", "decoding profiles", err)
	}

	for name, override := range configured {
		p, ok := set[name]
		if !ok {
			p = Profile{}
		}
		p.Name = name
		if override.Description != "" {
			p.Description = override.Description
		}
		if len(override.Layers) > 0 {
			p.Layers = override.Layers
		}
		if override.Outputs.CSV != "" {
			p.Outputs.CSV = override.Outputs.CSV
		}
		if override.Outputs.JSON != "" {
			p.Outputs.JSON = override.Outputs.JSON
		}
		if override.Outputs.Enriched != "" {
			p.Outputs.Enriched = override.Outputs.Enriched
		}
		if err := p.Validate(); err != nil {
			return nil, errors.NewConfigError("profiles", "profile "+name, err)
		}
		set[name] = p
	}
	return set, nil
}
