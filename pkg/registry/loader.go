package registry

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/kodepos-id/kodepos/internal/tabular"
	"github.com/kodepos-id/kodepos/pkg/errors"
	"github.com/kodepos-id/kodepos/pkg/logging"
	"github.com/kodepos-id/kodepos/pkg/villagecode"
)

// Registry column names.
const (
	ColVillageCode  = "village_code"
	ColVillageName  = "village_name"
	ColVillageType  = "village_type"
	ColDistrictCode = "district_code"
	ColDistrictName = "district_name"
	ColRegencyCode  = "regency_code"
	ColRegencyName  = "regency_name"
	ColProvinceCode = "province_code"
	ColProvinceName = "province_name"
)

// RequiredColumns must be present in every registry snapshot.
var RequiredColumns = []string{ColVillageCode, ColVillageName, ColVillageType}

// AncestorColumns are optional unless WithAncestorsRequired is set.
var AncestorColumns = []string{
	ColDistrictCode, ColDistrictName,
	ColRegencyCode, ColRegencyName,
	ColProvinceCode, ColProvinceName,
}

type loadOptions struct {
	name              string
	ancestorsRequired bool
	allowEmpty        bool
}

// LoadOption configures Load.
type LoadOption func(*loadOptions)

// WithName sets the artifact name used in error messages.
func WithName(name string) LoadOption {
	return func(o *loadOptions) {
		o.name = name
	}
}

// WithAncestorsRequired makes the ancestor columns mandatory. Builds that
// emit enriched output need them.
func WithAncestorsRequired() LoadOption {
	return func(o *loadOptions) {
		o.ancestorsRequired = true
	}
}

// WithAllowEmpty accepts a snapshot with a header and no rows.
func WithAllowEmpty() LoadOption {
	return func(o *loadOptions) {
		o.allowEmpty = true
	}
}

// LoadFile opens path and loads it with Load. A missing file is a
// configuration error.
func LoadFile(ctx context.Context, path string, opts ...LoadOption) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewConfigError("registry", "missing region-id artifact: "+path, err)
		}
		return nil, errors.WrapIO("open", path, err)
	}
	defer f.Close() //nolint:errcheck

	opts = append([]LoadOption{WithName(path)}, opts...)
	return Load(ctx, f, opts...)
}

// Load parses a flattened region-id CSV snapshot. Missing required columns,
// an empty village_code, or a duplicate code abort the load.
func Load(ctx context.Context, r io.Reader, opts ...LoadOption) (*Registry, error) {
	o := &loadOptions{name: "regions_id.csv"}
	for _, opt := range opts {
		opt(o)
	}
	logger := logging.FromContext(ctx)

	reader, err := tabular.NewReader(r, 0)
	if err != nil {
		if err == io.EOF {
			return nil, errors.NewSchemaError(o.name, RequiredColumns)
		}
		return nil, errors.WrapParse("csv", o.name, err)
	}

	required := RequiredColumns
	if o.ancestorsRequired {
		required = append(slices.Clone(RequiredColumns), AncestorColumns...)
	}
	if missing := reader.Header().Missing(required...); len(missing) > 0 {
		return nil, errors.NewSchemaError(o.name, missing)
	}

	var units []Unit
	seen := make(map[string]int)
	for {
		row, err := reader.Next()
		if err == io.EOF {
			break
		}
		line := reader.Line()
		if err != nil {
			return nil, &errors.ParseError{Format: "csv", File: o.name, Line: line, Message: err.Error(), Err: err}
		}
		if line%10000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		get := row.Get

		code := villagecode.Normalize(get(ColVillageCode))
		if code == "" {
			return nil, &errors.ValidationError{
				Field:   ColVillageCode,
				Message: fmt.Sprintf("empty village_code in %s at line %d", o.name, line),
			}
		}
		if first, dup := seen[code]; dup {
			logger.Error().Str("village_code", code).Int("first_line", first).Int("line", line).Msg("Duplicate village_code in registry")
			return nil, &errors.DuplicateError{Artifact: o.name, ID: code, Line: line}
		}
		seen[code] = line

		if lvl := villagecode.LevelOf(code); lvl != villagecode.LevelVillage {
			logger.Debug().Str("village_code", code).Stringer("level", lvl).Msg("Registry code is not village-length")
		}

		units = append(units, Unit{
			Code:         code,
			Name:         get(ColVillageName),
			Type:         get(ColVillageType),
			DistrictCode: get(ColDistrictCode),
			DistrictName: get(ColDistrictName),
			RegencyCode:  get(ColRegencyCode),
			RegencyName:  get(ColRegencyName),
			ProvinceCode: get(ColProvinceCode),
			ProvinceName: get(ColProvinceName),
		})
	}

	if len(units) == 0 && !o.allowEmpty {
		return nil, errors.NewValidationError("", nil, "no villages loaded from "+o.name)
	}

	reg, err := New(units)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("artifact", o.name).Int("villages", reg.Len()).Msg("Loaded registry")
	return reg, nil
}
