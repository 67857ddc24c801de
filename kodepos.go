// Package kodepos builds the canonical village postal-code dataset.
//
// A Builder resolves a named profile into a precedence chain of sources,
// loads the registry and the sources, reconciles them and writes the
// outputs together with a manifest:
//
//	b, err := kodepos.New(kodepos.WithBuildYear(2025))
//	if err != nil {
//	    return err
//	}
//	res, err := b.Build(ctx, kodepos.Plan{
//	    Profile: profiles.PosIndonesia,
//	    Regions: "regions_id.csv",
//	    Inputs:  map[string]string{profiles.InputAugmented: "village_postal_codes.jsonl"},
//	    OutDir:  "dist",
//	})
package kodepos

import (
	"fmt"
	"os"

	"github.com/kodepos-id/kodepos/pkg/codec"
	"github.com/kodepos-id/kodepos/pkg/coverage"
	"github.com/kodepos-id/kodepos/pkg/errors"
	"github.com/kodepos-id/kodepos/pkg/manifest"
	"github.com/kodepos-id/kodepos/pkg/profiles"
	"github.com/kodepos-id/kodepos/pkg/reconcile"
	"github.com/kodepos-id/kodepos/pkg/registry"
)

// Builder runs dataset builds. It is safe to reuse across builds; hooks
// run synchronously on the building goroutine, except source hooks which
// may run concurrently with each other.
type Builder struct {
	config *config
	hooks  *hooks
}

// New creates a Builder with the given options
func New(opts ...Option) (*Builder, error) {
	c := defaultConfig()
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, fmt.Errorf("applying options: %w", err)
		}
	}
	return &Builder{config: c, hooks: newHooks()}, nil
}

// OnRegistryLoaded registers a callback for when the registry is loaded
func (b *Builder) OnRegistryLoaded(fn RegistryLoadedHook) { b.hooks.OnRegistryLoaded(fn) }

// OnSourceLoaded registers a callback for every source mapping loaded
func (b *Builder) OnSourceLoaded(fn SourceLoadedHook) { b.hooks.OnSourceLoaded(fn) }

// OnReconciled registers a callback for when reconciliation completes
func (b *Builder) OnReconciled(fn ReconciledHook) { b.hooks.OnReconciled(fn) }

// OnArtifactWritten registers a callback for every output file written
func (b *Builder) OnArtifactWritten(fn ArtifactWrittenHook) { b.hooks.OnArtifactWritten(fn) }

// Profiles returns the profile set builds resolve against.
func (b *Builder) Profiles() profiles.Set {
	return b.config.profiles
}

// Plan names the files of one build.
type Plan struct {
	// Profile is the profile name
	Profile string
	// Regions is the registry snapshot path
	Regions string
	// Inputs maps input roles to source file paths
	Inputs map[string]string
	// OutDir receives the outputs; "" is the working directory
	OutDir string
	// BuildYear overrides the builder's build year when positive
	BuildYear int
	// SkipEnriched suppresses the enriched output of profiles that define one
	SkipEnriched bool
	// ManifestPath overrides the default manifest location
	ManifestPath string
	// ProvenancePath, when set, receives the provenance map as YAML
	ProvenancePath string
}

// BuildResult is the outcome of a build.
type BuildResult struct {
	Profile   profiles.Profile
	Registry  *registry.Registry
	Result    *reconcile.Result
	Artifacts []codec.Artifact
	Manifest  *manifest.Manifest
	Coverage  coverage.Report
}

// resolved is a plan checked against its profile.
type resolved struct {
	plan      Plan
	profile   profiles.Profile
	buildYear int
	enriched  bool
	inputs    map[string]string
}

func (b *Builder) resolve(plan Plan) (*resolved, error) {
	p, err := b.config.profiles.Get(plan.Profile)
	if err != nil {
		return nil, errors.NewConfigError("build", "unknown profile "+plan.Profile, err)
	}
	if err := p.Validate(); err != nil {
		return nil, errors.NewConfigError("build", "invalid profile "+p.Name, err)
	}

	r := &resolved{
		plan:      plan,
		profile:   p,
		buildYear: b.config.buildYear,
		enriched:  p.Outputs.Enriched != "" && !plan.SkipEnriched,
		inputs:    make(map[string]string),
	}
	if plan.BuildYear > 0 {
		r.buildYear = plan.BuildYear
	}
	if r.buildYear == 0 {
		r.buildYear = b.config.now().UTC().Year()
	}

	if plan.Regions == "" {
		return nil, errors.NewConfigError("build", "registry snapshot path is required", nil)
	}
	if err := requireFile("registry", plan.Regions); err != nil {
		return nil, err
	}
	for _, role := range p.Inputs() {
		path := plan.Inputs[role]
		if path == "" {
			return nil, errors.NewConfigError("build",
				fmt.Sprintf("profile %s needs the %s input", p.Name, role), nil)
		}
		if err := requireFile(role, path); err != nil {
			return nil, err
		}
		r.inputs[role] = path
	}
	return r, nil
}

func requireFile(role, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.NewConfigError("build", fmt.Sprintf("missing %s input: %s", role, path), err)
		}
		return errors.WrapIO("stat", path, err)
	}
	if info.IsDir() {
		return errors.NewConfigError("build", fmt.Sprintf("%s input is a directory: %s", role, path), nil)
	}
	return nil
}
