package kodepos

import (
	"context"
	"io"
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/kodepos-id/kodepos/pkg/codec"
	"github.com/kodepos-id/kodepos/pkg/coverage"
	"github.com/kodepos-id/kodepos/pkg/dataset"
	"github.com/kodepos-id/kodepos/pkg/logging"
	"github.com/kodepos-id/kodepos/pkg/manifest"
	"github.com/kodepos-id/kodepos/pkg/profiles"
	"github.com/kodepos-id/kodepos/pkg/provenance"
	"github.com/kodepos-id/kodepos/pkg/reconcile"
	"github.com/kodepos-id/kodepos/pkg/registry"
	"github.com/kodepos-id/kodepos/pkg/sources"
)

// RegistryRole is the manifest role of the registry snapshot.
const RegistryRole = "registry"

// Build runs one build. Every input is checked before anything is read,
// and nothing is written until reconciliation has succeeded.
func (b *Builder) Build(ctx context.Context, plan Plan) (*BuildResult, error) {
	r, err := b.resolve(plan)
	if err != nil {
		return nil, err
	}
	ctx = logging.WithProfile(ctx, r.profile.Name)
	logger := logging.FromContext(ctx)
	logger.Info().Int("build_year", r.buildYear).Strs("inputs", r.profile.Inputs()).Msg("Starting build")

	reg, mappings, err := b.load(ctx, r)
	if err != nil {
		return nil, err
	}

	chain := make([]reconcile.Layer, len(r.profile.Layers))
	for i, l := range r.profile.Layers {
		chain[i] = reconcile.Layer{Mapping: mappings[layerKey(l)], Policy: l.Policy()}
	}
	rec, err := reconcile.New(
		reconcile.WithBuildYear(r.buildYear),
		reconcile.WithChain(chain...),
		reconcile.WithProvenance(b.config.provenance || plan.ProvenancePath != ""),
	)
	if err != nil {
		return nil, err
	}
	result, err := rec.Reconcile(ctx, reg)
	if err != nil {
		return nil, err
	}
	b.hooks.reconciled(result)

	out := &BuildResult{Profile: r.profile, Registry: reg, Result: result}
	if err := b.write(ctx, r, out); err != nil {
		return nil, err
	}

	out.Coverage = coverage.Audit(reg, coverage.SeenFromRecords(result.Records), coverage.Options{
		Source: strings.Join(result.Metadata.Chain, "+"),
		Now:    b.config.now,
	}).Report
	logger.Info().
		Int("total_villages", out.Coverage.TotalVillages).
		Int("matched", out.Coverage.Matched).
		Int("missing", out.Coverage.Missing).
		Float64("coverage_percent", out.Coverage.CoveragePercent).
		Msg("Build complete")
	return out, nil
}

// layerKey identifies the mapping a layer reads: layers sharing an input
// role and source share one mapping.
func layerKey(l profiles.Layer) string {
	return l.Input + "/" + l.Source.String()
}

func (b *Builder) load(ctx context.Context, r *resolved) (*registry.Registry, map[string]*sources.Mapping, error) {
	g, gctx := errgroup.WithContext(ctx)

	var reg *registry.Registry
	g.Go(func() error {
		opts := []registry.LoadOption{}
		if r.enriched {
			opts = append(opts, registry.WithAncestorsRequired())
		}
		var err error
		reg, err = registry.LoadFile(gctx, r.plan.Regions, opts...)
		return err
	})

	var keys []string
	layers := make(map[string]profiles.Layer)
	for _, l := range r.profile.Layers {
		k := layerKey(l)
		if _, ok := layers[k]; !ok {
			keys = append(keys, k)
			layers[k] = l
		}
	}
	loaded := make([]*sources.Mapping, len(keys))
	for i, k := range keys {
		l := layers[k]
		g.Go(func() error {
			adapter, err := l.Adapter()
			if err != nil {
				return err
			}
			m, err := sources.LoadFile(gctx, adapter, r.inputs[l.Input])
			if err != nil {
				return err
			}
			b.hooks.sourceLoaded(adapter.ID(), m)
			loaded[i] = m
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	b.hooks.registryLoaded(reg)

	mappings := make(map[string]*sources.Mapping, len(keys))
	for i, k := range keys {
		mappings[k] = loaded[i]
	}
	return reg, mappings, nil
}

func (b *Builder) write(ctx context.Context, r *resolved, out *BuildResult) error {
	logger := logging.FromContext(ctx)
	records := out.Result.Records
	dir := r.plan.OutDir

	type output struct {
		name  string
		write func(io.Writer) error
	}
	outputs := []output{
		{r.profile.Outputs.CSV, func(w io.Writer) error { return codec.WriteRecordsCSV(w, records) }},
		{r.profile.Outputs.JSON, func(w io.Writer) error { return codec.WriteJSON(w, records) }},
	}
	if r.enriched {
		enriched := out.Result.Enriched(out.Registry)
		outputs = append(outputs, output{r.profile.Outputs.Enriched, func(w io.Writer) error {
			return codec.WriteEnrichedCSV(w, enriched)
		}})
	}

	for _, o := range outputs {
		a, err := codec.WriteFile(filepath.Join(dir, o.name), o.write)
		if err != nil {
			return err
		}
		logger.Info().Str("artifact", a.Path).Str("sha256", a.SHA256).Int64("bytes", a.Bytes).Msg("Wrote output")
		out.Artifacts = append(out.Artifacts, a)
		b.hooks.artifactWritten(a)
	}

	if r.plan.ProvenancePath != "" {
		if err := provenance.Save(r.plan.ProvenancePath, out.Result.Provenance); err != nil {
			return err
		}
		logger.Info().
			Str("artifact", r.plan.ProvenancePath).
			Int("conflicts", len(out.Result.Provenance.Conflicts())).
			Msg("Wrote provenance")
	}

	if !b.config.manifest {
		return nil
	}
	m := manifest.New(r.profile.Name, r.buildYear)
	m.GeneratedAt = b.config.now().UTC()
	if err := m.AddInput(RegistryRole, r.plan.Regions); err != nil {
		return err
	}
	for _, role := range slices.Sorted(maps.Keys(r.inputs)) {
		if err := m.AddInput(role, r.inputs[role]); err != nil {
			return err
		}
	}
	for _, a := range out.Artifacts {
		m.AddOutput(a)
	}
	m.SetResult(out.Result)

	path := r.plan.ManifestPath
	if path == "" {
		path = manifest.DefaultPath(dir)
	}
	a, err := m.Write(path)
	if err != nil {
		return err
	}
	logger.Info().Str("artifact", a.Path).Str("build_id", m.BuildID).Str("fingerprint", m.Fingerprint).Msg("Wrote manifest")
	out.Manifest = m
	b.hooks.artifactWritten(a)
	return nil
}

// Unassigned returns the records without a postal code.
func (r *BuildResult) Unassigned() []dataset.Record {
	var out []dataset.Record
	for _, rec := range r.Result.Records {
		if !rec.Assigned() {
			out = append(out, rec)
		}
	}
	return out
}
