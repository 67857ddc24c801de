// Package reconcile merges postal-code sources onto the village registry.
//
// Sources form an ordered precedence chain. For every registry unit the
// first layer holding its code supplies the postal code and the policy
// metadata; a unit no layer holds becomes UNASSIGNED. Every unit yields
// exactly one record and records come out in ascending code order, so the
// result is a pure function of the registry, the chain and the build year.
package reconcile

import (
	"context"
	"time"

	"github.com/kodepos-id/kodepos/pkg/dataset"
	"github.com/kodepos-id/kodepos/pkg/logging"
	"github.com/kodepos-id/kodepos/pkg/provenance"
	"github.com/kodepos-id/kodepos/pkg/registry"
)

const cancelCheckInterval = 4096

// Reconcile produces one record per registry unit.
func (r *Reconciler) Reconcile(ctx context.Context, reg *registry.Registry) (*Result, error) {
	start := time.Now()
	logger := logging.FromContext(ctx)

	cfg := r.config
	tracker := provenance.NewTracker(cfg.TrackProvenance)
	stats := newStats(cfg.Chain)
	records := make([]dataset.Record, 0, reg.Len())

	var ctxErr error
	i := 0
	reg.Each(func(u registry.Unit) bool {
		if i%cancelCheckInterval == 0 {
			if ctxErr = ctx.Err(); ctxErr != nil {
				return false
			}
		}
		i++

		rec := dataset.Record{
			VillageCode: u.Code,
			VillageName: u.Name,
			VillageType: u.Type,
			Source:      dataset.SourceNone,
			Confidence:  0,
			Year:        cfg.BuildYear,
			Status:      dataset.StatusUnassigned,
		}

		var chosen string
		for rank, layer := range cfg.Chain {
			postal, ok := layer.Mapping.Lookup(u.Code)
			if !ok {
				continue
			}
			selected := !rec.Assigned()
			if selected {
				chosen = postal
				rec = r.assign(rec, postal, layer.Policy)
			} else if postal != chosen {
				stats.Conflicts++
			}
			tracker.Track(u.Code, provenance.Provenance{
				Source:   layer.Label(),
				Postal:   postal,
				Rank:     rank,
				Selected: selected,
			})
		}

		stats.add(rec)
		records = append(records, rec)
		return true
	})
	if ctxErr != nil {
		return nil, ctxErr
	}

	for _, layer := range cfg.Chain {
		orphans := 0
		for _, code := range layer.Mapping.Codes() {
			if !reg.Contains(code) {
				orphans++
			}
		}
		stats.Orphans[layer.Label()] = orphans
	}

	end := time.Now()
	result := &Result{
		Records:    records,
		Stats:      stats,
		Provenance: tracker.Map(),
		Metadata: Metadata{
			StartTime: start,
			EndTime:   end,
			Duration:  end.Sub(start),
			Chain:     cfg.Labels(),
			BuildYear: cfg.BuildYear,
		},
	}

	logger.Info().
		Int("villages", stats.Total).
		Int("assigned", stats.Assigned()).
		Int("unassigned", stats.ByStatus[dataset.StatusUnassigned]).
		Int("conflicts", stats.Conflicts).
		Dur("duration", result.Metadata.Duration).
		Msg("Reconciled registry")
	return result, nil
}

func (r *Reconciler) assign(rec dataset.Record, postal string, p Policy) dataset.Record {
	rec.PostalCode = dataset.Ptr(postal)
	rec.Source = p.Source.String()
	rec.Status = p.Status
	rec.Confidence = p.Confidence
	rec.Year = p.Year
	if rec.Year == 0 {
		rec.Year = r.config.BuildYear
	}
	return rec
}
