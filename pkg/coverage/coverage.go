// Package coverage measures how much of the registry a source or build
// covers and lists the villages it missed.
package coverage

import (
	"math"
	"time"

	"github.com/kodepos-id/kodepos/pkg/constants"
	"github.com/kodepos-id/kodepos/pkg/registry"
)

// Report is the coverage summary written to coverage.json.
type Report struct {
	Source          string  `json:"source" yaml:"source"`
	Baseline        string  `json:"baseline" yaml:"baseline"`
	TotalVillages   int     `json:"total_villages" yaml:"total_villages"`
	Matched         int     `json:"matched" yaml:"matched"`
	Missing         int     `json:"missing" yaml:"missing"`
	CoveragePercent float64 `json:"coverage_percent" yaml:"coverage_percent"`
	GeneratedAt     string  `json:"generated_at" yaml:"generated_at"`
}

// Options labels a report.
type Options struct {
	Source   string
	Baseline string
	// Now stamps generated_at; defaults to time.Now.
	Now func() time.Time
}

// Result is the outcome of comparing a seen set against the registry.
type Result struct {
	Report Report
	// Missing lists registry units absent from the seen set, in code order.
	Missing []registry.Unit
}

// Audit compares seen against reg. Codes in seen that are not in the registry
// do not count as matched. Neither argument is modified.
func Audit(reg *registry.Registry, seen SeenSet, opts Options) *Result {
	if opts.Baseline == "" {
		opts.Baseline = constants.BaselineRegionID
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	a := &Result{}
	matched := 0
	reg.Each(func(u registry.Unit) bool {
		if seen.Contains(u.Code) {
			matched++
		} else {
			a.Missing = append(a.Missing, u)
		}
		return true
	})

	total := reg.Len()
	a.Report = Report{
		Source:          opts.Source,
		Baseline:        opts.Baseline,
		TotalVillages:   total,
		Matched:         matched,
		Missing:         total - matched,
		CoveragePercent: Percent(matched, total),
		GeneratedAt:     now().UTC().Format(constants.TimeFormatISO8601),
	}
	return a
}

// Percent returns 100*matched/total rounded to two decimals, or 0 when
// total is 0.
func Percent(matched, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(matched)*10000/float64(total)) / 100
}
