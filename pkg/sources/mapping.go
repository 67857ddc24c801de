package sources

import (
	"maps"
	"slices"
	"strings"

	"github.com/kodepos-id/kodepos/pkg/villagecode"
)

// SkipReason says why a source row did not reach the mapping.
type SkipReason string

// Skip reasons counted by Mapping.
const (
	SkipEmptyCode   SkipReason = "empty_code"
	SkipEmptyPostal SkipReason = "empty_postal"
	SkipZeroPostal  SkipReason = "zero_postal"
	SkipShortRow    SkipReason = "short_row"
	SkipMalformed   SkipReason = "malformed"
	SkipMissingKey  SkipReason = "missing_key"
)

// Mapping is a filtered code to postal-code table built from one source.
// It is not safe for concurrent writes; once loaded it is only read.
type Mapping struct {
	source   ID
	postal   map[string]string
	skipped  map[SkipReason]int
	replaced int
}

// NewMapping returns an empty mapping for source.
func NewMapping(source ID) *Mapping {
	return &Mapping{
		source:  source,
		postal:  make(map[string]string),
		skipped: make(map[SkipReason]int),
	}
}

// Source returns the label of the source the mapping was read from.
func (m *Mapping) Source() ID {
	return m.source
}

// Set normalizes code and trims postal, then stores the pair unless either
// side is empty or postal is the "0" placeholder. A later Set for the same
// code replaces the earlier value. Set reports whether the pair was stored.
func (m *Mapping) Set(code, postal string) bool {
	code = villagecode.Normalize(code)
	postal = strings.TrimSpace(postal)
	switch {
	case code == "":
		m.Skip(SkipEmptyCode)
		return false
	case postal == "":
		m.Skip(SkipEmptyPostal)
		return false
	case postal == "0":
		m.Skip(SkipZeroPostal)
		return false
	}
	if _, ok := m.postal[code]; ok {
		m.replaced++
	}
	m.postal[code] = postal
	return true
}

// Skip counts a row dropped for reason.
func (m *Mapping) Skip(reason SkipReason) {
	m.skipped[reason]++
}

// Lookup returns the postal code for a normalized village code.
func (m *Mapping) Lookup(code string) (string, bool) {
	if m == nil {
		return "", false
	}
	p, ok := m.postal[code]
	return p, ok
}

// Len returns the number of codes in the mapping.
func (m *Mapping) Len() int {
	if m == nil {
		return 0
	}
	return len(m.postal)
}

// Codes returns the mapped codes in ascending order.
func (m *Mapping) Codes() []string {
	if m == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(m.postal))
}

// Skipped returns a copy of the per-reason skip counters.
func (m *Mapping) Skipped() map[SkipReason]int {
	if m == nil {
		return nil
	}
	return maps.Clone(m.skipped)
}

// SkippedTotal returns the number of rows dropped for any reason.
func (m *Mapping) SkippedTotal() int {
	if m == nil {
		return 0
	}
	total := 0
	for _, n := range m.skipped {
		total += n
	}
	return total
}

// Replaced returns how many rows overwrote an earlier value for the same code.
func (m *Mapping) Replaced() int {
	if m == nil {
		return 0
	}
	return m.replaced
}
