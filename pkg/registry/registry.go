// Package registry holds the ground-truth set of administrative units that
// defines the coverage scope of every build.
//
// A Registry is immutable once constructed and safe to share between
// goroutines without synchronization.
package registry

import (
	"cmp"
	"slices"

	"github.com/kodepos-id/kodepos/pkg/errors"
	"github.com/kodepos-id/kodepos/pkg/villagecode"
)

// Registry is a read-only, code-ordered set of units.
type Registry struct {
	units []Unit
	index map[string]int
}

// New builds a registry from units. Codes are normalized; an empty code or
// a code that appears twice is rejected.
func New(units []Unit) (*Registry, error) {
	r := &Registry{
		units: make([]Unit, 0, len(units)),
		index: make(map[string]int, len(units)),
	}
	for _, u := range units {
		u.Code = villagecode.Normalize(u.Code)
		if u.Code == "" {
			return nil, errors.NewValidationError("village_code", u.Name, "empty village_code")
		}
		if _, dup := r.index[u.Code]; dup {
			return nil, &errors.DuplicateError{Artifact: "registry", ID: u.Code}
		}
		r.index[u.Code] = -1
		r.units = append(r.units, u)
	}

	slices.SortFunc(r.units, func(a, b Unit) int { return cmp.Compare(a.Code, b.Code) })
	for i, u := range r.units {
		r.index[u.Code] = i
	}
	return r, nil
}

// Len returns the number of units.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.units)
}

// Units returns a copy of all units in ascending code order.
func (r *Registry) Units() []Unit {
	if r == nil {
		return nil
	}
	return slices.Clone(r.units)
}

// Each calls fn for every unit in ascending code order until fn returns false.
func (r *Registry) Each(fn func(Unit) bool) {
	if r == nil {
		return
	}
	for _, u := range r.units {
		if !fn(u) {
			return
		}
	}
}

// Get returns the unit with the given code. The code is normalized first.
func (r *Registry) Get(code string) (Unit, bool) {
	if r == nil {
		return Unit{}, false
	}
	i, ok := r.index[villagecode.Normalize(code)]
	if !ok {
		return Unit{}, false
	}
	return r.units[i], true
}

// Contains reports whether a unit with the given normalized code exists.
func (r *Registry) Contains(code string) bool {
	if r == nil {
		return false
	}
	_, ok := r.index[code]
	return ok
}

// Codes returns all codes in ascending order.
func (r *Registry) Codes() []string {
	if r == nil {
		return nil
	}
	codes := make([]string, len(r.units))
	for i, u := range r.units {
		codes[i] = u.Code
	}
	return codes
}

// CountByType returns the number of units per unit type.
func (r *Registry) CountByType() map[string]int {
	counts := make(map[string]int)
	r.Each(func(u Unit) bool {
		counts[u.Type]++
		return true
	})
	return counts
}
