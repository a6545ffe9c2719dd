// Package schema tracks entry-ID bindings declared by control records.
// An entry ID is only meaningful between its Start and Finish; IDs are
// reused, so every binding is kept as a distinct generation with a
// validity interval over record indexes.
package schema

import (
	"fmt"

	"github.com/frcviz/wpilog/pkg/types"
)

// Open marks a generation whose Finish has not been seen
const Open = -1

// Generation is one Start-to-Finish lifespan of an entry ID
type Generation struct {
	Entry    uint32
	Name     string
	Type     string // declared type string, verbatim from the Start record
	Kind     types.Kind
	Metadata string
	// Ordinal numbers the generations sharing this entry name, in start
	// order, from zero.
	Ordinal int
	// StartIndex is the record index of the Start control record.
	// FinishIndex is the index of the Finish record, or Open.
	StartIndex  int
	FinishIndex int
}

// ActiveAt reports whether the generation was bound at the given record
// index
func (g *Generation) ActiveAt(recordIndex int) bool {
	if recordIndex < g.StartIndex {
		return false
	}
	return g.FinishIndex == Open || recordIndex < g.FinishIndex
}

// Registry maintains the current and historical entry bindings
type Registry struct {
	active map[uint32]*Generation
	byID   map[uint32][]*Generation
	byName map[string][]*Generation
	order  []*Generation
}

// NewRegistry returns an empty registry
func NewRegistry() *Registry {
	return &Registry{
		active: make(map[uint32]*Generation),
		byID:   make(map[uint32][]*Generation),
		byName: make(map[string][]*Generation),
	}
}

// Start opens a new generation for the entry. If the ID is still bound,
// the previous generation is implicitly finished at this record and a
// warning is returned alongside the new generation.
func (r *Registry) Start(recordIndex int, entry uint32, name, entryType, metadata string) (*Generation, *types.Warning) {
	var warn *types.Warning
	if prev, ok := r.active[entry]; ok {
		prev.FinishIndex = recordIndex
		warn = &types.Warning{
			Record: recordIndex,
			Kind:   types.WarnIDReuseWithoutFinish,
			Detail: fmt.Sprintf("entry %d (%q) restarted without finish", entry, prev.Name),
		}
	}
	gen := &Generation{
		Entry:       entry,
		Name:        name,
		Type:        entryType,
		Kind:        types.KindFromType(entryType),
		Metadata:    metadata,
		Ordinal:     len(r.byName[name]),
		StartIndex:  recordIndex,
		FinishIndex: Open,
	}
	r.active[entry] = gen
	r.byID[entry] = append(r.byID[entry], gen)
	r.byName[name] = append(r.byName[name], gen)
	r.order = append(r.order, gen)
	return gen, warn
}

// Finish closes the active generation for the entry. Finishing an
// unbound ID is reported but otherwise a no-op.
func (r *Registry) Finish(recordIndex int, entry uint32) *types.Warning {
	gen, ok := r.active[entry]
	if !ok {
		return &types.Warning{
			Record: recordIndex,
			Kind:   types.WarnFinishUnbound,
			Detail: fmt.Sprintf("finish for unbound entry %d", entry),
		}
	}
	gen.FinishIndex = recordIndex
	delete(r.active, entry)
	return nil
}

// SetMetadata replaces the metadata string on the active generation
func (r *Registry) SetMetadata(recordIndex int, entry uint32, metadata string) *types.Warning {
	gen, ok := r.active[entry]
	if !ok {
		return &types.Warning{
			Record: recordIndex,
			Kind:   types.WarnMetadataUnbound,
			Detail: fmt.Sprintf("metadata for unbound entry %d", entry),
		}
	}
	gen.Metadata = metadata
	return nil
}

// Active returns the currently bound generation for an entry ID
func (r *Registry) Active(entry uint32) (*Generation, bool) {
	gen, ok := r.active[entry]
	return gen, ok
}

// AsOf returns the generation that was bound to the entry ID at the
// given record index, supporting ID reuse across time.
func (r *Registry) AsOf(entry uint32, recordIndex int) (*Generation, bool) {
	gens := r.byID[entry]
	// Scan newest-first: lookups overwhelmingly target the latest binding.
	for i := len(gens) - 1; i >= 0; i-- {
		if gens[i].ActiveAt(recordIndex) {
			return gens[i], true
		}
	}
	return nil, false
}

// ByName returns every generation recorded under the entry name, in
// start order
func (r *Registry) ByName(name string) []*Generation {
	return r.byName[name]
}

// Generations returns every generation in start order
func (r *Registry) Generations() []*Generation {
	return r.order
}
