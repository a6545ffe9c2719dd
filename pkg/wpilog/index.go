package wpilog

import (
	"sort"
	"time"

	"github.com/frcviz/wpilog/internal/schema"
	"github.com/frcviz/wpilog/internal/series"
	"github.com/frcviz/wpilog/internal/wire"
	"github.com/frcviz/wpilog/pkg/types"
)

// LogIndex is the finished, read-only result of one load. It is
// immutable after Load returns and safe for unsynchronized concurrent
// reads from any number of goroutines.
type LogIndex struct {
	header wire.Header
	reg    *schema.Registry
	store  *series.Store

	warnings  []types.Warning
	records   int
	samples   int
	lastTS    int64
	wallStart time.Time
	hasWall   bool
}

// LatestGeneration selects the newest generation of an entry name in
// the generation argument of the query methods.
const LatestGeneration = -1

// Version returns the log format version from the file header
func (idx *LogIndex) Version() (major, minor int) {
	return idx.header.Major(), idx.header.Minor()
}

// ExtraHeader returns the recorder's free-form extra header string
func (idx *LogIndex) ExtraHeader() string {
	return idx.header.Extra
}

// RecordCount returns the number of records decoded, including control
// records and records that were skipped with warnings.
func (idx *LogIndex) RecordCount() int {
	return idx.records
}

// SampleCount returns the number of typed samples indexed
func (idx *LogIndex) SampleCount() int {
	return idx.samples
}

// Warnings returns the non-fatal diagnostics accumulated during the
// load, in record order. The slice must not be modified.
func (idx *LogIndex) Warnings() []types.Warning {
	return idx.warnings
}

// LastTimestamp returns the largest timestamp seen across all records,
// in microseconds since log start. Plotting layers use it to extend
// step plots to the end of the recording.
func (idx *LogIndex) LastTimestamp() int64 {
	return idx.lastTS
}

// StartTime returns the wall-clock time of log timestamp zero, derived
// from the recorder's systemTime entry. ok is false when the log never
// recorded one.
func (idx *LogIndex) StartTime() (t time.Time, ok bool) {
	return idx.wallStart, idx.hasWall
}

// Entries lists every entry name seen in the log, ordered by name. The
// type and metadata reported are those of the newest generation;
// Records counts samples across all generations.
func (idx *LogIndex) Entries() []types.EntryInfo {
	byName := make(map[string][]*schema.Generation)
	for _, gen := range idx.reg.Generations() {
		byName[gen.Name] = append(byName[gen.Name], gen)
	}

	infos := make([]types.EntryInfo, 0, len(byName))
	for name, gens := range byName {
		newest := gens[len(gens)-1]
		info := types.EntryInfo{
			Name:        name,
			Type:        newest.Type,
			Metadata:    newest.Metadata,
			Generations: len(gens),
		}
		for _, gen := range gens {
			if s, ok := idx.store.Series(gen); ok {
				info.Records += s.Len()
			}
		}
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// Entry returns the listing for one entry name
func (idx *LogIndex) Entry(name string) (types.EntryInfo, bool) {
	gens := idx.reg.ByName(name)
	if len(gens) == 0 {
		return types.EntryInfo{}, false
	}
	newest := gens[len(gens)-1]
	info := types.EntryInfo{
		Name:        name,
		Type:        newest.Type,
		Metadata:    newest.Metadata,
		Generations: len(gens),
	}
	for _, gen := range gens {
		if s, ok := idx.store.Series(gen); ok {
			info.Records += s.Len()
		}
	}
	return info, true
}

// Generations returns how many generations were recorded under the
// entry name
func (idx *LogIndex) Generations(name string) int {
	return len(idx.reg.ByName(name))
}

// EntryAt resolves an entry ID to the name and generation ordinal it
// was bound to at a record index, honoring ID reuse. Warnings carry
// record indexes, so this maps a Warning.Record back to the series it
// concerns; ok is false when the ID was unbound at that point. The
// result feeds Samples and SamplesInRange directly.
func (idx *LogIndex) EntryAt(entry uint32, recordIndex int) (name string, generation int, ok bool) {
	gen, ok := idx.reg.AsOf(entry, recordIndex)
	if !ok {
		return "", 0, false
	}
	return gen.Name, gen.Ordinal, true
}

// Samples returns the full sample sequence of one entry generation in
// arrival order. generation is the zero-based generation ordinal or
// LatestGeneration. The slice must not be modified.
func (idx *LogIndex) Samples(name string, generation int) []types.Sample {
	s := idx.lookup(name, generation)
	if s == nil {
		return nil
	}
	return s.Samples
}

// SamplesInRange returns the ordered samples of an entry generation
// with timestamps in [t0, t1] microseconds, located by binary search.
func (idx *LogIndex) SamplesInRange(name string, generation int, t0, t1 int64) []types.Sample {
	s := idx.lookup(name, generation)
	if s == nil {
		return nil
	}
	return s.SamplesInRange(t0, t1)
}

func (idx *LogIndex) lookup(name string, generation int) *series.Series {
	gens := idx.reg.ByName(name)
	if len(gens) == 0 {
		return nil
	}
	if generation == LatestGeneration {
		generation = len(gens) - 1
	}
	if generation < 0 || generation >= len(gens) {
		return nil
	}
	s, ok := idx.store.Series(gens[generation])
	if !ok {
		return nil
	}
	return s
}
