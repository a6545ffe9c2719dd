// Package series holds the decoded, typed samples of every entry
// generation and answers the time-range queries the visualization layer
// re-issues on every zoom or pan.
package series

import (
	"fmt"
	"sort"

	"github.com/frcviz/wpilog/internal/schema"
	"github.com/frcviz/wpilog/pkg/types"
)

// Series is the ordered sample sequence of one entry generation.
// Samples are kept in arrival order, which the format makes the same as
// log-offset order. Timestamps are expected, but not guaranteed, to be
// non-decreasing; see SamplesInRange.
type Series struct {
	Gen     *schema.Generation
	Samples []types.Sample

	lastTS  int64
	hasLast bool
}

// Len returns the number of samples in the series
func (s *Series) Len() int { return len(s.Samples) }

// SamplesInRange returns the contiguous sub-sequence of samples with
// timestamps in [t0, t1], located by binary search. The search assumes
// the series is timestamp-sorted; if the recorder emitted out-of-order
// timestamps (reported as OutOfOrderTimestamp warnings at load), the
// result may under- or over-return around the disorder but never
// panics.
func (s *Series) SamplesInRange(t0, t1 int64) []types.Sample {
	if t0 > t1 {
		return nil
	}
	lo := sort.Search(len(s.Samples), func(i int) bool {
		return s.Samples[i].Timestamp >= t0
	})
	hi := sort.Search(len(s.Samples), func(i int) bool {
		return s.Samples[i].Timestamp > t1
	})
	if lo >= hi {
		return nil
	}
	return s.Samples[lo:hi]
}

// Store owns every series, keyed by entry generation
type Store struct {
	series map[*schema.Generation]*Series
}

// NewStore returns an empty store
func NewStore() *Store {
	return &Store{series: make(map[*schema.Generation]*Series)}
}

// Series returns the series for a generation, if any samples or the
// generation itself have been registered.
func (st *Store) Series(gen *schema.Generation) (*Series, bool) {
	s, ok := st.series[gen]
	return s, ok
}

// Track registers an empty series for a freshly started generation so
// entries with zero samples still show up in listings.
func (st *Store) Track(gen *schema.Generation) *Series {
	if s, ok := st.series[gen]; ok {
		return s
	}
	s := &Series{Gen: gen}
	st.series[gen] = s
	return s
}

// Append decodes the payload according to the generation's declared
// type and appends the sample. A decode failure drops only this sample
// and returns a warning; the rest of the series is unaffected. A sample
// whose timestamp runs backwards is still appended, with an
// OutOfOrderTimestamp warning.
func (st *Store) Append(gen *schema.Generation, recordIndex int, ts int64, payload []byte) *types.Warning {
	if gen.Kind == types.KindUnknown {
		return &types.Warning{
			Record: recordIndex,
			Kind:   types.WarnUnknownRecordKind,
			Detail: fmt.Sprintf("entry %q has undecodable type %q", gen.Name, gen.Type),
		}
	}
	val, err := decodeValue(gen, payload)
	if err != nil {
		return &types.Warning{
			Record: recordIndex,
			Kind:   types.WarnMalformedSample,
			Detail: fmt.Sprintf("entry %q: %v", gen.Name, err),
		}
	}

	s := st.Track(gen)
	var warn *types.Warning
	if s.hasLast && ts < s.lastTS {
		warn = &types.Warning{
			Record: recordIndex,
			Kind:   types.WarnOutOfOrderTimestamp,
			Detail: fmt.Sprintf("entry %q: timestamp %d ran backwards from %d", gen.Name, ts, s.lastTS),
		}
	} else {
		s.lastTS = ts
		s.hasLast = true
	}
	s.Samples = append(s.Samples, types.Sample{Timestamp: ts, Value: val})
	return warn
}
