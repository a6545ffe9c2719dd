// Package wpilog loads WPILib DataLog (.wpilog) byte buffers into an
// immutable, queryable index of typed time series.
//
// The package never opens files: callers hand it a fully resident byte
// slice and get back a LogIndex plus the non-fatal warnings gathered on
// the way. A fatal error (bad header, truncated stream) still returns
// whatever was indexed before the failure point, so a damaged log
// remains inspectable.
package wpilog

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/frcviz/wpilog/internal/cursor"
	"github.com/frcviz/wpilog/internal/logging"
	"github.com/frcviz/wpilog/internal/metrics"
	"github.com/frcviz/wpilog/internal/schema"
	"github.com/frcviz/wpilog/internal/series"
	"github.com/frcviz/wpilog/internal/wire"
	"github.com/frcviz/wpilog/pkg/types"
)

// Fatal load errors. ErrInvalidHeader means no index at all could be
// built; ErrTruncatedInput accompanies a partial index.
var (
	ErrInvalidHeader  = wire.ErrInvalidHeader
	ErrTruncatedInput = cursor.ErrTruncatedInput
)

// systemTimeEntry is the conventional entry carrying wall-clock epoch
// microseconds, used to anchor log timestamps to real time.
const systemTimeEntry = "systemTime"

// Option configures a load
type Option func(*loadConfig)

type loadConfig struct {
	logger *logging.Logger
}

// WithLogger makes the loader log a load summary and per-warning debug
// lines to the given zerolog logger. The default is silence.
func WithLogger(zl zerolog.Logger) Option {
	return func(cfg *loadConfig) {
		cfg.logger = &logging.Logger{Logger: zl}
	}
}

// Load decodes a .wpilog buffer in one forward pass.
//
// On ErrInvalidHeader the index is nil. On ErrTruncatedInput the
// returned index holds everything decoded before the truncation point.
// A nil error means the whole stream was consumed; per-record problems
// are reported through LogIndex.Warnings, never as errors.
func Load(data []byte, opts ...Option) (*LogIndex, error) {
	cfg := loadConfig{logger: logging.Nop()}
	for _, opt := range opts {
		opt(&cfg)
	}
	log := cfg.logger.WithComponent("loader")
	mc := metrics.Default()

	start := time.Now()
	mc.LoadsTotal.Inc()
	mc.LoadBytes.Observe(float64(len(data)))

	dec, err := wire.NewDecoder(data)
	if err != nil {
		mc.LoadFailures.WithLabelValues("invalid-header").Inc()
		log.Error().Err(err).Msg("Header validation failed")
		return nil, err
	}

	idx := &LogIndex{
		header: dec.Header(),
		reg:    schema.NewRegistry(),
		store:  series.NewStore(),
	}

	var fatal error
	for {
		rec, err := dec.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			// The stream position is unrecoverable past a truncated
			// record; keep what was already indexed.
			fatal = err
			break
		}
		idx.records++
		if rec.Timestamp > idx.lastTS {
			idx.lastTS = rec.Timestamp
		}

		if rec.IsControl() {
			idx.applyControl(rec)
		} else {
			idx.applyData(rec)
		}
	}

	mc.RecordsDecoded.Add(float64(idx.records))
	mc.SamplesIndexed.Add(float64(idx.samples))
	for _, w := range idx.warnings {
		mc.WarningsTotal.WithLabelValues(string(w.Kind)).Inc()
		log.Debug().Int("record", w.Record).Str("kind", string(w.Kind)).Msg(w.Detail)
	}
	mc.LoadDuration.Observe(time.Since(start).Seconds())

	if fatal != nil {
		mc.LoadFailures.WithLabelValues("truncated-input").Inc()
		log.Error().Err(fatal).
			Int("records", idx.records).
			Msg("Load aborted on truncated input, returning partial index")
		return idx, fatal
	}

	log.Info().
		Int("records", idx.records).
		Int("entries", len(idx.reg.Generations())).
		Int("warnings", len(idx.warnings)).
		Dur("elapsed", time.Since(start)).
		Msg("Log loaded")
	return idx, nil
}

func (idx *LogIndex) applyControl(rec wire.Record) {
	ctl, err := rec.Control()
	if err != nil {
		idx.warn(types.Warning{
			Record: rec.Index,
			Kind:   types.WarnUnknownRecordKind,
			Detail: err.Error(),
		})
		return
	}
	switch ctl.Type {
	case wire.ControlStart:
		gen, warn := idx.reg.Start(rec.Index, ctl.Entry, ctl.Name, ctl.DataType, ctl.Metadata)
		idx.store.Track(gen)
		idx.warnIf(warn)
	case wire.ControlFinish:
		idx.warnIf(idx.reg.Finish(rec.Index, ctl.Entry))
	case wire.ControlSetMetadata:
		idx.warnIf(idx.reg.SetMetadata(rec.Index, ctl.Entry, ctl.Metadata))
	}
}

func (idx *LogIndex) applyData(rec wire.Record) {
	gen, ok := idx.reg.Active(rec.Entry)
	if !ok {
		idx.warn(types.Warning{
			Record: rec.Index,
			Kind:   types.WarnDataUnbound,
			Detail: dataUnboundDetail(rec.Entry),
		})
		return
	}
	warn := idx.store.Append(gen, rec.Index, rec.Timestamp, rec.Payload)
	idx.warnIf(warn)
	// Out-of-order samples are warned about but still stored.
	if warn != nil && warn.Kind != types.WarnOutOfOrderTimestamp {
		return
	}
	idx.samples++
	// A systemTime sample anchors log time to the wall clock. The
	// latest anchor wins, matching how recorders refresh it.
	if gen.Name == systemTimeEntry && gen.Kind == types.KindInt64 {
		s, ok := idx.store.Series(gen)
		if ok && s.Len() > 0 {
			last := s.Samples[s.Len()-1]
			idx.wallStart = time.UnixMicro(last.Value.Int - last.Timestamp)
			idx.hasWall = true
		}
	}
}

func (idx *LogIndex) warn(w types.Warning) {
	idx.warnings = append(idx.warnings, w)
}

func (idx *LogIndex) warnIf(w *types.Warning) {
	if w != nil {
		idx.warnings = append(idx.warnings, *w)
	}
}

func dataUnboundDetail(entry uint32) string {
	return fmt.Sprintf("data record for unbound or finished entry %d", entry)
}
