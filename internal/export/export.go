// Package export renders loaded log indexes into serialized dumps for
// the command-line tooling: entry listings, sample ranges, and warning
// reports as JSON or YAML, optionally compressed.
package export

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/frcviz/wpilog/pkg/types"
	"github.com/frcviz/wpilog/pkg/wpilog"
)

// Format selects the serialization of a dump
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Dump is the serializable shape of everything the tool can report
// about one log file.
type Dump struct {
	File     string            `json:"file" yaml:"file"`
	Version  string            `json:"version" yaml:"version"`
	Extra    string            `json:"extra,omitempty" yaml:"extra,omitempty"`
	Records  int               `json:"records" yaml:"records"`
	Entries  []types.EntryInfo `json:"entries,omitempty" yaml:"entries,omitempty"`
	Series   []SeriesDump      `json:"series,omitempty" yaml:"series,omitempty"`
	Warnings []types.Warning   `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// SeriesDump is one entry generation's samples
type SeriesDump struct {
	Name       string       `json:"name" yaml:"name"`
	Generation int          `json:"generation" yaml:"generation"`
	Samples    []SampleDump `json:"samples" yaml:"samples"`
}

// SampleDump flattens a typed sample for serialization
type SampleDump struct {
	Timestamp int64       `json:"timestamp" yaml:"timestamp"`
	Value     interface{} `json:"value" yaml:"value"`
}

// NewDump summarizes a loaded index. Entries and warnings are always
// included; series are added by the caller per its filters.
func NewDump(file string, idx *wpilog.LogIndex) *Dump {
	major, minor := idx.Version()
	return &Dump{
		File:     file,
		Version:  fmt.Sprintf("%d.%d", major, minor),
		Extra:    idx.ExtraHeader(),
		Records:  idx.RecordCount(),
		Entries:  idx.Entries(),
		Warnings: idx.Warnings(),
	}
}

// AddSeries appends the samples of one entry generation
func (d *Dump) AddSeries(name string, generation int, samples []types.Sample) {
	sd := SeriesDump{Name: name, Generation: generation, Samples: make([]SampleDump, 0, len(samples))}
	for _, s := range samples {
		sd.Samples = append(sd.Samples, SampleDump{Timestamp: s.Timestamp, Value: s.Value.Any()})
	}
	d.Series = append(d.Series, sd)
}

// Write serializes the dump in the given format, compresses it, and
// writes it out
func (d *Dump) Write(w io.Writer, format Format, compression Compression) error {
	var (
		data []byte
		err  error
	)
	switch format {
	case FormatJSON, "":
		data, err = json.MarshalIndent(d, "", "  ")
	case FormatYAML:
		data, err = yaml.Marshal(d)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
	if err != nil {
		return fmt.Errorf("marshal dump: %w", err)
	}

	compressor, err := GetCompressor(compression)
	if err != nil {
		return err
	}
	data, err = compressor.Compress(data)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write dump: %w", err)
	}
	return nil
}
