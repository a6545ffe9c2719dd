package wpilog

import (
	"testing"

	"github.com/frcviz/wpilog/internal/logtest"
)

func buildBenchLog(records int) []byte {
	b := logtest.New("")
	b.Start(1, "/drive/velocity", "double", "", 0)
	b.Start(2, "/drive/pose", "double[]", "", 0)
	for i := 0; i < records; i++ {
		ts := int64(i) * 20_000
		b.Float64(1, ts, float64(i)*0.25)
		b.Float64Array(2, ts, []float64{float64(i), float64(i) * 2, 0.5})
	}
	return b.Bytes()
}

// BenchmarkLoad measures end-to-end indexing of a two-entry log.
func BenchmarkLoad(b *testing.B) {
	data := buildBenchLog(5000)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		idx, err := Load(data)
		if err != nil {
			b.Fatal(err)
		}
		if idx.SampleCount() != 10000 {
			b.Fatalf("unexpected sample count %d", idx.SampleCount())
		}
	}

	b.SetBytes(int64(len(data)))
}

// BenchmarkSamplesInRange measures range queries against a loaded index.
func BenchmarkSamplesInRange(b *testing.B) {
	idx, err := Load(buildBenchLog(5000))
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		s := idx.SamplesInRange("/drive/velocity", LatestGeneration, 1_000_000, 50_000_000)
		if len(s) == 0 {
			b.Fatal("empty range")
		}
	}
}
