package schema

import (
	"testing"

	"github.com/frcviz/wpilog/pkg/types"
)

func TestRegistry_StartBindsEntry(t *testing.T) {
	r := NewRegistry()
	gen, warn := r.Start(0, 1, "speed", "float64", "{}")
	if warn != nil {
		t.Fatalf("Start() warning = %v, want nil", warn)
	}
	if gen.Kind != types.KindFloat64 {
		t.Errorf("kind = %v, want float64", gen.Kind)
	}
	if gen.Ordinal != 0 || gen.FinishIndex != Open {
		t.Errorf("gen = %+v", gen)
	}

	active, ok := r.Active(1)
	if !ok || active != gen {
		t.Error("Active(1) did not return the started generation")
	}
}

func TestRegistry_FinishClosesGeneration(t *testing.T) {
	r := NewRegistry()
	gen, _ := r.Start(0, 1, "speed", "float64", "")
	if warn := r.Finish(5, 1); warn != nil {
		t.Fatalf("Finish() warning = %v", warn)
	}
	if gen.FinishIndex != 5 {
		t.Errorf("FinishIndex = %d, want 5", gen.FinishIndex)
	}
	if _, ok := r.Active(1); ok {
		t.Error("entry still active after Finish")
	}
}

func TestRegistry_FinishUnbound(t *testing.T) {
	r := NewRegistry()
	warn := r.Finish(3, 7)
	if warn == nil || warn.Kind != types.WarnFinishUnbound {
		t.Fatalf("Finish() warning = %v, want FinishUnbound", warn)
	}
	if warn.Record != 3 {
		t.Errorf("warning record = %d, want 3", warn.Record)
	}
}

func TestRegistry_IDReuseAcrossFinish(t *testing.T) {
	r := NewRegistry()
	first, _ := r.Start(0, 1, "speed", "float64", "")
	r.Finish(5, 1)
	second, warn := r.Start(10, 1, "heading", "int64", "")
	if warn != nil {
		t.Fatalf("clean reuse produced warning %v", warn)
	}

	if got, ok := r.AsOf(1, 3); !ok || got != first {
		t.Error("AsOf(1, 3) should resolve the first generation")
	}
	if _, ok := r.AsOf(1, 7); ok {
		t.Error("AsOf(1, 7) should resolve nothing between generations")
	}
	if got, ok := r.AsOf(1, 12); !ok || got != second {
		t.Error("AsOf(1, 12) should resolve the second generation")
	}
}

func TestRegistry_IDReuseWithoutFinish(t *testing.T) {
	r := NewRegistry()
	first, _ := r.Start(0, 1, "speed", "float64", "")
	second, warn := r.Start(4, 1, "speed", "float64", "")
	if warn == nil || warn.Kind != types.WarnIDReuseWithoutFinish {
		t.Fatalf("Start() warning = %v, want IdReuseWithoutFinish", warn)
	}
	if first.FinishIndex != 4 {
		t.Errorf("previous generation FinishIndex = %d, want implicit close at 4", first.FinishIndex)
	}
	if second.Ordinal != 1 {
		t.Errorf("second Ordinal = %d, want 1", second.Ordinal)
	}
	if active, _ := r.Active(1); active != second {
		t.Error("Active(1) should be the restarted generation")
	}
}

func TestRegistry_SetMetadata(t *testing.T) {
	r := NewRegistry()
	gen, _ := r.Start(0, 1, "speed", "float64", "old")
	if warn := r.SetMetadata(2, 1, "new"); warn != nil {
		t.Fatalf("SetMetadata() warning = %v", warn)
	}
	if gen.Metadata != "new" {
		t.Errorf("metadata = %q, want %q", gen.Metadata, "new")
	}
}

func TestRegistry_SetMetadataUnbound(t *testing.T) {
	r := NewRegistry()
	warn := r.SetMetadata(3, 9, "x")
	if warn == nil || warn.Kind != types.WarnMetadataUnbound {
		t.Fatalf("SetMetadata() warning = %v, want MetadataUnbound", warn)
	}
}

func TestRegistry_ByNameTracksOrdinals(t *testing.T) {
	r := NewRegistry()
	r.Start(0, 1, "speed", "float64", "")
	r.Finish(1, 1)
	r.Start(2, 2, "speed", "int64", "")

	gens := r.ByName("speed")
	if len(gens) != 2 {
		t.Fatalf("ByName() returned %d generations, want 2", len(gens))
	}
	if gens[0].Ordinal != 0 || gens[1].Ordinal != 1 {
		t.Errorf("ordinals = %d, %d, want 0, 1", gens[0].Ordinal, gens[1].Ordinal)
	}
	if gens[1].Kind != types.KindInt64 {
		t.Errorf("second generation kind = %v, want int64", gens[1].Kind)
	}
}
