package registry

import (
	"testing"

	"github.com/opd-ai/contactsound/pkg/material"
)

func mustCatalog(t *testing.T) []CatalogEntry {
	t.Helper()
	entries, err := LoadBundledCatalog()
	if err != nil {
		t.Fatalf("LoadBundledCatalog() error = %v", err)
	}
	return entries
}

func TestResolveExactCatalogMatch(t *testing.T) {
	r := New(mustCatalog(t))
	sa := r.Resolve(1, "rubber_ball", 0.2)
	if sa.Material != material.Rubber {
		t.Errorf("material = %v, want rubber", sa.Material)
	}
	if err := sa.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestResolveCachesAcrossCalls(t *testing.T) {
	r := New(mustCatalog(t))
	r.SetOverride(5, StaticAudio{Amp: 0.9, Mass: 2, Material: material.Glass, Bounciness: 0.1, Resonance: 0.3, Size: 1})
	first := r.Resolve(5, "whatever", 2)
	r.overrides[5] = StaticAudio{Amp: 0.1, Mass: 2, Material: material.Metal, Bounciness: 0.9, Resonance: 0.5, Size: 2}
	second := r.Resolve(5, "whatever", 2)
	if first != second {
		t.Errorf("Resolve() not cached: first=%+v second=%+v", first, second)
	}
}

func TestResolveOverrideWins(t *testing.T) {
	r := New(mustCatalog(t))
	r.SetOverride(7, StaticAudio{Amp: 0.77, Mass: 1, Material: material.Stone, Bounciness: 0.1, Resonance: 0.3, Size: 2})
	sa := r.Resolve(7, "rubber_ball", 1)
	if sa.Amp != 0.77 || sa.Material != material.Stone {
		t.Errorf("override not applied: got %+v", sa)
	}
}

func TestResolveUnknownFallsBackToDefaults(t *testing.T) {
	r := New(nil)
	sa := r.Resolve(9, "totally_unknown_object", 999999)
	if sa.Material != DefaultMaterial {
		t.Errorf("material = %v, want default %v", sa.Material, DefaultMaterial)
	}
	if sa.Amp != DefaultAmp {
		t.Errorf("amp = %f, want default %f", sa.Amp, DefaultAmp)
	}
	if err := sa.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestResolveMassNeighborAverage(t *testing.T) {
	r := New(mustCatalog(t))
	// mass within a 1.5 ratio of ceramic_plate (0.4) and ceramic_bowl (0.5), among others; glass_cup (0.25) is outside it.
	sa := r.Resolve(11, "mystery_dish", 0.42)
	if err := sa.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestResolveRobotJoint(t *testing.T) {
	r := New(mustCatalog(t))
	sa := r.ResolveRobotJoint(42, 1.5)
	if sa.Material != material.Metal {
		t.Errorf("material = %v, want metal", sa.Material)
	}
	if sa.Bounciness != robotJointBounce {
		t.Errorf("bounciness = %f, want %f", sa.Bounciness, robotJointBounce)
	}
	if sa.Mass != 1.5 {
		t.Errorf("mass = %f, want 1.5", sa.Mass)
	}
}

func TestResetClearsCache(t *testing.T) {
	r := New(mustCatalog(t))
	r.SetOverride(1, StaticAudio{Amp: 0.5, Mass: 1, Material: material.WoodHard, Bounciness: 0.4, Resonance: 0.4, Size: 1})
	_ = r.Resolve(1, "x", 1)
	r.Reset()
	if _, ok := r.resolved[1]; ok {
		t.Error("Reset() did not clear resolution cache")
	}
}
