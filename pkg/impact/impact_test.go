package impact

import (
	"testing"

	"github.com/opd-ai/contactsound/pkg/classify"
	"github.com/opd-ai/contactsound/pkg/material"
	"github.com/opd-ai/contactsound/pkg/modal"
	"github.com/opd-ai/contactsound/pkg/registry"
	"github.com/opd-ai/contactsound/pkg/rng"
	"github.com/opd-ai/contactsound/pkg/telemetry"
)

func testBank(t *testing.T) *material.Bank {
	t.Helper()
	bank, err := material.LoadBundled()
	if err != nil {
		t.Fatalf("LoadBundled() error = %v", err)
	}
	return bank
}

func floorEvent() classify.Event {
	return classify.Event{
		Kind:          classify.KindImpact,
		PrimaryID:     42,
		SecondaryID:   -1,
		IsEnvironment: true,
		RelativeVel:   telemetry.Vec3{0, -2, 0},
		Normals:       []telemetry.Vec3{{0, 1, 0}},
		ContactPoints: []telemetry.Vec3{{1, 0, 1}},
		Magnitude:     2,
	}
}

func TestHandleFirstImpactProducesCommand(t *testing.T) {
	path := New(testBank(t), rng.NewRNG(1), true)
	secondary := registry.StaticAudio{ObjectID: -1, Amp: 0.3, Mass: 1e6, Material: material.Stone, Bounciness: 0.1, Resonance: 0.4, Size: 3}
	primary := registry.StaticAudio{ObjectID: 42, Amp: 0.4, Mass: 2.0, Material: material.WoodHard, Bounciness: 0.4, Resonance: 0.4, Size: 1}

	cmd, err := path.Handle(floorEvent(), secondary, primary)
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if len(cmd.WavData) == 0 {
		t.Fatal("expected non-empty wav data")
	}
	if cmd.YPosOffset != 0.1 {
		t.Errorf("YPosOffset = %f, want 0.1", cmd.YPosOffset)
	}
}

func TestHandleSecondImpactReusesStateAndScalesAmp(t *testing.T) {
	path := New(testBank(t), rng.NewRNG(1), true)
	secondary := registry.StaticAudio{ObjectID: -1, Amp: 0.3, Mass: 1e6, Material: material.Stone, Bounciness: 0.1, Resonance: 0.4, Size: 3}
	primary := registry.StaticAudio{ObjectID: 42, Amp: 0.4, Mass: 2.0, Material: material.WoodHard, Bounciness: 0.4, Resonance: 0.4, Size: 1}

	if _, err := path.Handle(floorEvent(), secondary, primary); err != nil {
		t.Fatalf("first Handle() error = %v", err)
	}
	key := pairKey{secondary: -1, primary: 42}
	if _, ok := path.state[key]; !ok {
		t.Fatal("expected pair state to be recorded")
	}

	weaker := floorEvent()
	weaker.RelativeVel = telemetry.Vec3{0, -0.5, 0}
	weaker.Magnitude = 0.5

	if _, err := path.Handle(weaker, secondary, primary); err != nil {
		t.Fatalf("second Handle() error = %v", err)
	}
}

func TestHandleContactTimeUsesSmallerMass(t *testing.T) {
	// Both pairs sum to the same total mass, but the smaller party differs
	// (0.1 vs 0.5). Contact time, and thus the force pulse length baked
	// into the output, must track the smaller mass, not the sum.
	bank := testBank(t)

	pathA := New(bank, rng.NewRNG(7), true)
	secondaryA := registry.StaticAudio{ObjectID: -1, Amp: 0.3, Mass: 0.1, Material: material.Stone, Resonance: 0.4, Size: 3}
	primaryA := registry.StaticAudio{ObjectID: 42, Amp: 0.4, Mass: 1.0, Material: material.WoodHard, Resonance: 0.4, Size: 1}
	cmdA, err := pathA.Handle(floorEvent(), secondaryA, primaryA)
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	pathB := New(bank, rng.NewRNG(7), true)
	secondaryB := registry.StaticAudio{ObjectID: -1, Amp: 0.3, Mass: 0.5, Material: material.Stone, Resonance: 0.4, Size: 3}
	primaryB := registry.StaticAudio{ObjectID: 42, Amp: 0.4, Mass: 0.6, Material: material.WoodHard, Resonance: 0.4, Size: 1}
	cmdB, err := pathB.Handle(floorEvent(), secondaryB, primaryB)
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	if cmdA.NumFrames == cmdB.NumFrames {
		t.Fatalf("NumFrames identical (%d) across differing smaller-mass pairs; mass selection is not using min()", cmdA.NumFrames)
	}

	wantA := modal.ContactTime(0.1)
	wantB := modal.ContactTime(0.5)
	if wantA >= wantB {
		t.Fatalf("test fixture invalid: ContactTime(0.1)=%f should be < ContactTime(0.5)=%f", wantA, wantB)
	}
	if cmdA.NumFrames >= cmdB.NumFrames {
		t.Errorf("NumFrames for smaller-mass pair (%d) should be less than the other (%d)", cmdA.NumFrames, cmdB.NumFrames)
	}
}

func TestResetClearsState(t *testing.T) {
	path := New(testBank(t), rng.NewRNG(1), true)
	secondary := registry.StaticAudio{ObjectID: -1, Amp: 0.3, Mass: 1e6, Material: material.Stone, Bounciness: 0.1, Resonance: 0.4, Size: 3}
	primary := registry.StaticAudio{ObjectID: 42, Amp: 0.4, Mass: 2.0, Material: material.WoodHard, Bounciness: 0.4, Resonance: 0.4, Size: 1}
	if _, err := path.Handle(floorEvent(), secondary, primary); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	path.Reset()
	if len(path.state) != 0 {
		t.Error("Reset() did not clear state")
	}
}
