package surface

import (
	"math"
	"strings"
	"testing"
)

func TestLoadBundled(t *testing.T) {
	p, err := LoadBundled()
	if err != nil {
		t.Fatalf("LoadBundled() error = %v", err)
	}
	if p.Len() == 0 {
		t.Fatal("expected non-empty profile")
	}
}

func TestWindowWrapsAroundPeriod(t *testing.T) {
	p, err := Load(strings.NewReader("1\n2\n3\n4\n5"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	got := p.Window(3, 5)
	want := []float64{4, 5, 1, 2, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: got %f, want %f", i, got[i], want[i])
		}
	}
}

func TestRemainingFrom(t *testing.T) {
	p, err := Load(strings.NewReader("1\n2\n3\n4\n5"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := p.RemainingFrom(3); got != 2 {
		t.Errorf("RemainingFrom(3) = %d, want 2", got)
	}
	if got := p.RemainingFrom(5); got != 5 {
		t.Errorf("RemainingFrom(5) = %d, want 5 (wrapped)", got)
	}
}

func TestFirstDifference(t *testing.T) {
	got := FirstDifference([]float64{1, 3, 6}, 1)
	want := []float64{2, 3, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: got %f, want %f", i, got[i], want[i])
		}
	}
}

func TestFirstDifferenceScalesBySpacing(t *testing.T) {
	got := FirstDifference([]float64{1, 3, 6}, 2)
	want := []float64{1, 1.5, 1.5}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("index %d: got %f, want %f", i, got[i], want[i])
		}
	}
}

func TestResampleEndpoints(t *testing.T) {
	x := []float64{0, 10}
	out := Resample(x, 5)
	if math.Abs(out[0]-0) > 1e-9 {
		t.Errorf("first sample = %f, want 0", out[0])
	}
	if math.Abs(out[len(out)-1]-10) > 1e-9 {
		t.Errorf("last sample = %f, want 10", out[len(out)-1])
	}
}

func TestLoadRejectsEmpty(t *testing.T) {
	if _, err := Load(strings.NewReader("")); err == nil {
		t.Fatal("expected error for empty profile")
	}
}
