package config

import "testing"

func TestGetSetRoundTrip(t *testing.T) {
	orig := Get()
	defer Set(orig)

	cfg := Config{InitialAmp: 0.42, PreventDistortion: true, FloorMaterial: "glass", FloorSize: 2, MaxScrapeSeconds: 3}
	Set(cfg)

	got := Get()
	if got.InitialAmp != 0.42 {
		t.Errorf("InitialAmp = %f, want 0.42", got.InitialAmp)
	}
	if got.FloorMaterial != "glass" {
		t.Errorf("FloorMaterial = %q, want glass", got.FloorMaterial)
	}
}

func TestWatchReplacesCallbackWithoutPanicking(t *testing.T) {
	stop, err := Watch(func(old, new Config) {})
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	defer stop()

	stop2, err := Watch(func(old, new Config) {})
	if err != nil {
		t.Fatalf("second Watch() error = %v", err)
	}
	stop2()
}
