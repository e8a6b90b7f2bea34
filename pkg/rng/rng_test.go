package rng

import (
	"math"
	"testing"
)

func TestNewRNG(t *testing.T) {
	r := NewRNG(12345)
	if r == nil {
		t.Fatal("NewRNG() returned nil")
	}
	if r.r == nil {
		t.Fatal("RNG.r is nil")
	}
}

func TestIntn(t *testing.T) {
	tests := []struct {
		name  string
		seed  int64
		n     int
		count int
	}{
		{"small range", 42, 10, 100},
		{"medium range", 12345, 100, 100},
		{"large range", 99999, 1000, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRNG(tt.seed)
			for i := 0; i < tt.count; i++ {
				val := r.Intn(tt.n)
				if val < 0 || val >= tt.n {
					t.Errorf("Intn(%d) returned %d, want [0, %d)", tt.n, val, tt.n)
				}
			}
		})
	}
}

func TestFloat64(t *testing.T) {
	r := NewRNG(42)
	for i := 0; i < 100; i++ {
		val := r.Float64()
		if val < 0.0 || val >= 1.0 {
			t.Errorf("Float64() returned %f, want [0.0, 1.0)", val)
		}
	}
}

func TestSeed(t *testing.T) {
	r := NewRNG(12345)

	first := make([]int, 10)
	for i := range first {
		first[i] = r.Intn(100)
	}

	r.Seed(12345)

	second := make([]int, 10)
	for i := range second {
		second[i] = r.Intn(100)
	}

	for i := range first {
		if first[i] != second[i] {
			t.Errorf("position %d: first=%d, second=%d", i, first[i], second[i])
		}
	}
}

func TestDeterminism(t *testing.T) {
	const seed = 42

	r1 := NewRNG(seed)
	r2 := NewRNG(seed)

	for i := 0; i < 100; i++ {
		if v1, v2 := r1.Intn(1000), r2.Intn(1000); v1 != v2 {
			t.Errorf("position %d: rng1=%d, rng2=%d", i, v1, v2)
		}
		if f1, f2 := r1.Normal(0, 2), r2.Normal(0, 2); f1 != f2 {
			t.Errorf("position %d: rng1=%f, rng2=%f", i, f1, f2)
		}
	}
}

func TestNormalAboveRespectsFloor(t *testing.T) {
	r := NewRNG(7)
	for i := 0; i < 1000; i++ {
		v := r.NormalAbove(20, 2, 20)
		if v < 20 {
			t.Fatalf("NormalAbove returned %f below floor 20", v)
		}
	}
}

func TestUint24Range(t *testing.T) {
	r := NewRNG(7)
	for i := 0; i < 1000; i++ {
		v := r.Uint24()
		if v >= 1<<24 {
			t.Fatalf("Uint24() returned %d, want < 2^24", v)
		}
	}
}

func TestNormalMeanRoughlyCentered(t *testing.T) {
	r := NewRNG(1)
	sum := 0.0
	const n = 20000
	for i := 0; i < n; i++ {
		sum += r.Normal(10, 1)
	}
	mean := sum / n
	if math.Abs(mean-10) > 0.2 {
		t.Fatalf("sample mean %f too far from 10", mean)
	}
}

func BenchmarkIntn(b *testing.B) {
	r := NewRNG(12345)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = r.Intn(100)
	}
}

func BenchmarkNormal(b *testing.B) {
	r := NewRNG(12345)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = r.Normal(0, 1)
	}
}
