package scrape

import (
	"math"

	"github.com/opd-ai/contactsound/pkg/modal"
)

const fadeSamples = int(0.004 * sampleRate) // 4ms

// normalizeAndGain peaks-normalizes total to targetDBFS, applies short
// fade-in/out, convolves against the shared impulse response, renormalizes
// to the full int16 range, and finally scales by the per-event gain (dB).
func normalizeAndGain(total []float64, gainDB float64, impulse []float64) []int16 {
	peak := peakAbs(total)
	if peak == 0 {
		return make([]int16, len(total))
	}
	targetAmp := math.Pow(10, targetDBFS/20)
	scaled := make([]float64, len(total))
	for i, v := range total {
		scaled[i] = v / peak * targetAmp
	}
	applyFade(scaled, fadeSamples)

	convolved := modal.Convolve(scaled, impulse)

	convPeak := peakAbs(convolved)
	if convPeak == 0 {
		return make([]int16, len(convolved))
	}
	gainLinear := math.Pow(10, gainDB/20)

	out := make([]int16, len(convolved))
	for i, v := range convolved {
		s := (v / convPeak) * gainLinear * 32767
		out[i] = clampInt16(s)
	}
	return out
}

func applyFade(x []float64, n int) {
	if n > len(x)/2 {
		n = len(x) / 2
	}
	for i := 0; i < n; i++ {
		g := float64(i) / float64(n)
		x[i] *= g
		x[len(x)-1-i] *= g
	}
}

func clampInt16(v float64) int16 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}

// overlay appends a 50ms silence pad (for all but the first event) then
// the new mono chunk. The caller enforces the rolling buffer's overall
// length cap.
func overlay(st *state, mono []int16) {
	if len(st.master) > 0 {
		st.master = append(st.master, silence(silenceMs)...)
	}
	st.master = append(st.master, mono...)
}

func silence(ms int) []int16 {
	n := ms * sampleRate / 1000
	return make([]int16, n)
}

// extractWindow returns a windowMs-long mono slice starting at
// windowMs*eventCount milliseconds into the rolling master buffer, or at 0
// when that offset lies past the buffer's end, clamped to the buffer's
// extent.
func extractWindow(master []int16, eventCount int) []int16 {
	framesPerMs := sampleRate / 1000
	startSample := windowMs * eventCount * framesPerMs
	lengthSamples := windowMs * framesPerMs

	if startSample >= len(master) {
		startSample = 0
		if lengthSamples > len(master) {
			lengthSamples = len(master)
		}
	}
	end := startSample + lengthSamples
	if end > len(master) {
		end = len(master)
	}
	return append([]int16(nil), master[startSample:end]...)
}

// syntheticImpulseResponse returns a short exponentially-decaying impulse
// modeling a small reflective cavity, used to color the raw scrape signal
// before it is quantized.
func syntheticImpulseResponse() []float64 {
	const n = 256
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		t := float64(i) / sampleRate
		out[i] = math.Exp(-t*4000) * math.Sin(2*math.Pi*1800*t)
	}
	return out
}
