// Package scrape implements the sustained-contact sliding-sound synthesis
// path: a per-pair streaming state machine that samples the shared
// surface-roughness profile, renders a scrape waveform, and overlays it
// into a rolling master buffer.
package scrape

import (
	"errors"
	"math"

	"github.com/opd-ai/contactsound/pkg/classify"
	"github.com/opd-ai/contactsound/pkg/command"
	"github.com/opd-ai/contactsound/pkg/registry"
	"github.com/opd-ai/contactsound/pkg/rng"
	"github.com/opd-ai/contactsound/pkg/surface"
	"github.com/opd-ai/contactsound/pkg/telemetry"
)

// ErrTerminated is returned when a scrape pair's contact has effectively
// stopped sliding (a single surface sample remains per frame) or when the
// pair's rolling master buffer exceeds its cap; the pair's state is deleted
// and no command is produced.
var ErrTerminated = errors.New("scrape: pair terminated")

const (
	// mPerPixel converts slide speed (mm/s) to surface-profile samples
	// per frame.
	mPerPixel  = 1394.068e-9
	targetDBFS = -20.0
	gridSize   = 4010
	windowMs   = 100
	silenceMs  = 50
	sampleRate = 44100
	maxSpeed   = 5.0
)

// pairKey orders a (secondary, primary) object id pair into a single map
// key.
type pairKey struct {
	secondary, primary int
}

// state is the per-pair rolling synthesis memory.
type state struct {
	master     []int16
	eventCount int
}

// Path synthesizes scrape audio, streaming against a shared surface
// profile and per-pair rolling buffers.
type Path struct {
	profile    *surface.Profile
	cursor     int
	states     map[pairKey]*state
	maxSamples int
	impulse    []float64
	rng        *rng.RNG
}

// New creates a scrape path reading from profile, capping each pair's
// rolling master buffer at maxSeconds of audio.
func New(profile *surface.Profile, maxSeconds float64, r *rng.RNG) *Path {
	return &Path{
		profile:    profile,
		states:     make(map[pairKey]*state),
		maxSamples: int(maxSeconds * sampleRate),
		impulse:    syntheticImpulseResponse(),
		rng:        r,
	}
}

// Reset clears all per-pair state and rewinds the shared cursor.
func (p *Path) Reset() {
	p.cursor = 0
	p.states = make(map[pairKey]*state)
}

// Handle advances the scrape state machine for one classified scrape
// event and returns the resulting playback command, or ErrTerminated if
// the pair's relative slide has effectively stopped or its rolling master
// buffer has grown past the cap.
func (p *Path) Handle(e classify.Event, secondary, primary registry.StaticAudio) (command.PlayPointSourceData, error) {
	key := pairKey{secondary: secondary.ObjectID, primary: primary.ObjectID}
	st, ok := p.states[key]
	if !ok {
		st = &state{}
		p.states[key] = st
	}

	speed := math.Sqrt(e.RelativeVel[0]*e.RelativeVel[0] + e.RelativeVel[1]*e.RelativeVel[1] + e.RelativeVel[2]*e.RelativeVel[2])
	mag := math.Min(speed, maxSpeed)
	db := dBFromMagnitude(mag)

	numPts := int(math.Floor((mag / 1000.0) / mPerPixel))
	if numPts < 1 {
		numPts = 1
	}
	if numPts == 1 {
		delete(p.states, key)
		return command.PlayPointSourceData{}, ErrTerminated
	}

	if p.profile.RemainingFrom(p.cursor) < 100 {
		p.cursor = 0
	}
	window := p.profile.Window(p.cursor, numPts)
	p.cursor += numPts

	total := renderScrapeWaveform(window)
	pcm := normalizeAndGain(total, db, p.impulse)

	overlay(st, pcm)
	if p.maxSamples > 0 && len(st.master) > p.maxSamples {
		delete(p.states, key)
		return command.PlayPointSourceData{}, ErrTerminated
	}
	windowSamples := extractWindow(st.master, st.eventCount)
	st.eventCount++

	pos := centroid(e.ContactPoints)
	id := p.rng.Uint24()

	return command.NewPlayPointSourceData(id, windowSamples, 1, sampleRate, command.Position(pos), 0), nil
}

func dBFromMagnitude(mag float64) float64 {
	sq := mag * mag
	sq = math.Max(0, math.Min(25, sq))
	// linear map sq in [0,25] -> db in [-80,-12]
	return -80 + (sq/25.0)*(-12-(-80))
}

func renderScrapeWaveform(window []float64) []float64 {
	firstDiff := surface.FirstDifference(window, mPerPixel)
	secondDiff := surface.SecondDifference(window, mPerPixel)

	vertRaw := make([]float64, len(secondDiff))
	for i, d := range secondDiff {
		vertRaw[i] = math.Tanh(d * d / 1000.0)
	}
	vert := surface.Resample(gaussianSmooth(vertRaw, 10), gridSize)

	horizRaw := surface.Resample(firstDiff, gridSize)

	vertPeak := peakAbs(vert)
	if vertPeak == 0 {
		vertPeak = 1
	}
	total := make([]float64, len(vert))
	for i := range total {
		h := 0.0
		if i < len(horizRaw) {
			h = horizRaw[i]
		}
		total[i] = vert[i]/vertPeak + 0.2*h
	}

	return total
}

func gaussianSmooth(x []float64, sigma float64) []float64 {
	radius := int(3 * sigma)
	kernel := make([]float64, 2*radius+1)
	sum := 0.0
	for i := -radius; i <= radius; i++ {
		v := math.Exp(-float64(i*i) / (2 * sigma * sigma))
		kernel[i+radius] = v
		sum += v
	}
	for i := range kernel {
		kernel[i] /= sum
	}

	out := make([]float64, len(x))
	for i := range x {
		acc := 0.0
		for k := -radius; k <= radius; k++ {
			idx := i + k
			if idx < 0 {
				idx = 0
			}
			if idx >= len(x) {
				idx = len(x) - 1
			}
			acc += x[idx] * kernel[k+radius]
		}
		out[i] = acc
	}
	return out
}

func peakAbs(x []float64) float64 {
	peak := 0.0
	for _, v := range x {
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}
	return peak
}

func centroid(points []telemetry.Vec3) telemetry.Vec3 {
	if len(points) == 0 {
		return telemetry.Vec3{}
	}
	var c telemetry.Vec3
	for _, p := range points {
		c[0] += p[0]
		c[1] += p[1]
		c[2] += p[2]
	}
	n := float64(len(points))
	return telemetry.Vec3{c[0] / n, c[1] / n, c[2] / n}
}
