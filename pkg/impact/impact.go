// Package impact composes the classifier, the material mode bank, and the
// modal synthesizer into one-shot impact playback commands, tracking
// per-pair synthesis state across frames so repeated impacts perturb
// rather than re-synthesize from scratch.
package impact

import (
	"errors"
	"math"

	"github.com/opd-ai/contactsound/pkg/classify"
	"github.com/opd-ai/contactsound/pkg/command"
	"github.com/opd-ai/contactsound/pkg/material"
	"github.com/opd-ai/contactsound/pkg/modal"
	"github.com/opd-ai/contactsound/pkg/registry"
	"github.com/opd-ai/contactsound/pkg/rng"
	"github.com/opd-ai/contactsound/pkg/telemetry"
)

// ErrUnknownObject reports an event party without a resolvable static audio
// descriptor. Handle does not return it; the engine checks both parties
// before calling Handle.
var ErrUnknownObject = errors.New("impact: unknown object")

// maxAmp bounds the output amplitude when PreventDistortion is set.
const maxAmp = 0.99

// pairKey orders a (secondary, primary) object id pair into a single map
// key, flattening what the reference implementation kept as a nested
// two-level map.
type pairKey struct {
	secondary, primary int
}

// info is the synthesis memory kept for one colliding pair.
type info struct {
	modes1, modes2 modal.Modes
	initSpeed      float64
	storedAmp      float64
}

// Path synthesizes impact audio and tracks per-pair state.
type Path struct {
	bank              *material.Bank
	rng               *rng.RNG
	preventDistortion bool
	state             map[pairKey]*info
}

// New creates an impact path backed by bank for mode sampling and r for
// all randomness (mode draws and perturbation noise).
func New(bank *material.Bank, r *rng.RNG, preventDistortion bool) *Path {
	return &Path{
		bank:              bank,
		rng:               r,
		preventDistortion: preventDistortion,
		state:             make(map[pairKey]*info),
	}
}

// Reset clears all per-pair synthesis memory.
func (p *Path) Reset() {
	p.state = make(map[pairKey]*info)
}

// Handle synthesizes (or perturbs) the impact sound for a classified
// impact event and returns the resulting playback command.
func (p *Path) Handle(e classify.Event, secondary, primary registry.StaticAudio) (command.PlayPointSourceData, error) {
	key := pairKey{secondary: secondary.ObjectID, primary: primary.ObjectID}
	st, seen := p.state[key]

	normalSpeed := averageNormalSpeed(e.RelativeVel, e.Normals)

	var samples []float64
	var amp float64

	if !seen {
		m1, err := p.bank.Sample(secondary.Material, secondary.Size, p.rng)
		if err != nil {
			return command.PlayPointSourceData{}, err
		}
		m2, err := p.bank.Sample(primary.Material, primary.Size, p.rng)
		if err != nil {
			return command.PlayPointSourceData{}, err
		}

		mass := math.Min(secondary.Mass, primary.Mass)
		resonance := primary.Resonance
		out, err := modal.SynthImpact(m1, m2, mass, resonance)
		if err != nil {
			return command.PlayPointSourceData{}, err
		}

		st = &info{modes1: m1, modes2: m2, initSpeed: normalSpeed, storedAmp: primary.Amp}
		p.state[key] = st
		samples = out
		amp = primary.Amp
	} else {
		perturbed1 := perturbPowers(st.modes1, p.rng)
		perturbed2 := perturbPowers(st.modes2, p.rng)
		mass := math.Min(secondary.Mass, primary.Mass)
		out, err := modal.SynthImpact(perturbed1, perturbed2, mass, primary.Resonance)
		if err != nil {
			return command.PlayPointSourceData{}, err
		}

		samples = out
		scale := 1.0
		if st.initSpeed != 0 {
			scale = normalSpeed / st.initSpeed
		}
		amp = st.storedAmp * scale
	}

	if p.preventDistortion && math.Abs(amp) > maxAmp {
		if amp < 0 {
			amp = -maxAmp
		} else {
			amp = maxAmp
		}
	}

	pcm := toInt16PeakScaled(samples, amp)
	pos := centroid(e.ContactPoints)
	id := p.rng.Uint24()

	return command.NewPlayPointSourceData(id, pcm, 1, modal.SampleRate, command.Position(pos), 0.1), nil
}

func perturbPowers(m modal.Modes, r *rng.RNG) modal.Modes {
	out := modal.Modes{
		Frequencies:  append([]float64(nil), m.Frequencies...),
		Powers:       make([]float64, len(m.Powers)),
		DecayTimesMs: append([]float64(nil), m.DecayTimesMs...),
	}
	for i, p := range m.Powers {
		out.Powers[i] = p + r.Normal(0, 2)
	}
	return out
}

// averageNormalSpeed projects v onto each normal (speed * cos(theta)) and
// averages the result. Normals are unit-normalized first since the caller
// makes no guarantee about their length.
func averageNormalSpeed(v telemetry.Vec3, normals []telemetry.Vec3) float64 {
	if len(normals) == 0 {
		return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	}
	sum := 0.0
	for _, n := range normals {
		length := math.Sqrt(n[0]*n[0] + n[1]*n[1] + n[2]*n[2])
		if length == 0 {
			continue
		}
		sum += (v[0]*n[0] + v[1]*n[1] + v[2]*n[2]) / length
	}
	return sum / float64(len(normals))
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

func toInt16PeakScaled(x []float64, amp float64) []int16 {
	peak := 0.0
	for _, v := range x {
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}
	out := make([]int16, len(x))
	if peak == 0 {
		return out
	}
	for i, v := range x {
		scaled := (v / peak) * amp * 32767
		out[i] = clampInt16(scaled)
	}
	return out
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
