// Package engine provides the contact-sound synthesis facade: OnFrame
// consumes one tick of physics telemetry and returns the playback
// commands it produces; Reset clears all per-run synthesis state.
package engine

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/contactsound/pkg/classify"
	"github.com/opd-ai/contactsound/pkg/command"
	"github.com/opd-ai/contactsound/pkg/impact"
	"github.com/opd-ai/contactsound/pkg/material"
	"github.com/opd-ai/contactsound/pkg/registry"
	"github.com/opd-ai/contactsound/pkg/rng"
	"github.com/opd-ai/contactsound/pkg/scrape"
	"github.com/opd-ai/contactsound/pkg/surface"
	"github.com/opd-ai/contactsound/pkg/telemetry"
)

// environmentID is the pseudo object id used for environment (floor/wall)
// collisions, so the impact and scrape paths can key state against it
// like any other party.
const environmentID = -1

// Config holds the parameters an Engine is constructed with.
type Config struct {
	InitialAmp        float64
	PreventDistortion bool
	Logging           bool
	FloorMaterial     material.Material
	FloorSize         material.SizeBucket
	FloorBounciness   float64
	FloorResonance    float64
	MaxScrapeSeconds  float64
}

func (c Config) validate() error {
	if c.InitialAmp <= 0 || c.InitialAmp >= 1 {
		return fmt.Errorf("%w: initial amp %f must be in (0,1)", ErrConfigInvalid, c.InitialAmp)
	}
	if c.MaxScrapeSeconds <= 0 {
		return fmt.Errorf("%w: max scrape seconds must be > 0", ErrConfigInvalid)
	}
	if c.FloorResonance <= 0 || c.FloorResonance >= 1 {
		return fmt.Errorf("%w: floor resonance %f must be in (0,1)", ErrConfigInvalid, c.FloorResonance)
	}
	return nil
}

// Engine is the stateful synthesis pipeline. It is not safe for
// concurrent OnFrame calls: telemetry is consumed one frame at a time,
// synchronously, by a single caller.
type Engine struct {
	cfg Config

	bank    *material.Bank
	profile *surface.Profile
	reg     *registry.Registry
	imp     *impact.Path
	scr     *scrape.Path
	rng     *rng.RNG
	log     *logrus.Entry

	masses        map[int]float64
	names         map[int]string
	staticsCached bool
}

// New constructs an Engine. bank and profile are the bundled (or
// overridden) mode and surface tables; catalog seeds the static audio
// registry; r drives all randomness, pass nil for production nondeterminism.
func New(cfg Config, bank *material.Bank, profile *surface.Profile, catalog []registry.CatalogEntry, r *rng.RNG, log *logrus.Entry) (*Engine, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if bank == nil {
		return nil, fmt.Errorf("%w: mode bank is nil", ErrMissingMaterialData)
	}
	if _, err := bank.Lookup(cfg.FloorMaterial, cfg.FloorSize); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingMaterialData, err)
	}

	if r == nil {
		r = rng.NewEntropyRNG()
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	reg := registry.New(catalog)
	reg.SetOverride(environmentID, registry.StaticAudio{
		ObjectID:   environmentID,
		Name:       "environment",
		Amp:        cfg.InitialAmp,
		Mass:       1e9,
		Material:   cfg.FloorMaterial,
		Bounciness: cfg.FloorBounciness,
		Resonance:  cfg.FloorResonance,
		Size:       cfg.FloorSize,
	})

	return &Engine{
		cfg:     cfg,
		bank:    bank,
		profile: profile,
		reg:     reg,
		imp:     impact.New(bank, r, cfg.PreventDistortion),
		scr:     scrape.New(profile, cfg.MaxScrapeSeconds, r),
		rng:     r,
		log:     log,
		masses:  make(map[int]float64),
		names:   make(map[int]string),
	}, nil
}

// OnFrame consumes one tick of telemetry and returns the commands it
// produces. Per-event errors (unknown object, empty synthesis, scrape
// termination) are handled internally: the offending event is skipped and
// the rest of the frame still runs.
func (e *Engine) OnFrame(frame telemetry.Frame) []command.Command {
	e.cacheStatics(frame)

	events := classify.Classify(frame, e.massOf)

	var out []command.Command
	for _, ev := range events {
		if ev.Kind == classify.KindNone {
			continue
		}

		cmd, err := e.dispatch(ev)
		if err != nil {
			e.logSkip(ev, err)
			continue
		}
		out = append(out, cmd)
	}
	return out
}

func (e *Engine) dispatch(ev classify.Event) (command.Command, error) {
	secondaryID := ev.SecondaryID
	if ev.IsEnvironment {
		secondaryID = environmentID
	}

	secondaryName, secOK := e.names[secondaryID]
	primaryName, priOK := e.names[ev.PrimaryID]
	if !ev.IsEnvironment && !secOK {
		return nil, ErrUnknownObject
	}
	if !priOK {
		return nil, ErrUnknownObject
	}

	secondaryMass := e.masses[secondaryID]
	primaryMass := e.masses[ev.PrimaryID]

	var secondary registry.StaticAudio
	var primary registry.StaticAudio
	if ev.IsEnvironment {
		secondary = e.reg.Resolve(environmentID, "environment", secondaryMass)
	} else {
		secondary = e.reg.Resolve(secondaryID, secondaryName, secondaryMass)
	}
	primary = e.reg.Resolve(ev.PrimaryID, primaryName, primaryMass)

	switch ev.Kind {
	case classify.KindImpact:
		cmd, err := e.imp.Handle(ev, secondary, primary)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSynthesisEmpty, err)
		}
		return cmd, nil
	case classify.KindScrape:
		cmd, err := e.scr.Handle(ev, secondary, primary)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrScrapeTermination, err)
		}
		return cmd, nil
	default:
		return nil, fmt.Errorf("engine: unhandled event kind %v", ev.Kind)
	}
}

func (e *Engine) logSkip(ev classify.Event, err error) {
	if !e.cfg.Logging {
		return
	}
	e.log.WithFields(logrus.Fields{
		"primary_id":   ev.PrimaryID,
		"secondary_id": ev.SecondaryID,
		"kind":         ev.Kind,
	}).WithError(err).Debug("skipped contact event")
}

func (e *Engine) massOf(objectID int) (float64, bool) {
	if objectID == environmentID {
		return 1e9, true
	}
	m, ok := e.masses[objectID]
	return m, ok
}

// cacheStatics records static telemetry (names, masses, robot joints) from
// the first frame OnFrame sees after New or Reset; statics in any later
// frame are ignored, so they are cached once per run rather than
// re-resolved every frame.
func (e *Engine) cacheStatics(frame telemetry.Frame) {
	for _, rec := range frame {
		switch s := rec.(type) {
		case telemetry.StaticRigidBody:
			if !e.staticsCached {
				e.masses[s.ObjectID] = s.Mass
				e.names[s.ObjectID] = s.Name
			}
		case telemetry.StaticRobot:
			if !e.staticsCached {
				for jointID, mass := range s.Joints {
					id := jointKey(s.RobotID, jointID)
					e.masses[id] = mass
					e.names[id] = fmt.Sprintf("robot_%d_joint_%d", s.RobotID, jointID)
					e.reg.SetOverride(id, e.reg.ResolveRobotJoint(id, mass))
				}
			}
		case telemetry.Segmentation:
			// category hints do not change cached identity/mass.
		}
	}
	e.staticsCached = true
}

func jointKey(robotID, jointID int) int {
	return robotID*100000 + jointID
}

// Reset clears all per-run synthesis state (cached statics, impact and
// scrape pair memory, registry resolution cache) and reseeds the floor's
// initial amplitude. initialAmp must lie strictly between 0 and 1.
func (e *Engine) Reset(initialAmp float64) error {
	if initialAmp <= 0 || initialAmp >= 1 {
		return fmt.Errorf("%w: initial amp %f must be in (0,1)", ErrConfigInvalid, initialAmp)
	}

	e.cfg.InitialAmp = initialAmp
	e.masses = make(map[int]float64)
	e.names = make(map[int]string)
	e.staticsCached = false
	e.reg.Reset()
	e.reg.SetOverride(environmentID, registry.StaticAudio{
		ObjectID:   environmentID,
		Name:       "environment",
		Amp:        initialAmp,
		Mass:       1e9,
		Material:   e.cfg.FloorMaterial,
		Bounciness: e.cfg.FloorBounciness,
		Resonance:  e.cfg.FloorResonance,
		Size:       e.cfg.FloorSize,
	})
	e.imp.Reset()
	e.scr.Reset()
	return nil
}
