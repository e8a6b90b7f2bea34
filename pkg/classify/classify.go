// Package classify turns a frame of collision manifolds into a
// deduplicated set of acoustic events: impacts, scrapes, or suppressed
// contacts (rolls, near-zero velocity).
package classify

import (
	"math"

	"github.com/opd-ai/contactsound/pkg/telemetry"
)

// EventKind distinguishes the acoustic treatment a contact receives.
type EventKind int

const (
	KindNone EventKind = iota
	KindImpact
	KindScrape
)

// SuppressReason records why a contact produced no synthesizable event.
type SuppressReason int

const (
	SuppressNotApplicable SuppressReason = iota
	SuppressLowVelocity
	SuppressRoll
)

// Thresholds controlling classification. lowVelocityThreshold only gates
// fresh (no prior contact) manifolds, i.e. Enter events: it suppresses the
// "spawn click" of a near-stationary object settling into first contact. It
// is not applied to sustained (Stay) contact, where any nonzero magnitude
// proceeds to the roll/scrape decision.
const (
	lowVelocityThreshold    = 0.01
	rollAngularVelThreshold = 0.1
)

// Event is a single classified contact, ready for dispatch to the impact
// or scrape path.
type Event struct {
	Kind          EventKind
	PrimaryID     int
	SecondaryID   int // -1 for an environment collision
	IsEnvironment bool
	Normals       []telemetry.Vec3
	ContactPoints []telemetry.Vec3
	RelativeVel   telemetry.Vec3
	AngularVel    telemetry.Vec3
	Magnitude     float64
	Suppress      SuppressReason

	state telemetry.CollisionState
}

// MassLookup resolves an object id's mass. ok is false for unknown
// objects, which Classify treats as maximally massive (never primary).
type MassLookup func(objectID int) (mass float64, ok bool)

// Classify builds candidate events from every collision manifold in frame,
// classifies each, and retains at most one event per primary object id
// (the highest-magnitude candidate wins).
func Classify(frame telemetry.Frame, massOf MassLookup) []Event {
	best := make(map[int]Event)

	for _, rec := range frame {
		var cand Event
		switch c := rec.(type) {
		case telemetry.Collision:
			cand = fromCollision(c, massOf)
		case telemetry.EnvironmentCollision:
			cand = fromEnvironmentCollision(c)
		default:
			continue
		}

		resolveKind(&cand)

		existing, ok := best[cand.PrimaryID]
		if !ok || cand.Magnitude > existing.Magnitude {
			best[cand.PrimaryID] = cand
		}
	}

	events := make([]Event, 0, len(best))
	for _, e := range best {
		events = append(events, e)
	}
	return events
}

func fromCollision(c telemetry.Collision, massOf MassLookup) Event {
	primary, secondary := c.ObjectIDA, c.ObjectIDB
	massA, okA := massOf(primary)
	massB, okB := massOf(secondary)
	if okA && okB && massB < massA {
		primary, secondary = secondary, primary
	} else if okB && !okA {
		primary, secondary = secondary, primary
	}

	return Event{
		PrimaryID:     primary,
		SecondaryID:   secondary,
		Normals:       c.Normals,
		ContactPoints: c.ContactPoints,
		RelativeVel:   c.RelativeVel,
		AngularVel:    c.AngularVel,
		Magnitude:     magnitude(c.RelativeVel),
		state:         c.State,
	}
}

func fromEnvironmentCollision(c telemetry.EnvironmentCollision) Event {
	return Event{
		PrimaryID:     c.ObjectID,
		SecondaryID:   -1,
		IsEnvironment: true,
		Normals:       c.Normals,
		ContactPoints: c.ContactPoints,
		RelativeVel:   c.RelativeVel,
		AngularVel:    c.AngularVel,
		Magnitude:     magnitude(c.RelativeVel),
		state:         c.State,
	}
}

// resolveKind assigns Kind and Suppress per the classification table: zero
// velocity never sounds; a fresh (Enter) manifold below lowVelocityThreshold
// is a suppressed spawn click, otherwise an impact; sustained (Stay) contact
// with high angular velocity is a roll and is suppressed, any other
// sustained contact is a scrape regardless of how small its magnitude is.
func resolveKind(e *Event) {
	if e.Magnitude == 0 {
		e.Kind = KindNone
		e.Suppress = SuppressLowVelocity
		return
	}

	switch e.state {
	case telemetry.Enter:
		if e.Magnitude < lowVelocityThreshold {
			e.Kind = KindNone
			e.Suppress = SuppressLowVelocity
			return
		}
		e.Kind = KindImpact
		e.Suppress = SuppressNotApplicable
	case telemetry.Stay:
		if magnitude(e.AngularVel) > rollAngularVelThreshold {
			e.Kind = KindNone
			e.Suppress = SuppressRoll
			return
		}
		e.Kind = KindScrape
		e.Suppress = SuppressNotApplicable
	default:
		e.Kind = KindNone
		e.Suppress = SuppressNotApplicable
	}
}

func magnitude(v telemetry.Vec3) float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}
