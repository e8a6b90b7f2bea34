// Package registry resolves per-object acoustic parameters (material,
// bounciness, resonance, size, amplitude) used to drive modal synthesis,
// falling back through a catalog, category peers, and mass-similar
// neighbors before settling on hardcoded defaults.
package registry

import (
	"fmt"
	"math"

	"github.com/opd-ai/contactsound/pkg/material"
)

// Default parameters used when no catalog entry, override, or neighbor
// resolution succeeds.
const (
	DefaultAmp       = 0.2
	DefaultBounce    = 0.5
	DefaultResonance = 0.45
	DefaultSize      = material.SizeBucket(1)
)

// DefaultMaterial is the fallback material for unidentified rigid objects.
var DefaultMaterial = material.PlasticHard

// robotJointBounce and robotJointMaterial are applied to every robot
// joint regardless of catalog presence.
const robotJointBounce = 0.6

var robotJointMaterial = material.Metal

// StaticAudio is the resolved, per-object acoustic descriptor consumed by
// the impact and scrape paths.
type StaticAudio struct {
	ObjectID   int
	Name       string
	Amp        float64
	Mass       float64
	Material   material.Material
	Bounciness float64
	Resonance  float64
	Size       material.SizeBucket
}

// Validate checks the invariants spec'd for a resolved StaticAudio.
func (s StaticAudio) Validate() error {
	if s.Amp <= 0 || s.Amp > 1 {
		return fmt.Errorf("registry: amp %f out of (0,1]", s.Amp)
	}
	if s.Mass <= 0 {
		return fmt.Errorf("registry: mass %f must be > 0", s.Mass)
	}
	if s.Bounciness < 0 || s.Bounciness > 1 {
		return fmt.Errorf("registry: bounciness %f out of [0,1]", s.Bounciness)
	}
	if s.Resonance <= 0 || s.Resonance >= 1 {
		return fmt.Errorf("registry: resonance %f out of (0,1)", s.Resonance)
	}
	if err := s.Size.Validate(); err != nil {
		return err
	}
	return nil
}

// CatalogEntry is a named, category-tagged acoustic template, typically
// loaded from a bundled or user-supplied CSV catalog.
type CatalogEntry struct {
	Name       string
	Category   string
	Mass       float64
	Material   material.Material
	Bounciness float64
	Resonance  float64
	Size       material.SizeBucket
	Amp        float64
}

// Registry resolves per-object acoustic descriptors and caches them for
// the lifetime of an engine run.
type Registry struct {
	catalog   map[string]CatalogEntry
	overrides map[int]StaticAudio
	resolved  map[int]StaticAudio
}

// New builds a registry from a catalog (by name) with no overrides yet
// applied.
func New(catalog []CatalogEntry) *Registry {
	c := make(map[string]CatalogEntry, len(catalog))
	for _, e := range catalog {
		c[e.Name] = e
	}
	return &Registry{
		catalog:   c,
		overrides: make(map[int]StaticAudio),
		resolved:  make(map[int]StaticAudio),
	}
}

// SetOverride pins the acoustic descriptor for a specific object id,
// bypassing catalog/derivation for it.
func (r *Registry) SetOverride(objectID int, sa StaticAudio) {
	r.overrides[objectID] = sa
	delete(r.resolved, objectID)
}

// Reset clears the per-run resolution cache, keeping the catalog and
// overrides intact.
func (r *Registry) Reset() {
	r.resolved = make(map[int]StaticAudio)
}

// Resolve returns the cached or newly-derived StaticAudio for an object,
// following the fallback chain: override -> catalog -> category peers ->
// mass neighbors -> hardcoded defaults. Categories are known only for
// catalog names, so the category-peer step does not match a name that the
// catalog step missed (see categoryPeerAverage).
func (r *Registry) Resolve(objectID int, name string, mass float64) StaticAudio {
	if cached, ok := r.resolved[objectID]; ok {
		return cached
	}

	sa := r.derive(objectID, name, mass)
	r.resolved[objectID] = sa
	return sa
}

// ResolveRobotJoint resolves a robot joint's acoustic descriptor: fixed
// metal material and 0.6 bounciness, default resonance/size/amp, and mass
// taken from the joint's own static data.
func (r *Registry) ResolveRobotJoint(objectID int, mass float64) StaticAudio {
	if cached, ok := r.resolved[objectID]; ok {
		return cached
	}
	sa := StaticAudio{
		ObjectID:   objectID,
		Name:       fmt.Sprintf("robot_joint_%d", objectID),
		Amp:        DefaultAmp,
		Mass:       mass,
		Material:   robotJointMaterial,
		Bounciness: robotJointBounce,
		Resonance:  DefaultResonance,
		Size:       DefaultSize,
	}
	r.resolved[objectID] = sa
	return sa
}

func (r *Registry) derive(objectID int, name string, mass float64) StaticAudio {
	if ov, ok := r.overrides[objectID]; ok {
		ov.ObjectID = objectID
		if ov.Name == "" {
			ov.Name = name
		}
		return ov
	}

	if entry, ok := r.catalog[name]; ok {
		return fromCatalog(objectID, name, entry.Mass, entry)
	}

	if entry, ok := r.categoryPeerAverage(name); ok {
		return fromCatalog(objectID, name, mass, entry)
	}

	if entry, ok := r.massNeighborAverage(mass); ok {
		return fromCatalog(objectID, name, mass, entry)
	}

	return StaticAudio{
		ObjectID:   objectID,
		Name:       name,
		Amp:        DefaultAmp,
		Mass:       mass,
		Material:   DefaultMaterial,
		Bounciness: DefaultBounce,
		Resonance:  DefaultResonance,
		Size:       DefaultSize,
	}
}

func fromCatalog(objectID int, name string, mass float64, e CatalogEntry) StaticAudio {
	return StaticAudio{
		ObjectID:   objectID,
		Name:       name,
		Amp:        e.Amp,
		Mass:       mass,
		Material:   e.Material,
		Bounciness: e.Bounciness,
		Resonance:  e.Resonance,
		Size:       e.Size,
	}
}

// categoryPeerAverage averages the fields of every catalog entry sharing
// name's category. The category is taken only from a catalog entry with
// exactly this name; a name outside the catalog has no category and yields
// false. derive tries the exact catalog match first, so within Resolve this
// step finds no peers.
func (r *Registry) categoryPeerAverage(name string) (CatalogEntry, bool) {
	category, ok := r.categoryOf(name)
	if !ok {
		return CatalogEntry{}, false
	}

	var peers []CatalogEntry
	for _, e := range r.catalog {
		if e.Category == category {
			peers = append(peers, e)
		}
	}
	if len(peers) == 0 {
		return CatalogEntry{}, false
	}
	return averageEntries(peers), true
}

func (r *Registry) categoryOf(name string) (string, bool) {
	if e, ok := r.catalog[name]; ok {
		return e.Category, true
	}
	return "", false
}

// massNeighborAverage averages every catalog entry whose mass is within a
// 1/1.5..1.5 ratio of mass.
func (r *Registry) massNeighborAverage(mass float64) (CatalogEntry, bool) {
	if mass <= 0 {
		return CatalogEntry{}, false
	}
	var neighbors []CatalogEntry
	for _, e := range r.catalog {
		if e.Mass <= 0 {
			continue
		}
		ratio := mass / e.Mass
		if ratio >= 1.0/1.5 && ratio <= 1.5 {
			neighbors = append(neighbors, e)
		}
	}
	if len(neighbors) == 0 {
		return CatalogEntry{}, false
	}
	return averageEntries(neighbors), true
}

func averageEntries(entries []CatalogEntry) CatalogEntry {
	n := float64(len(entries))
	var out CatalogEntry
	materialVotes := make(map[material.Material]int)
	for _, e := range entries {
		out.Bounciness += e.Bounciness / n
		out.Resonance += e.Resonance / n
		out.Amp += e.Amp / n
		materialVotes[e.Material]++
	}
	out.Size = medianSize(entries)
	out.Material = majorityMaterial(materialVotes)
	return out
}

func medianSize(entries []CatalogEntry) material.SizeBucket {
	sizes := make([]int, len(entries))
	for i, e := range entries {
		sizes[i] = int(e.Size)
	}
	sum := 0
	for _, s := range sizes {
		sum += s
	}
	return material.SizeBucket(int(math.Round(float64(sum) / float64(len(sizes)))))
}

func majorityMaterial(votes map[material.Material]int) material.Material {
	best := DefaultMaterial
	bestCount := -1
	for m, c := range votes {
		if c > bestCount {
			best, bestCount = m, c
		}
	}
	return best
}
