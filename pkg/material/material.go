// Package material holds the bundled modal-synthesis parameter tables
// (center frequency, onset power, and decay time per mode) for each
// supported contact material and object-size bucket.
package material

import "fmt"

// Material identifies the acoustic category of a colliding surface.
type Material int

// Supported materials, matching the bundled mode tables in data/modes.yaml.
const (
	Ceramic Material = iota
	Glass
	Metal
	WoodHard
	WoodMedium
	WoodSoft
	Cardboard
	Paper
	Rubber
	PlasticHard
	PlasticSoft
	Fabric
	Leather
	Stone
	numMaterials
)

var materialNames = [numMaterials]string{
	Ceramic:     "ceramic",
	Glass:       "glass",
	Metal:       "metal",
	WoodHard:    "wood_hard",
	WoodMedium:  "wood_medium",
	WoodSoft:    "wood_soft",
	Cardboard:   "cardboard",
	Paper:       "paper",
	Rubber:      "rubber",
	PlasticHard: "plastic_hard",
	PlasticSoft: "plastic_soft",
	Fabric:      "fabric",
	Leather:     "leather",
	Stone:       "stone",
}

// String returns the canonical lowercase name used in the bundled tables.
func (m Material) String() string {
	if m < 0 || int(m) >= len(materialNames) {
		return "unknown"
	}
	return materialNames[m]
}

// MarshalText implements encoding.TextMarshaler for config/catalog round-trips.
func (m Material) MarshalText() ([]byte, error) {
	if m < 0 || int(m) >= len(materialNames) {
		return nil, fmt.Errorf("material: invalid value %d", int(m))
	}
	return []byte(materialNames[m]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Material) UnmarshalText(text []byte) error {
	name := string(text)
	for i, n := range materialNames {
		if n == name {
			*m = Material(i)
			return nil
		}
	}
	return fmt.Errorf("material: unknown name %q", name)
}

// ParseMaterial resolves a bundled-table name to a Material.
func ParseMaterial(name string) (Material, error) {
	var m Material
	err := m.UnmarshalText([]byte(name))
	return m, err
}

// SizeBucket is a discrete object-size category in [0,5], matching the
// bundled tables (0 is smallest, 5 is largest).
type SizeBucket int

// Validate reports whether s is a usable bucket index.
func (s SizeBucket) Validate() error {
	if s < 0 || s > 5 {
		return fmt.Errorf("material: size bucket %d out of range [0,5]", int(s))
	}
	return nil
}

const numModes = 10

// ModeDistribution holds the per-mode statistics that Sample draws from:
// center frequency (Hz), onset power (dB), and ring-down time (ms), each
// with ten entries, one per synthesized mode.
type ModeDistribution struct {
	CF [numModes]float64
	OP [numModes]float64
	RT [numModes]float64
}

// Key formats the bank lookup key for a material/size pair.
func Key(m Material, s SizeBucket) string {
	return fmt.Sprintf("%s_%d", m, int(s))
}
