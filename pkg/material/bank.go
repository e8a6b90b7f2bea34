package material

import (
	"embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/opd-ai/contactsound/pkg/modal"
	"github.com/opd-ai/contactsound/pkg/rng"
)

//go:embed data/modes.yaml
var bundledModes embed.FS

type modesFile struct {
	Modes map[string]distributionYAML `yaml:"modes"`
}

type distributionYAML struct {
	CF []float64 `yaml:"cf"`
	OP []float64 `yaml:"op"`
	RT []float64 `yaml:"rt"`
}

// Bank is a read-only, load-once table of mode distributions keyed by
// material/size.
type Bank struct {
	table map[string]ModeDistribution
}

// LoadBundled parses the mode distributions embedded at build time.
func LoadBundled() (*Bank, error) {
	raw, err := bundledModes.ReadFile("data/modes.yaml")
	if err != nil {
		return nil, fmt.Errorf("material: reading bundled modes: %w", err)
	}
	return Load(raw)
}

// Load parses mode distributions from YAML data shaped like the bundled
// table, allowing callers to supply an override mode table.
func Load(data []byte) (*Bank, error) {
	var f modesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("material: parsing mode table: %w", err)
	}
	if len(f.Modes) == 0 {
		return nil, fmt.Errorf("material: mode table is empty")
	}

	table := make(map[string]ModeDistribution, len(f.Modes))
	for key, d := range f.Modes {
		if len(d.CF) != numModes || len(d.OP) != numModes || len(d.RT) != numModes {
			return nil, fmt.Errorf("material: entry %q must have %d cf/op/rt values", key, numModes)
		}
		var dist ModeDistribution
		copy(dist.CF[:], d.CF)
		copy(dist.OP[:], d.OP)
		copy(dist.RT[:], d.RT)
		table[key] = dist
	}
	return &Bank{table: table}, nil
}

// Lookup returns the mode distribution for a material/size pair.
func (b *Bank) Lookup(m Material, s SizeBucket) (ModeDistribution, error) {
	d, ok := b.table[Key(m, s)]
	if !ok {
		return ModeDistribution{}, fmt.Errorf("material: no mode data for %s size %d", m, int(s))
	}
	return d, nil
}

// Keys returns the sorted set of material/size keys present in the bank,
// primarily for diagnostics and tests.
func (b *Bank) Keys() []string {
	keys := make([]string, 0, len(b.table))
	for k := range b.table {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Sample draws ten ringing modes for the given material/size, rejection
// sampling the center frequency and decay time against their physical
// floors (20Hz, 1ms) and drawing the onset power unconditionally.
func (b *Bank) Sample(m Material, s SizeBucket, r *rng.RNG) (modal.Modes, error) {
	d, err := b.Lookup(m, s)
	if err != nil {
		return modal.Modes{}, err
	}

	out := modal.Modes{
		Frequencies:  make([]float64, numModes),
		Powers:       make([]float64, numModes),
		DecayTimesMs: make([]float64, numModes),
	}
	for i := 0; i < numModes; i++ {
		out.Frequencies[i] = r.NormalAbove(d.CF[i], d.CF[i]/10, 20)
		out.Powers[i] = r.Normal(d.OP[i], 10)
		out.DecayTimesMs[i] = r.NormalAbove(d.RT[i], d.RT[i]/10, 1.0)
	}
	return out, nil
}
