// Package surface holds the scrape-surface roughness profile: a fixed 1-D
// signal sampled as a pair of colliding surfaces slide across each other.
package surface

import (
	"embed"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

//go:embed data/profile.csv
var bundledProfile embed.FS

// Profile is an immutable roughness signal. It stores its own content
// concatenated with itself so that windows wrapping past the end can be
// read without a modulo on every sample.
type Profile struct {
	doubled []float64
	n       int
}

// LoadBundled parses the embedded default roughness profile.
func LoadBundled() (*Profile, error) {
	f, err := bundledProfile.Open("data/profile.csv")
	if err != nil {
		return nil, fmt.Errorf("surface: opening bundled profile: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load parses a single-column CSV roughness profile.
func Load(r io.Reader) (*Profile, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 1

	var values []float64
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("surface: parsing profile: %w", err)
		}
		v, err := strconv.ParseFloat(rec[0], 64)
		if err != nil {
			return nil, fmt.Errorf("surface: invalid sample %q: %w", rec[0], err)
		}
		values = append(values, v)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("surface: profile is empty")
	}

	return &Profile{doubled: append(append([]float64(nil), values...), values...), n: len(values)}, nil
}

// Len reports the number of distinct samples in one period of the profile.
func (p *Profile) Len() int { return p.n }

// RemainingFrom reports how many samples remain before cursor wraps back
// to the start of the underlying period.
func (p *Profile) RemainingFrom(cursor int) int {
	return p.n - (cursor % p.n)
}

// Window returns count samples starting at cursor, wrapping via the
// doubled buffer; cursor is taken modulo the profile length.
func (p *Profile) Window(cursor, count int) []float64 {
	start := cursor % p.n
	if start+count <= len(p.doubled) {
		return p.doubled[start : start+count]
	}
	// count exceeds even the doubled buffer; tile manually.
	out := make([]float64, count)
	for i := 0; i < count; i++ {
		out[i] = p.doubled[(start+i)%p.n]
	}
	return out
}
