package registry

import (
	"embed"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/opd-ai/contactsound/pkg/material"
)

//go:embed data/catalog.csv
var bundledCatalog embed.FS

// LoadBundledCatalog parses the built-in object catalog.
func LoadBundledCatalog() ([]CatalogEntry, error) {
	f, err := bundledCatalog.Open("data/catalog.csv")
	if err != nil {
		return nil, fmt.Errorf("registry: opening bundled catalog: %w", err)
	}
	defer f.Close()
	return LoadCatalog(f)
}

// LoadCatalog parses a CSV catalog with header columns:
// name,category,mass,material,bounciness,resonance,size,amp.
func LoadCatalog(r io.Reader) ([]CatalogEntry, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("registry: reading catalog header: %w", err)
	}
	idx, err := columnIndex(header, "name", "category", "mass", "material", "bounciness", "resonance", "size", "amp")
	if err != nil {
		return nil, err
	}

	var entries []CatalogEntry
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("registry: reading catalog row: %w", err)
		}

		mass, err := strconv.ParseFloat(rec[idx["mass"]], 64)
		if err != nil {
			return nil, fmt.Errorf("registry: invalid mass in row %v: %w", rec, err)
		}
		mat, err := material.ParseMaterial(rec[idx["material"]])
		if err != nil {
			return nil, fmt.Errorf("registry: invalid material in row %v: %w", rec, err)
		}
		bounce, err := strconv.ParseFloat(rec[idx["bounciness"]], 64)
		if err != nil {
			return nil, fmt.Errorf("registry: invalid bounciness in row %v: %w", rec, err)
		}
		resonance, err := strconv.ParseFloat(rec[idx["resonance"]], 64)
		if err != nil {
			return nil, fmt.Errorf("registry: invalid resonance in row %v: %w", rec, err)
		}
		size, err := strconv.Atoi(rec[idx["size"]])
		if err != nil {
			return nil, fmt.Errorf("registry: invalid size in row %v: %w", rec, err)
		}
		amp, err := strconv.ParseFloat(rec[idx["amp"]], 64)
		if err != nil {
			return nil, fmt.Errorf("registry: invalid amp in row %v: %w", rec, err)
		}

		entries = append(entries, CatalogEntry{
			Name:       rec[idx["name"]],
			Category:   rec[idx["category"]],
			Mass:       mass,
			Material:   mat,
			Bounciness: bounce,
			Resonance:  resonance,
			Size:       material.SizeBucket(size),
			Amp:        amp,
		})
	}
	return entries, nil
}

func columnIndex(header []string, want ...string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[h] = i
	}
	for _, w := range want {
		if _, ok := idx[w]; !ok {
			return nil, fmt.Errorf("registry: catalog missing column %q", w)
		}
	}
	return idx, nil
}
