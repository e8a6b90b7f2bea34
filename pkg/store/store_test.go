package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/opd-ai/contactsound/pkg/material"
	"github.com/opd-ai/contactsound/pkg/registry"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := New(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndLoadCatalogRoundTrip(t *testing.T) {
	s := testStore(t)
	entries := []registry.CatalogEntry{
		{Name: "wood_block_small", Category: "block", Mass: 0.5, Material: material.WoodHard, Bounciness: 0.3, Resonance: 0.4, Size: 1, Amp: 0.5},
		{Name: "glass_cup", Category: "cup", Mass: 0.2, Material: material.Glass, Bounciness: 0.1, Resonance: 0.6, Size: 0, Amp: 0.7},
	}
	if err := s.SaveCatalog(entries); err != nil {
		t.Fatalf("SaveCatalog() error = %v", err)
	}

	got, err := s.LoadCatalog()
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d entries, want 2", len(got))
	}
	byName := make(map[string]registry.CatalogEntry, len(got))
	for _, e := range got {
		byName[e.Name] = e
	}
	for _, want := range entries {
		if g, ok := byName[want.Name]; !ok || g != want {
			t.Errorf("entry %q = %+v, want %+v", want.Name, g, want)
		}
	}
}

func TestSaveCatalogReplacesPrevious(t *testing.T) {
	s := testStore(t)
	first := []registry.CatalogEntry{{Name: "a", Category: "x", Mass: 1, Material: material.Metal, Bounciness: 0.2, Resonance: 0.3, Size: 2, Amp: 0.4}}
	second := []registry.CatalogEntry{{Name: "b", Category: "y", Mass: 2, Material: material.Glass, Bounciness: 0.1, Resonance: 0.5, Size: 1, Amp: 0.3}}

	if err := s.SaveCatalog(first); err != nil {
		t.Fatalf("first SaveCatalog() error = %v", err)
	}
	if err := s.SaveCatalog(second); err != nil {
		t.Fatalf("second SaveCatalog() error = %v", err)
	}

	got, err := s.LoadCatalog()
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}
	if len(got) != 1 || got[0].Name != "b" {
		t.Fatalf("got %+v, want single entry 'b'", got)
	}
}

func TestSaveOverrideUpsertsOnConflict(t *testing.T) {
	s := testStore(t)
	audio := registry.StaticAudio{ObjectID: 42, Name: "wood_block_small", Amp: 0.5, Mass: 0.8, Material: material.WoodHard, Bounciness: 0.3, Resonance: 0.4, Size: 1}
	if err := s.SaveOverride(audio); err != nil {
		t.Fatalf("SaveOverride() error = %v", err)
	}

	audio.Amp = 0.9
	if err := s.SaveOverride(audio); err != nil {
		t.Fatalf("second SaveOverride() error = %v", err)
	}

	got, err := s.LoadOverrides()
	if err != nil {
		t.Fatalf("LoadOverrides() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d overrides, want 1", len(got))
	}
	if got[42].Amp != 0.9 {
		t.Errorf("Amp = %f, want 0.9 (upsert should have replaced)", got[42].Amp)
	}
}

func TestDeleteOverrideRemovesEntry(t *testing.T) {
	s := testStore(t)
	audio := registry.StaticAudio{ObjectID: 7, Name: "glass_cup", Amp: 0.5, Mass: 0.2, Material: material.Glass, Bounciness: 0.1, Resonance: 0.6, Size: 0}
	if err := s.SaveOverride(audio); err != nil {
		t.Fatalf("SaveOverride() error = %v", err)
	}
	if err := s.DeleteOverride(7); err != nil {
		t.Fatalf("DeleteOverride() error = %v", err)
	}
	got, err := s.LoadOverrides()
	if err != nil {
		t.Fatalf("LoadOverrides() error = %v", err)
	}
	if _, ok := got[7]; ok {
		t.Error("expected override 7 to be deleted")
	}
}

func TestNewCreatesDBFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested.db")
	s, err := New(path)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer s.Close()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected db file to exist: %v", err)
	}
}
