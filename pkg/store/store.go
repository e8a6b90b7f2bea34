// Package store provides SQLite persistence for the object catalog and
// per-object audio overrides, so resolved registry entries survive process
// restarts instead of being rebuilt from the bundled catalog every time.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"github.com/opd-ai/contactsound/pkg/material"
	"github.com/opd-ai/contactsound/pkg/registry"
)

// Store manages catalog and override persistence.
type Store struct {
	db *sql.DB
}

// New opens (creating if necessary) a SQLite-backed store at dbPath.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}

	if err := s.createTables(); err != nil {
		db.Close()
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"db_path": dbPath,
	}).Info("store initialized")

	return s, nil
}

func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS catalog (
		name TEXT PRIMARY KEY,
		category TEXT NOT NULL,
		mass REAL NOT NULL,
		material TEXT NOT NULL,
		bounciness REAL NOT NULL,
		resonance REAL NOT NULL,
		size INTEGER NOT NULL,
		amp REAL NOT NULL
	);
	CREATE TABLE IF NOT EXISTS overrides (
		object_id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		mass REAL NOT NULL,
		material TEXT NOT NULL,
		bounciness REAL NOT NULL,
		resonance REAL NOT NULL,
		size INTEGER NOT NULL,
		amp REAL NOT NULL,
		updated_at DATETIME NOT NULL
	);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	return nil
}

// SaveCatalog replaces the persisted catalog with entries.
func (s *Store) SaveCatalog(entries []registry.CatalogEntry) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM catalog`); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to clear catalog: %w", err)
	}

	stmt, err := tx.Prepare(`
	INSERT INTO catalog (name, category, mass, material, bounciness, resonance, size, amp)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.Exec(e.Name, e.Category, e.Mass, e.Material.String(), e.Bounciness, e.Resonance, int(e.Size), e.Amp); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert catalog entry %q: %w", e.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit catalog: %w", err)
	}

	logrus.WithField("count", len(entries)).Info("catalog persisted")
	return nil
}

// LoadCatalog reads the persisted catalog.
func (s *Store) LoadCatalog() ([]registry.CatalogEntry, error) {
	rows, err := s.db.Query(`
	SELECT name, category, mass, material, bounciness, resonance, size, amp FROM catalog
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query catalog: %w", err)
	}
	defer rows.Close()

	var entries []registry.CatalogEntry
	for rows.Next() {
		var e registry.CatalogEntry
		var matName string
		var size int
		if err := rows.Scan(&e.Name, &e.Category, &e.Mass, &matName, &e.Bounciness, &e.Resonance, &size, &e.Amp); err != nil {
			return nil, fmt.Errorf("failed to scan catalog row: %w", err)
		}
		m, err := material.ParseMaterial(matName)
		if err != nil {
			return nil, fmt.Errorf("failed to parse material %q: %w", matName, err)
		}
		e.Material = m
		e.Size = material.SizeBucket(size)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return entries, nil
}

// SaveOverride persists a single object's resolved audio override, keyed by
// object id, so it survives across Engine.Reset and process restarts.
func (s *Store) SaveOverride(audio registry.StaticAudio) error {
	query := `
	INSERT INTO overrides (object_id, name, mass, material, bounciness, resonance, size, amp, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(object_id) DO UPDATE SET
		name = excluded.name,
		mass = excluded.mass,
		material = excluded.material,
		bounciness = excluded.bounciness,
		resonance = excluded.resonance,
		size = excluded.size,
		amp = excluded.amp,
		updated_at = excluded.updated_at
	`

	_, err := s.db.Exec(query, audio.ObjectID, audio.Name, audio.Mass, audio.Material.String(),
		audio.Bounciness, audio.Resonance, int(audio.Size), audio.Amp, time.Now())
	if err != nil {
		return fmt.Errorf("failed to save override: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"object_id": audio.ObjectID,
		"name":      audio.Name,
	}).Debug("override persisted")

	return nil
}

// LoadOverrides reads all persisted overrides, keyed by object id.
func (s *Store) LoadOverrides() (map[int]registry.StaticAudio, error) {
	rows, err := s.db.Query(`
	SELECT object_id, name, mass, material, bounciness, resonance, size, amp FROM overrides
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query overrides: %w", err)
	}
	defer rows.Close()

	out := make(map[int]registry.StaticAudio)
	for rows.Next() {
		var a registry.StaticAudio
		var matName string
		var size int
		if err := rows.Scan(&a.ObjectID, &a.Name, &a.Mass, &matName, &a.Bounciness, &a.Resonance, &size, &a.Amp); err != nil {
			return nil, fmt.Errorf("failed to scan override row: %w", err)
		}
		m, err := material.ParseMaterial(matName)
		if err != nil {
			return nil, fmt.Errorf("failed to parse material %q: %w", matName, err)
		}
		a.Material = m
		a.Size = material.SizeBucket(size)
		out[a.ObjectID] = a
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return out, nil
}

// DeleteOverride removes a persisted override, e.g. when an Engine.Reset
// should forget everything but the bundled catalog.
func (s *Store) DeleteOverride(objectID int) error {
	_, err := s.db.Exec(`DELETE FROM overrides WHERE object_id = ?`, objectID)
	if err != nil {
		return fmt.Errorf("failed to delete override: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
