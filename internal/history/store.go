// Package history provides SQLite-backed storage for completed menus.
// Every finished planning run is saved so past dinners can be listed,
// re-read, or exported as YAML.
package history

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	yaml "go.yaml.in/yaml/v3"
	_ "modernc.org/sqlite"

	"github.com/soireekit/soiree/pkg/models"
)

// ErrNotFound is returned when a menu ID does not exist in the store.
var ErrNotFound = errors.New("menu not found")

// Store wraps an SQLite database holding completed menus.
type Store struct {
	conn *sql.DB
	path string
	mu   sync.RWMutex
}

// Open opens the menu store at the given path.
// It creates the parent directories if they don't exist.
// WAL mode is enabled for concurrent reads.
func Open(path string) (*Store, error) {
	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for concurrent reads
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	store := &Store{
		conn: conn,
		path: path,
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.Close()
}

// Path returns the path to the database file.
func (s *Store) Path() string {
	return s.path
}

// Migrate applies all pending schema migrations.
func (s *Store) Migrate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Create schema version table
	_, err := s.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_version table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.conn.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("get schema version: %w", err)
	}

	// Apply migrations
	migrations := []struct {
		version int
		sql     string
	}{
		{1, migrationV1Menus},
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}

		tx, err := s.conn.Begin()
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}

		if _, err := tx.Exec(m.sql); err != nil {
			tx.Rollback()
			return fmt.Errorf("apply migration v%d: %w", m.version, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", m.version); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration v%d: %w", m.version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration v%d: %w", m.version, err)
		}
	}

	return nil
}

const migrationV1Menus = `
CREATE TABLE IF NOT EXISTS menus (
	id TEXT PRIMARY KEY,
	beverage TEXT NOT NULL,
	starter_name TEXT NOT NULL,
	starter_desc TEXT NOT NULL DEFAULT '',
	main_name TEXT NOT NULL,
	main_desc TEXT NOT NULL DEFAULT '',
	final_name TEXT NOT NULL,
	final_desc TEXT NOT NULL DEFAULT '',
	wine_pairing TEXT NOT NULL DEFAULT '',
	flavor_progression TEXT NOT NULL DEFAULT '',
	highlights TEXT NOT NULL DEFAULT '',
	overall_harmony TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_menus_created_at ON menus(created_at);
`

// Save stores a completed menu and returns it with its assigned ID.
func (s *Store) Save(menu models.Menu) (models.Menu, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if menu.ID == "" {
		menu.ID = uuid.New().String()
	}
	if menu.CreatedAt.IsZero() {
		menu.CreatedAt = time.Now()
	}

	_, err := s.conn.Exec(`
		INSERT INTO menus (
			id, beverage,
			starter_name, starter_desc,
			main_name, main_desc,
			final_name, final_desc,
			wine_pairing, flavor_progression, highlights, overall_harmony,
			created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		menu.ID, menu.Beverage.Name,
		menu.Starter.Name, menu.Starter.Description,
		menu.MainCourse.Name, menu.MainCourse.Description,
		menu.FinalCourse.Name, menu.FinalCourse.Description,
		menu.Analysis.WinePairing, menu.Analysis.FlavorProgression,
		menu.Analysis.Highlights, menu.Analysis.OverallHarmony,
		formatTime(menu.CreatedAt),
	)
	if err != nil {
		return models.Menu{}, fmt.Errorf("save menu: %w", err)
	}

	return menu, nil
}

// Get returns the menu with the given ID.
func (s *Store) Get(id string) (models.Menu, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.conn.QueryRow(`
		SELECT id, beverage,
			starter_name, starter_desc,
			main_name, main_desc,
			final_name, final_desc,
			wine_pairing, flavor_progression, highlights, overall_harmony,
			created_at
		FROM menus WHERE id = ?`, id)

	menu, err := scanMenu(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Menu{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return models.Menu{}, fmt.Errorf("get menu: %w", err)
	}
	return menu, nil
}

// List returns all stored menus, newest first.
func (s *Store) List() ([]models.Menu, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.conn.Query(`
		SELECT id, beverage,
			starter_name, starter_desc,
			main_name, main_desc,
			final_name, final_desc,
			wine_pairing, flavor_progression, highlights, overall_harmony,
			created_at
		FROM menus ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list menus: %w", err)
	}
	defer rows.Close()

	var menus []models.Menu
	for rows.Next() {
		menu, err := scanMenu(rows)
		if err != nil {
			return nil, fmt.Errorf("list menus: %w", err)
		}
		menus = append(menus, menu)
	}
	return menus, rows.Err()
}

// Delete removes the menu with the given ID.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.conn.Exec("DELETE FROM menus WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete menu: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete menu: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanMenu(sc scanner) (models.Menu, error) {
	var menu models.Menu
	var createdAt string
	err := sc.Scan(
		&menu.ID, &menu.Beverage.Name,
		&menu.Starter.Name, &menu.Starter.Description,
		&menu.MainCourse.Name, &menu.MainCourse.Description,
		&menu.FinalCourse.Name, &menu.FinalCourse.Description,
		&menu.Analysis.WinePairing, &menu.Analysis.FlavorProgression,
		&menu.Analysis.Highlights, &menu.Analysis.OverallHarmony,
		&createdAt,
	)
	if err != nil {
		return models.Menu{}, err
	}
	if t, err := parseTime(createdAt); err == nil {
		menu.CreatedAt = t
	}
	return menu, nil
}

// ExportYAML renders a menu as a YAML document for sharing.
func ExportYAML(menu models.Menu) ([]byte, error) {
	out, err := yaml.Marshal(menu)
	if err != nil {
		return nil, fmt.Errorf("marshal menu: %w", err)
	}
	return out, nil
}

// formatTime formats a time.Time for SQLite storage.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// parseTime parses a time string from SQLite.
func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}
