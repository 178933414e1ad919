package store

import (
	"fmt"
	"time"

	"github.com/melodexapp/melodex/internal/domain"
)

// EnsureSection creates the section descriptor row when missing.
func (db *DB) EnsureSection(key, title string) error {
	_, err := db.Exec(`INSERT INTO home_sections (key, title, created_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO NOTHING`, key, title, time.Now())
	if err != nil {
		return fmt.Errorf("failed to ensure section %s: %w", key, err)
	}
	return nil
}

// CreateSectionRun inserts the audit row for one snapshot generation.
func (db *DB) CreateSectionRun(run *domain.SectionRun) error {
	_, err := db.NamedExec(`INSERT INTO home_section_runs
		(id, section_key, status, note, error, started_at)
		VALUES (:id, :section_key, :status, :note, :error, :started_at)`, run)
	if err != nil {
		return fmt.Errorf("failed to create section run: %w", err)
	}
	return nil
}

// FinishSectionRun transitions a run row to success or error.
func (db *DB) FinishSectionRun(runID string, status domain.RunStatus, errMsg string) error {
	now := time.Now()
	_, err := db.Exec(`UPDATE home_section_runs SET status = ?, error = ?, finished_at = ? WHERE id = ?`,
		status, errMsg, now, runID)
	if err != nil {
		return fmt.Errorf("failed to finish section run: %w", err)
	}
	return nil
}

func (db *DB) GetSectionRun(runID string) (*domain.SectionRun, error) {
	var run domain.SectionRun
	if err := db.Get(&run, `SELECT * FROM home_section_runs WHERE id = ?`, runID); err != nil {
		return nil, err
	}
	return &run, nil
}

// InsertSnapshot closes any still-open snapshot for the section and writes
// the new one in a single transaction, keeping at most one open snapshot per
// section.
func (db *DB) InsertSnapshot(snapshot *domain.Snapshot) error {
	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin snapshot insert: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	now := time.Now()
	if _, err := tx.Exec(`UPDATE home_section_snapshots SET valid_until = ?
		WHERE section_key = ? AND (valid_until IS NULL OR valid_until > ?)`,
		now, snapshot.SectionKey, now); err != nil {
		return fmt.Errorf("failed to close previous snapshot: %w", err)
	}

	res, err := tx.NamedExec(`INSERT INTO home_section_snapshots
		(section_key, generated_at, items, refresh_note, valid_until)
		VALUES (:section_key, :generated_at, :items, :refresh_note, :valid_until)`, snapshot)
	if err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	snapshot.ID = id

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot insert: %w", err)
	}
	return nil
}

// GetOpenSnapshot returns the newest snapshot whose validity window covers
// now, or nil when none exists.
func (db *DB) GetOpenSnapshot(sectionKey string) (*domain.Snapshot, error) {
	var snapshot domain.Snapshot
	err := db.Get(&snapshot, `SELECT * FROM home_section_snapshots
		WHERE section_key = ? AND (valid_until IS NULL OR valid_until > ?)
		ORDER BY generated_at DESC LIMIT 1`, sectionKey, time.Now())
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}
