package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

// LaunchRecord is one recorded invocation: a setup, a checker launch, or a UI
// launch. A launch that reached handoff stays in status "handed_off" — after
// the exec this process no longer exists to record the application's exit.
type LaunchRecord struct {
	LaunchID  string `json:"launchId"`
	Command   string `json:"command"`
	Entry     string `json:"entry,omitempty"`
	Status    string `json:"status"`
	StartedAt string `json:"startedAt"`
	EndedAt   string `json:"endedAt,omitempty"`
	LastError string `json:"lastError,omitempty"`
}

func Open(stateDir string) (*Store, error) {
	if stateDir == "" {
		stateDir = ".flightdeck"
	}
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return nil, err
	}
	dbPath := filepath.Join(stateDir, "state.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) initSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS launches (
		launch_id TEXT PRIMARY KEY,
		command TEXT NOT NULL,
		entry TEXT,
		status TEXT NOT NULL,
		started_at TEXT NOT NULL,
		ended_at TEXT,
		last_error TEXT
	);`)
	return err
}

func (s *Store) InsertLaunch(r LaunchRecord) error {
	_, err := s.db.Exec(
		`INSERT INTO launches (launch_id, command, entry, status, started_at, ended_at, last_error)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.LaunchID, r.Command, nullableString(r.Entry), r.Status,
		r.StartedAt, nullableString(r.EndedAt), nullableString(r.LastError),
	)
	return err
}

func (s *Store) UpdateLaunchStatus(launchID, status, lastError string) error {
	_, err := s.db.Exec(
		`UPDATE launches SET status = ?, ended_at = ?, last_error = ? WHERE launch_id = ?`,
		status, time.Now().UTC().Format(time.RFC3339Nano), nullableString(lastError), launchID,
	)
	return err
}

func (s *Store) GetLaunch(launchID string) (LaunchRecord, error) {
	row := s.db.QueryRow(
		`SELECT launch_id, command, COALESCE(entry,''), status, started_at, COALESCE(ended_at,''), COALESCE(last_error,'')
		 FROM launches WHERE launch_id = ?`, launchID)
	var r LaunchRecord
	if err := row.Scan(&r.LaunchID, &r.Command, &r.Entry, &r.Status, &r.StartedAt, &r.EndedAt, &r.LastError); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return LaunchRecord{}, fmt.Errorf("launch not found: %s", launchID)
		}
		return LaunchRecord{}, err
	}
	return r, nil
}

func (s *Store) ListLaunches(limit int) ([]LaunchRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.Query(
		`SELECT launch_id, command, COALESCE(entry,''), status, started_at, COALESCE(ended_at,''), COALESCE(last_error,'')
		 FROM launches ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]LaunchRecord, 0)
	for rows.Next() {
		var r LaunchRecord
		if err := rows.Scan(&r.LaunchID, &r.Command, &r.Entry, &r.Status, &r.StartedAt, &r.EndedAt, &r.LastError); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func nullableString(v string) any {
	if v == "" {
		return nil
	}
	return v
}
