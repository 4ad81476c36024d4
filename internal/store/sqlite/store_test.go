package sqlite

import (
	"strings"
	"testing"
)

func TestInsertGetUpdate(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer s.Close()

	rec := LaunchRecord{
		LaunchID:  "20260831t1200000000000001",
		Command:   "run",
		Entry:     "/app/flight_checker.py",
		Status:    "guarding",
		StartedAt: "2026-08-31T12:00:00Z",
	}
	if err := s.InsertLaunch(rec); err != nil {
		t.Fatalf("InsertLaunch() error = %v", err)
	}

	got, err := s.GetLaunch(rec.LaunchID)
	if err != nil {
		t.Fatalf("GetLaunch() error = %v", err)
	}
	if got.Command != "run" || got.Entry != rec.Entry || got.Status != "guarding" {
		t.Fatalf("unexpected record: %+v", got)
	}

	if err := s.UpdateLaunchStatus(rec.LaunchID, "failed", "credentials not found"); err != nil {
		t.Fatalf("UpdateLaunchStatus() error = %v", err)
	}
	got, err = s.GetLaunch(rec.LaunchID)
	if err != nil {
		t.Fatalf("GetLaunch() after update error = %v", err)
	}
	if got.Status != "failed" {
		t.Fatalf("status not updated: %s", got.Status)
	}
	if got.LastError != "credentials not found" {
		t.Fatalf("last error not updated: %s", got.LastError)
	}
	if got.EndedAt == "" {
		t.Fatal("ended_at not set by update")
	}
}

func TestGetLaunchNotFound(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer s.Close()
	_, err = s.GetLaunch("nope")
	if err == nil || !strings.Contains(err.Error(), "launch not found") {
		t.Fatalf("expected not-found error, got: %v", err)
	}
}

func TestListLaunchesOrderAndLimit(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer s.Close()

	for i, started := range []string{"2026-08-31T10:00:00Z", "2026-08-31T11:00:00Z", "2026-08-31T12:00:00Z"} {
		rec := LaunchRecord{
			LaunchID:  strings.Repeat("0", 3-i) + string(rune('a'+i)),
			Command:   "setup",
			Status:    "succeeded",
			StartedAt: started,
		}
		if err := s.InsertLaunch(rec); err != nil {
			t.Fatalf("InsertLaunch() #%d error = %v", i, err)
		}
	}

	recs, err := s.ListLaunches(2)
	if err != nil {
		t.Fatalf("ListLaunches() error = %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(recs))
	}
	if recs[0].StartedAt != "2026-08-31T12:00:00Z" {
		t.Fatalf("expected newest first, got %s", recs[0].StartedAt)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	s1, err := Open(dir)
	if err != nil {
		t.Fatalf("first Open() error = %v", err)
	}
	if err := s1.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	s2, err := Open(dir)
	if err != nil {
		t.Fatalf("second Open() error = %v", err)
	}
	defer s2.Close()
	if _, err := s2.ListLaunches(10); err != nil {
		t.Fatalf("ListLaunches() after reopen error = %v", err)
	}
}
