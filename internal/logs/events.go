package logs

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Event is one line in the per-invocation JSONL trail under
// <stateDir>/runs/<launch-id>/events.jsonl.
type Event struct {
	Timestamp string `json:"timestamp"`
	LaunchID  string `json:"launchId"`
	Phase     string `json:"phase"`
	Entry     string `json:"entry,omitempty"`
	Message   string `json:"message"`
	Error     string `json:"error,omitempty"`
}

func AppendEvent(stateDir string, launchID string, e Event) error {
	e.Timestamp = time.Now().UTC().Format(time.RFC3339Nano)
	e.LaunchID = launchID
	path := filepath.Join(stateDir, "runs", launchID, "events.jsonl")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	if _, err := f.Write(append(b, '\n')); err != nil {
		return err
	}
	return nil
}

func ReadEvents(stateDir string, launchID string) ([]string, error) {
	path := filepath.Join(stateDir, "runs", launchID, "events.jsonl")
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var lines []string
	s := bufio.NewScanner(f)
	for s.Scan() {
		lines = append(lines, s.Text())
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("scan events: %w", err)
	}
	return lines, nil
}
