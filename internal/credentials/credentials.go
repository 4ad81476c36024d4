package credentials

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Status is the configuration-completeness verdict for a credentials file.
type Status string

const (
	StatusValid        Status = "valid"
	StatusUnconfigured Status = "unconfigured"
)

// Check scans contents for the placeholder sentinel. The match is a plain
// substring scan over the whole file: a sentinel anywhere, even in a comment,
// means "not yet configured". This is deliberately conservative and matches
// the behavior the operators already rely on.
func Check(contents []byte, placeholder string) Status {
	if placeholder != "" && bytes.Contains(contents, []byte(placeholder)) {
		return StatusUnconfigured
	}
	return StatusValid
}

// Inspect reads the credentials file and reports its status. A missing file is
// returned as an error wrapping os.ErrNotExist so callers can distinguish
// "absent" from "unreadable".
func Inspect(path, placeholder string) (Status, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read credentials: %w", err)
	}
	return Check(b, placeholder), nil
}

// EnsureFromTemplate copies the template to path when path does not exist yet.
// An existing file is never touched. Reports whether a copy happened.
func EnsureFromTemplate(path, template string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("stat credentials: %w", err)
	}
	b, err := os.ReadFile(template)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, fmt.Errorf("credentials template missing: %s", template)
		}
		return false, fmt.Errorf("read template: %w", err)
	}
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return false, fmt.Errorf("write credentials: %w", err)
	}
	return true, nil
}

// Parse reads key=value lines. Blank lines and # comments are skipped; values
// keep everything after the first '='.
func Parse(contents []byte) map[string]string {
	out := map[string]string{}
	for _, line := range strings.Split(string(contents), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		eq := strings.Index(line, "=")
		if eq <= 0 {
			continue
		}
		out[strings.TrimSpace(line[:eq])] = strings.TrimSpace(line[eq+1:])
	}
	return out
}

// SetValues rewrites the given keys in the credentials file, preserving every
// unrelated line (comments included). Keys not present in the file are
// appended at the end.
func SetValues(path string, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	for k, v := range values {
		if strings.ContainsAny(v, "\n\r") {
			return fmt.Errorf("invalid value for %s (contains newline)", k)
		}
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read credentials: %w", err)
	}
	lines := strings.Split(strings.TrimRight(string(b), "\n"), "\n")
	replaced := map[string]bool{}
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		eq := strings.Index(trimmed, "=")
		if eq <= 0 {
			continue
		}
		key := strings.TrimSpace(trimmed[:eq])
		if v, ok := values[key]; ok {
			lines[i] = key + "=" + v
			replaced[key] = true
		}
	}
	missing := make([]string, 0, len(values))
	for k := range values {
		if !replaced[k] {
			missing = append(missing, k)
		}
	}
	sort.Strings(missing)
	for _, k := range missing {
		lines = append(lines, k+"="+values[k])
	}
	content := strings.Join(lines, "\n") + "\n"
	return os.WriteFile(path, []byte(content), 0o600)
}
