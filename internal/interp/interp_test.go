package interp

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestParseVersion(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Python 3.12.1\n", "3.12.1"},
		{"Python 3.9.18", "3.9.18"},
		{"PyPy 7.3.12", "PyPy 7.3.12"},
		{"", ""},
	}
	for _, c := range cases {
		if got := parseVersion(c.in); got != c.want {
			t.Fatalf("parseVersion(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestResolveOverride(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("stub interpreter script requires a unix shell")
	}
	dir := t.TempDir()
	stub := filepath.Join(dir, "python-stub")
	script := "#!/bin/sh\necho \"Python 3.12.1\"\n"
	if err := os.WriteFile(stub, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	it, err := Resolve(context.Background(), stub)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if it.Bin != stub {
		t.Fatalf("unexpected bin: %s", it.Bin)
	}
	if it.Version != "3.12.1" {
		t.Fatalf("unexpected version: %s", it.Version)
	}
}

func TestResolveOverrideNotFound(t *testing.T) {
	_, err := Resolve(context.Background(), filepath.Join(t.TempDir(), "no-such-python"))
	if err == nil {
		t.Fatal("expected error for missing override")
	}
}
