package interp

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Interpreter is a resolved host Python toolchain.
type Interpreter struct {
	Bin     string `json:"bin"`
	Version string `json:"version"`
}

var defaultCandidates = []string{"python3", "python"}

// Resolve locates a usable Python interpreter. A non-empty override (binary
// name or path) must resolve or the call fails; otherwise the conventional
// candidates are tried in order. The returned Bin is the PATH-resolved
// executable.
func Resolve(ctx context.Context, override string) (Interpreter, error) {
	if v := strings.TrimSpace(override); v != "" {
		bin, err := exec.LookPath(v)
		if err != nil {
			return Interpreter{}, fmt.Errorf("python interpreter %s not found: %w", v, err)
		}
		return probe(ctx, bin)
	}
	for _, cand := range defaultCandidates {
		bin, err := exec.LookPath(cand)
		if err != nil {
			continue
		}
		if it, err := probe(ctx, bin); err == nil {
			return it, nil
		}
	}
	return Interpreter{}, fmt.Errorf("no python interpreter available; install python3 or pass --python")
}

func probe(ctx context.Context, bin string) (Interpreter, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
	}
	cmd := exec.CommandContext(ctx, bin, "--version")
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return Interpreter{}, fmt.Errorf("%s --version: %w", bin, err)
	}
	return Interpreter{Bin: bin, Version: parseVersion(out.String())}, nil
}

// parseVersion extracts "3.12.1" from "Python 3.12.1". Unrecognized output is
// returned as-is so the doctor still has something to show.
func parseVersion(s string) string {
	s = strings.TrimSpace(s)
	if rest, ok := strings.CutPrefix(s, "Python "); ok {
		if f := strings.Fields(rest); len(f) > 0 {
			return f[0]
		}
	}
	return s
}
