package launch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/farewatch/flightdeck/internal/credentials"
	"github.com/farewatch/flightdeck/internal/provision"
)

// MissingCredentialsError: the credentials file does not exist at all.
type MissingCredentialsError struct {
	Path string
}

func (e *MissingCredentialsError) Error() string {
	return fmt.Sprintf("credentials not found: %s (run \"flightdeck setup\" to create it)", e.Path)
}

// UnconfiguredCredentialsError: the credentials file still contains the
// placeholder sentinel somewhere.
type UnconfiguredCredentialsError struct {
	Path        string
	Placeholder string
}

func (e *UnconfiguredCredentialsError) Error() string {
	return fmt.Sprintf("credentials not configured: edit %s and replace %q with your real values", e.Path, e.Placeholder)
}

// ExecutionError: the entry point could not be located or executed.
type ExecutionError struct {
	Entry string
	Err   error
}

func (e *ExecutionError) Error() string { return fmt.Sprintf("launch %s: %v", e.Entry, e.Err) }
func (e *ExecutionError) Unwrap() error { return e.Err }

type Options struct {
	// Entry is the absolute path of the application entry point to hand
	// off to.
	Entry string

	// RefreshDeps reinstalls the dependency manifest before handoff (the
	// UI launch path does this to pick up manifest changes).
	RefreshDeps bool

	// ExtraEnv is layered over the inherited process environment.
	ExtraEnv map[string]string
}

// Handoff is a fully guarded, ready-to-exec launch. Exec transfers control to
// it permanently.
type Handoff struct {
	Bin  string
	Args []string
	Dir  string
	Env  []string
}

// Prepare runs the launch guard: provision on first run, verify the
// credentials file exists and is configured, optionally refresh dependencies,
// and verify the entry point. It returns the handoff without executing it so
// the caller can flush its own state first.
func Prepare(ctx context.Context, prov *provision.Provisioner, opts Options) (*Handoff, error) {
	lay := prov.Layout

	if _, err := os.Stat(lay.VenvDir); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("stat venv: %w", err)
		}
		if err := prov.Provision(ctx); err != nil {
			return nil, err
		}
	}

	status, err := credentials.Inspect(lay.CredentialsFile, lay.Placeholder)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &MissingCredentialsError{Path: lay.CredentialsFile}
		}
		return nil, err
	}
	if status == credentials.StatusUnconfigured {
		return nil, &UnconfiguredCredentialsError{Path: lay.CredentialsFile, Placeholder: lay.Placeholder}
	}

	if opts.RefreshDeps {
		if err := prov.InstallDeps(ctx); err != nil {
			return nil, err
		}
	}

	if _, err := os.Stat(opts.Entry); err != nil {
		return nil, &ExecutionError{Entry: opts.Entry, Err: err}
	}
	python := lay.VenvPython()
	if _, err := os.Stat(python); err != nil {
		return nil, &ExecutionError{Entry: opts.Entry, Err: fmt.Errorf("venv interpreter missing: %w", err)}
	}

	return &Handoff{
		Bin:  python,
		Args: []string{opts.Entry},
		Dir:  lay.Root,
		Env:  mergeEnviron(os.Environ(), opts.ExtraEnv),
	}, nil
}

func (h *Handoff) entry() string {
	if len(h.Args) > 0 {
		return h.Args[len(h.Args)-1]
	}
	return h.Bin
}

func mergeEnviron(base []string, extra map[string]string) []string {
	if len(extra) == 0 {
		return base
	}
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(base)+len(extra))
	for _, kv := range base {
		drop := false
		for _, k := range keys {
			if len(kv) > len(k) && kv[:len(k)] == k && kv[len(k)] == '=' {
				drop = true
				break
			}
		}
		if !drop {
			out = append(out, kv)
		}
	}
	for _, k := range keys {
		out = append(out, k+"="+extra[k])
	}
	return out
}
