package provision

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/farewatch/flightdeck/internal/credentials"
	"github.com/farewatch/flightdeck/internal/interp"
	"github.com/farewatch/flightdeck/internal/layout"
)

// EnvironmentCreationError means the venv could not be created, including the
// case where no Python interpreter is available on the host.
type EnvironmentCreationError struct {
	Err error
}

func (e *EnvironmentCreationError) Error() string { return "create environment: " + e.Err.Error() }
func (e *EnvironmentCreationError) Unwrap() error { return e.Err }

// DependencyInstallError means installing the dependency manifest into the
// venv failed (network, resolution, broken venv). It is surfaced to the
// caller, never retried.
type DependencyInstallError struct {
	Manifest string
	Err      error
}

func (e *DependencyInstallError) Error() string {
	return fmt.Sprintf("install dependencies (%s): %v", e.Manifest, e.Err)
}
func (e *DependencyInstallError) Unwrap() error { return e.Err }

// Provisioner creates the missing pieces of a checker installation: the
// credentials file (from its template), the venv, and the installed dependency
// manifest. Every step is idempotent; a fully provisioned layout is a no-op
// apart from the dependency install, which always runs so the venv tracks the
// manifest.
type Provisioner struct {
	Layout layout.Layout

	// PythonOverride wins over Layout.Python when picking the interpreter
	// used to create the venv.
	PythonOverride string

	// Stdout/Stderr receive installer output so the operator sees progress.
	// Defaults to the process streams.
	Stdout io.Writer
	Stderr io.Writer

	// Notify, when set, receives one call per completed step.
	Notify func(phase, message string)
}

func (p *Provisioner) Provision(ctx context.Context) error {
	if err := p.EnsureCredentialsFile(); err != nil {
		return err
	}
	if err := p.ensureVenv(ctx); err != nil {
		return err
	}
	return p.InstallDeps(ctx)
}

// EnsureCredentialsFile copies the template into place when the credentials
// file is absent. It instructs the operator to fill in real values but does
// not block on it; the launch guard enforces that later.
func (p *Provisioner) EnsureCredentialsFile() error {
	created, err := credentials.EnsureFromTemplate(p.Layout.CredentialsFile, p.Layout.CredentialsTemplate)
	if err != nil {
		return err
	}
	if created {
		fmt.Fprintf(p.stdout(), "created %s from %s\n", p.Layout.CredentialsFile, p.Layout.CredentialsTemplate)
		fmt.Fprintf(p.stdout(), "edit %s and fill in your Amadeus API credentials before launching\n", p.Layout.CredentialsFile)
		p.notify("credentials.ensure", "credentials file created from template")
		return nil
	}
	p.notify("credentials.ensure", "credentials file present")
	return nil
}

func (p *Provisioner) ensureVenv(ctx context.Context) error {
	if _, err := os.Stat(p.Layout.VenvDir); err == nil {
		p.notify("venv.create", "venv present")
		return nil
	}
	override := p.PythonOverride
	if strings.TrimSpace(override) == "" {
		override = p.Layout.Python
	}
	it, err := interp.Resolve(ctx, override)
	if err != nil {
		return &EnvironmentCreationError{Err: err}
	}
	fmt.Fprintf(p.stdout(), "creating venv at %s (python %s)\n", p.Layout.VenvDir, it.Version)
	if err := p.runStreaming(ctx, it.Bin, "-m", "venv", p.Layout.VenvDir); err != nil {
		return &EnvironmentCreationError{Err: err}
	}
	p.notify("venv.create", "venv created with python "+it.Version)
	return nil
}

// InstallDeps installs the dependency manifest into the venv, upgrading pip
// itself first. Exported separately because the UI launch path refreshes
// dependencies on every start.
func (p *Provisioner) InstallDeps(ctx context.Context) error {
	pip := p.Layout.VenvPip()
	if err := p.runStreaming(ctx, pip, "install", "--upgrade", "pip"); err != nil {
		return &DependencyInstallError{Manifest: p.Layout.Requirements, Err: err}
	}
	if err := p.runStreaming(ctx, pip, "install", "-r", p.Layout.Requirements); err != nil {
		return &DependencyInstallError{Manifest: p.Layout.Requirements, Err: err}
	}
	p.notify("deps.install", "dependency manifest installed")
	return nil
}

func (p *Provisioner) runStreaming(ctx context.Context, bin string, args ...string) error {
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Dir = p.Layout.Root
	cmd.Stdout = p.stdout()
	cmd.Stderr = p.stderr()
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s %s: %w", bin, strings.Join(args, " "), err)
	}
	return nil
}

func (p *Provisioner) stdout() io.Writer {
	if p.Stdout != nil {
		return p.Stdout
	}
	return os.Stdout
}

func (p *Provisioner) stderr() io.Writer {
	if p.Stderr != nil {
		return p.Stderr
	}
	return os.Stderr
}

func (p *Provisioner) notify(phase, message string) {
	if p.Notify != nil {
		p.Notify(phase, message)
	}
}
