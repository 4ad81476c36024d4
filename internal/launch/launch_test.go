package launch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/farewatch/flightdeck/internal/layout"
	"github.com/farewatch/flightdeck/internal/provision"
)

func fixtureLayout(t *testing.T) layout.Layout {
	t.Helper()
	root := t.TempDir()
	lay := layout.Default(root)
	if err := os.WriteFile(lay.CredentialsTemplate, []byte("AMADEUS_CLIENT_ID=your_client_id_here\n"), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}
	if err := os.WriteFile(lay.Requirements, []byte("requests\n"), 0o644); err != nil {
		t.Fatalf("write requirements: %v", err)
	}
	if err := os.WriteFile(lay.CheckerEntry, []byte("print('checker')\n"), 0o644); err != nil {
		t.Fatalf("write entry: %v", err)
	}
	return lay
}

// fakeVenv plants a pre-provisioned venv so the guard skips provisioning.
func fakeVenv(t *testing.T, lay layout.Layout, pipExit int) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake venv scripts require a unix shell")
	}
	if err := os.MkdirAll(filepath.Join(lay.VenvDir, "bin"), 0o755); err != nil {
		t.Fatalf("create venv: %v", err)
	}
	if err := os.WriteFile(lay.VenvPython(), []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write venv python: %v", err)
	}
	pip := "#!/bin/sh\nexit 0\n"
	if pipExit != 0 {
		pip = "#!/bin/sh\nexit 1\n"
	}
	if err := os.WriteFile(lay.VenvPip(), []byte(pip), 0o755); err != nil {
		t.Fatalf("write venv pip: %v", err)
	}
}

func writeConfigured(t *testing.T, lay layout.Layout) {
	t.Helper()
	if err := os.WriteFile(lay.CredentialsFile, []byte("AMADEUS_CLIENT_ID=real\nAMADEUS_CLIENT_SECRET=also-real\n"), 0o600); err != nil {
		t.Fatalf("write credentials: %v", err)
	}
}

func newProvisioner(lay layout.Layout) *provision.Provisioner {
	return &provision.Provisioner{Layout: lay, Stdout: os.Stderr, Stderr: os.Stderr}
}

func TestPrepareMissingCredentials(t *testing.T) {
	lay := fixtureLayout(t)
	fakeVenv(t, lay, 0)

	_, err := Prepare(context.Background(), newProvisioner(lay), Options{Entry: lay.CheckerEntry})
	var missing *MissingCredentialsError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingCredentialsError, got: %v", err)
	}
	if missing.Path != lay.CredentialsFile {
		t.Fatalf("unexpected path in error: %s", missing.Path)
	}
	if !strings.Contains(err.Error(), "flightdeck setup") {
		t.Fatalf("error should instruct to run setup: %v", err)
	}
}

func TestPrepareUnconfiguredCredentials(t *testing.T) {
	lay := fixtureLayout(t)
	fakeVenv(t, lay, 0)
	if err := os.WriteFile(lay.CredentialsFile, []byte("AMADEUS_CLIENT_ID=your_client_id_here\n"), 0o600); err != nil {
		t.Fatalf("write credentials: %v", err)
	}

	_, err := Prepare(context.Background(), newProvisioner(lay), Options{Entry: lay.CheckerEntry})
	var unconfigured *UnconfiguredCredentialsError
	if !errors.As(err, &unconfigured) {
		t.Fatalf("expected UnconfiguredCredentialsError, got: %v", err)
	}
	if !strings.Contains(err.Error(), lay.CredentialsFile) {
		t.Fatalf("error should name the file to edit: %v", err)
	}
}

func TestPrepareHandoff(t *testing.T) {
	lay := fixtureLayout(t)
	fakeVenv(t, lay, 0)
	writeConfigured(t, lay)

	h, err := Prepare(context.Background(), newProvisioner(lay), Options{
		Entry:    lay.CheckerEntry,
		ExtraEnv: map[string]string{"PORT": "5050"},
	})
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if h.Bin != lay.VenvPython() {
		t.Fatalf("unexpected interpreter: %s", h.Bin)
	}
	if len(h.Args) != 1 || h.Args[0] != lay.CheckerEntry {
		t.Fatalf("unexpected args: %v", h.Args)
	}
	if h.Dir != lay.Root {
		t.Fatalf("unexpected dir: %s", h.Dir)
	}
	found := false
	for _, kv := range h.Env {
		if kv == "PORT=5050" {
			found = true
		}
	}
	if !found {
		t.Fatalf("PORT not merged into environment: %v", h.Env)
	}
}

func TestPrepareRefreshDepsFailureIsFatal(t *testing.T) {
	lay := fixtureLayout(t)
	fakeVenv(t, lay, 1)
	writeConfigured(t, lay)

	_, err := Prepare(context.Background(), newProvisioner(lay), Options{
		Entry:       lay.CheckerEntry,
		RefreshDeps: true,
	})
	var depErr *provision.DependencyInstallError
	if !errors.As(err, &depErr) {
		t.Fatalf("expected DependencyInstallError, got: %v", err)
	}
}

func TestPrepareMissingEntryPoint(t *testing.T) {
	lay := fixtureLayout(t)
	fakeVenv(t, lay, 0)
	writeConfigured(t, lay)

	_, err := Prepare(context.Background(), newProvisioner(lay), Options{
		Entry: filepath.Join(lay.Root, "missing.py"),
	})
	var execErr *ExecutionError
	if !errors.As(err, &execErr) {
		t.Fatalf("expected ExecutionError, got: %v", err)
	}
}

func TestPrepareProvisionsWhenVenvAbsent(t *testing.T) {
	lay := fixtureLayout(t)
	prov := newProvisioner(lay)
	prov.PythonOverride = filepath.Join(t.TempDir(), "no-such-python")

	_, err := Prepare(context.Background(), prov, Options{Entry: lay.CheckerEntry})
	var envErr *provision.EnvironmentCreationError
	if !errors.As(err, &envErr) {
		t.Fatalf("expected provisioning to be invoked, got: %v", err)
	}
}

func TestMergeEnvironOverridesExisting(t *testing.T) {
	got := mergeEnviron([]string{"PORT=80", "HOME=/root"}, map[string]string{"PORT": "5050"})
	var ports []string
	for _, kv := range got {
		if strings.HasPrefix(kv, "PORT=") {
			ports = append(ports, kv)
		}
	}
	if len(ports) != 1 || ports[0] != "PORT=5050" {
		t.Fatalf("unexpected PORT entries: %v", ports)
	}
}
