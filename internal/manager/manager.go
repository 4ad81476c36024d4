package manager

import (
	"context"
	"fmt"
	"time"

	"github.com/farewatch/flightdeck/internal/launch"
	"github.com/farewatch/flightdeck/internal/layout"
	"github.com/farewatch/flightdeck/internal/logs"
	"github.com/farewatch/flightdeck/internal/provision"
	store "github.com/farewatch/flightdeck/internal/store/sqlite"
)

// Manager owns the state directory: the launch history database and the
// per-invocation event trails. The CLI goes through it for every setup and
// launch so each invocation leaves a record.
type Manager struct {
	stateDir string
	store    *store.Store
}

type SetupOptions struct {
	PythonOverride string
}

type LaunchOptions struct {
	Command        string
	Entry          string
	RefreshDeps    bool
	PythonOverride string
	ExtraEnv       map[string]string
}

func New(stateDir string) (*Manager, error) {
	if stateDir == "" {
		stateDir = ".flightdeck"
	}
	s, err := store.Open(stateDir)
	if err != nil {
		return nil, err
	}
	return &Manager{stateDir: stateDir, store: s}, nil
}

func (m *Manager) Close() error {
	if m == nil {
		return nil
	}
	return m.store.Close()
}

// Setup runs the environment provisioner and records the outcome.
func (m *Manager) Setup(ctx context.Context, lay layout.Layout, opts SetupOptions) (store.LaunchRecord, error) {
	rec := store.LaunchRecord{
		LaunchID:  makeLaunchID(),
		Command:   "setup",
		Status:    "provisioning",
		StartedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}
	if err := m.store.InsertLaunch(rec); err != nil {
		return store.LaunchRecord{}, err
	}
	prov := m.provisioner(lay, opts.PythonOverride, rec.LaunchID)
	if err := prov.Provision(ctx); err != nil {
		rec = m.finish(rec, "failed", err)
		return rec, err
	}
	rec = m.finish(rec, "succeeded", nil)
	return rec, nil
}

// PrepareLaunch runs the launch guard and, when it passes, returns the
// ready-to-exec handoff. The record is already marked handed_off at that
// point; callers must Close the manager before calling Exec so the database
// is flushed before the process image is replaced.
func (m *Manager) PrepareLaunch(ctx context.Context, lay layout.Layout, opts LaunchOptions) (*launch.Handoff, store.LaunchRecord, error) {
	rec := store.LaunchRecord{
		LaunchID:  makeLaunchID(),
		Command:   opts.Command,
		Entry:     opts.Entry,
		Status:    "guarding",
		StartedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}
	if err := m.store.InsertLaunch(rec); err != nil {
		return nil, store.LaunchRecord{}, err
	}
	prov := m.provisioner(lay, opts.PythonOverride, rec.LaunchID)
	h, err := launch.Prepare(ctx, prov, launch.Options{
		Entry:       opts.Entry,
		RefreshDeps: opts.RefreshDeps,
		ExtraEnv:    opts.ExtraEnv,
	})
	if err != nil {
		rec = m.finish(rec, "failed", err)
		_ = logs.AppendEvent(m.stateDir, rec.LaunchID, logs.Event{
			Phase: "launch.guard", Entry: opts.Entry, Message: "guard rejected launch", Error: err.Error(),
		})
		return nil, rec, err
	}
	rec = m.finish(rec, "handed_off", nil)
	_ = logs.AppendEvent(m.stateDir, rec.LaunchID, logs.Event{
		Phase: "launch.handoff", Entry: opts.Entry, Message: "handing off to application",
	})
	return h, rec, nil
}

func (m *Manager) ListLaunches(limit int) ([]store.LaunchRecord, error) {
	return m.store.ListLaunches(limit)
}

func (m *Manager) GetLaunch(launchID string) (store.LaunchRecord, error) {
	return m.store.GetLaunch(launchID)
}

func (m *Manager) ReadEvents(launchID string) ([]string, error) {
	return logs.ReadEvents(m.stateDir, launchID)
}

func (m *Manager) provisioner(lay layout.Layout, pythonOverride, launchID string) *provision.Provisioner {
	return &provision.Provisioner{
		Layout:         lay,
		PythonOverride: pythonOverride,
		Notify: func(phase, message string) {
			_ = logs.AppendEvent(m.stateDir, launchID, logs.Event{Phase: phase, Message: message})
		},
	}
}

func (m *Manager) finish(rec store.LaunchRecord, status string, cause error) store.LaunchRecord {
	lastError := ""
	if cause != nil {
		lastError = cause.Error()
	}
	_ = m.store.UpdateLaunchStatus(rec.LaunchID, status, lastError)
	rec.Status = status
	rec.LastError = lastError
	rec.EndedAt = time.Now().UTC().Format(time.RFC3339Nano)
	return rec
}

func makeLaunchID() string {
	now := time.Now().UTC()
	return now.Format("20060102t150405") + fmt.Sprintf("%09d", now.Nanosecond())
}
