package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/farewatch/flightdeck/internal/layout"
	"github.com/farewatch/flightdeck/internal/manager"
)

func runRun(ctx context.Context, args []string) int {
	args = reorderFlags(args, map[string]bool{
		"--root":      true,
		"--state-dir": true,
		"--python":    true,
	})
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	var root, stateDir, python string
	fs.StringVar(&root, "root", ".", "installation root")
	fs.StringVar(&stateDir, "state-dir", ".flightdeck", "state directory")
	fs.StringVar(&python, "python", "", "python interpreter override")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if len(fs.Args()) != 0 {
		fmt.Fprintln(os.Stderr, "usage: flightdeck run [--root=.] [--state-dir=.flightdeck] [--python=python3]")
		return 1
	}
	return guardAndLaunch(ctx, root, stateDir, func(lay layout.Layout) manager.LaunchOptions {
		return manager.LaunchOptions{
			Command:        "run",
			Entry:          lay.CheckerEntry,
			PythonOverride: python,
		}
	})
}

func runUI(ctx context.Context, args []string) int {
	args = reorderFlags(args, map[string]bool{
		"--root":      true,
		"--state-dir": true,
		"--python":    true,
		"--port":      true,
	})
	fs := flag.NewFlagSet("ui", flag.ContinueOnError)
	var root, stateDir, python string
	var port int
	fs.StringVar(&root, "root", ".", "installation root")
	fs.StringVar(&stateDir, "state-dir", ".flightdeck", "state directory")
	fs.StringVar(&python, "python", "", "python interpreter override")
	fs.IntVar(&port, "port", 0, "dashboard port (passed through as PORT)")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if len(fs.Args()) != 0 {
		fmt.Fprintln(os.Stderr, "usage: flightdeck ui [--root=.] [--state-dir=.flightdeck] [--python=python3] [--port=5050]")
		return 1
	}
	return guardAndLaunch(ctx, root, stateDir, func(lay layout.Layout) manager.LaunchOptions {
		opts := manager.LaunchOptions{
			Command:        "ui",
			Entry:          lay.UIEntry,
			RefreshDeps:    true,
			PythonOverride: python,
		}
		if port > 0 {
			opts.ExtraEnv = map[string]string{"PORT": strconv.Itoa(port)}
		}
		return opts
	})
}

// guardAndLaunch runs the launch guard through the manager and, when it
// passes, replaces this process with the application. On success it never
// returns; every guard failure is exit code 1.
func guardAndLaunch(ctx context.Context, root, stateDir string, build func(layout.Layout) manager.LaunchOptions) int {
	lay, err := layout.Load(root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "launch failed: %v\n", err)
		return 1
	}
	m, err := manager.New(stateDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open manager: %v\n", err)
		return 1
	}

	h, _, err := m.PrepareLaunch(ctx, lay, build(lay))
	if err != nil {
		_ = m.Close()
		fmt.Fprintf(os.Stderr, "launch failed: %v\n", err)
		return 1
	}
	// The database must be flushed before exec replaces the process image.
	if err := m.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "close state store: %v\n", err)
		return 1
	}
	if err := h.Exec(); err != nil {
		fmt.Fprintf(os.Stderr, "launch failed: %v\n", err)
		return 1
	}
	return 0
}
