package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/farewatch/flightdeck/internal/credentials"
	"github.com/farewatch/flightdeck/internal/layout"
	"github.com/farewatch/flightdeck/internal/manager"
)

func runSetup(ctx context.Context, args []string) int {
	args = reorderFlags(args, map[string]bool{
		"--root":        true,
		"--state-dir":   true,
		"--python":      true,
		"--interactive": false,
	})
	fs := flag.NewFlagSet("setup", flag.ContinueOnError)
	var root, stateDir, python string
	var interactive bool
	fs.StringVar(&root, "root", ".", "installation root")
	fs.StringVar(&stateDir, "state-dir", ".flightdeck", "state directory")
	fs.StringVar(&python, "python", "", "python interpreter override")
	fs.BoolVar(&interactive, "interactive", false, "prompt for Amadeus credentials (hidden input)")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if len(fs.Args()) != 0 {
		fmt.Fprintln(os.Stderr, "usage: flightdeck setup [--root=.] [--state-dir=.flightdeck] [--python=python3] [--interactive]")
		return 1
	}

	lay, err := layout.Load(root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "setup failed: %v\n", err)
		return 1
	}
	m, err := manager.New(stateDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open manager: %v\n", err)
		return 1
	}
	defer m.Close()

	rec, err := m.Setup(ctx, lay, manager.SetupOptions{PythonOverride: python})
	if err != nil {
		fmt.Fprintf(os.Stderr, "setup failed: %v\n", err)
		return 1
	}

	if interactive {
		if err := promptAmadeusCredentials(lay); err != nil {
			fmt.Fprintf(os.Stderr, "setup failed: %v\n", err)
			return 1
		}
	}

	fmt.Printf("launch_id: %s\n", rec.LaunchID)
	fmt.Printf("status: %s\n", rec.Status)
	if status, err := credentials.Inspect(lay.CredentialsFile, lay.Placeholder); err == nil {
		fmt.Printf("credentials: %s\n", status)
	}
	return 0
}

func promptAmadeusCredentials(lay layout.Layout) error {
	if !isInteractiveTerminal() {
		return fmt.Errorf("interactive prompts require a TTY (edit %s instead)", lay.CredentialsFile)
	}
	values := map[string]string{}
	for _, key := range []string{"AMADEUS_CLIENT_ID", "AMADEUS_CLIENT_SECRET"} {
		v, err := promptSecret(os.Stderr, fmt.Sprintf("Enter %s (hidden input): ", key))
		if err != nil {
			return fmt.Errorf("read %s: %w", key, err)
		}
		v = strings.TrimSpace(v)
		if v == "" {
			return fmt.Errorf("%s cannot be empty", key)
		}
		values[key] = v
	}
	if err := credentials.SetValues(lay.CredentialsFile, values); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "wrote credentials into %s\n", lay.CredentialsFile)
	return nil
}
