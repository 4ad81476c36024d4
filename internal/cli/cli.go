package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
)

func Execute(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 1
	}
	ctx := context.Background()
	cmd := args[0]
	switch cmd {
	case "init":
		return runInit(args[1:])
	case "setup":
		return runSetup(ctx, args[1:])
	case "run":
		return runRun(ctx, args[1:])
	case "ui":
		return runUI(ctx, args[1:])
	case "doctor":
		return runDoctor(ctx, args[1:])
	case "launches":
		return runLaunches(args[1:])
	case "help", "-h", "--help":
		printUsage()
		return 0
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		printUsage()
		return 1
	}
}

func runInit(args []string) int {
	args = reorderFlags(args, map[string]bool{"--out": true, "-out": true, "--force": false})
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	var out string
	var force bool
	fs.StringVar(&out, "out", "flightdeck.yaml", "output path")
	fs.BoolVar(&force, "force", false, "overwrite an existing manifest")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if !force {
		if _, err := os.Stat(out); err == nil {
			fmt.Fprintf(os.Stderr, "%s already exists (use --force to overwrite)\n", out)
			return 1
		} else if !errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "stat %s: %v\n", out, err)
			return 1
		}
	}
	template := `apiVersion: flightdeck/v1
kind: App
app:
  name: flight-price-checker
  # Optional interpreter override; resolved from PATH if omitted
  # python: python3.12
  venv: venv
  requirements: requirements.txt
  credentials:
    file: .env
    template: .env.example
    placeholder: your_client_id_here
  entrypoints:
    checker: flight_checker.py
    ui: app.py
`
	if err := os.WriteFile(out, []byte(template), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "write manifest: %v\n", err)
		return 1
	}
	fmt.Printf("created %s\n", out)
	return 0
}

func reorderFlags(args []string, valueFlags map[string]bool) []string {
	flags := make([]string, 0, len(args))
	positionals := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			positionals = append(positionals, args[i+1:]...)
			break
		}
		if strings.HasPrefix(a, "-") {
			flags = append(flags, a)
			if takesValue(a, valueFlags) && !strings.Contains(a, "=") && i+1 < len(args) {
				flags = append(flags, args[i+1])
				i++
			}
			continue
		}
		positionals = append(positionals, a)
	}
	return append(flags, positionals...)
}

func takesValue(flagToken string, valueFlags map[string]bool) bool {
	if valueFlags[flagToken] {
		return true
	}
	if eq := strings.Index(flagToken, "="); eq > 0 {
		return valueFlags[flagToken[:eq]]
	}
	return false
}

func printUsage() {
	fmt.Print(`flightdeck - setup and guarded launch for the flight price checker

commands:
  init [--out=flightdeck.yaml] [--force]
  setup [--root=.] [--state-dir=.flightdeck] [--python=python3] [--interactive]
  run [--root=.] [--state-dir=.flightdeck] [--python=python3]
  ui [--root=.] [--state-dir=.flightdeck] [--python=python3] [--port=5050]
  doctor [--root=.] [--python=python3] [--json]
  launches [--state-dir=.flightdeck] [--limit=50] [--json]
`)
}
