package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/farewatch/flightdeck/internal/credentials"
	"github.com/farewatch/flightdeck/internal/interp"
	"github.com/farewatch/flightdeck/internal/layout"
)

type doctorCheck struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Detail string `json:"detail"`
}

type doctorReport struct {
	Python string        `json:"python,omitempty"`
	Checks []doctorCheck `json:"checks"`
}

const (
	doctorStatusPass = "pass"
	doctorStatusWarn = "warn"
	doctorStatusFail = "fail"
)

func runDoctor(ctx context.Context, args []string) int {
	args = reorderFlags(args, map[string]bool{
		"--root":   true,
		"--python": true,
		"--json":   false,
	})
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	var root, python string
	var asJSON bool
	fs.StringVar(&root, "root", ".", "installation root")
	fs.StringVar(&python, "python", "", "python interpreter override")
	fs.BoolVar(&asJSON, "json", false, "json output")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if len(fs.Args()) != 0 {
		fmt.Fprintln(os.Stderr, "usage: flightdeck doctor [--root=.] [--python=python3] [--json]")
		return 1
	}

	lay, err := layout.Load(root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "doctor failed: %v\n", err)
		return 1
	}
	report, err := collectDoctorReport(ctx, lay, python)
	if asJSON {
		b, _ := json.MarshalIndent(report, "", "  ")
		fmt.Println(string(b))
	} else {
		printDoctorReport(report)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "doctor failed: %v\n", err)
		return 1
	}
	return 0
}

func collectDoctorReport(ctx context.Context, lay layout.Layout, pythonOverride string) (doctorReport, error) {
	report := doctorReport{Checks: make([]doctorCheck, 0, 8)}
	add := func(name, status, detail string) {
		report.Checks = append(report.Checks, doctorCheck{Name: name, Status: status, Detail: detail})
	}

	override := pythonOverride
	if override == "" {
		override = lay.Python
	}
	it, err := interp.Resolve(ctx, override)
	if err != nil {
		add("python", doctorStatusFail, err.Error())
	} else {
		report.Python = it.Bin
		add("python", doctorStatusPass, fmt.Sprintf("%s (%s)", it.Bin, it.Version))
	}

	if _, err := os.Stat(lay.VenvDir); err != nil {
		add("venv", doctorStatusWarn, "not provisioned yet (run \"flightdeck setup\")")
	} else if _, err := os.Stat(lay.VenvPython()); err != nil {
		add("venv", doctorStatusFail, fmt.Sprintf("venv interpreter missing: %s", lay.VenvPython()))
	} else {
		add("venv", doctorStatusPass, lay.VenvDir)
	}

	if _, err := os.Stat(lay.CredentialsTemplate); err != nil {
		add("credentials_template", doctorStatusFail, fmt.Sprintf("missing: %s", lay.CredentialsTemplate))
	} else {
		add("credentials_template", doctorStatusPass, lay.CredentialsTemplate)
	}

	status, err := credentials.Inspect(lay.CredentialsFile, lay.Placeholder)
	switch {
	case err != nil && errors.Is(err, os.ErrNotExist):
		add("credentials", doctorStatusWarn, "not created yet (run \"flightdeck setup\")")
	case err != nil:
		add("credentials", doctorStatusFail, err.Error())
	case status == credentials.StatusUnconfigured:
		add("credentials", doctorStatusWarn, fmt.Sprintf("placeholder values remain in %s", lay.CredentialsFile))
	default:
		add("credentials", doctorStatusPass, lay.CredentialsFile)
	}

	if _, err := os.Stat(lay.Requirements); err != nil {
		add("requirements", doctorStatusFail, fmt.Sprintf("missing: %s", lay.Requirements))
	} else {
		add("requirements", doctorStatusPass, lay.Requirements)
	}

	entrypoints := []struct{ name, path string }{
		{"entrypoint_checker", lay.CheckerEntry},
		{"entrypoint_ui", lay.UIEntry},
	}
	for _, e := range entrypoints {
		if _, err := os.Stat(e.path); err != nil {
			add(e.name, doctorStatusFail, fmt.Sprintf("missing: %s", e.path))
		} else {
			add(e.name, doctorStatusPass, e.path)
		}
	}

	for _, c := range report.Checks {
		if c.Status == doctorStatusFail {
			return report, fmt.Errorf("%s: %s", c.Name, c.Detail)
		}
	}
	return report, nil
}

func printDoctorReport(report doctorReport) {
	for _, c := range report.Checks {
		fmt.Printf("%-22s %-5s %s\n", c.Name, c.Status, c.Detail)
	}
}
