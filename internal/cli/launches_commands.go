package cli

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/farewatch/flightdeck/internal/manager"
)

func runLaunches(args []string) int {
	args = reorderFlags(args, map[string]bool{"--state-dir": true, "--limit": true, "--json": false})
	fs := flag.NewFlagSet("launches", flag.ContinueOnError)
	var stateDir string
	var limit int
	var asJSON bool
	fs.StringVar(&stateDir, "state-dir", ".flightdeck", "state directory")
	fs.IntVar(&limit, "limit", 50, "max rows")
	fs.BoolVar(&asJSON, "json", false, "json output")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if len(fs.Args()) != 0 {
		fmt.Fprintln(os.Stderr, "usage: flightdeck launches [--state-dir=.flightdeck] [--limit=50] [--json]")
		return 1
	}
	m, err := manager.New(stateDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open manager: %v\n", err)
		return 1
	}
	defer m.Close()
	recs, err := m.ListLaunches(limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "launches failed: %v\n", err)
		return 1
	}
	if asJSON {
		b, _ := json.MarshalIndent(recs, "", "  ")
		fmt.Println(string(b))
		return 0
	}
	for _, r := range recs {
		fmt.Printf("%s\t%s\t%s\t%s\t%s\n", r.LaunchID, r.Command, r.Status, r.StartedAt, r.LastError)
	}
	return 0
}
