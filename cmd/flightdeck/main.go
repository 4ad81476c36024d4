package main

import (
	"os"

	"github.com/farewatch/flightdeck/internal/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:]))
}
