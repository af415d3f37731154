// Package main provides the CLI entrypoint for volumectl.
package main

import (
	"fmt"
	"os"

	"github.com/jmylchreest/levelosd/internal/cli"
	"github.com/jmylchreest/levelosd/internal/dbus"
)

// Build-time variables (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

func main() {
	v := fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime)
	os.Exit(cli.Execute(dbus.VolumeProfile, v))
}
