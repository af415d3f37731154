// Package main is the entry point for the volumed volume overlay daemon.
package main

import (
	"os"

	"github.com/jmylchreest/levelosd/internal/daemon"
	"github.com/jmylchreest/levelosd/internal/model"
)

// Build-time variables
var version = "dev"

func main() {
	os.Exit(daemon.Run(model.QuantityVolume, version, os.Args[1:]))
}
