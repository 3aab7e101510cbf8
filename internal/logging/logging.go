// Package logging builds the github.com/hashicorp/go-hclog logger shared
// by cmd/server and cmd/solve, centralizing the level/format flags so
// both entrypoints log the same way.
package logging

import (
	"os"

	"github.com/hashicorp/go-hclog"
)

// New returns a logger with the given name at the given level ("debug",
// "info", "warn", "error"; invalid or empty defaults to "info"), writing
// to stderr in hclog's standard text format.
func New(name, level string) hclog.Logger {
	lvl := hclog.LevelFromString(level)
	if lvl == hclog.NoLevel {
		lvl = hclog.Info
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   name,
		Level:  lvl,
		Output: os.Stderr,
	})
}
