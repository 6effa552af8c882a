// Package logging wraps a single process-wide structured logger,
// charmbracelet/log, behind named per-subsystem sub-loggers. Grounded on
// the teacher's pkg/framework/debug.Logger (one process-global instance,
// set up once at startup, level/output configurable), adapted from a
// hand-rolled text logger to charmbracelet/log's structured key/value
// API. Audio-interrupt code paths never log (spec.md §5); only the
// control thread, clock-input context, and preset controller do.
package logging

import (
	"os"

	"github.com/charmbracelet/log"
)

var root = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
	TimeFormat:      "15:04:05.000",
})

// SetLevel sets the minimum level logged process-wide (spec.md-adjacent
// ambient concern; driven by --log-level, see cmd/microloop).
func SetLevel(level log.Level) {
	root.SetLevel(level)
}

// For returns a sub-logger tagged with the given subsystem name, e.g.
// logging.For("timebase"), logging.For("preset"). Mirrors the teacher's
// prefix convention, expressed as charmbracelet/log's structured
// "component" field instead of a string-concatenated prefix.
func For(subsystem string) *log.Logger {
	return root.With("component", subsystem)
}
