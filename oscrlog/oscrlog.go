// Package oscrlog provides the module's severity-prefixed loggers, modeled
// directly on the reference viewer's info/error log wrappers around the
// standard library's log.Logger.
package oscrlog

import (
	"io"
	"log"
	"os"
)

var (
	// Info logs non-fatal progress messages (combat boundaries found, files
	// opened, worker pool status).
	Info = log.New(os.Stderr, "I ", log.Ldate|log.Ltime|log.Lmicroseconds)
	// Error logs failures; the orchestrator uses it for the analysis error
	// that aborts AnalyzeAllParallel.
	Error = log.New(os.Stderr, "E ", log.Ldate|log.Ltime|log.Lmicroseconds)
)

// SetOutput redirects both loggers, mainly for tests that want to capture
// or silence log output.
func SetOutput(w io.Writer) {
	Info.SetOutput(w)
	Error.SetOutput(w)
}
