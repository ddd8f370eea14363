// Package monitoring carries the planner's diagnostic log.
package monitoring

import (
	"io"
	"log"
	"os"
)

var diag = log.New(os.Stderr, "planner: ", log.LstdFlags|log.Lmsgprefix)

// Logf writes one diagnostic line. It matches the signature of
// coverage.Options.Logf and is safe for concurrent use.
func Logf(format string, v ...any) {
	diag.Printf(format, v...)
}

// SetOutput redirects diagnostics to w. A nil writer discards them.
func SetOutput(w io.Writer) {
	if w == nil {
		w = io.Discard
	}
	diag.SetOutput(w)
}

// Output returns the current diagnostic destination.
func Output() io.Writer {
	return diag.Writer()
}
