// Package corelog holds the package-level logger shared by the core.
package corelog

import (
	log "github.com/sirupsen/logrus"
)

// Log is the logger every internal package writes through, a plain
// package-level logrus instance.
var Log = log.New()

// SetLevel adjusts verbosity; callers in cmd/ wire this to a --verbose flag.
func SetLevel(level log.Level) {
	Log.SetLevel(level)
}
