// Package monitoring holds the diagnostic logger shared by the analysis
// packages. Library code logs through Logf so that tests and the batch tool
// can redirect or silence fallback notices without touching the global log.
package monitoring

import (
	"fmt"
	"log"
)

// Logf is the package-level diagnostic logger. It defaults to log.Printf but may
// be replaced by SetLogger.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil installs a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Capture redirects Logf into the returned slice until restore is called.
// It is intended for tests that assert a fallback was reported.
func Capture() (lines *[]string, restore func()) {
	original := Logf
	var buf []string
	Logf = func(format string, v ...interface{}) {
		buf = append(buf, fmt.Sprintf(format, v...))
	}
	return &buf, func() { Logf = original }
}
