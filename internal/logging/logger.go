// Package logging holds the process-wide loggers. Info output is discarded
// until SetVerbose is called; warnings and errors always go to stderr.
package logging

import (
	"io"
	"log"
	"os"
)

var (
	InfoLogger  *log.Logger
	WarnLogger  *log.Logger
	ErrorLogger *log.Logger
)

func init() {
	InfoLogger = log.New(io.Discard, "INFO: ", log.Ldate|log.Ltime)
	WarnLogger = log.New(os.Stderr, "WARNING: ", log.Ldate|log.Ltime)
	ErrorLogger = log.New(os.Stderr, "ERROR: ", log.Ldate|log.Ltime)
}

// SetVerbose routes info messages to stderr when on.
func SetVerbose(on bool) {
	if on {
		InfoLogger.SetOutput(os.Stderr)
		return
	}
	InfoLogger.SetOutput(io.Discard)
}

// SetOutput redirects every logger to w. Tests use it to capture output.
func SetOutput(w io.Writer) {
	InfoLogger.SetOutput(w)
	WarnLogger.SetOutput(w)
	ErrorLogger.SetOutput(w)
}
