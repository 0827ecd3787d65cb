// Package logger provides the logging facade used throughout trainctl.
//
// All packages log through the printf-style functions in this package rather
// than importing a logging library directly. The backend is logrus with a
// terminal-friendly formatter; --verbose switches the level to debug.
package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

var log = logrus.New()

func init() {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})
	log.SetLevel(logrus.InfoLevel)
}

// SetVerbose enables or disables debug-level output.
func SetVerbose(verbose bool) {
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.InfoLevel)
	}
}

// Debug logs a debug-level message with printf formatting.
func Debug(format string, args ...interface{}) {
	log.Debugf(format, args...)
}

// Warn logs a warning-level message with printf formatting.
func Warn(format string, args ...interface{}) {
	log.Warnf(format, args...)
}
