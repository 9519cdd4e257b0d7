// Package logger configures the process-wide logrus instance for the CLIs.
package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// New builds a logger at the given level (debug, info, warn, error).
// Unknown levels fall back to info.
func New(level string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	lv, err := logrus.ParseLevel(level)
	if err != nil {
		lv = logrus.InfoLevel
	}
	log.SetLevel(lv)
	return log
}

// NewQuiet returns a logger that discards everything, for tests.
func NewQuiet() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
