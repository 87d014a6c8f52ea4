package logger

import (
	"io"

	"github.com/sirupsen/logrus"
)

// NewNullLogger returns a Logger that discards everything, for tests and
// for components built without a logger.
func NewNullLogger() Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	log.SetLevel(logrus.PanicLevel)
	return NewLogrusAdapter(logrus.NewEntry(log))
}
