// Package dsglog is a thin named wrapper around logrus, in the same spirit
// as the teacher's pkg/codec/cborcanon wraps fxamacker/cbor: one small file
// that centralizes how the rest of the module obtains and configures its
// structured logger, rather than every package importing logrus directly.
package dsglog

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Fields is an alias kept local so callers don't need to import logrus
// themselves just to log a structured line.
type Fields = logrus.Fields

var base = newDefault()

func newDefault() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// New returns a logger at the given level, independent of the package
// default.
func New(level logrus.Level) *logrus.Logger {
	l := newDefault()
	l.SetLevel(level)
	return l
}

// SetDefault replaces the package-wide default logger used by components
// that were not handed one explicitly (notably pkg/dsgerr's overflow
// warnings, which fire from contexts with no logger parameter).
func SetDefault(l *logrus.Logger) {
	if l != nil {
		base = l
	}
}

// Default returns the current package-wide default logger.
func Default() *logrus.Logger {
	return base
}

// With is a convenience for a single contract/handler scoped entry.
func With(fields Fields) *logrus.Entry {
	return base.WithFields(fields)
}
