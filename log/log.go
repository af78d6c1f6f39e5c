// Package log is a thin wrapper around logrus, mirrored on the teacher
// repo's own log package: a small Logger interface re-exporting logrus's
// leveled methods so the rest of the module depends on this interface, not
// on logrus directly.
package log

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Fields aliases logrus.Fields.
type Fields = logrus.Fields

// Logger is the interface the engine and CLI log through.
type Logger interface {
	Debug(...any)
	Debugf(string, ...any)

	Info(...any)
	Infof(string, ...any)

	Warn(...any)
	Warnf(string, ...any)

	Error(...any)
	Errorf(string, ...any)

	WithField(key string, value any) *logrus.Entry
	WithFields(Fields) *logrus.Entry

	SetLevel(string) error
	SetOutput(io.Writer)
	SetJSONFormatter()
}

type logger struct {
	entry *logrus.Entry
}

// New returns a Logger backed by a fresh logrus.Logger at Info level.
func New() Logger {
	l := logrus.New()
	return &logger{entry: logrus.NewEntry(l)}
}

func (l *logger) Debug(args ...any)                 { l.entry.Debug(args...) }
func (l *logger) Debugf(f string, args ...any)      { l.entry.Debugf(f, args...) }
func (l *logger) Info(args ...any)                  { l.entry.Info(args...) }
func (l *logger) Infof(f string, args ...any)       { l.entry.Infof(f, args...) }
func (l *logger) Warn(args ...any)                  { l.entry.Warn(args...) }
func (l *logger) Warnf(f string, args ...any)       { l.entry.Warnf(f, args...) }
func (l *logger) Error(args ...any)                 { l.entry.Error(args...) }
func (l *logger) Errorf(f string, args ...any)      { l.entry.Errorf(f, args...) }
func (l *logger) WithField(k string, v any) *logrus.Entry { return l.entry.WithField(k, v) }
func (l *logger) WithFields(f Fields) *logrus.Entry       { return l.entry.WithFields(f) }

func (l *logger) SetLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	l.entry.Logger.SetLevel(lvl)
	return nil
}

func (l *logger) SetOutput(w io.Writer) {
	l.entry.Logger.SetOutput(w)
}

func (l *logger) SetJSONFormatter() {
	l.entry.Logger.SetFormatter(&logrus.JSONFormatter{})
}

// pegAdapter adapts this Logger to peg.Logger's narrower Debugf/Warnf
// surface, so the engine never needs to know about logrus.
type pegAdapter struct {
	Logger
}

// AsPegLogger exposes l through the engine's minimal Logger interface.
func AsPegLogger(l Logger) interface {
	Debugf(format string, args ...any)
	Warnf(format string, args ...any)
} {
	return pegAdapter{l}
}
