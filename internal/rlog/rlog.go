// Package rlog provides the structured logger used throughout the
// reconstruction core.
package rlog

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Logger is the minimal logging surface the core depends on. Callers that
// already run logrus, zap, or anything else can adapt their logger to this
// interface; callers with nothing in particular get NewNopLogger.
type Logger interface {
	DebugEnabled() bool
	SetDebug(enabled bool)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)

	// WithFields returns a logger that attaches the given key/value pairs
	// to every subsequent line, e.g. subdomain index or pipeline stage.
	WithFields(fields map[string]any) Logger
}

// DefaultLogger backs Logger with a logrus.Entry.
type DefaultLogger struct {
	mu    *sync.Mutex
	debug *bool
	entry *logrus.Entry
}

// NewDefaultLogger builds a logrus-backed Logger. prefix is attached as the
// "component" field on every line.
func NewDefaultLogger(prefix string, debug bool) *DefaultLogger {
	base := logrus.New()
	base.SetLevel(logrus.InfoLevel)
	if debug {
		base.SetLevel(logrus.DebugLevel)
	}
	entry := base.WithField("component", prefix)
	d := debug
	return &DefaultLogger{
		mu:    &sync.Mutex{},
		debug: &d,
		entry: entry,
	}
}

func (l *DefaultLogger) DebugEnabled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return *l.debug
}

func (l *DefaultLogger) SetDebug(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	*l.debug = enabled
	if enabled {
		l.entry.Logger.SetLevel(logrus.DebugLevel)
	} else {
		l.entry.Logger.SetLevel(logrus.InfoLevel)
	}
}

func (l *DefaultLogger) Debugf(format string, args ...any) { l.entry.Debugf(format, args...) }
func (l *DefaultLogger) Infof(format string, args ...any)  { l.entry.Infof(format, args...) }
func (l *DefaultLogger) Warnf(format string, args ...any)  { l.entry.Warnf(format, args...) }
func (l *DefaultLogger) Errorf(format string, args ...any) { l.entry.Errorf(format, args...) }

func (l *DefaultLogger) WithFields(fields map[string]any) Logger {
	return &DefaultLogger{
		mu:    l.mu,
		debug: l.debug,
		entry: l.entry.WithFields(logrus.Fields(fields)),
	}
}

type nopLogger struct{}

// NewNopLogger returns a Logger that discards everything. Used as the
// default when a caller supplies no Logger via Option.
func NewNopLogger() Logger { return nopLogger{} }

func (nopLogger) DebugEnabled() bool                  { return false }
func (nopLogger) SetDebug(enabled bool)                {}
func (nopLogger) Debugf(format string, args ...any)    {}
func (nopLogger) Infof(format string, args ...any)     {}
func (nopLogger) Warnf(format string, args ...any)     {}
func (nopLogger) Errorf(format string, args ...any)    {}
func (nopLogger) WithFields(fields map[string]any) Logger { return nopLogger{} }
