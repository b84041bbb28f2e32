// Package logger defines the logging contract used across the rate limiting
// engine, together with adapters for common logging backends. The engine only
// ever logs two kinds of events: debug traces of individual decisions and
// errors for degraded store operation, so the interface is deliberately
// small.
package logger

// Logger is the minimal logging surface the engine needs. Wrap your own
// backend or use one of the provided adapters.
type Logger interface {
	Debugf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

var _ Logger = &Noop{}

// Noop discards all messages. It is the default logger so that callers who
// do not care about logging pay nothing for it.
type Noop struct{}

// NewNoop creates a logger that discards everything.
func NewNoop() *Noop {
	return &Noop{}
}

func (n *Noop) Debugf(format string, args ...interface{}) {}

func (n *Noop) Errorf(format string, args ...interface{}) {}
