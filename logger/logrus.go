package logger

import (
	"github.com/sirupsen/logrus"
)

var _ Logger = &Logrus{}

// Logrus adapts a logrus.Logger.
type Logrus struct {
	l *logrus.Logger
}

// NewLogrus creates a Logger backed by the given logrus.Logger. Passing nil
// uses the logrus standard logger.
func NewLogrus(l *logrus.Logger) *Logrus {
	if l == nil {
		l = logrus.StandardLogger()
	}
	return &Logrus{l: l}
}

func (lr *Logrus) Debugf(format string, args ...interface{}) {
	lr.l.Debugf(format, args...)
}

func (lr *Logrus) Errorf(format string, args ...interface{}) {
	lr.l.Errorf(format, args...)
}
