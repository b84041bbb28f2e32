package logger

import (
	"go.uber.org/zap"
)

var _ Logger = &Zap{}

// Zap adapts a zap.Logger through its sugared API.
type Zap struct {
	s *zap.SugaredLogger
}

// NewZap creates a Logger backed by the given zap.Logger. Passing nil uses
// zap.NewNop(), which discards all messages.
func NewZap(l *zap.Logger) *Zap {
	if l == nil {
		l = zap.NewNop()
	}
	return &Zap{s: l.Sugar()}
}

func (z *Zap) Debugf(format string, args ...interface{}) {
	z.s.Debugf(format, args...)
}

func (z *Zap) Errorf(format string, args ...interface{}) {
	z.s.Errorf(format, args...)
}
