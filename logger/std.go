package logger

import (
	"log"
	"os"
)

var _ Logger = &Std{}

// Std adapts the standard library log package.
type Std struct {
	l *log.Logger
}

// NewStd creates a Logger backed by the given *log.Logger. Passing nil uses
// a logger writing to stderr with the default flags.
func NewStd(l *log.Logger) *Std {
	if l == nil {
		l = log.New(os.Stderr, "", log.LstdFlags)
	}
	return &Std{l: l}
}

func (s *Std) Debugf(format string, args ...interface{}) {
	s.l.Printf("DEBUG "+format, args...)
}

func (s *Std) Errorf(format string, args ...interface{}) {
	s.l.Printf("ERROR "+format, args...)
}
