package logger

import (
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

var _ Logger = &Zerolog{}

// Zerolog adapts a zerolog.Logger.
type Zerolog struct {
	l zerolog.Logger
}

// NewZerolog creates a Logger backed by the given zerolog.Logger. Passing
// nil uses zerolog's global logger.
func NewZerolog(l *zerolog.Logger) *Zerolog {
	if l == nil {
		l = &zlog.Logger
	}
	return &Zerolog{l: *l}
}

func (z *Zerolog) Debugf(format string, args ...interface{}) {
	z.l.Debug().Msgf(format, args...)
}

func (z *Zerolog) Errorf(format string, args ...interface{}) {
	z.l.Error().Msgf(format, args...)
}
