// Package zapadapter adapts a *zap.Logger to tinylfu.Logger, so callers
// already using zap elsewhere in their service don't have to hand-roll an
// implementation of the cache's minimal logging seam.
//
// SPDX-License-Identifier: MPL-2.0
package zapadapter

import (
	"go.uber.org/zap"

	"github.com/ashgrove-cache/tinylfu"
)

// Logger adapts *zap.Logger to tinylfu.Logger. The zero value is not
// usable; construct one with New.
type Logger struct {
	z *zap.Logger
}

// New wraps z. Passing nil panics, matching zap's own convention of never
// silently no-opping a misconfigured logger.
func New(z *zap.Logger) *Logger {
	if z == nil {
		panic("zapadapter: nil *zap.Logger")
	}
	return &Logger{z: z}
}

func (l *Logger) Debug(msg string, keyvals ...interface{}) {
	l.z.Sugar().Debugw(msg, keyvals...)
}

func (l *Logger) Info(msg string, keyvals ...interface{}) {
	l.z.Sugar().Infow(msg, keyvals...)
}

func (l *Logger) Warn(msg string, keyvals ...interface{}) {
	l.z.Sugar().Warnw(msg, keyvals...)
}

func (l *Logger) Error(msg string, keyvals ...interface{}) {
	l.z.Sugar().Errorw(msg, keyvals...)
}

var _ tinylfu.Logger = (*Logger)(nil)
