// Package logging constructs the process-wide zap.Logger, mirroring
// leandrodaf-midi/internal/logger's NewProduction/NewDevelopment
// switch. The rest of the module takes a *zap.Logger directly rather
// than through a wrapper interface, since every call site here already
// standardizes on zap.
package logging

import "go.uber.org/zap"

// New builds a production JSON logger, or a human-readable development
// logger when dev is true (spec's own logging markers are unaffected
// either way — they're passed as the log message, not the encoding).
func New(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
