// Package model defines the black-box generation engine contract
// consumed by the bridge.
package model

import (
	"context"
	"errors"
)

// ErrGenerationFailed wraps any failure from the underlying engine,
// letting the worker record a stable error reason on the job.
var ErrGenerationFailed = errors.New("model: generation failed")

// Engine produces a MIDI continuation from a prompt. Implementations
// are opaque and synchronous: the single call may block for the
// duration of inference.
type Engine interface {
	// Generate returns a Standard MIDI File blob spanning at most
	// horizonSeconds of musical time, or an error. temperature is in
	// [0,2], topP is in (0,1].
	Generate(ctx context.Context, prompt []byte, horizonSeconds, temperature, topP float64) ([]byte, error)
}
