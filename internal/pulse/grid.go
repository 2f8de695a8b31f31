// Package pulse implements the clock grid: a monotonically increasing
// MIDI-clock pulse counter driven by a single writer goroutine and
// read by every other component through atomic loads, grounded on the
// pulse-counting loop in
// original_source/real-time/clock_grid.py and the atomic/lock-light
// state style of go-sequence/sequencer/manager.go.
package pulse

import "sync/atomic"

// RealtimeKind classifies the four MIDI system real-time messages the
// clock grid consumes: tick, start, continue, stop. Nothing else is
// recognized at this layer.
type RealtimeKind uint8

const (
	Tick RealtimeKind = iota
	Start
	Continue
	Stop
)

// Grid tracks pulse count and transport running state. It is written
// by exactly one goroutine (the clock input loop, via Handle) and read
// by any number of goroutines.
type Grid struct {
	pulseCount uint64
	running    uint32
}

// New returns a Grid with pulse_count=0 and running=false.
func New() *Grid {
	return &Grid{}
}

// Handle applies one real-time message to the grid. It must only ever
// be called from the clock input loop.
func (g *Grid) Handle(kind RealtimeKind) {
	switch kind {
	case Tick:
		atomic.AddUint64(&g.pulseCount, 1)
	case Start:
		atomic.StoreUint64(&g.pulseCount, 0)
		atomic.StoreUint32(&g.running, 1)
	case Stop:
		atomic.StoreUint32(&g.running, 0)
	case Continue:
		atomic.StoreUint32(&g.running, 1)
	}
}

// PulseCount returns the current pulse count. Safe for concurrent use;
// callers may observe a value stale by at most one increment.
func (g *Grid) PulseCount() uint64 {
	return atomic.LoadUint64(&g.pulseCount)
}

// Running reports whether the external transport is currently playing.
func (g *Grid) Running() bool {
	return atomic.LoadUint32(&g.running) == 1
}
