// Package barbuffer implements the per-measure mapping of captured
// human events, grounded on the anchor/bar-index bookkeeping in
// original_source/real-time/ableton_bridge_engine.py's
// human_bar_buffers and the RWMutex-guarded map style of
// go-sequence/midi/manager.go's DeviceManager.
package barbuffer

import (
	"sync"

	"github.com/El-Habanero12/aria/internal/midimsg"
)

// Buffer is thread-safe: one producer (the input loop, via Append) and
// one consumer (the bridge controller, via Take/Clear).
type Buffer struct {
	mu sync.Mutex

	pulsesPerBar uint64
	anchor       *uint64 // nil until the first qualifying note-on

	bars map[uint64][]midimsg.Event
}

// New creates an empty Buffer for the given pulses-per-bar.
func New(pulsesPerBar uint64) *Buffer {
	return &Buffer{
		pulsesPerBar: pulsesPerBar,
		bars:         make(map[uint64][]midimsg.Event),
	}
}

// Anchor returns the anchor pulse and whether it has been set.
func (b *Buffer) Anchor() (uint64, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.anchor == nil {
		return 0, false
	}
	return *b.anchor, true
}

// Append assigns an event captured at the given absolute pulse to its
// bar, applying the anchor and drop rules.
func (b *Buffer) Append(evt midimsg.Event, atPulse uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.anchor == nil {
		if evt.Kind == midimsg.NoteOn && evt.Velocity > 0 {
			anchor := atPulse
			b.anchor = &anchor
		} else {
			// Non-note events and note-offs received before the anchor
			// is set are dropped.
			return
		}
	}

	if atPulse < *b.anchor {
		// Delayed stamp predating the anchor: drop.
		return
	}

	bar := (atPulse - *b.anchor) / b.pulsesPerBar
	b.bars[bar] = append(b.bars[bar], evt)
}

// Take removes and returns the finalized sequence for a bar index. A
// bar with no events returns a nil/empty slice.
func (b *Buffer) Take(barIndex uint64) []midimsg.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	events := b.bars[barIndex]
	delete(b.bars, barIndex)
	return events
}

// Clear discards all buffered bar entries, called on the PLAY ->
// COLLECT transition. The anchor is preserved: it is set at most once
// per session and never reset, so the bar grid stays aligned across
// every COLLECT/PLAY cycle rather than just the first.
func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.bars = make(map[uint64][]midimsg.Event)
}
