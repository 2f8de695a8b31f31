// Package midiio adapts gitlab.com/gomidi/midi/v2 (+
// drivers/rtmididrv) — the exact transport stack go-sequence/midi
// already depends on — to the three narrow port interfaces the bridge
// core consumes: ClockSource, InputSource, OutputSink. Live MIDI
// transport in the bridge goes only through these interfaces;
// internal/smfcodec imports gomidi for MIDI file encoding, and
// cmd/aria-portutil calls gomidi directly to list ports.
package midiio

import (
	"fmt"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // registers the platform MIDI driver

	"github.com/El-Habanero12/aria/internal/midimsg"
	"github.com/El-Habanero12/aria/internal/pulse"
)

// ClockSource delivers the four MIDI real-time messages the clock grid
// consumes. A clock source that cannot be opened is fatal to the bridge,
// signalled by Listen's returned error. Loss of the port after the
// listener has started is not reported through this interface.
type ClockSource interface {
	Listen(onMessage func(pulse.RealtimeKind)) (stop func(), err error)
}

// InputSource delivers decoded note-on/off/control-change events as
// they arrive. The caller is responsible for stamping each event with
// the current pulse.
type InputSource interface {
	Listen(onEvent func(midimsg.Event)) (stop func(), err error)
}

// OutputSink accepts one event at a time in emission order.
type OutputSink interface {
	Send(midimsg.Event) error
	Close() error
}

// realtimeKind classifies a raw MIDI real-time status byte. gomidi v2's
// Message is a plain []byte; real-time messages are a single status
// byte with no data bytes, so inspecting msg[0] directly is simpler and
// more robust across driver versions than relying on a typed accessor.
func realtimeKind(msg gomidi.Message) (pulse.RealtimeKind, bool) {
	raw := []byte(msg)
	if len(raw) == 0 {
		return 0, false
	}
	switch raw[0] {
	case 0xF8:
		return pulse.Tick, true
	case 0xFA:
		return pulse.Start, true
	case 0xFB:
		return pulse.Continue, true
	case 0xFC:
		return pulse.Stop, true
	default:
		return 0, false
	}
}

// GomidiClockSource is a ClockSource backed by a real MIDI input port.
type GomidiClockSource struct {
	Port drivers.In
}

// Listen starts a background listener; stop() tears it down.
func (c *GomidiClockSource) Listen(onMessage func(pulse.RealtimeKind)) (func(), error) {
	stop, err := gomidi.ListenTo(c.Port, func(msg gomidi.Message, _ int32) {
		if kind, ok := realtimeKind(msg); ok {
			onMessage(kind)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("midiio: listen clock: %w", err)
	}
	return stop, nil
}

// GomidiInputSource is an InputSource backed by a real MIDI input port.
type GomidiInputSource struct {
	Port drivers.In
}

// Listen starts a background listener; stop() tears it down.
func (s *GomidiInputSource) Listen(onEvent func(midimsg.Event)) (func(), error) {
	stop, err := gomidi.ListenTo(s.Port, func(msg gomidi.Message, _ int32) {
		var channel, note, velocity, controller, value uint8

		switch {
		case msg.GetNoteOn(&channel, &note, &velocity):
			if velocity > 0 {
				onEvent(midimsg.NewNoteOn(note, velocity))
			} else {
				onEvent(midimsg.NewNoteOff(note))
			}
		case msg.GetNoteOff(&channel, &note, &velocity):
			onEvent(midimsg.NewNoteOff(note))
		case msg.GetControlChange(&channel, &controller, &value):
			onEvent(midimsg.NewControlChange(controller, value))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("midiio: listen input: %w", err)
	}
	return stop, nil
}

// GomidiOutputSink is an OutputSink backed by a real MIDI output port.
type GomidiOutputSink struct {
	Port drivers.Out
	send func(gomidi.Message) error
}

// NewGomidiOutputSink opens the send function for the given port.
func NewGomidiOutputSink(port drivers.Out) (*GomidiOutputSink, error) {
	send, err := gomidi.SendTo(port)
	if err != nil {
		return nil, fmt.Errorf("midiio: open output: %w", err)
	}
	return &GomidiOutputSink{Port: port, send: send}, nil
}

// Send implements OutputSink.
func (o *GomidiOutputSink) Send(evt midimsg.Event) error {
	switch evt.Kind {
	case midimsg.NoteOn:
		return o.send(gomidi.NoteOn(0, evt.Pitch, evt.Velocity))
	case midimsg.NoteOff:
		return o.send(gomidi.NoteOff(0, evt.Pitch))
	case midimsg.ControlChange:
		return o.send(gomidi.ControlChange(0, evt.Controller, evt.Value))
	default:
		return fmt.Errorf("midiio: unrecognized event kind %v", evt.Kind)
	}
}

// Close implements OutputSink.
func (o *GomidiOutputSink) Close() error {
	return gomidi.CloseDriver()
}
