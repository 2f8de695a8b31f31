// Package smfcodec encodes captured prompt events into a Standard MIDI
// File and decodes a generated MIDI blob back into timed events. It
// extends gitlab.com/gomidi/midi/v2 (the module go-sequence already
// depends on for live transport) into its smf sub-package rather than
// reaching for an unrelated MIDI file parser, one-for-one replacing
// original_source/real-time/prompt_midi.py's use of mido.MidiFile.
package smfcodec

import (
	"bytes"
	"fmt"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/El-Habanero12/aria/internal/midimsg"
)

// DefaultChannel is the single MIDI channel used for both the encoded
// prompt and the decoded response. The bridge treats all events as
// channel-agnostic.
const DefaultChannel = 0

// TimedEvent is a decoded event paired with its offset in pulses from
// the start of the file (floor-converted from ticks).
type TimedEvent struct {
	OffsetPulses uint64
	Event        midimsg.Event
}

// EncodePrompt writes events as a single-track Standard MIDI File at
// the given ticks-per-quarter-note resolution. The bar buffer does not
// retain intra-bar timestamps beyond bar assignment, so events are
// written in capture order, evenly spaced 4*ticksPerBeat/(len(events)+1)
// ticks apart (at least one tick); only relative order is preserved,
// not absolute inter-onset timing.
func EncodePrompt(events []midimsg.Event, ticksPerBeat uint16) []byte {
	var track smf.Track

	tickStep := uint32(1)
	if len(events) > 0 {
		// Spread events evenly across four quarter notes' worth of ticks
		// so the model receives some notion of inter-onset spacing.
		perBar := uint32(ticksPerBeat) * 4
		tickStep = perBar / uint32(len(events)+1)
		if tickStep == 0 {
			tickStep = 1
		}
	}

	for _, evt := range events {
		msg := toMIDIMessage(evt)
		if msg == nil {
			continue
		}
		track.Add(tickStep, msg)
	}
	track.Close(0)

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(ticksPerBeat)
	if err := s.Add(track); err != nil {
		return nil
	}

	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		return nil
	}
	return buf.Bytes()
}

// Decode parses a Standard MIDI File blob and returns its declared
// ticks-per-quarter-note resolution along with every recognized
// channel event, converted to pulse offsets via floor((tick/tpq)*24).
// Meta events and unrecognized channel messages are
// skipped. fallbackTPQ is used if the blob does not declare a metric
// (ticks-per-quarter) time format.
func Decode(blob []byte, fallbackTPQ uint16) (tpq uint16, events []TimedEvent, err error) {
	s, err := smf.ReadFrom(bytes.NewReader(blob))
	if err != nil {
		return 0, nil, fmt.Errorf("smfcodec: parse: %w", err)
	}

	tpq = fallbackTPQ
	if mt, ok := s.TimeFormat.(smf.MetricTicks); ok {
		tpq = uint16(mt.Ticks4th())
	}
	if tpq == 0 {
		tpq = fallbackTPQ
	}
	if tpq == 0 {
		return 0, nil, fmt.Errorf("smfcodec: no usable ticks-per-quarter resolution")
	}

	for _, track := range s.Tracks {
		var absTick uint64
		for _, te := range track {
			absTick += uint64(te.Delta)

			var ch, pitch, velocity, controller, value uint8
			switch {
			case te.Message.GetNoteOn(&ch, &pitch, &velocity):
				offset := (absTick * 24) / uint64(tpq)
				if velocity == 0 {
					events = append(events, TimedEvent{OffsetPulses: offset, Event: midimsg.NewNoteOff(pitch)})
				} else {
					events = append(events, TimedEvent{OffsetPulses: offset, Event: midimsg.NewNoteOn(pitch, velocity)})
				}
			case te.Message.GetNoteOff(&ch, &pitch, &velocity):
				offset := (absTick * 24) / uint64(tpq)
				events = append(events, TimedEvent{OffsetPulses: offset, Event: midimsg.NewNoteOff(pitch)})
			case te.Message.GetControlChange(&ch, &controller, &value):
				offset := (absTick * 24) / uint64(tpq)
				events = append(events, TimedEvent{OffsetPulses: offset, Event: midimsg.NewControlChange(controller, value)})
			}
		}
	}

	return tpq, events, nil
}

func toMIDIMessage(evt midimsg.Event) gomidi.Message {
	switch evt.Kind {
	case midimsg.NoteOn:
		return gomidi.NoteOn(DefaultChannel, evt.Pitch, evt.Velocity)
	case midimsg.NoteOff:
		return gomidi.NoteOff(DefaultChannel, evt.Pitch)
	case midimsg.ControlChange:
		return gomidi.ControlChange(DefaultChannel, evt.Controller, evt.Value)
	default:
		return nil
	}
}
