package bridge

import (
	"github.com/El-Habanero12/aria/internal/midimsg"
	"github.com/El-Habanero12/aria/internal/schedqueue"
	"github.com/El-Habanero12/aria/internal/smfcodec"
)

// enforceWindow applies the five window rules to a decoded generation
// result, returning the batch of entries ready for
// schedqueue.PushMany. boundaryPulse is the pulse playback begins at;
// windowPulses is W = N * pulses_per_bar.
func enforceWindow(events []smfcodec.TimedEvent, boundaryPulse, windowPulses uint64) []schedqueue.Entry {
	active := make(map[uint8]bool)
	var batch []schedqueue.Entry

	for _, te := range events {
		// Rule 1: drop anything at or beyond the window.
		if te.OffsetPulses >= windowPulses {
			continue
		}

		// Rule 2: track active note-ons by pitch.
		switch te.Event.Kind {
		case midimsg.NoteOn:
			if te.Event.Velocity > 0 {
				active[te.Event.Pitch] = true
			} else {
				delete(active, te.Event.Pitch)
			}
		case midimsg.NoteOff:
			delete(active, te.Event.Pitch)
		}

		// Rule 3: emit the surviving event at boundary + offset.
		batch = append(batch, schedqueue.Entry{
			TargetPulse: boundaryPulse + te.OffsetPulses,
			Event:       te.Event,
		})
	}

	closePulse := boundaryPulse + windowPulses

	// Rule 4: force-close every pitch still active at end of parsing.
	for pitch := range active {
		batch = append(batch, schedqueue.Entry{
			TargetPulse: closePulse,
			Event:       midimsg.NewNoteOff(pitch),
		})
	}

	// Rule 5: silence the channel.
	batch = append(batch, schedqueue.Entry{
		TargetPulse: closePulse,
		Event:       midimsg.NewAllNotesOff(),
	})

	return batch
}
