package smfcodec

import (
	"bytes"
	"testing"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/El-Habanero12/aria/internal/midimsg"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	events := []midimsg.Event{
		midimsg.NewNoteOn(60, 100),
		midimsg.NewNoteOff(60),
		midimsg.NewControlChange(64, 127),
	}

	blob := EncodePrompt(events, 480)
	require.NotEmpty(t, blob)

	tpq, decoded, err := Decode(blob, 480)
	require.NoError(t, err)
	assert.Equal(t, uint16(480), tpq)
	require.Len(t, decoded, 3)
	assert.Equal(t, midimsg.NoteOn, decoded[0].Event.Kind)
	assert.Equal(t, midimsg.NoteOff, decoded[1].Event.Kind)
	assert.Equal(t, midimsg.ControlChange, decoded[2].Event.Kind)
}

func TestEncodeEmptyPromptProducesValidFile(t *testing.T) {
	blob := EncodePrompt(nil, 480)
	require.NotEmpty(t, blob)

	_, decoded, err := Decode(blob, 480)
	require.NoError(t, err)
	assert.Empty(t, decoded)
}

func TestDecode_PulseConversionFloorsEarly(t *testing.T) {
	// A note-on at tick 479 with tpq=480 should floor to pulse 23, not 24.
	var track smf.Track
	track.Add(479, gomidi.NoteOn(0, 60, 100))
	track.Close(0)

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(480)
	require.NoError(t, s.Add(track))

	var buf bytes.Buffer
	_, err := s.WriteTo(&buf)
	require.NoError(t, err)

	_, decoded, err := Decode(buf.Bytes(), 480)
	require.NoError(t, err)
	require.Len(t, decoded, 1)
	assert.Equal(t, uint64(23), decoded[0].OffsetPulses)
}
