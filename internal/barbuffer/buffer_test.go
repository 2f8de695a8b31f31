package barbuffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/El-Habanero12/aria/internal/midimsg"
)

func TestBuffer_AnchorSetOnFirstPositiveNoteOn(t *testing.T) {
	b := New(96)

	b.Append(midimsg.NewNoteOff(60), 10)
	_, ok := b.Anchor()
	assert.False(t, ok, "note-off before anchor must not set it")

	b.Append(midimsg.NewNoteOn(60, 0), 20)
	_, ok = b.Anchor()
	assert.False(t, ok, "zero-velocity note-on must not set the anchor")

	b.Append(midimsg.NewNoteOn(60, 100), 100)
	anchor, ok := b.Anchor()
	require.True(t, ok)
	assert.Equal(t, uint64(100), anchor)

	b.Append(midimsg.NewNoteOn(61, 100), 500)
	anchor, ok = b.Anchor()
	require.True(t, ok)
	assert.Equal(t, uint64(100), anchor, "anchor must never move once set")
}

func TestBuffer_AssignsEventsToBars(t *testing.T) {
	b := New(96) // beats_per_bar=4 -> pulses_per_bar=96

	b.Append(midimsg.NewNoteOn(60, 100), 100) // anchor, bar 0
	b.Append(midimsg.NewNoteOn(62, 100), 150) // bar 0
	b.Append(midimsg.NewNoteOff(62), 190)     // bar 0
	b.Append(midimsg.NewNoteOn(64, 100), 200) // bar 1 (100 + 96 = 196)

	bar0 := b.Take(0)
	require.Len(t, bar0, 3)
	assert.Equal(t, uint8(62), bar0[1].Pitch)
	assert.Equal(t, midimsg.NoteOff, bar0[2].Kind)

	bar1 := b.Take(1)
	require.Len(t, bar1, 1)
	assert.Equal(t, uint8(64), bar1[0].Pitch)
}

func TestBuffer_DropsEventsPredatingAnchor(t *testing.T) {
	b := New(96)
	b.Append(midimsg.NewNoteOn(60, 100), 100)
	b.Append(midimsg.NewNoteOn(61, 100), 50) // stale, predates anchor

	bar0 := b.Take(0)
	require.Len(t, bar0, 1)
	assert.Equal(t, uint8(60), bar0[0].Pitch)
}

func TestBuffer_TakeIsDestructive(t *testing.T) {
	b := New(96)
	b.Append(midimsg.NewNoteOn(60, 100), 100)

	first := b.Take(0)
	require.Len(t, first, 1)

	second := b.Take(0)
	assert.Empty(t, second)
}

func TestBuffer_ClearPreservesAnchorButDropsBars(t *testing.T) {
	b := New(96)
	b.Append(midimsg.NewNoteOn(60, 100), 100)
	b.Append(midimsg.NewNoteOn(62, 100), 150)
	b.Clear()

	anchor, ok := b.Anchor()
	require.True(t, ok, "anchor must survive Clear")
	assert.Equal(t, uint64(100), anchor)
	assert.Empty(t, b.Take(0))
}
