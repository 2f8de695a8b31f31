package schedqueue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/El-Habanero12/aria/internal/midimsg"
)

func TestQueue_DrainDueOrdersByTargetPulse(t *testing.T) {
	q := New()
	q.PushMany([]Entry{
		{TargetPulse: 300, Event: midimsg.NewNoteOn(64, 100)},
		{TargetPulse: 100, Event: midimsg.NewNoteOn(60, 100)},
		{TargetPulse: 200, Event: midimsg.NewNoteOn(62, 100)},
	})

	due := q.DrainDue(250)
	require.Len(t, due, 2)
	assert.Equal(t, uint64(100), due[0].TargetPulse)
	assert.Equal(t, uint64(200), due[1].TargetPulse)
	assert.Equal(t, uint64(1), q.Size())
}

func TestQueue_DrainDueTwiceIsIdempotent(t *testing.T) {
	q := New()
	q.PushMany([]Entry{{TargetPulse: 10, Event: midimsg.NewAllNotesOff()}})

	first := q.DrainDue(10)
	require.Len(t, first, 1)

	second := q.DrainDue(10)
	assert.Empty(t, second)
}

func TestQueue_NoteOffPrecedesNoteOnAtSamePulse(t *testing.T) {
	q := New()
	q.PushMany([]Entry{
		{TargetPulse: 50, Event: midimsg.NewNoteOn(60, 100)},
		{TargetPulse: 50, Event: midimsg.NewNoteOff(60)},
	})

	due := q.DrainDue(50)
	require.Len(t, due, 2)
	assert.Equal(t, midimsg.NoteOff, due[0].Event.Kind)
	assert.Equal(t, midimsg.NoteOn, due[1].Event.Kind)
}

func TestQueue_PreservesInsertionOrderAcrossBatches(t *testing.T) {
	q := New()
	q.PushMany([]Entry{{TargetPulse: 10, Event: midimsg.NewControlChange(1, 1)}})
	q.PushMany([]Entry{{TargetPulse: 10, Event: midimsg.NewControlChange(2, 2)}})

	due := q.DrainDue(10)
	require.Len(t, due, 2)
	assert.Equal(t, uint8(1), due[0].Event.Controller)
	assert.Equal(t, uint8(2), due[1].Event.Controller)
}

func TestQueue_ClearEmptiesQueue(t *testing.T) {
	q := New()
	q.PushMany([]Entry{{TargetPulse: 10, Event: midimsg.NewAllNotesOff()}})
	q.Clear()
	assert.Equal(t, uint64(0), q.Size())
	assert.Empty(t, q.DrainDue(1000))
}
