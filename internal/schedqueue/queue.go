// Package schedqueue implements the pulse-ordered outbound event queue.
// No third-party priority-queue library appears anywhere in the
// retrieved pack, so this stays on a plain sorted slice for stable
// sequencing — the same mutex-guarded slice style
// e7canasta-orion-care-sensor's framebus uses for its subscriber map,
// applied here to a sorted event list.
package schedqueue

import (
	"sort"
	"sync"

	"github.com/El-Habanero12/aria/internal/midimsg"
)

// Entry pairs an event with the pulse at which it should be emitted.
type Entry struct {
	TargetPulse uint64
	Event       midimsg.Event
}

// Queue maintains entries sorted non-decreasing by TargetPulse, ties
// broken by insertion order.
type Queue struct {
	mu      sync.Mutex
	entries []Entry
	seq     uint64
	order   []uint64 // parallel to entries: insertion sequence number
}

// New returns an empty Queue.
func New() *Queue {
	return &Queue{}
}

// PushMany inserts a batch and restores the sort invariant before
// returning. Within a batch, note-off is ordered before note-on at an
// equal target pulse so a closing note does not silence a fresh
// note-on scheduled at the same pulse.
func (q *Queue) PushMany(batch []Entry) {
	if len(batch) == 0 {
		return
	}

	ordered := make([]Entry, len(batch))
	copy(ordered, batch)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].TargetPulse != ordered[j].TargetPulse {
			return ordered[i].TargetPulse < ordered[j].TargetPulse
		}
		return kindRank(ordered[i].Event.Kind) < kindRank(ordered[j].Event.Kind)
	})

	q.mu.Lock()
	defer q.mu.Unlock()

	for _, e := range ordered {
		q.entries = append(q.entries, e)
		q.order = append(q.order, q.seq)
		q.seq++
	}

	sort.Stable(byPulseThenSeq{entries: q.entries, order: q.order})
}

// kindRank ranks note-off before note-on before control-change so that,
// within a single insertion batch at equal target pulse, closing events
// precede opening ones.
func kindRank(k midimsg.Kind) int {
	switch k {
	case midimsg.NoteOff:
		return 0
	case midimsg.NoteOn:
		return 1
	default:
		return 2
	}
}

type byPulseThenSeq struct {
	entries []Entry
	order   []uint64
}

func (s byPulseThenSeq) Len() int { return len(s.entries) }
func (s byPulseThenSeq) Less(i, j int) bool {
	if s.entries[i].TargetPulse != s.entries[j].TargetPulse {
		return s.entries[i].TargetPulse < s.entries[j].TargetPulse
	}
	return s.order[i] < s.order[j]
}
func (s byPulseThenSeq) Swap(i, j int) {
	s.entries[i], s.entries[j] = s.entries[j], s.entries[i]
	s.order[i], s.order[j] = s.order[j], s.order[i]
}

// DrainDue removes and returns all entries with TargetPulse <=
// currentPulse, in ascending TargetPulse order, ties in the order
// PushMany inserted them (batch by batch, note-off before note-on
// before control-change within a batch). Calling it twice with no
// intervening PushMany
// yields an empty slice the second time.
func (q *Queue) DrainDue(currentPulse uint64) []Entry {
	q.mu.Lock()
	defer q.mu.Unlock()

	cut := 0
	for cut < len(q.entries) && q.entries[cut].TargetPulse <= currentPulse {
		cut++
	}
	if cut == 0 {
		return nil
	}

	due := make([]Entry, cut)
	copy(due, q.entries[:cut])

	q.entries = append(q.entries[:0], q.entries[cut:]...)
	q.order = append(q.order[:0], q.order[cut:]...)

	return due
}

// Clear empties the queue.
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.entries = nil
	q.order = nil
}

// Size returns the number of entries currently queued.
func (q *Queue) Size() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return uint64(len(q.entries))
}
