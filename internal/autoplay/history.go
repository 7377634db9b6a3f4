package autoplay

import "github.com/gammazero/deque"

// History keeps the most recent round events for rendering. Older events are
// dropped once the limit is reached.
type History struct {
	events deque.Deque[RoundEvent]
	max    int
}

// NewHistory creates a history holding at most max events.
func NewHistory(max int) *History {
	if max <= 0 {
		max = 100
	}
	return &History{max: max}
}

// Push appends ev, evicting the oldest event when full.
func (h *History) Push(ev RoundEvent) {
	if h.events.Len() >= h.max {
		h.events.PopFront()
	}
	h.events.PushBack(ev)
}

// Len returns the number of stored events.
func (h *History) Len() int {
	return h.events.Len()
}

// Events returns the stored events, oldest first.
func (h *History) Events() []RoundEvent {
	out := make([]RoundEvent, h.events.Len())
	for i := range out {
		out[i] = h.events.At(i)
	}
	return out
}
