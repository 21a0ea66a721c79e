package chat

import "sync"

// history is a bounded per-room buffer of recent messages, oldest first.
// Appending past capacity evicts the oldest entry.
type history struct {
	mu sync.Mutex

	capacity int
	msgs     []Message
}

func newHistory(capacity int) *history {
	return &history{capacity: capacity}
}

// append adds msg, evicting the oldest entry once the buffer is full.
func (h *history) append(msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.msgs = append(h.msgs, msg)
	if len(h.msgs) > h.capacity {
		h.msgs = h.msgs[1:]
	}
}

// find returns a copy of the message with the given ID.
func (h *history) find(id string) (Message, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, m := range h.msgs {
		if m.ID == id {
			return m, true
		}
	}
	return Message{}, false
}

// edit replaces the body of the message with the given ID and marks it
// edited, returning the updated copy.
func (h *history) edit(id, body string) (Message, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for i := range h.msgs {
		if h.msgs[i].ID == id {
			h.msgs[i].Body = body
			h.msgs[i].Edited = true
			return h.msgs[i], true
		}
	}
	return Message{}, false
}

// remove deletes the message with the given ID.
func (h *history) remove(id string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	for i := range h.msgs {
		if h.msgs[i].ID == id {
			h.msgs = append(h.msgs[:i], h.msgs[i+1:]...)
			return true
		}
	}
	return false
}

// list returns a copy of the buffer, oldest first.
func (h *history) list() []Message {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]Message, len(h.msgs))
	copy(out, h.msgs)
	return out
}
