/*
Package dm implements the direct-message router's conversation state: one
append-only thread per unordered username pair, bounded to the most recent
entries. Delivery to live connections is the hub's job; this package owns the
threads themselves.
*/
package dm

import (
	"sync"
	"time"

	"hubble/internal/pkg/randx"
)

// DirectMessage is one entry in a two-party conversation thread.
type DirectMessage struct {
	ID   string    `json:"id"`
	From string    `json:"from"`
	To   string    `json:"to"`
	Body string    `json:"body"`
	Time time.Time `json:"time"`
}

// PairKey canonicalizes an unordered username pair so that the thread for
// {a, b} is the thread for {b, a}.
func PairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}

// Router owns the per-pair conversation threads.
type Router struct {
	mu sync.RWMutex

	// threads is keyed by PairKey, each slice in chronological order.
	threads map[string][]DirectMessage

	// retain bounds each thread to its most recent entries.
	retain int

	// now is swappable for tests.
	now func() time.Time
}

// NewRouter returns a router retaining the last retain messages per thread.
func NewRouter(retain int) *Router {
	return &Router{
		threads: make(map[string][]DirectMessage),
		retain:  retain,
		now:     time.Now,
	}
}

// Append records a new direct message on the thread for {from, to} and
// returns it. The recipient does not need to exist or be online.
func (r *Router) Append(from, to, body string) DirectMessage {
	msg := DirectMessage{
		ID:   randx.MessageID(),
		From: from,
		To:   to,
		Body: body,
		Time: r.now(),
	}

	key := PairKey(from, to)

	r.mu.Lock()
	defer r.mu.Unlock()

	thread := append(r.threads[key], msg)
	if len(thread) > r.retain {
		thread = thread[len(thread)-r.retain:]
	}
	r.threads[key] = thread

	return msg
}

// History returns the thread for {a, b} in chronological order. Lookup is
// symmetric: History(a, b) and History(b, a) return the identical sequence.
func (r *Router) History(a, b string) []DirectMessage {
	r.mu.RLock()
	defer r.mu.RUnlock()

	thread := r.threads[PairKey(a, b)]
	out := make([]DirectMessage, len(thread))
	copy(out, thread)
	return out
}
