package moderation

import (
	"sync"
	"time"
)

// Action classifies the throttled operations.
type Action string

const (
	// ActionMessage covers posting a room message.
	ActionMessage Action = "message"

	// ActionRoomCreate covers creating a room.
	ActionRoomCreate Action = "room_create"
)

// Limit is the per-window allowance for one action class.
type Limit struct {
	// Count is the number of actions allowed inside Window.
	Count int

	// Window is the length of the sliding window.
	Window time.Duration
}

// SlidingLimiter tracks, per identity and action class, the timestamps of
// recent actions inside a sliding window. Entries older than the window are
// pruned lazily on each check, so idle identities cost nothing beyond their
// last stale slice until Forget.
type SlidingLimiter struct {
	mu sync.Mutex

	// windows is keyed by identity, then action class.
	windows map[string]map[Action][]time.Time

	limits map[Action]Limit

	// now is swappable for tests.
	now func() time.Time
}

// NewSlidingLimiter returns a limiter enforcing the given per-class limits.
// Action classes without a configured limit are always allowed.
func NewSlidingLimiter(limits map[Action]Limit) *SlidingLimiter {
	return &SlidingLimiter{
		windows: make(map[string]map[Action][]time.Time),
		limits:  limits,
		now:     time.Now,
	}
}

// Allow records one action for identity if the class allowance permits it,
// reporting whether the action may proceed. A rejected action is not
// recorded; rate limiting carries no permanent state change.
func (l *SlidingLimiter) Allow(identity string, action Action) bool {
	limit, ok := l.limits[action]
	if !ok || limit.Count <= 0 {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-limit.Window)

	perAction, ok := l.windows[identity]
	if !ok {
		perAction = make(map[Action][]time.Time)
		l.windows[identity] = perAction
	}

	recent := perAction[action][:0]
	for _, ts := range perAction[action] {
		if ts.After(cutoff) {
			recent = append(recent, ts)
		}
	}

	if len(recent) >= limit.Count {
		perAction[action] = recent
		return false
	}

	perAction[action] = append(recent, now)
	return true
}

// Forget drops all window state for identity.
func (l *SlidingLimiter) Forget(identity string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.windows, identity)
}
