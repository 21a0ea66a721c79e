package moderation

import "sync"

// muteBanState guards the per-username moderation flags. Read-modify-write
// sequences on one username never interleave.
type muteBanState struct {
	mu sync.RWMutex

	mutedSet  map[string]struct{}
	bannedSet map[string]struct{}
}

func newMuteBanState() muteBanState {
	return muteBanState{
		mutedSet:  make(map[string]struct{}),
		bannedSet: make(map[string]struct{}),
	}
}

func (s *muteBanState) setMuted(username string, muted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if muted {
		s.mutedSet[username] = struct{}{}
	} else {
		delete(s.mutedSet, username)
	}
}

func (s *muteBanState) setBanned(username string, banned bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if banned {
		s.bannedSet[username] = struct{}{}
	} else {
		delete(s.bannedSet, username)
	}
}

func (s *muteBanState) muted(username string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.mutedSet[username]
	return ok
}

func (s *muteBanState) banned(username string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.bannedSet[username]
	return ok
}
