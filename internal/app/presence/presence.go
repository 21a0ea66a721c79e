/*
Package presence implements the presence directory: the mapping from username
to the set of connections it is currently reachable on.

A username may be online through several connections at once; it is fully
offline only when its last connection goes away. The directory is always
derivable from the session registry and the two are kept in step by the hub.
*/
package presence

import "sync"

// Directory maps usernames to their active connection IDs.
type Directory struct {
	mu sync.RWMutex

	// conns is keyed by username; the inner set holds connection IDs.
	conns map[string]map[string]struct{}
}

// NewDirectory returns an empty presence directory.
func NewDirectory() *Directory {
	return &Directory{conns: make(map[string]map[string]struct{})}
}

// MarkOnline records connID as a reachable connection for username.
func (d *Directory) MarkOnline(username, connID string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	set, ok := d.conns[username]
	if !ok {
		set = make(map[string]struct{})
		d.conns[username] = set
	}
	set[connID] = struct{}{}
}

// MarkOffline removes connID from username's connection set. The username
// stays online while other connections remain.
func (d *Directory) MarkOffline(username, connID string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	set, ok := d.conns[username]
	if !ok {
		return
	}

	delete(set, connID)
	if len(set) == 0 {
		delete(d.conns, username)
	}
}

// IsOnline reports whether username has at least one live connection.
func (d *Directory) IsOnline(username string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return len(d.conns[username]) > 0
}

// ConnectionsFor returns the connection IDs username is reachable on.
func (d *Directory) ConnectionsFor(username string) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	set := d.conns[username]
	out := make([]string, 0, len(set))
	for connID := range set {
		out = append(out, connID)
	}
	return out
}

// OnlineCount returns the number of distinct online usernames.
func (d *Directory) OnlineCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.conns)
}
