/*
Package session implements the session registry, the single source of truth
for which connection is identified as whom.

Every live connection owns exactly one Session. The registry hands out
snapshot copies; all mutation goes through registry methods so the map stays
consistent under concurrent connection churn.
*/
package session

import (
	"sync"

	"github.com/rs/zerolog"

	"hubble/internal/app/user"
	"hubble/internal/pkg/errs"
	"hubble/internal/pkg/logx"
)

// Session holds one live connection's identity and transient state.
type Session struct {
	// ConnID is the opaque transport connection identifier.
	ConnID string

	// Username is the display name bound at identify time. Empty until the
	// connection identifies.
	Username string

	// Role is the permission tier granted at identify time.
	Role user.Role

	// Room is the name of the session's current room, or "" when roomless.
	Room string
}

// Identified reports whether the session has bound a username.
func (s Session) Identified() bool {
	return s.Username != ""
}

// User returns the client-facing view of the session's identity.
func (s Session) User() user.User {
	return user.User{Username: s.Username, Role: s.Role}
}

// Registry maps connection IDs to their sessions.
type Registry struct {
	mu sync.RWMutex

	// sessions is keyed by connection ID.
	sessions map[string]*Session

	// nameCount tracks live sessions per username, consulted only when
	// strict mode forbids concurrent sessions sharing a name.
	nameCount map[string]int

	// strict rejects Identify for usernames that already have a session.
	strict bool

	logger zerolog.Logger
}

// NewRegistry returns an empty registry. When strict is true, a username may
// be bound to at most one live session at a time.
func NewRegistry(strict bool) *Registry {
	return &Registry{
		sessions:  make(map[string]*Session),
		nameCount: make(map[string]int),
		strict:    strict,
		logger:    logx.Logger().With().Str("component", "session").Logger(),
	}
}

// Register creates an anonymous session for connID. Calling it again for the
// same connection returns the existing session unchanged.
func (r *Registry) Register(connID string) Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[connID]; ok {
		return *s
	}

	s := &Session{ConnID: connID}
	r.sessions[connID] = s

	r.logger.Debug().Str("conn_id", connID).Msg("Session registered.")
	return *s
}

// Identify binds username and role to connID's session. Re-identifying
// rebinds, releasing the previous name. Under strict mode a name already held
// by another session fails with ErrDuplicateIdentity.
func (r *Registry) Identify(connID, username string, role user.Role) (Session, *errs.CustomError) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[connID]
	if !ok {
		return Session{}, errs.New(errs.ErrNotIdentified)
	}

	if r.strict && username != s.Username && r.nameCount[username] > 0 {
		r.logger.Warn().
			Str("conn_id", connID).
			Str("username", username).
			Msg("Identify rejected: username already connected (strict mode).")
		return Session{}, errs.New(errs.ErrDuplicateIdentity)
	}

	if s.Username != "" && s.Username != username {
		r.decName(s.Username)
	}
	if s.Username != username {
		r.nameCount[username]++
	}

	s.Username = username
	s.Role = role

	r.logger.Info().
		Str("conn_id", connID).
		Str("username", username).
		Str("role", role.String()).
		Msg("Session identified.")
	return *s, nil
}

// Lookup returns a snapshot of connID's session.
func (r *Registry) Lookup(connID string) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[connID]
	if !ok {
		return Session{}, false
	}
	return *s, true
}

// SetRoom records the session's current room ("" to clear). It reports
// whether the session exists.
func (r *Registry) SetRoom(connID, room string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[connID]
	if !ok {
		return false
	}
	s.Room = room
	return true
}

// Terminate removes connID's session and returns its final snapshot so the
// caller can cascade cleanup into presence and room state. A second call for
// the same connection is a no-op.
func (r *Registry) Terminate(connID string) (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[connID]
	if !ok {
		return Session{}, false
	}

	delete(r.sessions, connID)
	if s.Username != "" {
		r.decName(s.Username)
	}

	r.logger.Debug().Str("conn_id", connID).Str("username", s.Username).Msg("Session terminated.")
	return *s, true
}

// SessionsInRoom returns the count of sessions whose current room is name.
func (r *Registry) SessionsInRoom(name string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, s := range r.sessions {
		if s.Room == name {
			count++
		}
	}
	return count
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (r *Registry) decName(username string) {
	if r.nameCount[username] <= 1 {
		delete(r.nameCount, username)
		return
	}
	r.nameCount[username]--
}
