package room

import (
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"hubble/internal/app/user"
	"hubble/internal/pkg/errs"
	"hubble/internal/pkg/logx"
)

// Directory owns every room and serializes all room state mutations.
type Directory struct {
	mu sync.RWMutex

	// rooms is keyed by normalized room name.
	rooms map[string]*Room

	logger zerolog.Logger

	// now is swappable for tests.
	now func() time.Time
}

// NewDirectory returns an empty room directory.
func NewDirectory() *Directory {
	return &Directory{
		rooms:  make(map[string]*Room),
		logger: logx.Logger().With().Str("component", "rooms").Logger(),
		now:    time.Now,
	}
}

// ensure returns the room for name, creating a bare record on first
// reference. Callers must hold d.mu.
func (d *Directory) ensure(name string) *Room {
	r, ok := d.rooms[name]
	if !ok {
		r = &Room{
			Name:      name,
			CreatedAt: d.now(),
			members:   make(map[string]struct{}),
			banned:    make(map[string]struct{}),
			Meta:      make(map[string]string),
		}
		d.rooms[name] = r
	}
	return r
}

// Create ensures a room named name exists and returns its summary. Creating
// an existing room updates its password and metadata rather than failing.
// The requester becomes owner only if the room has none yet. The activity
// score is bumped either way.
func (d *Directory) Create(name, requester, password string, meta map[string]string) (Summary, *errs.CustomError) {
	name = NormalizeName(name)
	if name == "" {
		return Summary{}, errs.New(errs.ErrEmptyRoomName)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	r := d.ensure(name)

	if r.Owner == "" {
		r.Owner = requester
	}
	if password != "" {
		r.Password = password
	}
	for k, v := range meta {
		r.Meta[k] = v
	}
	r.Score++

	d.logger.Info().
		Str("room", name).
		Str("owner", r.Owner).
		Int64("score", r.Score).
		Msg("Room ensured.")
	return r.summary(), nil
}

// Join adds connID to the room's member set after checking the room ban
// list, the lock, and the password. The room is created on first reference.
// When prevRoom names a different room, the member is moved out of it in the
// same critical section, keeping the one-room-per-session invariant: there
// is no instant at which the session is a member of both. The returned
// prevOnline is that room's member count after the move (-1 when no move
// happened).
func (d *Directory) Join(name, connID, username string, role user.Role, password, prevRoom string) (Summary, int, *errs.CustomError) {
	name = NormalizeName(name)
	if name == "" {
		return Summary{}, -1, errs.New(errs.ErrEmptyRoomName)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	r := d.ensure(name)

	if _, banned := r.banned[username]; banned {
		return Summary{}, -1, errs.New(errs.ErrBannedFromRoom)
	}

	if r.Locked && !role.Elevated() && r.Owner != username {
		return Summary{}, -1, errs.New(errs.ErrRoomLocked)
	}

	if r.Password != "" && password != r.Password {
		return Summary{}, -1, errs.New(errs.ErrWrongPassword)
	}

	prevOnline := -1
	if prevRoom != "" && prevRoom != name {
		if prev, ok := d.rooms[prevRoom]; ok {
			delete(prev.members, connID)
			prevOnline = len(prev.members)
		}
	}

	r.members[connID] = struct{}{}
	r.Score++

	d.logger.Info().
		Str("room", name).
		Str("username", username).
		Int("online", len(r.members)).
		Msg("Member joined room.")
	return r.summary(), prevOnline, nil
}

// Leave removes connID from the named room's member set. It returns the
// remaining online count and whether the member was actually present.
func (d *Directory) Leave(name, connID string) (int, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	r, ok := d.rooms[name]
	if !ok {
		return 0, false
	}

	if _, present := r.members[connID]; !present {
		return len(r.members), false
	}

	delete(r.members, connID)
	return len(r.members), true
}

// Delete removes the room after authorization, returning the members that
// must be evicted by the caller. Only the room owner or an elevated role may
// delete.
func (d *Directory) Delete(name, requester string, role user.Role) ([]string, *errs.CustomError) {
	name = NormalizeName(name)

	d.mu.Lock()
	defer d.mu.Unlock()

	r, ok := d.rooms[name]
	if !ok {
		return nil, errs.New(errs.ErrRoomNotFound)
	}

	if r.Owner != requester && !role.CanAdminRoom() {
		return nil, errs.New(errs.ErrNotRoomOwner)
	}

	evicted := make([]string, 0, len(r.members))
	for connID := range r.members {
		evicted = append(evicted, connID)
	}

	delete(d.rooms, name)

	d.logger.Info().
		Str("room", name).
		Str("requester", requester).
		Int("evicted", len(evicted)).
		Msg("Room deleted.")
	return evicted, nil
}

// adminCheck resolves the room and verifies requester may administer it.
// Callers must hold d.mu.
func (d *Directory) adminCheck(name, requester string, role user.Role) (*Room, *errs.CustomError) {
	r, ok := d.rooms[name]
	if !ok {
		return nil, errs.New(errs.ErrRoomNotFound)
	}
	if r.Owner != requester && !role.CanAdminRoom() {
		return nil, errs.New(errs.ErrNotRoomOwner)
	}
	return r, nil
}

// Lock sets or clears the room's locked flag.
func (d *Directory) Lock(name, requester string, role user.Role, lock bool) (Summary, *errs.CustomError) {
	d.mu.Lock()
	defer d.mu.Unlock()

	r, customErr := d.adminCheck(NormalizeName(name), requester, role)
	if customErr != nil {
		return Summary{}, customErr
	}

	r.Locked = lock
	return r.summary(), nil
}

// SetPassword sets the room's password, or clears it when password is empty.
func (d *Directory) SetPassword(name, requester string, role user.Role, password string) (Summary, *errs.CustomError) {
	d.mu.Lock()
	defer d.mu.Unlock()

	r, customErr := d.adminCheck(NormalizeName(name), requester, role)
	if customErr != nil {
		return Summary{}, customErr
	}

	r.Password = password
	return r.summary(), nil
}

// SetOwner transfers room ownership to newOwner.
func (d *Directory) SetOwner(name, requester string, role user.Role, newOwner string) (Summary, *errs.CustomError) {
	d.mu.Lock()
	defer d.mu.Unlock()

	r, customErr := d.adminCheck(NormalizeName(name), requester, role)
	if customErr != nil {
		return Summary{}, customErr
	}

	r.Owner = newOwner
	return r.summary(), nil
}

// SetBanned adds or removes username on the room's ban list.
func (d *Directory) SetBanned(name, requester string, role user.Role, username string, banned bool) (Summary, *errs.CustomError) {
	d.mu.Lock()
	defer d.mu.Unlock()

	r, customErr := d.adminCheck(NormalizeName(name), requester, role)
	if customErr != nil {
		return Summary{}, customErr
	}

	if banned {
		r.banned[username] = struct{}{}
	} else {
		delete(r.banned, username)
	}
	return r.summary(), nil
}

// BumpScore increments the room's activity score, typically once per posted
// message. Scores never decrease.
func (d *Directory) BumpScore(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if r, ok := d.rooms[name]; ok {
		r.Score++
	}
}

// List returns summaries of every room sorted by descending score, ties
// broken by ascending name. The ordering is a client-visible contract; the
// trending view depends on it.
func (d *Directory) List() []Summary {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]Summary, 0, len(d.rooms))
	for _, r := range d.rooms {
		out = append(out, r.summary())
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Info returns the named room's summary.
func (d *Directory) Info(name string) (Summary, *errs.CustomError) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	r, ok := d.rooms[NormalizeName(name)]
	if !ok {
		return Summary{}, errs.New(errs.ErrRoomNotFound)
	}
	return r.summary(), nil
}

// Members returns a snapshot of the room's member connection IDs, taken
// under the directory lock so fan-out observes the membership as it existed
// when the triggering event was accepted.
func (d *Directory) Members(name string) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	r, ok := d.rooms[name]
	if !ok {
		return nil
	}

	out := make([]string, 0, len(r.members))
	for connID := range r.members {
		out = append(out, connID)
	}
	return out
}

// Online returns the room's current member count.
func (d *Directory) Online(name string) int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if r, ok := d.rooms[name]; ok {
		return len(r.members)
	}
	return 0
}

// Export returns the persistence record for one room.
func (d *Directory) Export(name string) (Record, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	r, ok := d.rooms[name]
	if !ok {
		return Record{}, false
	}
	return r.record(), true
}

// Restore loads rooms from persistence records at startup. Member sets start
// empty; existing rooms are left untouched.
func (d *Directory) Restore(records []Record) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, rec := range records {
		if _, exists := d.rooms[rec.Name]; exists {
			continue
		}

		r := &Room{
			Name:      rec.Name,
			Owner:     rec.Owner,
			CreatedAt: rec.CreatedAt,
			Locked:    rec.Locked,
			Password:  rec.Password,
			members:   make(map[string]struct{}),
			banned:    make(map[string]struct{}),
			Score:     rec.Score,
			Meta:      make(map[string]string, len(rec.Meta)),
		}
		for k, v := range rec.Meta {
			r.Meta[k] = v
		}
		for _, name := range rec.Banned {
			r.banned[name] = struct{}{}
		}
		d.rooms[rec.Name] = r
	}

	d.logger.Info().Int("rooms", len(records)).Msg("Rooms restored from store.")
}
