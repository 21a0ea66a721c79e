/*
Package room implements the room directory: room metadata, membership sets,
and room lifecycle (create, join, leave, delete, lock, password, ownership).

Rooms are identified by a normalized name. The directory owns all room state;
callers see only Summary snapshots and operate through directory methods.
*/
package room

import (
	"strings"
	"time"
)

// MaxNameLength caps normalized room names.
const MaxNameLength = 80

// nameStripper removes path-like characters from candidate room names.
var nameStripper = strings.NewReplacer("/", "", "\\", "", "?", "", "#", "")

// NormalizeName trims a candidate room name, strips path-like characters,
// and caps its length in runes. An unusable name normalizes to "".
func NormalizeName(name string) string {
	name = nameStripper.Replace(strings.TrimSpace(name))
	if runes := []rune(name); len(runes) > MaxNameLength {
		name = string(runes[:MaxNameLength])
	}
	return name
}

// Room is the directory's internal room record.
type Room struct {
	// Name is the normalized unique identifier.
	Name string

	// Owner is the owning username. Empty until the first creator claims it.
	Owner string

	// CreatedAt is the creation timestamp.
	CreatedAt time.Time

	// Locked blocks joins by anyone but the owner and elevated roles.
	Locked bool

	// Password gates joins when non-empty. Compared verbatim.
	Password string

	// members holds the connection IDs currently joined.
	members map[string]struct{}

	// banned holds usernames barred from joining this room.
	banned map[string]struct{}

	// Score is a monotonic activity counter bumped on join and message,
	// used only for trending sort.
	Score int64

	// Meta carries arbitrary room metadata.
	Meta map[string]string
}

// Summary is the client-facing snapshot of a room.
type Summary struct {
	Name        string            `json:"name"`
	Owner       string            `json:"owner,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	Locked      bool              `json:"locked"`
	HasPassword bool              `json:"hasPassword"`
	Online      int               `json:"online"`
	Score       int64             `json:"score"`
	Meta        map[string]string `json:"meta,omitempty"`
}

func (r *Room) summary() Summary {
	meta := make(map[string]string, len(r.Meta))
	for k, v := range r.Meta {
		meta[k] = v
	}

	return Summary{
		Name:        r.Name,
		Owner:       r.Owner,
		CreatedAt:   r.CreatedAt,
		Locked:      r.Locked,
		HasPassword: r.Password != "",
		Online:      len(r.members),
		Score:       r.Score,
		Meta:        meta,
	}
}

// Record is the persistence-facing form of a room, exchanged with the store.
type Record struct {
	Name      string
	Owner     string
	CreatedAt time.Time
	Locked    bool
	Password  string
	Score     int64
	Meta      map[string]string
	Banned    []string
}

func (r *Room) record() Record {
	banned := make([]string, 0, len(r.banned))
	for name := range r.banned {
		banned = append(banned, name)
	}

	meta := make(map[string]string, len(r.Meta))
	for k, v := range r.Meta {
		meta[k] = v
	}

	return Record{
		Name:      r.Name,
		Owner:     r.Owner,
		CreatedAt: r.CreatedAt,
		Locked:    r.Locked,
		Password:  r.Password,
		Score:     r.Score,
		Meta:      meta,
		Banned:    banned,
	}
}
