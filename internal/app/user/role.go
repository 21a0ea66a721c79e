/*
Package user defines participant identity: the display representation sent to
clients and the ordered permission tiers that gate moderation and room
administration.
*/
package user

import "encoding/json"

// Role is an ordered permission tier: Guest < Member < Moderator < Owner.
// Comparisons between tiers replace ad hoc role string checks.
type Role int

const (
	RoleGuest Role = iota
	RoleMember
	RoleModerator
	RoleOwner
)

// ParseRole maps a role string to its tier. "admin" is accepted as a legacy
// spelling of moderator; anything unrecognized degrades to guest.
func ParseRole(s string) Role {
	switch s {
	case "member":
		return RoleMember
	case "moderator", "admin":
		return RoleModerator
	case "owner":
		return RoleOwner
	default:
		return RoleGuest
	}
}

// String returns the wire spelling of the role.
func (r Role) String() string {
	switch r {
	case RoleMember:
		return "member"
	case RoleModerator:
		return "moderator"
	case RoleOwner:
		return "owner"
	default:
		return "guest"
	}
}

// CanModerate reports whether the role may mute, kick, and edit or delete
// other users' messages.
func (r Role) CanModerate() bool {
	return r >= RoleModerator
}

// CanAdminRoom reports whether the role may administer rooms it does not own
// (delete, lock, set password, transfer ownership).
func (r Role) CanAdminRoom() bool {
	return r >= RoleModerator
}

// CanBan reports whether the role may ban users. Banning is reserved for the
// top tier, unlike muting which any moderator may do.
func (r Role) CanBan() bool {
	return r == RoleOwner
}

// Elevated reports whether the role bypasses room locks and rate limits.
func (r Role) Elevated() bool {
	return r >= RoleModerator
}

// MarshalJSON serializes the role as its wire spelling.
func (r Role) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// UnmarshalJSON parses the wire spelling, degrading unknown values to guest.
func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*r = ParseRole(s)
	return nil
}
