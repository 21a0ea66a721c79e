package user

// User is the client-facing representation of a chat participant, embedded in
// presence lists and system events.
type User struct {
	// Username is the display name bound to the participant's session.
	Username string `json:"username"`

	// Role is the participant's permission tier.
	Role Role `json:"role"`
}
