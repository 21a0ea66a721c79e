package jwt

import "github.com/golang-jwt/jwt"

// Payload defines the claims carried by a coordinator identity token.
// A token binds a username and role tier to whichever connection presents it.
type Payload struct {
	// StandardClaims embeds the standard JWT fields (Exp, Iat, Iss) that
	// drive validity checks.
	jwt.StandardClaims `json:"standard_claims"`

	// Username is the display name the holder identifies as.
	Username string `json:"username"`

	// Role is the permission tier granted to the holder ("guest", "member",
	// "moderator", or "owner").
	Role string `json:"role"`
}
