/*
Package randx generates the random identifiers used across the coordinator:
UUID message IDs and Base62 guest name suffixes.
*/
package randx

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

const (
	// base62Chars is the character set used for random suffixes (0-9, A-Z, a-z).
	base62Chars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// guestSuffixLength is the number of random characters appended to guest names.
	guestSuffixLength = 6
)

// MessageID returns a UUID v4 string used as the unique identifier for room
// messages and direct messages.
func MessageID() string {
	return uuid.New().String()
}

// GuestName returns a random display name of the form "guest_XXXXXX", built
// from crypto/rand so collisions across restarts stay unlikely.
func GuestName() (string, error) {
	suffix := make([]byte, guestSuffixLength)

	for i := 0; i < guestSuffixLength; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(base62Chars))))
		if err != nil {
			return "", fmt.Errorf("failed to generate random guest suffix: %v", err)
		}
		suffix[i] = base62Chars[n.Int64()]
	}

	return "guest_" + string(suffix), nil
}
