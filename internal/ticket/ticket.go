// Package ticket generates the credentials attached to a registration:
// the high-entropy secret token presented at the door and the short
// human-readable display code.
package ticket

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// codeCharset is base36 uppercase, matching the EVT-XXXXXX display format.
const codeCharset = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// codeLength is the number of random characters after the EVT- prefix.
const codeLength = 6

// tokenBytes is the entropy of the door token (256 bits).
const tokenBytes = 32

// NewToken returns a hex-encoded 256-bit random secret. It is the
// capacity-bearing credential encoded into the QR payload, so it must be
// unguessable; uniqueness is enforced by the database and handled by the
// caller via regeneration on collision.
func NewToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// NewCode returns a display code in the form EVT-XXXXXX where X is an
// uppercase base36 character.
func NewCode() (string, error) {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	for i := range buf {
		buf[i] = codeCharset[int(buf[i])%len(codeCharset)]
	}
	return "EVT-" + string(buf), nil
}
