package pkg

import (
	"crypto/rand"
	"strings"
)

// codeAlphabet omits 0/O/1/I so codes survive handwriting and bad
// camera angles. Codes are case-insensitive; the canonical form is
// upper case.
const codeAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"

const ClaimCodeLength = 8

// GenerateClaimCode returns a random claim code. Uniqueness is
// enforced by the database index; the allocation layer regenerates
// with bounded attempts when an insert collides.
func GenerateClaimCode() (string, error) {
	buf := make([]byte, ClaimCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf), nil
}

// NormalizeClaimCode maps user input (typed or scanned) to the
// canonical code form used for lookup.
func NormalizeClaimCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
