package random

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Codes stay within the short-link slug alphabet: lowercase letters and
// digits only, so generated codes survive the resolver's lowercasing
// untouched.
const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// NewCode generates a random short code of the given length.
func NewCode(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("code length must be positive, got %d", length)
	}

	max := big.NewInt(int64(len(alphabet)))
	code := make([]byte, length)
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}
		code[i] = alphabet[n.Int64()]
	}

	return string(code), nil
}
