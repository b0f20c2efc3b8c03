package utils

import (
	"crypto/rand"
	"math/big"
	"strings"
	"unicode"

	"github.com/CUknot/messenger_backend/models"
)

var codeSpace = big.NewInt(10)

// GenerateCode returns a random numeric code of models.CodeLength digits.
// Uniqueness is the caller's concern.
func GenerateCode() (string, error) {
	var b strings.Builder
	b.Grow(models.CodeLength)
	for i := 0; i < models.CodeLength; i++ {
		n, err := rand.Int(rand.Reader, codeSpace)
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + n.Int64()))
	}
	return b.String(), nil
}

// IsValidCode reports whether s looks like a user code.
func IsValidCode(s string) bool {
	if len(s) != models.CodeLength {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
