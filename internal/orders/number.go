package orders

import (
	"crypto/rand"
	"fmt"
	"strings"
)

// numberAlphabet skips 0/O/1/I/L so numbers read cleanly over the phone.
const numberAlphabet = "23456789ABCDEFGHJKMNPQRSTUVWXYZ"

const numberSuffixLen = 8

// GenerateOrderNumber produces a customer-facing number like RT-7F3K9QZ2.
// Uniqueness is enforced by the database; callers retry on collision.
func GenerateOrderNumber(prefix string) (string, error) {
	buf := make([]byte, numberSuffixLen)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate order number: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(prefix)
	sb.WriteByte('-')
	for _, b := range buf {
		sb.WriteByte(numberAlphabet[int(b)%len(numberAlphabet)])
	}
	return sb.String(), nil
}
