package services

import (
	"fmt"
	"strings"
)

// HashPasscode is a 32-bit rolling hash (h = h*31 + rune, wrapping) rendered
// as 8 hex digits. It only keeps casual readers of the database from seeing
// the passcode; it is trivially reversible by brute force and must not be
// treated as a password hash.
func HashPasscode(passcode string) string {
	var h uint32
	for _, r := range passcode {
		h = h*31 + uint32(r)
	}
	return fmt.Sprintf("%08x", h)
}

func passcodeMatches(storedHash, passcode string) bool {
	return storedHash != "" && HashPasscode(passcode) == strings.ToLower(storedHash)
}
