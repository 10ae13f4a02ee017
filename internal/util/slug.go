package util

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
)

// Slugify lowercases a name and collapses everything non-alphanumeric into
// single dashes, e.g. "Green H2 Pilot" -> "green-h2-pilot".
func Slugify(name string) string {
	var b strings.Builder
	lastDash := true // suppress leading dash

	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}

	return strings.TrimSuffix(b.String(), "-")
}

// RandSuffix returns n random hex characters for id de-duplication.
func RandSuffix(n int) string {
	b := make([]byte, (n+1)/2)
	rand.Read(b)
	return hex.EncodeToString(b)[:n]
}
