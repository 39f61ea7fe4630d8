// Package apikey issues the opaque credentials handed out for purchased seats.
package apikey

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

const (
	Prefix     = "bbz_"
	randomSize = 32
	hexLength  = randomSize * 2
)

// Generate returns Prefix followed by 64 hex characters of crypto/rand output.
func Generate() (string, error) {
	buf := make([]byte, randomSize)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return Prefix + hex.EncodeToString(buf), nil
}

// Validate checks the shape of key only. Whether it was issued or revoked is
// for the caller to look up.
func Validate(key string) bool {
	suffix, ok := strings.CutPrefix(key, Prefix)
	if !ok || len(suffix) != hexLength {
		return false
	}
	for i := 0; i < len(suffix); i++ {
		c := suffix[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
