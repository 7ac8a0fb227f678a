// Package accesscode implements the creator access-code credential: the
// opaque code fans present in place of a password or OAuth token, plus its
// generation at creator-signup time.
package accesscode

import (
	"encoding/hex"
	"errors"
	"strings"

	"github.com/google/uuid"
)

const (
	prefixLen = 4
	suffixLen = 4
)

// ErrUnauthenticated is returned when no code was presented or the
// presented code matches no creator profile.
var ErrUnauthenticated = errors.New("access code missing or invalid")

// Generate derives a new unique access code from the creator's display
// name: a 4-character name prefix plus a 4-character random suffix, e.g.
// "JOHN9ABF". The exists callback is consulted against the unique index;
// on a collision a fresh suffix is drawn. With ~1M suffixes per prefix the
// loop terminates after a handful of draws at worst.
func Generate(fullName string, exists func(code string) (bool, error)) (string, error) {
	prefix := namePrefix(fullName)
	for {
		code := prefix + randomSuffix()
		taken, err := exists(code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
}

// namePrefix uppercases the name, strips all whitespace and cuts or pads
// the result to exactly four characters. Truncation counts runes, not
// bytes, so multi-byte names never produce a code that is invalid UTF-8.
func namePrefix(fullName string) string {
	base := []rune(strings.ToUpper(strings.Join(strings.Fields(fullName), "")))
	if len(base) > prefixLen {
		return string(base[:prefixLen])
	}
	for len(base) < prefixLen {
		base = append(base, 'X')
	}
	return string(base)
}

func randomSuffix() string {
	id := uuid.New()
	return strings.ToUpper(hex.EncodeToString(id[:suffixLen/2]))
}
