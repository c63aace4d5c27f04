// Package accesscode issues and redeems the opaque codes that stand in for an
// asker's identity. A code is the only key to a question and its reply.
package accesscode

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"unicode"
)

const (
	// Alphabet omits the visually ambiguous 0/O and 1/I/L.
	Alphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

	// Length is the number of symbols in a code, separators excluded.
	Length = 12

	GroupSize = 4
	Separator = '-'

	// FormattedLength is the length of the canonical XXXX-XXXX-XXXX form.
	FormattedLength = Length + Length/GroupSize - 1
)

var alphabetSize = big.NewInt(int64(len(Alphabet)))

// Generate returns Length symbols drawn uniformly from Alphabet using crypto/rand
func Generate() (string, error) {
	buf := make([]byte, Length)
	for i := range buf {
		idx, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", fmt.Errorf("failed to generate access code: %w", err)
		}
		buf[i] = Alphabet[idx.Int64()]
	}
	return string(buf), nil
}

func inAlphabet(r rune) bool {
	return r < unicode.MaxASCII && strings.IndexByte(Alphabet, byte(r)) >= 0
}

// Normalize uppercases raw and drops every character outside Alphabet
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range strings.ToUpper(raw) {
		if inAlphabet(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Validate reports whether raw is a well-formed code in any casing or grouping.
// Separators and whitespace are ignored; any other rune outside Alphabet
// (0, O, punctuation, control characters) rejects the input.
func Validate(raw string) bool {
	n := 0
	for _, r := range strings.ToUpper(raw) {
		switch {
		case inAlphabet(r):
			n++
		case r == Separator || unicode.IsSpace(r):
		default:
			return false
		}
	}
	return n == Length
}

// Format renders a code as XXXX-XXXX-XXXX. Input that does not normalize to
// exactly Length symbols is returned unchanged.
func Format(s string) string {
	n := Normalize(s)
	if len(n) != Length {
		return s
	}

	var b strings.Builder
	b.Grow(FormattedLength)
	for i := 0; i < Length; i += GroupSize {
		if i > 0 {
			b.WriteByte(Separator)
		}
		b.WriteString(n[i : i+GroupSize])
	}
	return b.String()
}

// Canonical validates raw and returns its storage form
func Canonical(raw string) (string, error) {
	if !Validate(raw) {
		return "", ErrMalformedCode
	}
	return Format(raw), nil
}
