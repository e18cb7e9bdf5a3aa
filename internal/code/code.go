// Package code generates, normalizes and hashes the human-shareable codes
// used for trip invites and placeholder claims.
package code

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/pkordes/trip-planner/backend/internal/domain"
)

// Alphabet is the 32-symbol set codes are drawn from.
// I, L, O and U are left out because they are easily misread.
const Alphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// DefaultLength is the number of symbols in a generated code.
const DefaultLength = 8

// Normalize returns raw in canonical form: trimmed, uppercased, with spaces and
// hyphens removed. It must be applied to every code before hashing.
func Normalize(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	return strings.Map(func(r rune) rune {
		if r == '-' || r == ' ' || r == '\t' {
			return -1
		}
		return r
	}, s)
}

// Hash returns the lowercase hex SHA-256 digest of text.
// Only digests are persisted; plaintext codes are shown to the issuer once.
func Hash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Generate returns a code of exactly length symbols from Alphabet using
// crypto/rand.
func Generate(length int) (string, error) {
	return generate(rand.Reader, length)
}

// generate packs random bytes 5 bits at a time into symbols. When the packed
// bytes cannot fill the last symbols, each of those is drawn from a fresh
// random byte instead of padding with zero bits.
func generate(src io.Reader, length int) (string, error) {
	if length < 1 {
		return "", fmt.Errorf("%w: code length must be at least 1", domain.ErrValidation)
	}

	buf := make([]byte, length*5/8)
	if _, err := io.ReadFull(src, buf); err != nil {
		return "", fmt.Errorf("code.Generate: read random: %w", err)
	}

	var (
		out   strings.Builder
		acc   uint
		nbits uint
	)
	out.Grow(length)
	for _, b := range buf {
		acc = acc<<8 | uint(b)
		nbits += 8
		for nbits >= 5 && out.Len() < length {
			nbits -= 5
			out.WriteByte(Alphabet[(acc>>nbits)&31])
		}
		acc &= (1 << nbits) - 1
	}

	one := make([]byte, 1)
	for out.Len() < length {
		if _, err := io.ReadFull(src, one); err != nil {
			return "", fmt.Errorf("code.Generate: read random: %w", err)
		}
		// 256 is a multiple of 32, so the low 5 bits are uniform.
		out.WriteByte(Alphabet[one[0]&31])
	}
	return out.String(), nil
}

// Generator issues codes of a fixed length. Services hold a Generator so tests
// can substitute a deterministic source.
type Generator struct {
	Length int
	Source io.Reader // nil means crypto/rand
}

// New returns a code from g.
func (g Generator) New() (string, error) {
	length := g.Length
	if length == 0 {
		length = DefaultLength
	}
	src := g.Source
	if src == nil {
		src = rand.Reader
	}
	return generate(src, length)
}
