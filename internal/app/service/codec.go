// Package service implements the shortener core: identifier generation,
// link allocation and resolution, session tokens, and the OIDC login flow.
package service

import (
	"crypto/rand"
	"io"
)

// shortIDAlphabet has exactly 64 symbols, so masking a random byte with 0x3f
// picks a symbol without modulo bias.
const shortIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_-"

// MinShortIDLength and MaxShortIDLength bound the identifier length a caller
// may request.
const (
	MinShortIDLength = 4
	MaxShortIDLength = 20
)

// ShortIDGenerator produces cryptographically random short identifiers.
// It carries no state between calls.
type ShortIDGenerator struct {
	random io.Reader
}

func NewShortIDGenerator() *ShortIDGenerator {
	return &ShortIDGenerator{
		random: rand.Reader,
	}
}

// Generate returns a random identifier of exactly length symbols. The caller
// validates the length; Generate does not clamp.
func (g *ShortIDGenerator) Generate(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := io.ReadFull(g.random, buf); err != nil {
		return "", err
	}

	for i, b := range buf {
		buf[i] = shortIDAlphabet[b&0x3f]
	}

	return string(buf), nil
}
