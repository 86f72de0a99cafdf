// Package token generates the random identifiers handed out to people:
// viewer session keys, share slugs, and project keys. Everything here is
// backed by crypto/rand; nothing is derived from entity ids.
package token

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
)

const (
	slugChars = "abcdefghijklmnopqrstuvwxyz0123456789"
	keyChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// New returns a URL-safe random token with byteLen bytes of entropy.
// Session keys use 24 bytes (192 bits).
func New(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating token: %w", err)
	}
	return strings.TrimRight(base64.URLEncoding.EncodeToString(b), "="), nil
}

// Slug returns a lowercase alphanumeric slug of length n, suitable for
// viewer-facing share links.
func Slug(n int) (string, error) {
	return fromCharset(slugChars, n)
}

// Key returns an uppercase alphanumeric key of length n, used for
// project keys printed on physical material.
func Key(n int) (string, error) {
	return fromCharset(keyChars, n)
}

func fromCharset(charset string, n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating token: %w", err)
	}
	out := make([]byte, n)
	for i, v := range b {
		out[i] = charset[int(v)%len(charset)]
	}
	return string(out), nil
}
