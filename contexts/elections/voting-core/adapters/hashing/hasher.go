// Package hashing provides the one-way token hash and the raw credential
// generator used at issuance.
package hashing

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"ballotbox/contexts/elections/voting-core/ports"

	"golang.org/x/crypto/sha3"
)

const (
	AlgorithmSHA256  = "sha256"
	AlgorithmSHA3256 = "sha3-256"

	// DefaultTokenBytes yields a 48 character hex credential.
	DefaultTokenBytes = 24
)

// SHA256 is unsalted; credentials are 192-bit random values, and a salt
// would break lookup by hash.
type SHA256 struct{}

func (SHA256) HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

type SHA3256 struct{}

func (SHA3256) HashToken(raw string) string {
	sum := sha3.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// NewHasher resolves a configured algorithm name. Changing it after tokens
// were issued makes those tokens unverifiable.
func NewHasher(algorithm string) (ports.TokenHasher, error) {
	switch strings.ToLower(strings.TrimSpace(algorithm)) {
	case "", AlgorithmSHA256:
		return SHA256{}, nil
	case AlgorithmSHA3256:
		return SHA3256{}, nil
	default:
		return nil, fmt.Errorf("unsupported token hash algorithm %q", algorithm)
	}
}

type RandomTokens struct {
	Bytes int
}

func (g RandomTokens) NewToken() (string, error) {
	size := g.Bytes
	if size <= 0 {
		size = DefaultTokenBytes
	}
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random token bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

var (
	_ ports.TokenHasher    = SHA256{}
	_ ports.TokenHasher    = SHA3256{}
	_ ports.TokenGenerator = RandomTokens{}
)
