package hashing

import (
	"encoding/hex"
	"testing"
)

func TestKnownDigests(t *testing.T) {
	if got := (SHA256{}).HashToken("abc"); got != "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad" {
		t.Fatalf("unexpected sha256 digest %s", got)
	}
	if got := (SHA3256{}).HashToken("abc"); got != "3a985da74fe225b2045c172d6bd390bd855f086e3e9d525b46bfe24511431532" {
		t.Fatalf("unexpected sha3-256 digest %s", got)
	}
}

func TestNewHasher(t *testing.T) {
	cases := map[string]string{
		"":          "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
		"SHA256":    "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
		" sha3-256": "3a985da74fe225b2045c172d6bd390bd855f086e3e9d525b46bfe24511431532",
	}
	for name, want := range cases {
		hasher, err := NewHasher(name)
		if err != nil {
			t.Fatalf("NewHasher(%q): %v", name, err)
		}
		if got := hasher.HashToken("abc"); got != want {
			t.Fatalf("NewHasher(%q) digest %s, want %s", name, got, want)
		}
	}
	if _, err := NewHasher("md5"); err == nil {
		t.Fatalf("expected unsupported algorithm error")
	}
}

func TestRandomTokens(t *testing.T) {
	seen := make(map[string]struct{}, 256)
	for i := 0; i < 256; i++ {
		raw, err := RandomTokens{}.NewToken()
		if err != nil {
			t.Fatalf("new token: %v", err)
		}
		decoded, err := hex.DecodeString(raw)
		if err != nil || len(decoded) != DefaultTokenBytes {
			t.Fatalf("expected %d random bytes in hex, got %q", DefaultTokenBytes, raw)
		}
		if _, exists := seen[raw]; exists {
			t.Fatalf("token repeated after %d draws", i)
		}
		seen[raw] = struct{}{}
	}

	raw, err := RandomTokens{Bytes: 32}.NewToken()
	if err != nil || len(raw) != 64 {
		t.Fatalf("expected 64 hex chars, got %q (%v)", raw, err)
	}
}
