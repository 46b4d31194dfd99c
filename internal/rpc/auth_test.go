package rpc

import (
	"strings"
	"testing"
)

func TestHashToken_RoundTrip(t *testing.T) {
	hash, err := HashToken("correct horse battery staple")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$") {
		t.Fatalf("unexpected hash format: %s", hash)
	}

	ok, err := VerifyToken("correct horse battery staple", hash)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !ok {
		t.Fatal("correct token rejected")
	}

	ok, err = VerifyToken("wrong", hash)
	if err != nil {
		t.Fatalf("verify wrong: %v", err)
	}
	if ok {
		t.Fatal("wrong token accepted")
	}
}

func TestHashToken_SaltVaries(t *testing.T) {
	a, err := HashToken("token")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	b, err := HashToken("token")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if a == b {
		t.Fatal("two hashes of the same token should differ by salt")
	}
}

func TestVerifyToken_MalformedHash(t *testing.T) {
	cases := []string{
		"",
		"plaintext",
		"$argon2i$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=65536,t=1,p=4$!!!$aGFzaA",
		"$argon2id$v=19$bogus$c2FsdA$aGFzaA",
	}
	for _, encoded := range cases {
		if _, err := VerifyToken("token", encoded); err == nil {
			t.Errorf("expected error for %q", encoded)
		}
	}
}
