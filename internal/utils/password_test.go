package utils

import "testing"

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("hunter2", 4)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "hunter2" {
		t.Fatal("hash must not equal the plain password")
	}
	if !VerifyPassword(hash, "hunter2") {
		t.Fatal("correct password rejected")
	}
	if VerifyPassword(hash, "hunter3") {
		t.Fatal("wrong password accepted")
	}
}

func TestHashPasswordClampsCost(t *testing.T) {
	// A zero/negative cost must still yield a real, verifiable hash.
	hash, err := HashPassword("hunter2", 0)
	if err != nil {
		t.Fatalf("HashPassword with cost 0: %v", err)
	}
	if !VerifyPassword(hash, "hunter2") {
		t.Fatal("clamped-cost hash does not verify")
	}
}

func TestRefreshTokenHashing(t *testing.T) {
	tok, err := NewRefreshToken(7)
	if err != nil {
		t.Fatalf("NewRefreshToken: %v", err)
	}
	if len(tok.Raw) != 96 {
		t.Fatalf("raw length = %d, want 96 hex chars", len(tok.Raw))
	}
	h1 := HashRefreshRaw(tok.Raw)
	h2 := HashRefreshRaw(tok.Raw)
	if h1 != h2 {
		t.Fatal("hashing must be deterministic")
	}
	other, err := NewRefreshToken(7)
	if err != nil {
		t.Fatalf("NewRefreshToken: %v", err)
	}
	if HashRefreshRaw(other.Raw) == h1 {
		t.Fatal("distinct tokens must not collide")
	}
}
