package auth

import (
	"testing"
	"time"
)

func testManager() *Manager {
	// Min bcrypt cost keeps the test fast.
	return NewManager("test-secret", time.Hour, 4)
}

func TestPasswordHashAndCheck(t *testing.T) {
	m := testManager()

	hash, err := m.HashPassword("s3cret!")
	if err != nil {
		t.Fatal(err)
	}
	if hash == "s3cret!" {
		t.Fatal("hash must not equal the password")
	}
	if !m.CheckPassword(hash, "s3cret!") {
		t.Error("correct password rejected")
	}
	if m.CheckPassword(hash, "wrong") {
		t.Error("wrong password accepted")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	m := testManager()

	token, err := m.IssueToken("u1", time.Now())
	if err != nil {
		t.Fatal(err)
	}
	userID, err := m.VerifyToken(token)
	if err != nil {
		t.Fatal(err)
	}
	if userID != "u1" {
		t.Errorf("userID = %q, want u1", userID)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	m := testManager()

	token, err := m.IssueToken("u1", time.Now().Add(-2*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.VerifyToken(token); err != ErrInvalidToken {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
}

func TestTokenFromOtherSecretRejected(t *testing.T) {
	token, err := NewManager("other-secret", time.Hour, 4).IssueToken("u1", time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := testManager().VerifyToken(token); err != ErrInvalidToken {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
}

func TestGarbageTokenRejected(t *testing.T) {
	m := testManager()
	for _, tok := range []string{"", "not.a.jwt", "eyJhbGciOiJub25lIn0.e30."} {
		if _, err := m.VerifyToken(tok); err != ErrInvalidToken {
			t.Errorf("VerifyToken(%q) err = %v, want ErrInvalidToken", tok, err)
		}
	}
}
