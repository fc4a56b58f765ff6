package session

import (
	"testing"
	"time"
)

func TestIssueAndParse(t *testing.T) {
	tok, err := Issue("secret", "user-1", time.Hour)
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}

	userID, err := Parse("secret", tok)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if userID != "user-1" {
		t.Fatalf("Parse() = %q, want user-1", userID)
	}
}

func TestParse_WrongSecret(t *testing.T) {
	tok, err := Issue("secret", "user-1", time.Hour)
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}

	if _, err := Parse("other-secret", tok); err == nil {
		t.Fatal("Parse() should reject a token signed with a different secret")
	}
}

func TestParse_ExpiredToken(t *testing.T) {
	tok, err := Issue("secret", "user-1", -time.Minute)
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}

	if _, err := Parse("secret", tok); err == nil {
		t.Fatal("Parse() should reject an expired token")
	}
}

func TestParse_Garbage(t *testing.T) {
	if _, err := Parse("secret", "not.a.jwt"); err == nil {
		t.Fatal("Parse() should reject malformed input")
	}
}
