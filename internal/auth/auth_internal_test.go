package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestIssueAndParse(t *testing.T) {
	t.Parallel()
	iss, err := NewIssuer("0123456789abcdef", time.Hour)
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}
	tok, err := iss.Issue(Claims{UserID: "u1", Admin: true})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	got, err := iss.Parse(tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.UserID != "u1" || !got.Admin {
		t.Fatalf("unexpected claims: %+v", got)
	}

	other, _ := NewIssuer("fedcba9876543210", time.Hour)
	if _, err := other.Parse(tok); err == nil {
		t.Fatalf("expected signature failure with another secret")
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	t.Parallel()
	iss, _ := NewIssuer("0123456789abcdef", time.Minute)
	issued := time.Date(2026, 2, 20, 9, 0, 0, 0, time.UTC)
	iss.now = func() time.Time { return issued }
	tok, err := iss.Issue(Claims{UserID: "u1"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	iss.now = func() time.Time { return issued.Add(2 * time.Minute) }
	if _, err := iss.Parse(tok); !errors.Is(err, jwt.ErrTokenExpired) {
		t.Fatalf("expected expired token error, got %v", err)
	}
}

func TestNewIssuerRequiresSecret(t *testing.T) {
	t.Parallel()
	if _, err := NewIssuer("short", time.Hour); err == nil {
		t.Fatalf("expected short secret to be rejected")
	}
}

func TestPasswordHashing(t *testing.T) {
	t.Parallel()
	if _, err := HashPassword("short"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected short password rejected, got %v", err)
	}
	h, err := HashPassword("correct horse")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if err := CheckPassword(h, "correct horse"); err != nil {
		t.Fatalf("check: %v", err)
	}
	if err := CheckPassword(h, "wrong horse"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}
