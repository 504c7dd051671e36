package session_test

import (
	"errors"
	"testing"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/saadjs/fitfuel/internal/session"
)

func TestKeyringTokenLifecycle(t *testing.T) {
	gokeyring.MockInit()
	store := session.NewKeyring("lifecycle")

	if _, err := store.Token(); !errors.Is(err, session.ErrNoToken) {
		t.Fatalf("expected ErrNoToken, got %v", err)
	}
	if err := store.SetToken("tok-1"); err != nil {
		t.Fatalf("set token: %v", err)
	}
	got, err := store.Token()
	if err != nil || got != "tok-1" {
		t.Fatalf("expected tok-1, got %q, %v", got, err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("clearing twice must be a no-op: %v", err)
	}
	if _, err := store.Token(); !errors.Is(err, session.ErrNoToken) {
		t.Fatalf("expected ErrNoToken after clear, got %v", err)
	}
}

func TestKeyringRejectsEmptyToken(t *testing.T) {
	gokeyring.MockInit()
	if err := session.NewKeyring("").SetToken("  "); err == nil {
		t.Fatalf("expected empty token error")
	}
}

func TestKeyringUnavailable(t *testing.T) {
	gokeyring.MockInitWithError(errors.New("dbus down"))
	t.Cleanup(gokeyring.MockInit)

	if session.Available() {
		t.Fatalf("expected keyring to be unavailable")
	}
	if _, err := session.NewKeyring("x").Token(); !errors.Is(err, session.ErrKeyringUnavailable) {
		t.Fatalf("expected ErrKeyringUnavailable, got %v", err)
	}
}
