package service_test

import (
	"errors"
	"testing"

	"github.com/saadjs/fitfuel/internal/service"
)

func TestCreateUserRejectsDuplicateEmail(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)

	u, err := service.CreateUser(sqldb, " Coach@Example.com ", "hash", true)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if u.Email != "coach@example.com" || !u.IsAdmin {
		t.Fatalf("unexpected user: %+v", u)
	}
	if _, err := service.CreateUser(sqldb, "coach@example.com", "hash", false); !errors.Is(err, service.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
	if _, err := service.CreateUser(sqldb, "not-an-email", "hash", false); err == nil {
		t.Fatalf("expected invalid email error")
	}

	found, err := service.FindUserByEmail(sqldb, "COACH@example.com")
	if err != nil || found.ID != u.ID {
		t.Fatalf("find by email: %+v, %v", found, err)
	}
	if _, err := service.GetUser(sqldb, "missing"); !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
