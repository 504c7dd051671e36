package service_test

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/saadjs/fitfuel/internal/db"
	"github.com/saadjs/fitfuel/internal/model"
	"github.com/saadjs/fitfuel/internal/service"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fitfuel.db")
	sqldb, err := db.Open(path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = sqldb.Close() })
	if err := db.ApplyMigrations(sqldb); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return sqldb
}

func newTestProfile(t *testing.T, sqldb *sql.DB, weight *float64) model.Profile {
	t.Helper()
	p, err := service.CreateProfile(sqldb, service.CreateProfileInput{Name: "tester", WeightKg: weight})
	if err != nil {
		t.Fatalf("create profile: %v", err)
	}
	return p
}

func floatPtr(v float64) *float64 { return &v }
