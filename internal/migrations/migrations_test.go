package migrations_test

import (
	"context"
	"testing"

	"github.com/racequest/raceapi/internal/database"
	"github.com/racequest/raceapi/internal/migrations"
)

func TestMigrations(t *testing.T) {
	db, err := database.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	defer db.Close()

	if err := migrations.Run(db); err != nil {
		t.Fatalf("running migrations: %v", err)
	}

	var name string
	err = db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='table' AND name='teams'",
	).Scan(&name)
	if err != nil {
		t.Errorf("teams table not found: %v", err)
	}

	err = db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='index' AND name='idx_teams_owner'",
	).Scan(&name)
	if err != nil {
		t.Errorf("owner index not found: %v", err)
	}
}

func TestMigrationsIdempotent(t *testing.T) {
	db, err := database.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	defer db.Close()

	if err := migrations.Run(db); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := migrations.Run(db); err != nil {
		t.Fatalf("second run (should be no-op): %v", err)
	}
}
