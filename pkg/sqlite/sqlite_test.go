package sqlite

import (
	"database/sql"
	"testing"
)

func TestDriverPragmas(t *testing.T) {
	db, err := sql.Open(DriverName, ":memory:")
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	var fk int
	if err := db.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
		t.Fatalf("Failed to read foreign_keys: %v", err)
	}
	if fk != 1 {
		t.Errorf("expected foreign_keys = 1, got %d", fk)
	}

	var busy int
	if err := db.QueryRow("PRAGMA busy_timeout").Scan(&busy); err != nil {
		t.Fatalf("Failed to read busy_timeout: %v", err)
	}
	if busy != 5000 {
		t.Errorf("expected busy_timeout = 5000, got %d", busy)
	}
}

func TestForeignKeysEnforced(t *testing.T) {
	db, err := sql.Open(DriverName, ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`CREATE TABLE parent (id TEXT PRIMARY KEY)`); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(`CREATE TABLE child (parent_id TEXT REFERENCES parent(id))`); err != nil {
		t.Fatal(err)
	}

	if _, err := db.Exec(`INSERT INTO child (parent_id) VALUES ('missing')`); err == nil {
		t.Error("expected foreign key violation, got nil")
	}
}
