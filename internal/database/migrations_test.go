package database

import (
	"io/fs"
	"reflect"
	"strings"
	"testing"
	"testing/fstest"
)

func TestGetMigrationFiles(t *testing.T) {
	fsys := fstest.MapFS{
		"010_indexes.sql":   {Data: []byte("SELECT 1;")},
		"001_schema.sql":    {Data: []byte("SELECT 1;")},
		"002_seed.sql":      {Data: []byte("SELECT 1;")},
		"README.md":         {Data: []byte("notes")},
		"old/000_init.sql":  {Data: []byte("SELECT 1;")},
		"003_backfill.sql~": {Data: []byte("SELECT 1;")},
	}

	got, err := getMigrationFiles(fsys)
	if err != nil {
		t.Fatalf("getMigrationFiles() error = %v", err)
	}

	want := []string{"001_schema.sql", "002_seed.sql", "010_indexes.sql"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("getMigrationFiles() = %v, want %v", got, want)
	}
}

func TestPendingMigrations(t *testing.T) {
	files := []string{"001_schema.sql", "002_seed.sql", "003_more.sql"}

	tests := []struct {
		name    string
		applied map[string]bool
		want    []string
	}{
		{name: "fresh database", applied: map[string]bool{}, want: files},
		{name: "partially applied", applied: map[string]bool{"001_schema.sql": true}, want: []string{"002_seed.sql", "003_more.sql"}},
		{name: "up to date", applied: map[string]bool{"001_schema.sql": true, "002_seed.sql": true, "003_more.sql": true}, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pendingMigrations(files, tt.applied)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("pendingMigrations() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEmbeddedMigrations(t *testing.T) {
	fsys := Migrations()

	files, err := getMigrationFiles(fsys)
	if err != nil {
		t.Fatalf("getMigrationFiles() error = %v", err)
	}
	if len(files) < 2 || files[0] != "001_schema.sql" {
		t.Fatalf("embedded migrations = %v", files)
	}

	schema, err := fs.ReadFile(fsys, "001_schema.sql")
	if err != nil {
		t.Fatal(err)
	}
	for _, table := range []string{"restaurants", "menu_items", "customers", "orders", "order_items"} {
		if !strings.Contains(string(schema), "CREATE TABLE IF NOT EXISTS "+table+" (") {
			t.Errorf("schema does not create %s", table)
		}
	}
	if !strings.Contains(string(schema), "email       VARCHAR(255) NOT NULL UNIQUE") {
		t.Error("customers.email is not unique")
	}
}
