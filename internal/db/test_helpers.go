package db

import (
	"fmt"
	"testing"
)

// SetupTestDB creates an in-memory SQLite database for testing
func SetupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	return db
}

// CleanupTestDB closes the test database
func CleanupTestDB(t *testing.T, db *DB) {
	t.Helper()

	if err := db.Close(); err != nil {
		t.Errorf("Failed to close test database: %v", err)
	}
}

// CreateTestArchive creates a test archive record with default values
func CreateTestArchive(title, preview string) *Archive {
	return &Archive{
		FilePath:    fmt.Sprintf("pages/%s.mht", title),
		Title:       title,
		Location:    fmt.Sprintf("http://example.com/%s.html", title),
		TextPreview: preview,
		FileSize:    int64(len(preview)),
	}
}

// InsertTestArchives inserts multiple test archives and returns them
func InsertTestArchives(t *testing.T, db *DB, archives []*Archive) []*Archive {
	t.Helper()

	for i, archive := range archives {
		id, err := db.InsertArchive(archive)
		if err != nil {
			t.Fatalf("Failed to insert test archive %d: %v", i, err)
		}
		archives[i].ID = id
	}

	return archives
}
