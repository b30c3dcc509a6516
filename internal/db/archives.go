package db

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"time"
)

// NullTime is a custom type that handles both string and time.Time from SQLite
type NullTime struct {
	Time  time.Time
	Valid bool
}

// Scan implements sql.Scanner for NullTime
func (nt *NullTime) Scan(value interface{}) error {
	if value == nil {
		nt.Time, nt.Valid = time.Time{}, false
		return nil
	}

	switch v := value.(type) {
	case time.Time:
		nt.Time, nt.Valid = v, true
		return nil
	case string:
		// Try multiple time formats
		formats := []string{
			time.RFC3339,
			time.RFC3339Nano,
			"2006-01-02 15:04:05.999999999 -0700 -0700",
			"2006-01-02 15:04:05 -0700 -0700",
			"2006-01-02 15:04:05.999999999 -0700 MST",
			"2006-01-02 15:04:05 -0700 MST",
			"2006-01-02 15:04:05.999999999 -0700",
			"2006-01-02 15:04:05 -0700",
			"2006-01-02 15:04:05.999999999",
			"2006-01-02 15:04:05",
			"2006-01-02T15:04:05Z",
		}

		var t time.Time
		var err error
		for _, format := range formats {
			t, err = time.Parse(format, v)
			if err == nil {
				nt.Time, nt.Valid = t, true
				return nil
			}
		}

		return fmt.Errorf("failed to parse time string %q: %w", v, err)
	default:
		return fmt.Errorf("unsupported Scan type for NullTime: %T", value)
	}
}

// Value implements driver.Valuer for NullTime
func (nt NullTime) Value() (driver.Value, error) {
	if !nt.Valid {
		return nil, nil
	}
	return nt.Time, nil
}

// Archive represents an indexed MHTML archive (metadata only).
// Converted page content is parsed from the .mht file on-demand.
type Archive struct {
	ID          int64
	FilePath    string
	Title       string
	Location    string // Content-Location of the index document
	TextPreview string // First 10KB of visible text for FTS5 search only
	FileSize    int64
	IndexedAt   NullTime
	UpdatedAt   NullTime
}

// InsertArchive inserts a new archive into the database (metadata only)
func (db *DB) InsertArchive(archive *Archive) (int64, error) {
	result, err := db.Exec(`
		INSERT INTO archives (file_path, title, location, text_preview, file_size)
		VALUES (?, ?, ?, ?, ?)
	`,
		archive.FilePath, archive.Title, archive.Location, archive.TextPreview, archive.FileSize,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert archive: %w", err)
	}

	return result.LastInsertId()
}

// ArchiveExists checks if an archive with the given file path already exists
func (db *DB) ArchiveExists(filePath string) (bool, error) {
	var exists bool
	err := db.QueryRow("SELECT EXISTS(SELECT 1 FROM archives WHERE file_path = ?)", filePath).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check archive existence: %w", err)
	}
	return exists, nil
}

// GetArchiveByID retrieves an archive by its ID
func (db *DB) GetArchiveByID(id int64) (*Archive, error) {
	archive := &Archive{}
	err := db.QueryRow(`
		SELECT id, file_path, title, location, text_preview, file_size,
		       indexed_at, updated_at
		FROM archives WHERE id = ?
	`, id).Scan(
		&archive.ID, &archive.FilePath, &archive.Title, &archive.Location,
		&archive.TextPreview, &archive.FileSize,
		&archive.IndexedAt, &archive.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get archive: %w", err)
	}
	return archive, nil
}

// GetArchiveByPath retrieves an archive by its stored file path
func (db *DB) GetArchiveByPath(filePath string) (*Archive, error) {
	archive := &Archive{}
	err := db.QueryRow(`
		SELECT id, file_path, title, location, text_preview, file_size,
		       indexed_at, updated_at
		FROM archives WHERE file_path = ?
	`, filePath).Scan(
		&archive.ID, &archive.FilePath, &archive.Title, &archive.Location,
		&archive.TextPreview, &archive.FileSize,
		&archive.IndexedAt, &archive.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get archive: %w", err)
	}
	return archive, nil
}

// ListArchives retrieves the most recently indexed archives with pagination
func (db *DB) ListArchives(limit, offset int) ([]*Archive, error) {
	rows, err := db.Query(`
		SELECT id, file_path, title, location, text_preview, file_size,
		       indexed_at, updated_at
		FROM archives
		ORDER BY indexed_at DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list archives: %w", err)
	}
	defer rows.Close()

	var archives []*Archive
	for rows.Next() {
		archive := &Archive{}
		err := rows.Scan(
			&archive.ID, &archive.FilePath, &archive.Title, &archive.Location,
			&archive.TextPreview, &archive.FileSize,
			&archive.IndexedAt, &archive.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan archive: %w", err)
		}
		archives = append(archives, archive)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating archives: %w", err)
	}

	return archives, nil
}

// CountArchives returns the total number of indexed archives
func (db *DB) CountArchives() (int, error) {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM archives").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count archives: %w", err)
	}
	return count, nil
}

// DeleteArchive removes an archive record by ID
func (db *DB) DeleteArchive(id int64) error {
	_, err := db.Exec("DELETE FROM archives WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete archive: %w", err)
	}
	return nil
}
