package db

import (
	"fmt"
	"strings"
)

// ArchiveSearchResult represents a search result with snippet
type ArchiveSearchResult struct {
	Archive
	Snippet string
}

// SearchArchives performs a full-text search on archives using FTS5
func (db *DB) SearchArchives(query string, limit int) ([]*ArchiveSearchResult, error) {
	if query == "" {
		// If no query, just return recent archives
		archives, err := db.ListArchives(limit, 0)
		if err != nil {
			return nil, err
		}

		results := make([]*ArchiveSearchResult, len(archives))
		for i, archive := range archives {
			results[i] = &ArchiveSearchResult{
				Archive: *archive,
				Snippet: truncateText(archive.TextPreview, 200),
			}
		}
		return results, nil
	}

	// Build FTS5 MATCH query with fuzzy matching:
	// "cat pictures" -> "cat* pictures*"
	terms := strings.Fields(query)
	fuzzyTerms := make([]string, len(terms))
	for i, term := range terms {
		// Escape special FTS5 characters
		term = strings.ReplaceAll(term, `"`, `""`)
		fuzzyTerms[i] = `"` + term + `"*`
	}
	fuzzyQuery := strings.Join(fuzzyTerms, " ")

	rows, err := db.Query(`
		SELECT
			a.id, a.file_path, a.title, a.location, a.text_preview, a.file_size,
			a.indexed_at, a.updated_at,
			snippet(archives_fts, 3, '<mark>', '</mark>', '...', 32) as snippet
		FROM archives a
		JOIN archives_fts ON a.id = archives_fts.rowid
		WHERE archives_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, fuzzyQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search archives: %w", err)
	}
	defer rows.Close()

	var results []*ArchiveSearchResult
	for rows.Next() {
		result := &ArchiveSearchResult{}
		err := rows.Scan(
			&result.ID, &result.FilePath, &result.Title, &result.Location,
			&result.TextPreview, &result.FileSize,
			&result.IndexedAt, &result.UpdatedAt,
			&result.Snippet,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan search result: %w", err)
		}
		results = append(results, result)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating search results: %w", err)
	}

	return results, nil
}

// truncateText truncates text to maxLen characters
func truncateText(text string, maxLen int) string {
	if len(text) <= maxLen {
		return text
	}
	return text[:maxLen] + "..."
}
