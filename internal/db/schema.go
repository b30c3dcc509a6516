package db

// Schema stores archive metadata plus a search index. Converted page content
// is never stored; archives are re-parsed from their .mht files on-demand.
const schema = `
-- Main archives table (metadata only)
CREATE TABLE IF NOT EXISTS archives (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    file_path TEXT UNIQUE NOT NULL,
    title TEXT,
    location TEXT,           -- Content-Location of the index document
    text_preview TEXT,       -- First 10KB of visible text for FTS5 search only
    file_size INTEGER,
    indexed_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Full-text search virtual table
CREATE VIRTUAL TABLE IF NOT EXISTS archives_fts USING fts5(
    title,
    location,
    file_path,
    text_preview,
    content='archives',
    content_rowid='id'
);

-- Triggers to keep FTS in sync
CREATE TRIGGER IF NOT EXISTS archives_ai AFTER INSERT ON archives BEGIN
    INSERT INTO archives_fts(rowid, title, location, file_path, text_preview)
    VALUES (new.id, new.title, new.location, new.file_path, new.text_preview);
END;

CREATE TRIGGER IF NOT EXISTS archives_ad AFTER DELETE ON archives BEGIN
    DELETE FROM archives_fts WHERE rowid = old.id;
END;

CREATE TRIGGER IF NOT EXISTS archives_au AFTER UPDATE ON archives BEGIN
    UPDATE archives_fts
    SET title = new.title,
        location = new.location,
        file_path = new.file_path,
        text_preview = new.text_preview
    WHERE rowid = new.id;
END;

-- Settings table (for storing archive folder path, preferences)
CREATE TABLE IF NOT EXISTS settings (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Indexes for performance
CREATE INDEX IF NOT EXISTS idx_archives_indexed_at ON archives(indexed_at DESC);
CREATE INDEX IF NOT EXISTS idx_archives_file_path ON archives(file_path);
CREATE INDEX IF NOT EXISTS idx_archives_title ON archives(title);
`
