package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"path"
	"strconv"

	"github.com/felo/mht-viewer/internal/db"
	"github.com/felo/mht-viewer/internal/mhtml"
	"github.com/go-chi/chi/v5"
)

// ViewArchive serves an archive as a single self-contained HTML page.
// Query parameters: iframes=1 converts nested frames, sanitize=1 runs the
// output through the HTML sanitizer, charset overrides the quoted-printable
// text decoder (e.g. charset=gbk).
func (h *Handlers) ViewArchive(w http.ResponseWriter, r *http.Request) {
	archive, ok := h.lookupArchive(w, r)
	if !ok {
		return
	}

	raw, err := os.ReadFile(h.db.ResolveFilePath(archive.FilePath))
	if err != nil {
		log.Printf("Error reading archive file %s: %v", archive.FilePath, err)
		http.Error(w, "Archive file not found on disk", http.StatusNotFound)
		return
	}

	opts := mhtml.Options{
		ConvertIframes: h.cfg.ConvertIframes,
		Charset:        h.cfg.Charset,
	}
	query := r.URL.Query()
	if query.Get("iframes") == "1" {
		opts.ConvertIframes = true
	}
	if charset := query.Get("charset"); charset != "" {
		opts.Charset = charset
	}

	rendered, err := mhtml.ConvertToHTML(string(raw), opts)
	if err != nil {
		var structural *mhtml.StructuralError
		if errors.As(err, &structural) {
			log.Printf("Invalid archive %s: %v", archive.FilePath, err)
			http.Error(w, "Invalid MHTML archive", http.StatusUnprocessableEntity)
			return
		}
		log.Printf("Error converting archive %s: %v", archive.FilePath, err)
		http.Error(w, "Failed to convert archive", http.StatusInternalServerError)
		return
	}

	if query.Get("sanitize") == "1" {
		rendered = h.sanitizer.Sanitize(rendered)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	// Tree serialization omits the doctype; prefix it here.
	io.WriteString(w, "<!DOCTYPE html>\n")
	io.WriteString(w, rendered)
}

// DownloadArchive serves the original .mht file
func (h *Handlers) DownloadArchive(w http.ResponseWriter, r *http.Request) {
	archive, ok := h.lookupArchive(w, r)
	if !ok {
		return
	}

	filePath := h.db.ResolveFilePath(archive.FilePath)
	f, err := os.Open(filePath)
	if err != nil {
		log.Printf("Error opening archive file %s: %v", archive.FilePath, err)
		http.Error(w, "Archive file not found on disk", http.StatusNotFound)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "message/rfc822")
	w.Header().Set("Content-Disposition", `attachment; filename="`+path.Base(archive.FilePath)+`"`)
	if _, err := io.Copy(w, f); err != nil {
		log.Printf("Error sending archive %s: %v", archive.FilePath, err)
	}
}

// lookupArchive resolves the {id} route parameter to an archive record,
// writing the error response itself when that fails.
func (h *Handlers) lookupArchive(w http.ResponseWriter, r *http.Request) (*db.Archive, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		http.Error(w, "Invalid archive ID", http.StatusBadRequest)
		return nil, false
	}

	archive, err := h.db.GetArchiveByID(id)
	if err != nil {
		log.Printf("Error loading archive: %v", err)
		http.Error(w, "Failed to load archive", http.StatusInternalServerError)
		return nil, false
	}
	if archive == nil {
		http.Error(w, "Archive not found", http.StatusNotFound)
		return nil, false
	}
	return archive, true
}
