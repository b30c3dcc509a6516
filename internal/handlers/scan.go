package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/felo/mht-viewer/internal/indexer"
)

// Scan triggers a re-index of the archives directory and reports the
// outcome as JSON.
func (h *Handlers) Scan(w http.ResponseWriter, r *http.Request) {
	idx := indexer.NewIndexer(h.db, h.cfg.ArchivesPath, false)
	result, err := idx.IndexAll()
	if err != nil {
		log.Printf("Scan error: %v", err)
		http.Error(w, "Scan failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"total":   result.TotalFound,
		"new":     result.NewIndexed,
		"skipped": result.Skipped,
		"failed":  result.Failed,
	}); err != nil {
		log.Printf("Error encoding scan result: %v", err)
	}
}
