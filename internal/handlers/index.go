package handlers

import (
	"log"
	"net/http"
)

// Index handles the home page
func (h *Handlers) Index(w http.ResponseWriter, r *http.Request) {
	count, err := h.db.CountArchives()
	if err != nil {
		http.Error(w, "Failed to get archive count", http.StatusInternalServerError)
		return
	}

	archives, err := h.db.ListArchives(50, 0)
	if err != nil {
		http.Error(w, "Failed to load archives", http.StatusInternalServerError)
		return
	}

	data := map[string]interface{}{
		"PageTitle": "Archives - MHT Viewer",
		"Stats": map[string]interface{}{
			"TotalArchives": count,
		},
		"Archives": archives,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		log.Printf("Template error: %v", err)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
	}
}
