package handlers

import (
	"embed"
	"html/template"
	"log"
	"net/http"
	"os"

	"github.com/felo/mht-viewer/internal/config"
	"github.com/felo/mht-viewer/internal/db"
	"github.com/microcosm-cc/bluemonday"
)

// Handlers holds all HTTP handlers and their dependencies
type Handlers struct {
	db        *db.DB
	cfg       *config.Config
	templates *template.Template
	sanitizer *bluemonday.Policy
	shutdown  chan<- os.Signal
}

// New creates a new Handlers instance
func New(database *db.DB, cfg *config.Config) *Handlers {
	return &Handlers{
		db:        database,
		cfg:       cfg,
		sanitizer: sanitizePolicy(),
	}
}

// sanitizePolicy builds the policy applied when a page is served with
// sanitize=1. Data URIs must stay allowed or every inlined image would be
// stripped along with the scripts.
func sanitizePolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowDataURIImages()
	p.AllowAttrs("style").Globally()
	return p
}

// LoadTemplates loads HTML templates from embedded filesystem
func (h *Handlers) LoadTemplates(embeddedFiles embed.FS) error {
	tmpl, err := template.ParseFS(embeddedFiles,
		"templates/*.html",
		"templates/components/*.html",
	)
	if err != nil {
		return err
	}
	h.templates = tmpl
	return nil
}

// SetShutdownChannel wires the channel used by the shutdown endpoint
func (h *Handlers) SetShutdownChannel(ch chan<- os.Signal) {
	h.shutdown = ch
}

// Shutdown stops the server on request from the UI
func (h *Handlers) Shutdown(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Shutting down..."))

	if h.shutdown != nil {
		log.Println("Shutdown requested via web interface")
		h.shutdown <- os.Interrupt
	}
}
