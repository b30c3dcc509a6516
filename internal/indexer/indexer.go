package indexer

import (
	"fmt"
	"log"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/felo/mht-viewer/internal/db"
	"github.com/felo/mht-viewer/internal/mhtml"
	"github.com/felo/mht-viewer/internal/scanner"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// previewLimit caps the text stored for full-text search.
const previewLimit = 10 * 1024

// Indexer handles archive indexing operations
type Indexer struct {
	db          *db.DB
	scanner     *scanner.Scanner
	verbose     bool
	concurrency int // Number of concurrent workers
}

// NewIndexer creates a new indexer
func NewIndexer(database *db.DB, archivesPath string, verbose bool) *Indexer {
	return &Indexer{
		db:          database,
		scanner:     scanner.NewScanner(archivesPath),
		verbose:     verbose,
		concurrency: runtime.NumCPU() * 2, // 2x CPUs for optimal I/O parallelism
	}
}

// WithConcurrency sets the number of concurrent workers
func (idx *Indexer) WithConcurrency(workers int) *Indexer {
	if workers < 1 {
		workers = 1
	}
	idx.concurrency = workers
	return idx
}

// IndexResult contains statistics about an indexing operation
type IndexResult struct {
	TotalFound  int
	NewIndexed  int
	Skipped     int
	Failed      int
	FailedFiles []string
}

type indexStatus int

const (
	statusIndexed indexStatus = iota
	statusSkipped
	statusFailed
)

type indexOutcome struct {
	filePath string
	status   indexStatus
}

// IndexAll scans and indexes all archive files using concurrent workers
func (idx *Indexer) IndexAll() (*IndexResult, error) {
	return idx.indexAll(nil)
}

// IndexWithProgress indexes all files and reports progress via a callback
func (idx *Indexer) IndexWithProgress(progress func(current, total int, filePath string)) (*IndexResult, error) {
	return idx.indexAll(progress)
}

func (idx *Indexer) indexAll(progress func(current, total int, filePath string)) (*IndexResult, error) {
	files, err := idx.scanner.Scan()
	if err != nil {
		return nil, fmt.Errorf("failed to scan for files: %w", err)
	}

	result := &IndexResult{
		TotalFound:  len(files),
		FailedFiles: make([]string, 0),
	}

	if idx.verbose {
		log.Printf("Found %d archive files to process with %d workers\n", result.TotalFound, idx.concurrency)
	}

	// Create channels for work distribution
	fileChan := make(chan string, len(files))
	resultChan := make(chan indexOutcome, len(files))

	// Start worker pool
	var wg sync.WaitGroup
	for i := 0; i < idx.concurrency; i++ {
		wg.Add(1)
		go idx.indexWorker(&wg, fileChan, resultChan)
	}

	// Send files to workers
	for _, file := range files {
		fileChan <- file
	}
	close(fileChan)

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	// Collect results
	processedCount := 0
	for res := range resultChan {
		processedCount++
		if progress != nil {
			progress(processedCount, result.TotalFound, res.filePath)
		} else if idx.verbose && processedCount%10 == 0 {
			log.Printf("Processing file %d/%d...\n", processedCount, result.TotalFound)
		}

		switch res.status {
		case statusIndexed:
			result.NewIndexed++
		case statusSkipped:
			result.Skipped++
		case statusFailed:
			result.Failed++
			result.FailedFiles = append(result.FailedFiles, res.filePath)
		}
	}

	if idx.verbose {
		log.Printf("Indexing complete: %d new, %d skipped, %d failed\n",
			result.NewIndexed, result.Skipped, result.Failed)
	}

	return result, nil
}

// indexWorker processes files from the file channel
func (idx *Indexer) indexWorker(wg *sync.WaitGroup, fileChan <-chan string, resultChan chan<- indexOutcome) {
	defer wg.Done()

	for filePath := range fileChan {
		resultChan <- indexOutcome{
			filePath: filePath,
			status:   idx.processFile(filePath),
		}
	}
}

// processFile indexes a single archive and returns its status
func (idx *Indexer) processFile(filePath string) indexStatus {
	exists, err := idx.db.ArchiveExists(filePath)
	if err != nil {
		log.Printf("Error checking if archive exists: %v\n", err)
		return statusFailed
	}
	if exists {
		return statusSkipped
	}

	absPath := idx.db.ResolveFilePath(filePath)
	raw, err := os.ReadFile(absPath)
	if err != nil {
		log.Printf("Error reading %s: %v\n", filePath, err)
		return statusFailed
	}

	// HTML-only parse: the index document is enough for title and preview,
	// resource collection would be wasted work here.
	archive, err := mhtml.Parse(string(raw), mhtml.Options{HTMLOnly: true})
	if err != nil {
		log.Printf("Error parsing %s: %v\n", filePath, err)
		return statusFailed
	}

	title, preview := summarize(string(archive.IndexPart().Data))

	fileInfo, err := os.Stat(absPath)
	if err != nil {
		log.Printf("Error getting file info for %s: %v\n", filePath, err)
		return statusFailed
	}

	record := &db.Archive{
		FilePath:    filePath,
		Title:       title,
		Location:    archive.Index,
		TextPreview: preview,
		FileSize:    fileInfo.Size(),
	}

	if _, err := idx.db.InsertArchive(record); err != nil {
		log.Printf("Error inserting archive %s: %v\n", filePath, err)
		return statusFailed
	}

	return statusIndexed
}

// summarize extracts the page title and a visible-text preview from the
// index document's HTML.
func summarize(fragment string) (title, preview string) {
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return "", ""
	}

	var text strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.ElementNode:
			switch n.DataAtom {
			case atom.Script, atom.Style:
				return
			case atom.Title:
				if title == "" && n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
					title = strings.TrimSpace(n.FirstChild.Data)
				}
				return
			}
		case html.TextNode:
			if text.Len() < previewLimit {
				if trimmed := strings.TrimSpace(n.Data); trimmed != "" {
					text.WriteString(trimmed)
					text.WriteString(" ")
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	preview = strings.TrimSpace(text.String())
	if len(preview) > previewLimit {
		preview = preview[:previewLimit]
	}
	return title, preview
}
