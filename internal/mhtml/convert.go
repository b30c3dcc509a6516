// Package mhtml parses MHTML web archives (RFC 2557 multipart/related) and
// reconstructs a single self-contained HTML document with every referenced
// resource embedded as a data URI.
package mhtml

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// Convert parses raw MHTML text and returns a rewritten HTML document tree
// with stylesheets, images and (optionally) nested frames inlined.
func Convert(input string, opts Options) (*html.Node, error) {
	archive, err := Parse(input, opts)
	if err != nil {
		return nil, err
	}
	return convertArchive(archive, opts)
}

// ConvertToHTML is Convert followed by serialization. The result carries no
// doctype; callers prepend one when serving whole pages.
func ConvertToHTML(input string, opts Options) (string, error) {
	doc, err := Convert(input, opts)
	if err != nil {
		return "", err
	}
	return Render(doc)
}

// convertArchive parses the archive's index document and inlines resources
// into it. It is also the recursion point for nested frame documents.
func convertArchive(a *Archive, opts Options) (*html.Node, error) {
	index := a.IndexPart()
	if index == nil || index.MediaType() != "text/html" {
		return nil, structuralErrorf(0, "index part %q is not text/html", a.Index)
	}
	doc, err := html.Parse(strings.NewReader(string(index.Data)))
	if err != nil {
		return nil, fmt.Errorf("parsing index document: %w", err)
	}
	inlineResources(doc, a, opts)
	return doc, nil
}

// Render serializes a document tree back to HTML text.
func Render(doc *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return "", fmt.Errorf("rendering document: %w", err)
	}
	return buf.String(), nil
}
