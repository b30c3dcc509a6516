package mhtml

import (
	"encoding/base64"
	"fmt"
	"log"
	"strings"
)

// ReplaceReferences rewrites url(...) references in a CSS or style-attribute
// string, embedding every resource found in media as a data URI. Referenced
// stylesheets are rewritten recursively first, mutating their stored body in
// place so repeated references reuse the already-rewritten text. A reference
// that fails to embed is logged and left unmodified; one bad reference never
// aborts the rewrite.
func ReplaceReferences(media map[string]*Part, base, text string) string {
	i := 0
	for {
		open := strings.Index(text[i:], "url(")
		if open < 0 {
			break
		}
		start := i + open + len("url(")
		end := strings.Index(text[start:], ")")
		if end < 0 {
			break
		}
		end += start

		raw := strings.Trim(strings.TrimSpace(text[start:end]), `'"`)
		resolved := Resolve(base, raw)
		reference, ok := media[resolved]
		if !ok {
			i = end
			continue
		}

		if reference.MediaType() == "text/css" && !reference.cssRewritten {
			// Mark before recursing so stylesheet cycles terminate.
			reference.cssRewritten = true
			reference.Data = []byte(ReplaceReferences(media, resolved, string(reference.Data)))
		}

		embedded, err := embedReference(reference)
		if err != nil {
			log.Printf("mhtml: embedding %s failed: %v", resolved, err)
			i = end
			continue
		}
		text = text[:start] + embedded + text[end:]
		i = start + len(embedded)
	}
	return text
}

// embedReference renders a part as a quoted data URI for use inside url().
// The payload is the part's data as-is when it is already base64, re-encoded
// otherwise.
func embedReference(part *Part) (string, error) {
	mediaType := part.MediaType()
	if mediaType == "" {
		return "", fmt.Errorf("part %q has no media type", part.ContentLocation)
	}
	payload := string(part.Data)
	if part.TransferEncoding != EncodingBase64 {
		payload = base64.StdEncoding.EncodeToString(part.Data)
	}
	return "'data:" + mediaType + ";base64," + payload + "'", nil
}
