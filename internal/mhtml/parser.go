package mhtml

import (
	"net/textproto"
	"strings"
	"unicode/utf8"
)

// parseState enumerates the states of the multipart state machine:
// HEADERS -> CONTENT -> DATA -> {CONTENT | END}.
type parseState int

const (
	stateHeaders parseState = iota
	stateContent
	stateData
	stateEnd
)

// Parser consumes raw MHTML text and produces an Archive. All parser state
// lives here: the input cursor, the current line number for error reporting,
// the boundary token, and the part being accumulated.
type Parser struct {
	input    string
	pos      int
	line     int
	boundary string
	opts     Options
	decoder  *TextDecoder

	archive *Archive
	current *Part
}

// NewParser returns a parser over the given MHTML text.
func NewParser(input string, opts Options) *Parser {
	return &Parser{
		input:   input,
		line:    1,
		opts:    opts,
		decoder: NewTextDecoder(opts.charset()),
		archive: &Archive{
			Media:  make(map[string]*Part),
			Frames: make(map[string]*Part),
		},
	}
}

// Parse parses MHTML text into an Archive. Structural defects abort the
// parse with a StructuralError and no partial result.
func Parse(input string, opts Options) (*Archive, error) {
	return NewParser(input, opts).Run()
}

// ParseHTML parses only the index document of an archive, skipping resource
// collection, and returns its HTML text.
func ParseHTML(input string, opts Options) (string, error) {
	opts.HTMLOnly = true
	archive, err := Parse(input, opts)
	if err != nil {
		return "", err
	}
	return string(archive.IndexPart().Data), nil
}

// Run drives the state machine to completion.
func (p *Parser) Run() (*Archive, error) {
	state := stateHeaders
	for state != stateEnd {
		var err error
		switch state {
		case stateHeaders:
			state, err = p.stepHeaders()
		case stateContent:
			state, err = p.stepContent()
		case stateData:
			state, err = p.stepData()
		}
		if err != nil {
			return nil, err
		}
	}

	index := p.archive.IndexPart()
	if index == nil || index.MediaType() != "text/html" {
		return nil, structuralErrorf(p.line, "no text/html index part found")
	}
	return p.archive, nil
}

// readLine returns the next line without its terminator, advancing the
// cursor and line counter. A trailing carriage return is stripped. ok is
// false once the input is exhausted.
func (p *Parser) readLine() (line string, ok bool) {
	if p.pos >= len(p.input) {
		return "", false
	}
	start := p.pos
	for p.pos < len(p.input) && p.input[p.pos] != '\n' {
		p.pos++
	}
	line = p.input[start:p.pos]
	if p.pos < len(p.input) {
		p.pos++ // consume '\n'
	}
	p.line++
	return strings.TrimSuffix(line, "\r"), true
}

// readLogicalLine joins physical lines terminated by a quoted-printable soft
// break ("=" before the line terminator) into one logical line. Joining must
// happen before decoding: a multi-byte GBK or UTF-8 character may have its
// escapes split across two physical lines.
func (p *Parser) readLogicalLine() (string, bool) {
	line, ok := p.readLine()
	if !ok {
		return "", false
	}
	for strings.HasSuffix(line, "=") {
		next, more := p.readLine()
		if !more {
			break
		}
		line = line[:len(line)-1] + next
	}
	return line, true
}

// readHeaderBlock accumulates "Key: value" pairs until a blank line. The
// first colon separates key from value; a line without one continues the
// most recently seen key, which must exist.
func (p *Parser) readHeaderBlock() (map[string]string, error) {
	headers := make(map[string]string)
	lastKey := ""
	for {
		line, ok := p.readLine()
		if !ok {
			return nil, structuralErrorf(p.line, "unexpected end of input in headers")
		}
		if strings.TrimSpace(line) == "" {
			return headers, nil
		}
		if key, value, found := strings.Cut(line, ":"); found {
			lastKey = textproto.CanonicalMIMEHeaderKey(strings.TrimSpace(key))
			headers[lastKey] = strings.TrimSpace(value)
		} else {
			if lastKey == "" {
				return nil, structuralErrorf(p.line, "header continuation line with no preceding header")
			}
			headers[lastKey] += strings.TrimSpace(line)
		}
	}
}

// stepHeaders reads the document headers, extracts the part boundary, and
// positions the cursor after the first boundary marker.
func (p *Parser) stepHeaders() (parseState, error) {
	headers, err := p.readHeaderBlock()
	if err != nil {
		return stateEnd, err
	}

	boundary, err := extractBoundary(headers["Content-Type"], p.line)
	if err != nil {
		return stateEnd, err
	}
	p.boundary = boundary

	// The first non-blank line after the document headers must be the
	// opening boundary marker.
	for {
		line, ok := p.readLine()
		if !ok {
			return stateEnd, structuralErrorf(p.line, "missing boundary after document headers")
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		if !strings.Contains(line, p.boundary) {
			return stateEnd, structuralErrorf(p.line, "expected boundary %q, got %q", p.boundary, line)
		}
		return stateContent, nil
	}
}

// extractBoundary pulls the boundary token out of a top-level Content-Type
// header value, stripping surrounding quotes.
func extractBoundary(contentType string, line int) (string, error) {
	if contentType == "" {
		return "", structuralErrorf(line, "missing Content-Type header")
	}
	const marker = "boundary="
	i := strings.Index(contentType, marker)
	if i < 0 {
		return "", structuralErrorf(line, "Content-Type header has no boundary parameter")
	}
	boundary := contentType[i+len(marker):]
	if j := strings.IndexByte(boundary, ';'); j >= 0 {
		boundary = boundary[:j]
	}
	boundary = strings.Trim(strings.TrimSpace(boundary), `"`)
	if boundary == "" {
		return "", structuralErrorf(line, "empty boundary parameter")
	}
	return boundary, nil
}

// stepContent reads one part's headers, validates them, and registers a new
// part in the frame and media maps.
func (p *Parser) stepContent() (parseState, error) {
	headers, err := p.readHeaderBlock()
	if err != nil {
		return stateEnd, err
	}

	encoding := headers["Content-Transfer-Encoding"]
	contentType := headers["Content-Type"]
	id := headers["Content-Id"]
	location := headers["Content-Location"]

	if encoding == "" {
		return stateEnd, structuralErrorf(p.line, "part is missing Content-Transfer-Encoding")
	}
	if contentType == "" {
		return stateEnd, structuralErrorf(p.line, "part is missing Content-Type")
	}
	if id == "" && location == "" {
		return stateEnd, structuralErrorf(p.line, "part has neither Content-ID nor Content-Location")
	}

	part := &Part{
		TransferEncoding: strings.ToLower(strings.TrimSpace(encoding)),
		ContentType:      contentType,
		ContentID:        id,
		ContentLocation:  location,
	}

	// The first text/html part becomes the document index.
	if p.archive.Index == "" && location != "" && part.MediaType() == "text/html" {
		p.archive.Index = location
	}
	if id != "" {
		p.archive.Frames[id] = part
	}
	if location != "" {
		// First writer wins; a location seen twice keeps the first part.
		if _, taken := p.archive.Media[location]; !taken {
			p.archive.Media[location] = part
		}
	}

	p.current = part
	return stateData, nil
}

// stepData accumulates body lines into the current part until a boundary
// line, decoding per the part's transfer encoding.
func (p *Parser) stepData() (parseState, error) {
	part := p.current
	closing := false
	for {
		var line string
		var ok bool
		if part.TransferEncoding == EncodingQuotedPrintable {
			line, ok = p.readLogicalLine()
		} else {
			line, ok = p.readLine()
		}
		if !ok {
			closing = true
			break
		}
		if strings.Contains(line, p.boundary) {
			closing = strings.Contains(line, p.boundary+"--")
			break
		}

		switch part.TransferEncoding {
		case EncodingQuotedPrintable:
			part.Data = append(part.Data, DecodeQuotedPrintable(line, p.decoder)...)
			part.Data = append(part.Data, '\n')
		case EncodingBase64:
			part.Data = append(part.Data, strings.TrimSpace(line)...)
		default:
			part.Data = append(part.Data, line...)
			part.Data = append(part.Data, '\n')
		}
	}

	// Best-effort reinterpretation of text parts whose bytes did not end
	// up as valid UTF-8; the raw buffer is kept when decoding fails.
	if strings.HasPrefix(part.MediaType(), "text/") && !utf8.Valid(part.Data) {
		if text, err := p.decoder.Decode(part.Data); err == nil && utf8.ValidString(text) {
			part.Data = []byte(text)
		}
	}

	// In HTML-only mode the index document is all the caller wants; skip
	// the remaining parts.
	if p.opts.HTMLOnly && p.archive.Index != "" && part == p.archive.IndexPart() {
		return stateEnd, nil
	}

	if closing || strings.TrimSpace(p.input[p.pos:]) == "" {
		return stateEnd, nil
	}
	return stateContent, nil
}
