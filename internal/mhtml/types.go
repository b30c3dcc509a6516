package mhtml

import "strings"

// Transfer encodings recognized in Content-Transfer-Encoding part headers.
// Anything else is treated as raw and passed through unchanged.
const (
	EncodingQuotedPrintable = "quoted-printable"
	EncodingBase64          = "base64"
)

// Part is a single MIME part of an MHTML archive. Data is appended to while
// the parser is in its DATA state and is final once the next boundary is seen.
// For quoted-printable parts Data holds the decoded text; for base64 parts it
// holds the base64 payload with line breaks stripped.
type Part struct {
	TransferEncoding string
	ContentType      string
	ContentID        string
	ContentLocation  string
	Data             []byte

	// cssRewritten marks a text/css part whose url() references have
	// already been embedded, so repeated references reuse the rewritten
	// body and stylesheet reference cycles terminate.
	cssRewritten bool
}

// MediaType returns the part's MIME type without parameters,
// e.g. "text/html" for "text/html; charset=utf-8".
func (p *Part) MediaType() string {
	mediaType := p.ContentType
	if i := strings.IndexByte(mediaType, ';'); i >= 0 {
		mediaType = mediaType[:i]
	}
	return strings.TrimSpace(mediaType)
}

// Archive is the parsed, indexed form of an MHTML document.
//
// Media maps absolute content locations to parts and Frames maps bracketed
// content ids (e.g. "<frame1@mhtml.example>") to parts. A part carrying both
// headers appears in both maps; no part is ever copied. Index is the content
// location of the first text/html part, the document the conversion starts
// from.
type Archive struct {
	Media  map[string]*Part
	Frames map[string]*Part
	Index  string
}

// IndexPart returns the part holding the index document.
func (a *Archive) IndexPart() *Part {
	return a.Media[a.Index]
}

// Options control parsing and conversion.
type Options struct {
	// HTMLOnly stops the parser once the index document has been read,
	// skipping resource collection entirely.
	HTMLOnly bool

	// ConvertIframes recursively inlines nested frame documents referenced
	// through cid: URLs.
	ConvertIframes bool

	// Charset names the byte-to-text decoder used for quoted-printable
	// payloads. Defaults to "utf-8"; "gbk" is registered for archives
	// saved by non-UTF-8 browsers.
	Charset string
}

func (o Options) charset() string {
	if o.Charset == "" {
		return "utf-8"
	}
	return strings.ToLower(o.Charset)
}
