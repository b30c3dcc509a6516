package mhtml

import (
	"encoding/base64"
	"fmt"
	"net/url"
)

// ToDataURI converts a part into a data URI suitable for src/href attributes
// and CSS url() references. Quoted-printable parts were already decoded to
// text during parsing and are embedded percent-escaped; base64 parts embed
// their payload as-is; anything else is base64-encoded here.
func ToDataURI(part *Part) (string, error) {
	mediaType := part.MediaType()
	if mediaType == "" {
		return "", fmt.Errorf("part %q has no media type", part.ContentLocation)
	}

	switch part.TransferEncoding {
	case EncodingQuotedPrintable:
		return "data:" + mediaType + ";utf8," + url.PathEscape(string(part.Data)), nil
	case EncodingBase64:
		return "data:" + mediaType + ";base64," + string(part.Data), nil
	default:
		return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(part.Data), nil
	}
}
