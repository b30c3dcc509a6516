package mhtml

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/emersion/go-message/charset"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/simplifiedchinese"
)

func init() {
	// Register charsets commonly seen in archives saved by non-UTF-8
	// browsers; go-message only knows utf-8 and us-ascii out of the box.
	charset.RegisterEncoding("gbk", simplifiedchinese.GBK)
	charset.RegisterEncoding("gb2312", simplifiedchinese.GBK)
	charset.RegisterEncoding("gb18030", simplifiedchinese.GB18030)
	charset.RegisterEncoding("windows-1252", charmap.Windows1252)
	charset.RegisterEncoding("iso-8859-1", charmap.ISO8859_1)
}

// TextDecoder maps raw bytes to text using a named character set. Decoders
// are explicit objects owned by the parser rather than process-wide state.
type TextDecoder struct {
	name string
}

// NewTextDecoder returns a decoder for the given charset name. An empty name
// selects utf-8. The name is validated lazily on first decode.
func NewTextDecoder(name string) *TextDecoder {
	if name == "" {
		name = "utf-8"
	}
	return &TextDecoder{name: strings.ToLower(name)}
}

// Name returns the charset name the decoder was built with.
func (d *TextDecoder) Name() string {
	return d.name
}

// Decode converts raw bytes to a string under the decoder's character set.
func (d *TextDecoder) Decode(raw []byte) (string, error) {
	r, err := charset.Reader(d.name, bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("charset %q: %w", d.name, err)
	}
	decoded, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("decoding as %q: %w", d.name, err)
	}
	return string(decoded), nil
}
