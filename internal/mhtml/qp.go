package mhtml

import (
	"encoding/hex"
	"regexp"
	"strings"
)

// A maximal run of =XX hex escapes. Runs are decoded atomically so that
// multi-byte characters (UTF-8, GBK) split across adjacent escapes decode
// correctly.
var qpEscapeRun = regexp.MustCompile(`(?:=[0-9A-Fa-f]{2})+`)

// DecodeQuotedPrintable decodes one logical quoted-printable line into text.
// Trailing space and tab characters are transport artifacts (RFC 2045 §6.7)
// and are stripped; a trailing "=" is a soft line break and is deleted with
// no replacement. The caller is expected to have joined soft-broken physical
// lines already (see Parser.readLogicalLine); the trailing "=" handling here
// covers a soft break at end of input.
func DecodeQuotedPrintable(line string, dec *TextDecoder) string {
	line = strings.TrimRight(line, " \t")
	line = strings.TrimSuffix(line, "=")

	return qpEscapeRun.ReplaceAllStringFunc(line, func(run string) string {
		raw, err := hex.DecodeString(strings.ReplaceAll(run, "=", ""))
		if err != nil {
			return run
		}
		decoded, err := dec.Decode(raw)
		if err != nil {
			return run
		}
		return decoded
	})
}
