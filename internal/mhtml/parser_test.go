package mhtml

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBoundary = "----MultipartBoundary--test1234"

// buildMHT assembles an MHTML document from part header/body pairs in the
// shape browsers produce when saving a page.
func buildMHT(parts ...[2]string) string {
	var b strings.Builder
	b.WriteString("From: <Saved by Blink>\n")
	b.WriteString("Subject: Test Page\n")
	b.WriteString("MIME-Version: 1.0\n")
	b.WriteString("Content-Type: multipart/related;\n")
	b.WriteString("\ttype=\"text/html\";\n")
	b.WriteString("\tboundary=\"" + testBoundary + "\"\n")
	b.WriteString("\n")
	b.WriteString("--" + testBoundary + "\n")
	for i, part := range parts {
		b.WriteString(part[0])
		b.WriteString("\n")
		b.WriteString(part[1])
		b.WriteString("\n")
		if i == len(parts)-1 {
			b.WriteString("--" + testBoundary + "--\n")
		} else {
			b.WriteString("--" + testBoundary + "\n")
		}
	}
	return b.String()
}

func htmlPart(location, body string) [2]string {
	return [2]string{
		"Content-Type: text/html\n" +
			"Content-Transfer-Encoding: quoted-printable\n" +
			"Content-Location: " + location + "\n",
		body,
	}
}

func cssPart(location, body string) [2]string {
	return [2]string{
		"Content-Type: text/css\n" +
			"Content-Transfer-Encoding: quoted-printable\n" +
			"Content-Location: " + location + "\n",
		body,
	}
}

func pngPart(location, payload string) [2]string {
	return [2]string{
		"Content-Type: image/png\n" +
			"Content-Transfer-Encoding: base64\n" +
			"Content-Location: " + location + "\n",
		payload,
	}
}

func framePart(id, body string) [2]string {
	return [2]string{
		"Content-Type: text/html\n" +
			"Content-Transfer-Encoding: quoted-printable\n" +
			"Content-ID: <" + id + ">\n",
		body,
	}
}

func TestParseIndexesPartsByLocationAndID(t *testing.T) {
	input := buildMHT(
		htmlPart("http://example.com/index.html", "<html><body>hi</body></html>"),
		pngPart("http://example.com/img.png", "iVBORw0KGgo="),
		framePart("frame1", "<html><body>inner</body></html>"),
	)

	archive, err := Parse(input, Options{})
	require.NoError(t, err)

	assert.Equal(t, "http://example.com/index.html", archive.Index)
	assert.Len(t, archive.Media, 2, "only parts with a Content-Location belong to Media")
	assert.Len(t, archive.Frames, 1, "only parts with a Content-ID belong to Frames")

	index := archive.IndexPart()
	require.NotNil(t, index)
	assert.Equal(t, "text/html", index.MediaType())
	assert.Contains(t, string(index.Data), "hi")

	img := archive.Media["http://example.com/img.png"]
	require.NotNil(t, img)
	assert.Equal(t, EncodingBase64, img.TransferEncoding)
	assert.Equal(t, "iVBORw0KGgo=", string(img.Data), "base64 payload is stored as-is, line breaks stripped")

	frame := archive.Frames["<frame1>"]
	require.NotNil(t, frame)
	assert.Contains(t, string(frame.Data), "inner")
}

func TestParsePartWithBothHeadersAppearsInBothMaps(t *testing.T) {
	input := buildMHT(
		htmlPart("http://example.com/index.html", "<html></html>"),
		[2]string{
			"Content-Type: image/gif\n" +
				"Content-Transfer-Encoding: base64\n" +
				"Content-ID: <pic1>\n" +
				"Content-Location: http://example.com/pic.gif\n",
			"R0lGODlh",
		},
	)

	archive, err := Parse(input, Options{})
	require.NoError(t, err)

	assert.Same(t, archive.Media["http://example.com/pic.gif"], archive.Frames["<pic1>"],
		"both maps must reference the same part, not a copy")
}

func TestParseFirstWriterWinsOnDuplicateLocation(t *testing.T) {
	input := buildMHT(
		htmlPart("http://example.com/index.html", "<html></html>"),
		pngPart("http://example.com/img.png", "Zmlyc3Q="),
		pngPart("http://example.com/img.png", "c2Vjb25k"),
	)

	archive, err := Parse(input, Options{})
	require.NoError(t, err)
	assert.Equal(t, "Zmlyc3Q=", string(archive.Media["http://example.com/img.png"].Data))
}

func TestParseDecodesQuotedPrintableBody(t *testing.T) {
	input := buildMHT(
		htmlPart("http://example.com/index.html", "<html><body>caf=C3=A9</body></html>"),
	)

	archive, err := Parse(input, Options{})
	require.NoError(t, err)
	assert.Contains(t, string(archive.IndexPart().Data), "café")
}

func TestParseJoinsSoftLineBreaks(t *testing.T) {
	input := buildMHT(
		htmlPart("http://example.com/index.html", "<html><body>caf=\n=C3=A9</body></html>"),
	)

	archive, err := Parse(input, Options{})
	require.NoError(t, err)
	assert.Contains(t, string(archive.IndexPart().Data), "café")
}

func TestParseHeaderContinuationLines(t *testing.T) {
	// The top-level Content-Type in buildMHT spreads its boundary
	// parameter over continuation lines already; this asserts the
	// assembled header was usable.
	input := buildMHT(htmlPart("http://example.com/index.html", "<html></html>"))

	p := NewParser(input, Options{})
	_, err := p.Run()
	require.NoError(t, err)
	assert.Equal(t, testBoundary, p.boundary)
}

func TestParseHTMLOnlySkipsResources(t *testing.T) {
	input := buildMHT(
		htmlPart("http://example.com/index.html", "<html><body>index</body></html>"),
		pngPart("http://example.com/img.png", "iVBORw0KGgo="),
	)

	fragment, err := ParseHTML(input, Options{})
	require.NoError(t, err)
	assert.Contains(t, fragment, "index")

	archive, err := Parse(input, Options{HTMLOnly: true})
	require.NoError(t, err)
	assert.NotContains(t, archive.Media, "http://example.com/img.png",
		"HTML-only mode must stop before collecting resources")
}

func TestParseStructuralErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			"missing boundary parameter",
			"Content-Type: multipart/related\n\nbody\n",
			"no boundary parameter",
		},
		{
			"missing content type",
			"Subject: x\n\nbody\n",
			"missing Content-Type",
		},
		{
			"continuation line without header",
			"no colon on first line\n\n",
			"no preceding header",
		},
		{
			"boundary never appears",
			"Content-Type: multipart/related; boundary=\"b12345\"\n\nnot the marker\n",
			"expected boundary",
		},
		{
			"part missing transfer encoding",
			"Content-Type: multipart/related; boundary=\"b12345\"\n\n--b12345\n" +
				"Content-Type: text/html\nContent-Location: a.html\n\n<html></html>\n--b12345--\n",
			"missing Content-Transfer-Encoding",
		},
		{
			"part missing content type",
			"Content-Type: multipart/related; boundary=\"b12345\"\n\n--b12345\n" +
				"Content-Transfer-Encoding: base64\nContent-Location: a.html\n\nAAAA\n--b12345--\n",
			"missing Content-Type",
		},
		{
			"part missing id and location",
			"Content-Type: multipart/related; boundary=\"b12345\"\n\n--b12345\n" +
				"Content-Type: text/html\nContent-Transfer-Encoding: quoted-printable\n\n<html></html>\n--b12345--\n",
			"neither Content-ID nor Content-Location",
		},
		{
			"no html index part",
			"Content-Type: multipart/related; boundary=\"b12345\"\n\n--b12345\n" +
				"Content-Type: image/png\nContent-Transfer-Encoding: base64\nContent-Location: a.png\n\nAAAA\n--b12345--\n",
			"no text/html index",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			archive, err := Parse(tt.input, Options{})
			require.Error(t, err)
			assert.Nil(t, archive, "structural errors produce no partial result")

			var structural *StructuralError
			require.ErrorAs(t, err, &structural)
			assert.Contains(t, structural.Msg, tt.want)
		})
	}
}

func TestParseToleratesCarriageReturns(t *testing.T) {
	input := strings.ReplaceAll(
		buildMHT(htmlPart("http://example.com/index.html", "<html><body>crlf</body></html>")),
		"\n", "\r\n")

	archive, err := Parse(input, Options{})
	require.NoError(t, err)
	assert.Contains(t, string(archive.IndexPart().Data), "crlf")
}
