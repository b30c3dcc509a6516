package mhtml

import (
	"log"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// inlineResources walks the document tree breadth-first and rewrites every
// element whose tag references an external resource. Children are gathered
// before the element is rewritten, so a replaced node does not disturb the
// traversal.
func inlineResources(doc *html.Node, a *Archive, opts Options) {
	queue := []*html.Node{doc}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]

		for child := node.FirstChild; child != nil; {
			next := child.NextSibling
			if child.Type == html.ElementNode {
				child = rewriteElement(child, a, opts)
			}
			queue = append(queue, child)
			child = next
		}
	}
}

// rewriteElement dispatches per tag name and returns the node now occupying
// the element's position (a LINK may have been replaced by a STYLE).
func rewriteElement(node *html.Node, a *Archive, opts Options) *html.Node {
	// Subresource-integrity hashes are invalid once content is rewritten.
	removeAttr(node, "integrity")

	switch node.DataAtom {
	case atom.Head:
		// Relative links inside the reconstructed document escape to
		// the host frame.
		base := &html.Node{
			Type:     html.ElementNode,
			DataAtom: atom.Base,
			Data:     "base",
			Attr:     []html.Attribute{{Key: "target", Val: "_parent"}},
		}
		node.InsertBefore(base, node.FirstChild)
	case atom.Link:
		return rewriteLink(node, a)
	case atom.Style:
		rewriteStyleElement(node, a)
	case atom.Img:
		rewriteImage(node, a)
		rewriteStyleAttr(node, a)
	case atom.Iframe:
		if opts.ConvertIframes {
			rewriteIframe(node, a, opts)
		}
		rewriteStyleAttr(node, a)
	default:
		rewriteStyleAttr(node, a)
	}
	return node
}

// rewriteLink replaces a stylesheet LINK with a STYLE element carrying the
// rewritten stylesheet text, copying the original media attribute.
func rewriteLink(node *html.Node, a *Archive) *html.Node {
	href := getAttr(node, "href")
	if href == "" {
		return node
	}
	resolved := Resolve(a.Index, href)
	part := a.Media[resolved]
	if part == nil || part.MediaType() != "text/css" {
		return node
	}

	if !part.cssRewritten {
		part.cssRewritten = true
		part.Data = []byte(ReplaceReferences(a.Media, resolved, string(part.Data)))
	}

	style := &html.Node{Type: html.ElementNode, DataAtom: atom.Style, Data: "style"}
	if media := getAttr(node, "media"); media != "" {
		style.Attr = append(style.Attr, html.Attribute{Key: "media", Val: media})
	}
	style.AppendChild(&html.Node{Type: html.TextNode, Data: string(part.Data)})

	parent := node.Parent
	parent.InsertBefore(style, node)
	parent.RemoveChild(node)
	return style
}

// rewriteStyleElement rewrites a STYLE element's text content, resolving
// references against the document index location.
func rewriteStyleElement(node *html.Node, a *Archive) {
	text := textContent(node)
	if text == "" {
		return
	}
	rewritten := ReplaceReferences(a.Media, a.Index, text)
	for node.FirstChild != nil {
		node.RemoveChild(node.FirstChild)
	}
	node.AppendChild(&html.Node{Type: html.TextNode, Data: rewritten})
}

// rewriteImage embeds an IMG's source as a data URI when it resolves to an
// image-typed media entry. A failed embed is logged and the source is left
// untouched.
func rewriteImage(node *html.Node, a *Archive) {
	src := getAttr(node, "src")
	if src == "" {
		return
	}
	resolved := Resolve(a.Index, src)
	part := a.Media[resolved]
	if part == nil || !strings.HasPrefix(part.MediaType(), "image/") {
		return
	}
	uri, err := ToDataURI(part)
	if err != nil {
		log.Printf("mhtml: embedding image %s failed: %v", resolved, err)
		return
	}
	setAttr(node, "src", uri)
}

// rewriteIframe recursively converts a nested frame document referenced by a
// cid: source. The recursion runs on a synthetic archive whose media map is
// the outer map extended with the frame under its bracketed id, which also
// becomes the new index.
func rewriteIframe(node *html.Node, a *Archive, opts Options) {
	src := getAttr(node, "src")
	if !strings.HasPrefix(src, "cid:") {
		return
	}
	id := "<" + strings.TrimPrefix(src, "cid:") + ">"
	frame := a.Frames[id]
	if frame == nil || frame.MediaType() != "text/html" {
		return
	}

	media := make(map[string]*Part, len(a.Media)+1)
	for location, part := range a.Media {
		media[location] = part
	}
	media[id] = frame

	sub := &Archive{Media: media, Frames: a.Frames, Index: id}
	doc, err := convertArchive(sub, opts)
	if err != nil {
		log.Printf("mhtml: converting iframe %s failed: %v", id, err)
		return
	}
	rendered, err := Render(doc)
	if err != nil {
		log.Printf("mhtml: rendering iframe %s failed: %v", id, err)
		return
	}
	setAttr(node, "src", "data:text/html;charset=utf-8,"+url.PathEscape(rendered))
}

// rewriteStyleAttr rewrites url() references inside an inline style
// attribute.
func rewriteStyleAttr(node *html.Node, a *Archive) {
	style := getAttr(node, "style")
	if style == "" || !strings.Contains(style, "url(") {
		return
	}
	setAttr(node, "style", ReplaceReferences(a.Media, a.Index, style))
}

func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func setAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func removeAttr(n *html.Node, key string) {
	for i, attr := range n.Attr {
		if attr.Key == key {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return
		}
	}
}

// textContent concatenates an element's direct text children.
func textContent(n *html.Node) string {
	var b strings.Builder
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.TextNode {
			b.WriteString(child.Data)
		}
	}
	return b.String()
}
