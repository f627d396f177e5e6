package pastebin

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

const (
	archiveTableClass = "maintable"
	archivePrefix     = "/archive"
)

// ParseArchive extracts entries from the archive page markup. Markup that does
// not contain the listing table yields an empty listing; parsing never fails.
func ParseArchive(r io.Reader) *Listing {
	listing := NewListing()
	doc, err := html.Parse(r)
	if err != nil {
		return listing
	}
	table := findTable(doc)
	if table == nil {
		return listing
	}

	var pending *Entry
	walkAnchors(table, func(href, text string) {
		if strings.HasPrefix(href, archivePrefix) {
			if pending == nil {
				return
			}
			pending.Format = formatFromHref(href)
			listing.Add(*pending)
			pending = nil
			return
		}
		id := strings.Trim(href, "/")
		if id == "" || !strings.HasPrefix(href, "/") {
			return
		}
		pending = &Entry{ID: id, Title: text}
	})
	return listing
}

func findTable(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "table" && hasClass(n, archiveTableClass) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findTable(c); found != nil {
			return found
		}
	}
	return nil
}

func walkAnchors(n *html.Node, visit func(href, text string)) {
	if n.Type == html.ElementNode && n.Data == "a" {
		if href, ok := attr(n, "href"); ok {
			visit(href, strings.TrimSpace(firstText(n)))
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkAnchors(c, visit)
	}
}

func hasClass(n *html.Node, class string) bool {
	value, ok := attr(n, "class")
	if !ok {
		return false
	}
	for _, field := range strings.Fields(value) {
		if field == class {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func firstText(n *html.Node) string {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode && strings.TrimSpace(c.Data) != "" {
			return c.Data
		}
		if text := firstText(c); text != "" {
			return text
		}
	}
	return ""
}

// formatFromHref returns the segment after the archive prefix:
// "/archive/python" is "python".
func formatFromHref(href string) string {
	parts := strings.Split(href, "/")
	if len(parts) < 3 {
		return ""
	}
	return parts[2]
}
