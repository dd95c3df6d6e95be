package posesource

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// ParseListing extracts every anchor href ending in ".json" from a directory
// index page, in document order. Repeated hrefs are listed each time.
func ParseListing(r io.Reader) ([]string, error) {
	z := html.NewTokenizer(r)
	var names []string

	for {
		switch z.Next() {
		case html.ErrorToken:
			if err := z.Err(); err != io.EOF {
				return nil, fmt.Errorf("posesource: parse listing: %w", err)
			}
			return names, nil
		case html.StartTagToken, html.SelfClosingTagToken:
			tag, hasAttr := z.TagName()
			if string(tag) != "a" {
				continue
			}
			for hasAttr {
				var key, val []byte
				key, val, hasAttr = z.TagAttr()
				if string(key) != "href" {
					continue
				}
				href := string(val)
				if !strings.HasSuffix(href, ".json") {
					continue
				}
				names = append(names, href)
			}
		}
	}
}
