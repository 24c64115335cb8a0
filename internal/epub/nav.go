package epub

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ParseNavDocument parses an EPUB 3 navigation document and returns the
// tree of its toc nav. A document without a nav typed "toc" falls back to
// its first nav element.
func ParseNavDocument(content []byte) ([]TOCNode, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse nav document: %w", err)
	}

	navs := doc.Find("nav")
	toc := navs.FilterFunction(func(_ int, s *goquery.Selection) bool {
		return hasEpubType(s, "toc")
	}).First()
	if toc.Length() == 0 {
		toc = navs.First()
	}

	ol := toc.Find("ol").First()
	if ol.Length() == 0 {
		return nil, nil
	}
	return parseNavList(ol), nil
}

// parseNavList converts the <li> children of an <ol> into TOC nodes.
func parseNavList(ol *goquery.Selection) []TOCNode {
	var nodes []TOCNode
	ol.ChildrenFiltered("li").Each(func(_ int, li *goquery.Selection) {
		nodes = append(nodes, parseNavItem(li))
	})
	return nodes
}

// parseNavItem reads the link (or heading span) of one <li> and its
// nested list.
func parseNavItem(li *goquery.Selection) TOCNode {
	var node TOCNode
	if a := li.ChildrenFiltered("a").First(); a.Length() > 0 {
		node.Href = strings.TrimSpace(a.AttrOr("href", ""))
		node.Label = normalizeLabel(a.Text())
	} else if span := li.ChildrenFiltered("span").First(); span.Length() > 0 {
		node.Label = normalizeLabel(span.Text())
	}
	if sub := li.ChildrenFiltered("ol").First(); sub.Length() > 0 {
		node.Children = parseNavList(sub)
	}
	return node
}

// hasEpubType reports whether s carries typeName in its epub:type tokens.
func hasEpubType(s *goquery.Selection, typeName string) bool {
	for _, t := range strings.Fields(s.AttrOr("epub:type", "")) {
		if t == typeName {
			return true
		}
	}
	return false
}

func normalizeLabel(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
