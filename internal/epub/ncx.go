package epub

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// ParseNCX parses an EPUB 2 navigation control document into TOC nodes.
func ParseNCX(content []byte) ([]TOCNode, error) {
	doc, err := parseXML(content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse NCX: %w", err)
	}
	navMap := firstChild(doc.Root(), "navMap")
	return convertNavPoints(childElements(navMap, "navPoint")), nil
}

// convertNavPoints recursively converts navPoint elements into TOC nodes.
func convertNavPoints(points []*etree.Element) []TOCNode {
	if len(points) == 0 {
		return nil
	}
	nodes := make([]TOCNode, 0, len(points))
	for _, np := range points {
		nodes = append(nodes, TOCNode{
			Label:    strings.TrimSpace(firstText(firstChild(np, "navLabel"), "text")),
			Href:     strings.TrimSpace(attrValue(firstChild(np, "content"), "src")),
			Children: convertNavPoints(childElements(np, "navPoint")),
		})
	}
	return nodes
}
