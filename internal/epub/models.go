package epub

import (
	"strings"

	"github.com/beevik/etree"
)

// Media types with structural meaning.
const (
	MediaTypeNCX   = "application/x-dtbncx+xml"
	MediaTypeXHTML = "application/xhtml+xml"
)

// navProperty marks the EPUB 3 navigation document in the manifest.
const navProperty = "nav"

// Package is the normalized model of one package document.
type Package struct {
	Version  string
	Metadata Metadata
	Manifest []ManifestEntry
	Spine    []SpineRef
	NCXID    string

	// Full is the complete parse tree of the package document, including
	// every element the normalized fields do not model.
	Full *etree.Document

	source     []byte
	metadataEl *etree.Element
	parsed     Metadata
	sources    identifierSources
}

// Metadata represents the metadata section of the package document.
type Metadata struct {
	Title       string
	Creators    []Creator
	Publisher   string
	Description string
	Languages   []string
	ISBN        string
	ASIN        string
	Subjects    []string
	Date        string
	Rights      string
	Source      string
	Meta        []Meta
}

// Creator represents a creator (author, editor, etc.) of the book
type Creator struct {
	Name   string
	Role   string // e.g., "aut" for author, "edt" for editor
	FileAs string
}

// Meta is a generic <meta> element in both its EPUB 2 (name/content) and
// EPUB 3 (property/refines with text value) forms.
type Meta struct {
	Name     string
	Content  string
	Property string
	Refines  string
	Scheme   string
	ID       string
	Value    string
}

// ManifestEntry represents an item in the manifest
type ManifestEntry struct {
	ID         string
	Href       string
	MediaType  string
	Properties string
}

// HasProperty reports whether the space-separated properties contain tok.
func (m ManifestEntry) HasProperty(tok string) bool {
	for _, p := range strings.Fields(m.Properties) {
		if p == tok {
			return true
		}
	}
	return false
}

// SpineRef represents an itemref in the spine. Item is nil when IDRef does
// not match any manifest entry.
type SpineRef struct {
	IDRef      string
	Linear     string
	Properties string
	Item       *Item
}

// TOCNode is one entry of the table of contents. Href is empty for
// heading-only nodes.
type TOCNode struct {
	Label    string
	Href     string
	Children []TOCNode
}

// Nav holds the resolved table of contents. TOC is nil when the publication
// has neither a navigation document nor an NCX.
type Nav struct {
	Source NavSource
	TOC    []TOCNode
}
