package epub

import (
	"go.uber.org/zap"
)

// NavSource identifies which document a table of contents was read from.
type NavSource int

const (
	NavSourceNone NavSource = iota
	NavSourceNav            // EPUB 3 navigation document
	NavSourceNCX            // EPUB 2 navigation control document
)

func (s NavSource) String() string {
	switch s {
	case NavSourceNav:
		return "nav"
	case NavSourceNCX:
		return "ncx"
	default:
		return "none"
	}
}

// itemLookup is the part of the publication the navigation resolver needs.
type itemLookup interface {
	ItemByID(id string) *Item
	findItem(match func(ManifestEntry) bool) *Item
}

// navCandidate is the selected navigation source and the item holding it.
type navCandidate struct {
	source NavSource
	item   *Item
}

// selectNavSource picks the navigation document by fixed priority: the
// manifest entry marked "nav", then the NCX named by the spine toc
// attribute, then the first entry with the NCX media type.
func selectNavSource(pkg *Package, items itemLookup) navCandidate {
	if item := items.findItem(func(m ManifestEntry) bool { return m.HasProperty(navProperty) }); item != nil {
		return navCandidate{source: NavSourceNav, item: item}
	}

	var ncx *Item
	if pkg.NCXID != "" {
		ncx = items.ItemByID(pkg.NCXID)
	}
	if ncx == nil {
		ncx = items.findItem(func(m ManifestEntry) bool { return m.MediaType == MediaTypeNCX })
	}
	if ncx != nil {
		return navCandidate{source: NavSourceNCX, item: ncx}
	}
	return navCandidate{source: NavSourceNone}
}

// resolveNav builds the table of contents. It never fails: an unreadable
// or unparsable source is logged and yields an empty Nav.
func resolveNav(pkg *Package, items itemLookup, log *zap.Logger) Nav {
	c := selectNavSource(pkg, items)
	if c.source == NavSourceNone {
		log.Debug("publication has no table of contents")
		return Nav{}
	}

	content, err := c.item.Bytes()
	if err != nil {
		log.Warn("failed to read navigation document",
			zap.String("source", c.source.String()), zap.String("href", c.item.Href), zap.Error(err))
		return Nav{Source: c.source}
	}

	var toc []TOCNode
	switch c.source {
	case NavSourceNav:
		toc, err = ParseNavDocument(content)
	case NavSourceNCX:
		toc, err = ParseNCX(content)
	}
	if err != nil {
		log.Warn("failed to parse navigation document",
			zap.String("source", c.source.String()), zap.String("href", c.item.Href), zap.Error(err))
		return Nav{Source: c.source}
	}
	return Nav{Source: c.source, TOC: toc}
}
