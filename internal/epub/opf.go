package epub

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"github.com/yuanying/epubmeta/internal/htmltext"
)

// ParseOPF parses package document content into a Package. The returned
// Package keeps the full parse tree for lossless write-back.
func ParseOPF(content []byte, log *zap.Logger) (*Package, error) {
	if log == nil {
		log = zap.NewNop()
	}

	doc, err := parseXML(content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse OPF XML: %w", err)
	}
	root := doc.Root()

	pkg := &Package{
		Version: attrValue(root, "version"),
		Full:    doc,
		source:  content,
	}

	metadataEls := childElements(root, "metadata")
	if len(metadataEls) > 1 {
		log.Debug("multiple metadata blocks, using the first", zap.Int("count", len(metadataEls)))
	}
	if len(metadataEls) > 0 {
		pkg.metadataEl = metadataEls[0]
		pkg.Metadata, pkg.sources = parseMetadata(pkg.metadataEl, log)
		pkg.parsed = pkg.Metadata.clone()
	}

	for _, item := range childElements(firstChild(root, "manifest"), "item") {
		pkg.Manifest = append(pkg.Manifest, ManifestEntry{
			ID:         attrValue(item, "id"),
			Href:       attrValue(item, "href"),
			MediaType:  attrValue(item, "media-type"),
			Properties: attrValue(item, "properties"),
		})
	}

	spine := firstChild(root, "spine")
	pkg.NCXID = attrValue(spine, "toc")
	for _, ref := range childElements(spine, "itemref") {
		pkg.Spine = append(pkg.Spine, SpineRef{
			IDRef:      attrValue(ref, "idref"),
			Linear:     attrValue(ref, "linear"),
			Properties: attrValue(ref, "properties"),
		})
	}

	return pkg, nil
}

// parseMetadata flattens the metadata element into Metadata.
func parseMetadata(el *etree.Element, log *zap.Logger) (Metadata, identifierSources) {
	md := Metadata{
		Title:     firstText(el, "title"),
		Publisher: firstText(el, "publisher"),
		Date:      firstText(el, "date"),
		Rights:    firstText(el, "rights"),
		Source:    firstText(el, "source"),
		Languages: allText(el, "language"),
		Subjects:  allText(el, "subject"),
	}

	for _, m := range childElements(el, "meta") {
		md.Meta = append(md.Meta, Meta{
			Name:     attrValue(m, "name"),
			Content:  attrValue(m, "content"),
			Property: attrValue(m, "property"),
			Refines:  attrValue(m, "refines"),
			Scheme:   attrValue(m, "scheme"),
			ID:       attrValue(m, "id"),
			Value:    strings.TrimSpace(m.Text()),
		})
	}
	refines := buildRefinesMap(md.Meta)

	for _, c := range childElements(el, "creator") {
		creator := Creator{
			Name:   strings.TrimSpace(c.Text()),
			Role:   attrValue(c, "role"),
			FileAs: attrValue(c, "file-as"),
		}
		// EPUB 3 expresses role and file-as through refining meta elements.
		if id := attrValue(c, "id"); id != "" {
			if creator.Role == "" {
				creator.Role = refines.find(id, "role")
			}
			if creator.FileAs == "" {
				creator.FileAs = refines.find(id, "file-as")
			}
		}
		md.Creators = append(md.Creators, creator)
	}

	if raw := firstChild(el, "description"); raw != nil {
		markup := innerMarkup(raw)
		text, err := htmltext.Extract(markup)
		if err != nil {
			log.Warn("failed to strip description markup", zap.Error(err))
			text = strings.TrimSpace(markup)
		}
		md.Description = text
	}

	var sources identifierSources
	md.ISBN, md.ASIN, sources = resolveIdentifiers(childElements(el, "identifier"), refines)

	return md, sources
}

// refinesMap indexes EPUB 3 refining meta elements by the id they refine.
type refinesMap map[string][]Meta

func buildRefinesMap(metas []Meta) refinesMap {
	m := make(refinesMap)
	for _, meta := range metas {
		if !strings.HasPrefix(meta.Refines, "#") {
			continue
		}
		id := meta.Refines[1:]
		m[id] = append(m[id], meta)
	}
	return m
}

func (m refinesMap) find(id, property string) string {
	for _, meta := range m[id] {
		if meta.Property == property && meta.Value != "" {
			return meta.Value
		}
	}
	return ""
}

// innerMarkup returns the content of el as markup. Character data is kept as
// read, since descriptions usually carry escaped HTML, and child elements
// are serialized.
func innerMarkup(el *etree.Element) string {
	var sb strings.Builder
	for _, tok := range el.Child {
		switch t := tok.(type) {
		case *etree.CharData:
			sb.WriteString(t.Data)
		case *etree.Element:
			if frag, err := writeElement(t); err == nil {
				sb.Write(frag)
			}
		}
	}
	return sb.String()
}

func firstText(el *etree.Element, tag string) string {
	if c := firstChild(el, tag); c != nil {
		return strings.TrimSpace(c.Text())
	}
	return ""
}

func allText(el *etree.Element, tag string) []string {
	var out []string
	for _, c := range childElements(el, tag) {
		out = append(out, strings.TrimSpace(c.Text()))
	}
	return out
}

func (md Metadata) clone() Metadata {
	c := md
	c.Creators = append([]Creator(nil), md.Creators...)
	c.Languages = append([]string(nil), md.Languages...)
	c.Subjects = append([]string(nil), md.Subjects...)
	c.Meta = append([]Meta(nil), md.Meta...)
	return c
}
