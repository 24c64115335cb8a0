package epub

import (
	"reflect"

	"github.com/beevik/etree"
)

// mergeMetadata writes md into the retained metadata element and reports
// whether anything changed. Only fields that differ from the parsed snapshot
// are touched, so unedited elements and every attribute the model does not
// carry are serialized as they were read.
func (p *Package) mergeMetadata(md Metadata) bool {
	if reflect.DeepEqual(p.parsed, md) {
		return false
	}
	if p.metadataEl == nil {
		p.metadataEl = p.createMetadataElement()
	}
	w := metadataWriter{pkg: p, el: p.metadataEl}
	old := p.parsed

	w.single("title", old.Title, md.Title)
	w.single("publisher", old.Publisher, md.Publisher)
	w.single("date", old.Date, md.Date)
	w.single("rights", old.Rights, md.Rights)
	w.single("source", old.Source, md.Source)
	w.single("description", old.Description, md.Description)

	w.list("language", old.Languages, md.Languages)
	w.list("subject", old.Subjects, md.Subjects)

	if !reflect.DeepEqual(old.Creators, md.Creators) {
		md.Meta = w.creators(old.Creators, md.Creators, md.Meta)
	}
	if !reflect.DeepEqual(old.Meta, md.Meta) {
		w.metas(md.Meta)
	}

	if old.ISBN != md.ISBN {
		p.sources.isbn = w.identifier(p.sources.isbn, "ISBN", md.ISBN)
	}
	if old.ASIN != md.ASIN {
		p.sources.asin = w.identifier(p.sources.asin, "ASIN", md.ASIN)
	}

	p.Metadata = md
	p.parsed = md.clone()
	return true
}

// render splices the metadata element into the package document source and
// returns the new document. Bytes outside the metadata element are kept.
func (p *Package) render() ([]byte, error) {
	out, err := spliceChild(p.source, "metadata", p.metadataEl)
	if err != nil {
		return nil, err
	}
	p.source = out
	return out, nil
}

// createMetadataElement adds an empty metadata block as the first child of
// the package root.
func (p *Package) createMetadataElement() *etree.Element {
	root := p.Full.Root()
	el := etree.NewElement("metadata")
	if first := firstElement(root); first != nil {
		root.InsertChildAt(first.Index(), el)
	} else {
		root.AddChild(el)
	}
	return el
}

type metadataWriter struct {
	pkg *Package
	el  *etree.Element
}

// single updates the first element named tag, creating or removing it as
// the new value requires.
func (w metadataWriter) single(tag, old, value string) {
	if old == value {
		return
	}
	existing := firstChild(w.el, tag)
	switch {
	case existing != nil && value == "":
		removeElement(existing)
	case existing != nil:
		existing.SetText(value)
	case value != "":
		w.appendDC(tag).SetText(value)
	}
}

// list updates the elements named tag positionally.
func (w metadataWriter) list(tag string, old, values []string) {
	if reflect.DeepEqual(old, values) {
		return
	}
	existing := childElements(w.el, tag)
	for i, v := range values {
		if i < len(existing) {
			if i >= len(old) || old[i] != v {
				existing[i].SetText(v)
			}
			continue
		}
		w.appendDC(tag).SetText(v)
	}
	for i := len(values); i < len(existing); i++ {
		removeElement(existing[i])
	}
}

// creators updates the creator elements positionally. Role and file-as edits
// that land on refining meta elements are applied to metas, which is
// returned.
func (w metadataWriter) creators(old, values []Creator, metas []Meta) []Meta {
	existing := childElements(w.el, "creator")
	for i, c := range values {
		var el *etree.Element
		var prev Creator
		if i < len(existing) {
			el = existing[i]
			if i < len(old) {
				prev = old[i]
			}
		} else {
			el = w.appendDC("creator")
		}
		if c.Name != prev.Name {
			el.SetText(c.Name)
		}
		if c.Role != prev.Role {
			metas = w.creatorProperty(el, "role", c.Role, metas)
		}
		if c.FileAs != prev.FileAs {
			metas = w.creatorProperty(el, "file-as", c.FileAs, metas)
		}
	}
	for i := len(values); i < len(existing); i++ {
		removeElement(existing[i])
	}
	return metas
}

// creatorProperty sets a creator's role or file-as where it is declared: an
// attribute on the element, or an EPUB 3 meta refining the element's id.
func (w metadataWriter) creatorProperty(el *etree.Element, property, value string, metas []Meta) []Meta {
	hasAttr := attrValue(el, property) != ""
	if id := attrValue(el, "id"); id != "" && !hasAttr {
		for i, m := range metas {
			if m.Refines != "#"+id || m.Property != property || m.Value == "" {
				continue
			}
			if value == "" {
				return append(metas[:i:i], metas[i+1:]...)
			}
			metas[i].Value = value
			return metas
		}
	}
	if value != "" || hasAttr {
		w.setOPFAttr(el, property, value)
	}
	return metas
}

func (w metadataWriter) metas(values []Meta) {
	existing := childElements(w.el, "meta")
	for i, m := range values {
		var el *etree.Element
		if i < len(existing) {
			el = existing[i]
		} else {
			el = etree.NewElement(w.metaTag(existing))
			appendElement(w.el, el, lastChild(w.el, "meta"))
		}
		setAttr(el, "name", "", m.Name)
		setAttr(el, "content", "", m.Content)
		setAttr(el, "property", "", m.Property)
		setAttr(el, "refines", "", m.Refines)
		setAttr(el, "scheme", "", m.Scheme)
		setAttr(el, "id", "", m.ID)
		if el.Text() != m.Value {
			el.SetText(m.Value)
		}
	}
	for i := len(values); i < len(existing); i++ {
		removeElement(existing[i])
	}
}

// metaTag keeps the qualified name used by existing meta elements.
func (w metadataWriter) metaTag(existing []*etree.Element) string {
	if len(existing) > 0 {
		return existing[0].FullTag()
	}
	return "meta"
}

// identifier writes an edited ISBN or ASIN back to the element it was read
// from, keeping that element's form. Values derived from an element id, or
// with no source at all, get a new scheme-tagged identifier.
func (w metadataWriter) identifier(src identifierSource, scheme, value string) identifierSource {
	if src.el != nil && src.origin != originID {
		if value == "" {
			if !w.isUniqueIdentifier(src.el) {
				removeElement(src.el)
			}
			return identifierSource{}
		}
		src.el.SetText(src.prefix + value)
		return src
	}
	if value == "" {
		return identifierSource{}
	}
	el := w.appendDC("identifier")
	w.setOPFAttr(el, "scheme", scheme)
	el.SetText(value)
	return identifierSource{el: el, origin: originScheme}
}

func (w metadataWriter) isUniqueIdentifier(el *etree.Element) bool {
	uid := attrValue(w.pkg.Full.Root(), "unique-identifier")
	return uid != "" && attrValue(el, "id") == uid
}

// appendDC creates a Dublin Core element after the last sibling of the same
// name, or at the end of the metadata block.
func (w metadataWriter) appendDC(tag string) *etree.Element {
	el := etree.NewElement(qualify(w.prefixFor(nsDC, "dc"), tag))
	appendElement(w.el, el, lastChild(w.el, tag))
	return el
}

// setOPFAttr sets an OPF-namespaced attribute, reusing whatever prefix the
// element already carries for key.
func (w metadataWriter) setOPFAttr(el *etree.Element, key, value string) {
	setAttr(el, key, w.prefixFor(nsOPF, "opf"), value)
}

// prefixFor returns the prefix bound to uri in scope of the metadata
// element, declaring fallback on the metadata element when none is bound.
func (w metadataWriter) prefixFor(uri, fallback string) string {
	for e := w.el; e != nil; e = e.Parent() {
		for _, a := range e.Attr {
			if a.Space == "xmlns" && a.Value == uri {
				return a.Key
			}
		}
	}
	w.el.CreateAttr("xmlns:"+fallback, uri)
	return fallback
}

// setAttr updates the attribute with local name key, whatever its prefix,
// or creates it with prefix space. An empty value removes it.
func setAttr(el *etree.Element, key, space, value string) {
	for i := range el.Attr {
		if el.Attr[i].Key != key || el.Attr[i].Space == "xmlns" {
			continue
		}
		if value == "" {
			el.RemoveAttr(el.Attr[i].FullKey())
			return
		}
		el.Attr[i].Value = value
		return
	}
	if value != "" {
		el.CreateAttr(qualify(space, key), value)
	}
}

func qualify(space, name string) string {
	if space == "" {
		return name
	}
	return space + ":" + name
}

func firstElement(e *etree.Element) *etree.Element {
	if els := e.ChildElements(); len(els) > 0 {
		return els[0]
	}
	return nil
}

func lastChild(e *etree.Element, tag string) *etree.Element {
	els := childElements(e, tag)
	if len(els) == 0 {
		return nil
	}
	return els[len(els)-1]
}

// appendElement inserts el after ref, or at the end of parent when ref is
// nil. The whitespace preceding ref (or closing parent) is copied so the
// output keeps the document's indentation.
func appendElement(parent, el, ref *etree.Element) {
	if ref == nil {
		ref = lastElementChild(parent)
	}
	if ref == nil {
		parent.AddChild(el)
		return
	}
	at := ref.Index() + 1
	if ws := precedingWhitespace(ref); ws != "" {
		parent.InsertChildAt(at, etree.NewText(ws))
		at++
	}
	parent.InsertChildAt(at, el)
}

func lastElementChild(e *etree.Element) *etree.Element {
	els := e.ChildElements()
	if len(els) == 0 {
		return nil
	}
	return els[len(els)-1]
}

func precedingWhitespace(el *etree.Element) string {
	i := el.Index()
	parent := el.Parent()
	if parent == nil || i <= 0 {
		return ""
	}
	if cd, ok := parent.Child[i-1].(*etree.CharData); ok && cd.IsWhitespace() {
		return cd.Data
	}
	return ""
}

// removeElement detaches el and the indentation preceding it.
func removeElement(el *etree.Element) {
	parent := el.Parent()
	if parent == nil {
		return
	}
	ws := precedingWhitespace(el) != ""
	i := el.Index()
	parent.RemoveChildAt(i)
	if ws {
		parent.RemoveChildAt(i - 1)
	}
}
