package epub

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"

	"github.com/beevik/etree"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
)

// XML namespaces used by package documents.
const (
	nsOPF = "http://www.idpf.org/2007/opf"
	nsDC  = "http://purl.org/dc/elements/1.1/"
)

// parseXML decodes data into a lossless element tree. Non UTF-8 documents are
// transcoded through their declared encoding, and HTML named entities that
// some producers leave in package and NCX documents are accepted.
func parseXML(data []byte) (*etree.Document, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = charset.NewReaderLabel
	doc.ReadSettings.Permissive = true
	doc.ReadSettings.Entity = xml.HTMLEntity
	doc.ReadSettings.PreserveCData = true
	if err := doc.ReadFromBytes(stripBOM(data)); err != nil {
		return nil, err
	}
	if doc.Root() == nil {
		return nil, fmt.Errorf("document has no root element")
	}
	return doc, nil
}

// spliceChild replaces the first child of the root element named tag in src
// with the serialization of el. Every other byte of src is kept as it was.
// When the root has no such child, el is inserted before its first child
// element. Documents declaring a non UTF-8 encoding are written back in that
// encoding, with characters it cannot represent as character references.
func spliceChild(src []byte, tag string, el *etree.Element) ([]byte, error) {
	bom, body := splitBOM(src)
	enc := declaredEncoding(body)

	text := body
	if enc != nil {
		var err error
		if text, err = enc.NewDecoder().Bytes(body); err != nil {
			return nil, fmt.Errorf("failed to decode document: %w", err)
		}
	}
	start, end, err := childSpan(text, tag)
	if err != nil {
		return nil, err
	}
	frag, err := writeElement(el)
	if err != nil {
		return nil, err
	}
	if enc != nil {
		if frag, err = encoding.HTMLEscapeUnsupported(enc.NewEncoder()).Bytes(frag); err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", tag, err)
		}
		if start, err = encodedLen(enc, text[:start]); err != nil {
			return nil, err
		}
		if end, err = encodedLen(enc, text[:end]); err != nil {
			return nil, err
		}
	}

	out := make([]byte, 0, len(src)+len(frag))
	out = append(out, bom...)
	out = append(out, body[:start]...)
	out = append(out, frag...)
	out = append(out, body[end:]...)
	return out, nil
}

// declaredEncoding returns the encoding named by the XML declaration of
// body, or nil for UTF-8 and undeclared documents.
func declaredEncoding(body []byte) encoding.Encoding {
	var label string
	d := xml.NewDecoder(bytes.NewReader(body))
	d.CharsetReader = func(l string, r io.Reader) (io.Reader, error) {
		label = l
		return r, nil
	}
	// The decoder consults CharsetReader while reading the declaration.
	_, _ = d.RawToken()
	if label == "" {
		return nil
	}
	enc, name := charset.Lookup(label)
	if enc == nil || name == "utf-8" {
		return nil
	}
	return enc
}

// childSpan returns the byte range of the first child of the root named tag.
// Without one, it returns the empty range where such a child is inserted.
func childSpan(text []byte, tag string) (int, int, error) {
	d := xml.NewDecoder(bytes.NewReader(text))
	d.Strict = false
	d.Entity = xml.HTMLEntity
	d.CharsetReader = func(_ string, r io.Reader) (io.Reader, error) { return r, nil }

	depth, start, insertAt := 0, -1, -1
	for {
		offset := int(d.InputOffset())
		tok, err := d.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, 0, fmt.Errorf("failed to scan document: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if depth != 2 {
				continue
			}
			if insertAt < 0 {
				insertAt = offset
			}
			if start < 0 && t.Name.Local == tag {
				start = offset
			}
		case xml.EndElement:
			if depth == 2 && start >= 0 {
				return start, int(d.InputOffset()), nil
			}
			if depth == 1 && insertAt < 0 && !bytes.HasSuffix(text[:offset], []byte("/>")) {
				insertAt = offset
			}
			depth--
		}
	}
	if insertAt < 0 {
		return 0, 0, fmt.Errorf("no place for %s in document", tag)
	}
	return insertAt, insertAt, nil
}

func encodedLen(enc encoding.Encoding, text []byte) (int, error) {
	b, err := enc.NewEncoder().Bytes(text)
	if err != nil {
		return 0, fmt.Errorf("failed to encode document: %w", err)
	}
	return len(b), nil
}

// writeElement serializes el on its own. Text and attribute values are
// escaped minimally.
func writeElement(el *etree.Element) ([]byte, error) {
	doc := etree.NewDocument()
	doc.WriteSettings.CanonicalText = true
	doc.WriteSettings.CanonicalAttrVal = true
	doc.SetRoot(el.Copy())
	return doc.WriteToBytes()
}

// childElements returns the direct children of e matching the local name
// tag, ignoring namespace prefixes. A nil parent yields no children, so a
// missing or single element always normalizes to a sequence.
func childElements(e *etree.Element, tag string) []*etree.Element {
	if e == nil {
		return nil
	}
	var out []*etree.Element
	for _, c := range e.ChildElements() {
		if c.Tag == tag {
			out = append(out, c)
		}
	}
	return out
}

// firstChild returns the first direct child with local name tag, or nil.
func firstChild(e *etree.Element, tag string) *etree.Element {
	if els := childElements(e, tag); len(els) > 0 {
		return els[0]
	}
	return nil
}

// attrValue returns the value of the attribute with local name key,
// regardless of its namespace prefix.
func attrValue(e *etree.Element, key string) string {
	if e == nil {
		return ""
	}
	for _, a := range e.Attr {
		if a.Key == key {
			return a.Value
		}
	}
	return ""
}

// stripBOM removes a leading UTF-8 BOM from data.
func stripBOM(data []byte) []byte {
	_, body := splitBOM(data)
	return body
}

func splitBOM(data []byte) (bom, body []byte) {
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		return data[:3], data[3:]
	}
	return nil, data
}
