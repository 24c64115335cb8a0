package epub

import (
	"reflect"
	"testing"
)

func TestParseNCX(t *testing.T) {
	toc, err := ParseNCX([]byte(basicNCX))
	if err != nil {
		t.Fatalf("ParseNCX failed: %v", err)
	}

	want := []TOCNode{
		{
			Label: "NCX Chapter 1",
			Href:  "text/chapter1.xhtml",
			Children: []TOCNode{
				{Label: "NCX Section 1.1", Href: "text/chapter1.xhtml#s1"},
			},
		},
		{Label: "NCX Chapter 2", Href: "text/chapter2.xhtml"},
		{Label: "NCX Appendix", Href: "text/appendix.xhtml"},
	}
	if !reflect.DeepEqual(toc, want) {
		t.Errorf("TOC = %+v, want %+v", toc, want)
	}
}

func TestParseNCX_HTMLEntities(t *testing.T) {
	ncx := `<?xml version="1.0" encoding="UTF-8"?>
<ncx xmlns="http://www.daisy.org/z3986/2005/ncx/" version="2005-1">
  <navMap>
    <navPoint id="p1"><navLabel><text>Chapter&nbsp;One &mdash; Start</text></navLabel><content src="c1.xhtml"/></navPoint>
  </navMap>
</ncx>`
	toc, err := ParseNCX([]byte(ncx))
	if err != nil {
		t.Fatalf("ParseNCX failed: %v", err)
	}
	if len(toc) != 1 || toc[0].Label != "Chapter\u00a0One \u2014 Start" {
		t.Errorf("TOC = %+v", toc)
	}
}

func TestParseNCX_EmptyNavMap(t *testing.T) {
	toc, err := ParseNCX([]byte(`<ncx><navMap/></ncx>`))
	if err != nil {
		t.Fatalf("ParseNCX failed: %v", err)
	}
	if toc != nil {
		t.Errorf("TOC = %+v, want nil", toc)
	}
}

func TestParseNCX_Invalid(t *testing.T) {
	if _, err := ParseNCX([]byte("garbage")); err == nil {
		t.Fatal("expected error for a document without a root element")
	}
}
