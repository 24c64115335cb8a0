package epub

import (
	"testing"
)

func TestResolveNav(t *testing.T) {
	const (
		navItem = `    <item id="nav" href="nav.xhtml" media-type="application/xhtml+xml" properties="nav"/>`
		ncxItem = `    <item id="ncx" href="toc.ncx" media-type="application/x-dtbncx+xml"/>`
		chapter = `    <item id="c1" href="text/chapter1.xhtml" media-type="application/xhtml+xml"/>`
	)

	tests := []struct {
		name       string
		spineAttrs string
		items      string
		files      []zipEntry
		wantSource NavSource
		wantLen    int
	}{
		{
			name:       "nav preferred over ncx",
			spineAttrs: ` toc="ncx"`,
			items:      ncxItem + "\n" + navItem,
			files: []zipEntry{
				{Name: "OEBPS/nav.xhtml", Body: basicNav},
				{Name: "OEBPS/toc.ncx", Body: basicNCX},
			},
			wantSource: NavSourceNav,
			wantLen:    2,
		},
		{
			name:       "ncx from spine toc attribute",
			spineAttrs: ` toc="legacy"`,
			items:      `    <item id="legacy" href="toc.ncx" media-type="text/xml"/>` + "\n" + chapter,
			files:      []zipEntry{{Name: "OEBPS/toc.ncx", Body: basicNCX}},
			wantSource: NavSourceNCX,
			wantLen:    3,
		},
		{
			name:       "dangling toc id falls back to media type",
			spineAttrs: ` toc="missing"`,
			items:      chapter + "\n" + ncxItem,
			files:      []zipEntry{{Name: "OEBPS/toc.ncx", Body: basicNCX}},
			wantSource: NavSourceNCX,
			wantLen:    3,
		},
		{
			name:       "no navigation source",
			items:      chapter,
			wantSource: NavSourceNone,
		},
		{
			name:       "nav document missing from archive",
			items:      navItem,
			wantSource: NavSourceNav,
		},
		{
			name:       "unparsable ncx",
			spineAttrs: ` toc="ncx"`,
			items:      ncxItem,
			files:      []zipEntry{{Name: "OEBPS/toc.ncx", Body: "garbage"}},
			wantSource: NavSourceNCX,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opf := opfWithManifest(tt.spineAttrs, tt.items, "")
			files := append([]zipEntry{{Name: "OEBPS/content.opf", Body: opf}}, tt.files...)
			book, err := Parse(buildEPUB(t, "OEBPS/content.opf", files...))
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if book.Nav.Source != tt.wantSource {
				t.Errorf("Nav.Source = %v, want %v", book.Nav.Source, tt.wantSource)
			}
			if len(book.Nav.TOC) != tt.wantLen {
				t.Errorf("len(Nav.TOC) = %d, want %d", len(book.Nav.TOC), tt.wantLen)
			}
			if tt.wantLen == 0 && book.Nav.TOC != nil {
				t.Errorf("Nav.TOC = %+v, want nil", book.Nav.TOC)
			}
		})
	}
}

func TestNavSourceString(t *testing.T) {
	tests := []struct {
		source NavSource
		want   string
	}{
		{NavSourceNone, "none"},
		{NavSourceNav, "nav"},
		{NavSourceNCX, "ncx"},
	}
	for _, tt := range tests {
		if got := tt.source.String(); got != tt.want {
			t.Errorf("NavSource(%d).String() = %q, want %q", tt.source, got, tt.want)
		}
	}
}
