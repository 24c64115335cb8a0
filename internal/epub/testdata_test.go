package epub

import (
	"archive/zip"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// zipEntry is one file of a test archive.
type zipEntry struct {
	Name   string
	Body   string
	Method uint16
}

// buildZip creates an archive from entries in order. Entries default to
// deflate compression.
func buildZip(t *testing.T, entries ...zipEntry) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, e := range entries {
		method := e.Method
		if method == 0 && e.Name != "mimetype" {
			method = zip.Deflate
		}
		fw, err := w.CreateHeader(&zip.FileHeader{Name: e.Name, Method: method})
		if err != nil {
			t.Fatalf("failed to create %s: %v", e.Name, err)
		}
		if _, err := fw.Write([]byte(e.Body)); err != nil {
			t.Fatalf("failed to write %s: %v", e.Name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("failed to close zip: %v", err)
	}
	return buf.Bytes()
}

// buildEPUB creates an archive with the mimetype entry, a container
// descriptor pointing at opfPath, and the given files.
func buildEPUB(t *testing.T, opfPath string, files ...zipEntry) []byte {
	t.Helper()
	entries := []zipEntry{
		{Name: "mimetype", Body: "application/epub+zip", Method: zip.Store},
		{Name: ContainerPath, Body: containerXML(opfPath)},
	}
	return buildZip(t, append(entries, files...)...)
}

func writeEPUBFile(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.epub")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("failed to write test epub: %v", err)
	}
	return path
}

func containerXML(opfPath string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="%s" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`, opfPath)
}

// basicOPF is an EPUB 3 package document with a nav document and an NCX.
const basicOPF = `<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0" unique-identifier="uid" prefix="rendition: http://www.idpf.org/vocab/rendition/#">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:opf="http://www.idpf.org/2007/opf">
    <dc:identifier id="uid">urn:uuid:12345678-1234-1234-1234-123456789abc</dc:identifier>
    <dc:identifier opf:scheme="ISBN">978-0-13-468599-1</dc:identifier>
    <dc:title>Basic Book</dc:title>
    <dc:creator id="author1">Jane Author</dc:creator>
    <meta refines="#author1" property="role" scheme="marc:relators">aut</meta>
    <meta refines="#author1" property="file-as">Author, Jane</meta>
    <dc:language>en</dc:language>
    <dc:publisher>Test Press</dc:publisher>
    <dc:description>&lt;p&gt;A &lt;b&gt;short&lt;/b&gt; book.&lt;/p&gt;</dc:description>
    <dc:subject>Testing</dc:subject>
    <meta property="dcterms:modified">2024-01-01T00:00:00Z</meta>
    <meta name="cover" content="cover-image"/>
  </metadata>
  <manifest>
    <item id="cover.css" href="css/cover.css" media-type="text/css"/>
    <item id="nav" href="nav.xhtml" media-type="application/xhtml+xml" properties="nav"/>
    <item id="ncx" href="toc.ncx" media-type="application/x-dtbncx+xml"/>
    <item id="chapter1" href="text/chapter1.xhtml" media-type="application/xhtml+xml"/>
    <item id="cover-image" href="images/cover.png" media-type="image/png"/>
  </manifest>
  <spine toc="ncx" page-progression-direction="ltr">
    <itemref idref="chapter1"/>
    <itemref idref="nav" linear="no"/>
  </spine>
  <guide>
    <reference type="toc" title="Contents" href="nav.xhtml"/>
  </guide>
  <!-- producer note -->
  <bindings>
    <mediaType media-type="application/x-demo" handler="chapter1"/>
  </bindings>
</package>`

const basicNav = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE html>
<html xmlns="http://www.w3.org/1999/xhtml" xmlns:epub="http://www.idpf.org/2007/ops">
<head><title>Contents</title></head>
<body>
  <nav epub:type="landmarks">
    <ol><li><a epub:type="bodymatter" href="text/chapter1.xhtml">Start</a></li></ol>
  </nav>
  <nav epub:type="toc" id="toc">
    <h1>Contents</h1>
    <ol>
      <li><a href="text/chapter1.xhtml">Chapter 1</a>
        <ol>
          <li><a href="text/chapter1.xhtml#s1">Section 1.1</a></li>
          <li><span>Interlude</span>
            <ol>
              <li><a href="text/chapter1.xhtml#s2">Deep   Section</a></li>
            </ol>
          </li>
        </ol>
      </li>
      <li><a href="text/chapter2.xhtml">Chapter 2</a></li>
    </ol>
  </nav>
</body>
</html>`

const basicNCX = `<?xml version="1.0" encoding="UTF-8"?>
<ncx xmlns="http://www.daisy.org/z3986/2005/ncx/" version="2005-1">
  <head>
    <meta name="dtb:uid" content="test-uid"/>
  </head>
  <docTitle><text>Basic Book</text></docTitle>
  <navMap>
    <navPoint id="np1" playOrder="1">
      <navLabel><text>NCX Chapter 1</text></navLabel>
      <content src="text/chapter1.xhtml"/>
      <navPoint id="np1-1" playOrder="2">
        <navLabel><text>NCX Section 1.1</text></navLabel>
        <content src="text/chapter1.xhtml#s1"/>
      </navPoint>
    </navPoint>
    <navPoint id="np2" playOrder="3">
      <navLabel><text>NCX Chapter 2</text></navLabel>
      <content src="text/chapter2.xhtml"/>
    </navPoint>
    <navPoint id="np3" playOrder="4">
      <navLabel><text>NCX Appendix</text></navLabel>
      <content src="text/appendix.xhtml"/>
    </navPoint>
  </navMap>
</ncx>`

const chapterXHTML = `<?xml version="1.0" encoding="UTF-8"?>
<html xmlns="http://www.w3.org/1999/xhtml">
<head><title>Chapter 1</title></head>
<body><h1 id="s1">Chapter 1</h1><p id="s2">Hello, World!</p></body>
</html>`

const coverCSS = `body { margin: 0; }`

// buildBasicEPUB returns an EPUB 3 archive rooted at OEBPS/.
func buildBasicEPUB(t *testing.T) []byte {
	t.Helper()
	return buildEPUB(t, "OEBPS/content.opf",
		zipEntry{Name: "OEBPS/content.opf", Body: basicOPF},
		zipEntry{Name: "OEBPS/css/cover.css", Body: coverCSS},
		zipEntry{Name: "OEBPS/nav.xhtml", Body: basicNav},
		zipEntry{Name: "OEBPS/toc.ncx", Body: basicNCX},
		zipEntry{Name: "OEBPS/text/chapter1.xhtml", Body: chapterXHTML},
	)
}

// opfWithManifest wraps manifest items and spine itemrefs in an EPUB 2
// package document.
func opfWithManifest(spineAttrs, items, itemrefs string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="2.0" unique-identifier="bookid">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:opf="http://www.idpf.org/2007/opf">
    <dc:title>Legacy Book</dc:title>
    <dc:identifier id="bookid">urn:uuid:legacy</dc:identifier>
  </metadata>
  <manifest>
` + items + `
  </manifest>
  <spine` + spineAttrs + `>
` + itemrefs + `
  </spine>
</package>`
}
