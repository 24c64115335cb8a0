package epub

import (
	"errors"
	"testing"
)

func TestCover(t *testing.T) {
	tests := []struct {
		name       string
		metadata   string
		items      string
		wantID     string
		wantMethod string
	}{
		{
			name: "cover-image property",
			items: `    <item id="img" href="images/a.png" media-type="image/png"/>
    <item id="cv" href="images/b.png" media-type="image/png" properties="cover-image"/>`,
			wantID:     "cv",
			wantMethod: "properties",
		},
		{
			name:     "meta by id",
			metadata: `<meta name="cover" content="front"/>`,
			items: `    <item id="front" href="images/front.jpg" media-type="image/jpeg"/>
    <item id="cover" href="images/cover.jpg" media-type="image/jpeg"/>`,
			wantID:     "front",
			wantMethod: "meta",
		},
		{
			name:       "meta by href",
			metadata:   `<meta name="cover" content="images/front.jpg"/>`,
			items:      `    <item id="i1" href="images/front.jpg" media-type="image/jpeg"/>`,
			wantID:     "i1",
			wantMethod: "meta",
		},
		{
			name:     "filename pattern",
			metadata: `<meta name="cover" content="missing"/>`,
			items: `    <item id="c" href="text/cover.xhtml" media-type="application/xhtml+xml"/>
    <item id="i" href="images/MyCover.JPG" media-type="image/jpeg"/>`,
			wantID:     "i",
			wantMethod: "filename",
		},
		{
			name:  "svg excluded",
			items: `    <item id="s" href="images/cover.svg" media-type="image/svg+xml"/>`,
		},
		{
			name:  "no images",
			items: `    <item id="c1" href="c1.xhtml" media-type="application/xhtml+xml"/>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opf := `<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="2.0">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">` + tt.metadata + `</metadata>
  <manifest>
` + tt.items + `
  </manifest>
  <spine/>
</package>`
			book, err := Parse(buildEPUB(t, "OEBPS/content.opf", zipEntry{Name: "OEBPS/content.opf", Body: opf}))
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}

			info, err := book.Cover()
			if tt.wantID == "" {
				if !errors.Is(err, ErrNoCover) {
					t.Fatalf("Cover() error = %v, want ErrNoCover", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Cover() error = %v", err)
			}
			if info.Item.ID != tt.wantID || info.DetectionMethod != tt.wantMethod {
				t.Errorf("Cover() = %s via %s, want %s via %s", info.Item.ID, info.DetectionMethod, tt.wantID, tt.wantMethod)
			}
		})
	}
}

func TestCover_BasicBook(t *testing.T) {
	info, err := parseBasicBook(t).Cover()
	if err != nil {
		t.Fatalf("Cover() error = %v", err)
	}
	if info.Item.ID != "cover-image" || info.DetectionMethod != "meta" {
		t.Errorf("Cover() = %s via %s", info.Item.ID, info.DetectionMethod)
	}
}
