package epub

import (
	"fmt"
	"path"
	"strings"
)

// CoverInfo holds information about the detected cover image.
type CoverInfo struct {
	Item            *Item
	DetectionMethod string // "properties", "meta", "filename"
}

// Cover detects the cover image from the manifest using multiple methods.
// Methods are tried in priority order:
//  1. properties="cover-image" (EPUB 3.0)
//  2. meta name="cover" (EPUB 2.0)
//  3. filename pattern (basename contains "cover", case-insensitive, SVG excluded)
func (b *Book) Cover() (*CoverInfo, error) {
	if item := b.findItem(func(m ManifestEntry) bool { return m.HasProperty("cover-image") }); item != nil {
		return &CoverInfo{Item: item, DetectionMethod: "properties"}, nil
	}

	for _, m := range b.Metadata.Meta {
		if m.Name != "cover" || m.Content == "" {
			continue
		}
		if item := b.ItemByID(m.Content); item != nil {
			return &CoverInfo{Item: item, DetectionMethod: "meta"}, nil
		}
		if item := b.ItemByHref(m.Content); item != nil && isImageMediaType(item.MediaType) {
			return &CoverInfo{Item: item, DetectionMethod: "meta"}, nil
		}
	}

	if item := b.findItem(func(m ManifestEntry) bool {
		return isImageMediaType(m.MediaType) && strings.Contains(strings.ToLower(path.Base(m.Href)), "cover")
	}); item != nil {
		return &CoverInfo{Item: item, DetectionMethod: "filename"}, nil
	}

	return nil, fmt.Errorf("%s: %w", b.opfPath, ErrNoCover)
}

// isImageMediaType checks if a media type is a raster image (SVG excluded).
func isImageMediaType(mediaType string) bool {
	if mediaType == "image/svg+xml" {
		return false
	}
	return strings.HasPrefix(mediaType, "image/")
}
