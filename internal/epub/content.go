package epub

import (
	"bytes"
	"fmt"
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Item is a manifest entry bound to the publication that owns it. Content
// is fetched from the archive on demand through the publication's resolver.
type Item struct {
	ManifestEntry

	book *Book
}

// Path returns the archive entry name the item's href resolves to.
func (i *Item) Path() string {
	return i.book.resolver.Resolve(i.Href)
}

// Exists reports whether the item's content is present in the archive.
func (i *Item) Exists() bool {
	return i.book.archive.Has(i.Path())
}

// Bytes returns the raw content of the item.
func (i *Item) Bytes() ([]byte, error) {
	return i.book.archive.ReadFile(i.Path())
}

// Open returns a reader over the item's content.
func (i *Item) Open() (io.ReadCloser, error) {
	data, err := i.Bytes()
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Text returns the item's content decoded as text. UTF-16 content is
// recognized by its byte order mark; anything else is treated as UTF-8.
func (i *Item) Text() (string, error) {
	data, err := i.Bytes()
	if err != nil {
		return "", err
	}
	return decodeText(data)
}

// SetText replaces the item's content with text.
func (i *Item) SetText(text string) {
	i.SetBytes([]byte(text))
}

// SetBytes replaces the item's content with data.
func (i *Item) SetBytes(data []byte) {
	i.book.archive.WriteFile(i.Path(), data)
}

func decodeText(data []byte) (string, error) {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(dec, data)
	if err != nil {
		return "", fmt.Errorf("failed to decode text: %w", err)
	}
	return string(out), nil
}
