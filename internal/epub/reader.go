package epub

import (
	"archive/zip"
	"bytes"
	"compress/flate"
	"fmt"
	"io"
	"sort"
	"strings"
)

// MimetypePath is the fixed location of the archive mimetype declaration.
const MimetypePath = "mimetype"

// archiveEntry holds one archive member. Entries read from the source
// archive keep their *zip.File until they are read or overwritten.
type archiveEntry struct {
	name   string
	file   *zip.File
	data   []byte
	loaded bool
}

// Archive is an in-memory virtual filesystem over an EPUB ZIP container.
// Entries are addressed by their exact internal path.
type Archive struct {
	entries map[string]*archiveEntry
	order   []string
}

// OpenArchive reads a ZIP container from data.
func OpenArchive(data []byte) (*Archive, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open EPUB archive: %w", err)
	}

	a := &Archive{entries: make(map[string]*archiveEntry, len(zr.File))}
	for _, f := range zr.File {
		if _, dup := a.entries[f.Name]; dup {
			continue
		}
		a.entries[f.Name] = &archiveEntry{name: f.Name, file: f}
		a.order = append(a.order, f.Name)
	}
	return a, nil
}

// Names returns the entry names in archive order, directories excluded.
func (a *Archive) Names() []string {
	names := make([]string, 0, len(a.order))
	for _, name := range a.order {
		if !isDir(name) {
			names = append(names, name)
		}
	}
	return names
}

// Has reports whether a file entry exists at name.
func (a *Archive) Has(name string) bool {
	_, ok := a.entries[name]
	return ok && !isDir(name)
}

// ReadFile returns a copy of the contents of the entry at name.
func (a *Archive) ReadFile(name string) ([]byte, error) {
	e, ok := a.entries[name]
	if !ok || isDir(name) {
		return nil, &EntryNotFoundError{Path: name}
	}
	if e.loaded {
		return bytes.Clone(e.data), nil
	}

	rc, err := e.file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", name, err)
	}
	e.data = data
	e.loaded = true
	return bytes.Clone(data), nil
}

// WriteFile creates or replaces the entry at name.
func (a *Archive) WriteFile(name string, data []byte) {
	e, ok := a.entries[name]
	if !ok {
		e = &archiveEntry{name: name}
		a.entries[name] = e
		a.order = append(a.order, name)
	}
	e.file = nil
	e.data = bytes.Clone(data)
	e.loaded = true
}

// WriteTo serializes the archive as a ZIP container. The mimetype entry is
// written first and stored without compression; every other entry is
// deflated at level.
func (a *Archive) WriteTo(w io.Writer, level int) error {
	zw := zip.NewWriter(w)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, level)
	})

	names := make([]string, len(a.order))
	copy(names, a.order)
	sort.SliceStable(names, func(i, j int) bool {
		return names[i] == MimetypePath && names[j] != MimetypePath
	})

	for _, name := range names {
		if err := a.writeEntry(zw, name); err != nil {
			return err
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finalize EPUB archive: %w", err)
	}
	return nil
}

func (a *Archive) writeEntry(zw *zip.Writer, name string) error {
	header := &zip.FileHeader{Name: name, Method: zip.Deflate}
	if e := a.entries[name]; e.file != nil {
		header.Modified = e.file.Modified
		header.Comment = e.file.Comment
	}
	if name == MimetypePath || isDir(name) {
		header.Method = zip.Store
	}

	fw, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("failed to create archive entry %s: %w", name, err)
	}
	if isDir(name) {
		return nil
	}

	data, err := a.ReadFile(name)
	if err != nil {
		return err
	}
	if _, err := fw.Write(data); err != nil {
		return fmt.Errorf("failed to write archive entry %s: %w", name, err)
	}
	return nil
}

func isDir(name string) bool {
	return strings.HasSuffix(name, "/")
}
