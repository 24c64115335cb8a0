package epub

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
)

// Book is a parsed EPUB publication. It owns its archive and every Item;
// none of its methods are safe for concurrent use.
type Book struct {
	Version  string
	Metadata Metadata
	Manifest []*Item
	Spine    []SpineRef
	Nav      Nav

	archive  *Archive
	pkg      *Package
	opfPath  string
	resolver Resolver
	index    map[string]*Item
	opts     options
}

// Open reads and parses the EPUB file at path.
func Open(path string, opts ...Option) (*Book, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read EPUB: %w", err)
	}
	return Parse(data, opts...)
}

// Parse parses an EPUB held in memory.
func Parse(data []byte, opts ...Option) (*Book, error) {
	o := buildOptions(opts)

	archive, err := OpenArchive(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEPub, err)
	}

	opfPath, err := LocateOPF(archive, o.log)
	if err != nil {
		return nil, err
	}

	b := &Book{
		archive:  archive,
		opfPath:  opfPath,
		resolver: NewResolver(opfPath),
		opts:     o,
	}

	opfData, err := archive.ReadFile(opfPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read OPF: %w", err)
	}
	pkg, err := ParseOPF(opfData, o.log)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEPub, err)
	}
	b.bind(pkg)

	o.log.Debug("parsed package document",
		zap.String("path", opfPath),
		zap.String("version", b.Version),
		zap.Int("manifest", len(b.Manifest)),
		zap.Int("spine", len(b.Spine)),
		zap.String("nav", b.Nav.Source.String()))

	return b, nil
}

// bind replaces the book's model with pkg: manifest items, the id index,
// the linked spine and the table of contents.
func (b *Book) bind(pkg *Package) {
	b.pkg = pkg
	b.Version = pkg.Version
	b.Metadata = pkg.Metadata.clone()

	b.Manifest = make([]*Item, 0, len(pkg.Manifest))
	b.index = make(map[string]*Item, len(pkg.Manifest))
	for _, entry := range pkg.Manifest {
		item := &Item{ManifestEntry: entry, book: b}
		b.Manifest = append(b.Manifest, item)
		if _, dup := b.index[entry.ID]; dup {
			b.opts.log.Warn("duplicate manifest id", zap.String("id", entry.ID))
			continue
		}
		b.index[entry.ID] = item
	}

	b.Spine = make([]SpineRef, 0, len(pkg.Spine))
	for _, ref := range pkg.Spine {
		ref.Item = b.index[ref.IDRef]
		if ref.Item == nil {
			b.opts.log.Warn("spine item not found in manifest", zap.String("idref", ref.IDRef))
		}
		b.Spine = append(b.Spine, ref)
	}

	b.Nav = resolveNav(pkg, b, b.opts.log)
}

// OPFPath returns the archive path of the package document.
func (b *Book) OPFPath() string {
	return b.opfPath
}

// Base returns the directory relative references are resolved against.
func (b *Book) Base() string {
	return b.resolver.Base()
}

// Package returns the normalized package document model, including its
// full parse tree.
func (b *Book) Package() *Package {
	return b.pkg
}

// ItemByID returns the manifest item with the given id, or nil.
func (b *Book) ItemByID(id string) *Item {
	return b.index[id]
}

// ItemByHref returns the first manifest item whose href resolves to the same
// archive path as href, or nil.
func (b *Book) ItemByHref(href string) *Item {
	target := b.resolver.Resolve(href)
	return b.findItem(func(m ManifestEntry) bool {
		return b.resolver.Resolve(m.Href) == target
	})
}

func (b *Book) findItem(match func(ManifestEntry) bool) *Item {
	for _, item := range b.Manifest {
		if match(item.ManifestEntry) {
			return item
		}
	}
	return nil
}

// FileExists reports whether ref resolves to an archive entry.
func (b *Book) FileExists(ref string) bool {
	return b.archive.Has(b.resolver.Resolve(ref))
}

// ReadFile returns the content of the archive entry ref resolves to.
func (b *Book) ReadFile(ref string) ([]byte, error) {
	return b.archive.ReadFile(b.resolver.Resolve(ref))
}

// WriteFile creates or replaces the archive entry ref resolves to.
func (b *Book) WriteFile(ref string, data []byte) {
	b.archive.WriteFile(b.resolver.Resolve(ref), data)
}

// OPF returns the package document as currently stored in the archive.
func (b *Book) OPF() (string, error) {
	data, err := b.archive.ReadFile(b.opfPath)
	if err != nil {
		return "", err
	}
	return decodeText(data)
}

// SetOPF stores xml as the package document. The parsed model is left as
// it is; parse the exported archive again to observe the new document.
func (b *Book) SetOPF(xml string) {
	b.archive.WriteFile(b.opfPath, []byte(xml))
}

// UpdateMetadata merges b.Metadata into the retained package document tree
// and writes the document back to its archive path. Only the metadata
// element is re-serialized; every byte outside it is written as parsed.
// Without edits the archive entry is left untouched.
func (b *Book) UpdateMetadata() error {
	if !b.pkg.mergeMetadata(b.Metadata.clone()) {
		return nil
	}
	b.Metadata = b.pkg.Metadata.clone()

	out, err := b.pkg.render()
	if err != nil {
		return fmt.Errorf("failed to serialize OPF: %w", err)
	}
	b.archive.WriteFile(b.opfPath, out)
	b.opts.log.Debug("updated package metadata", zap.String("path", b.opfPath))
	return nil
}

// Export returns the archive re-serialized as EPUB bytes. The mimetype entry
// is written first and stored uncompressed.
func (b *Book) Export() ([]byte, error) {
	var buf bytes.Buffer
	if err := b.archive.WriteTo(&buf, b.opts.level); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteTo streams the exported archive to w.
func (b *Book) WriteTo(w io.Writer) (int64, error) {
	data, err := b.Export()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

// Save writes the exported archive to path.
func (b *Book) Save(path string) error {
	data, err := b.Export()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write EPUB: %w", err)
	}
	return nil
}
