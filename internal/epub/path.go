package epub

import (
	"html"
	"net/url"
	"path"
	"strings"
)

// Resolver maps hrefs found in the package document to archive entry names.
type Resolver struct {
	base string
}

// NewResolver returns a Resolver relative to the directory holding opfPath.
// "OEBPS/content.opf" yields base "OEBPS/", a root-level document yields "".
func NewResolver(opfPath string) Resolver {
	opfPath = strings.TrimPrefix(opfPath, "/")
	dir := ""
	if i := strings.LastIndex(opfPath, "/"); i >= 0 {
		dir = opfPath[:i+1]
	}
	return Resolver{base: dir}
}

// Base returns the directory all relative references are resolved against.
func (r Resolver) Base() string {
	return r.base
}

// Resolve turns ref into an archive entry name. A leading slash makes ref
// relative to the archive root. The result is percent-decoded and then
// HTML-entity decoded.
func (r Resolver) Resolve(ref string) string {
	var joined string
	if strings.HasPrefix(ref, "/") {
		joined = ref[1:]
	} else {
		joined = path.Join(r.base, ref)
	}

	if decoded, err := url.PathUnescape(joined); err == nil {
		joined = decoded
	}
	return html.UnescapeString(joined)
}
