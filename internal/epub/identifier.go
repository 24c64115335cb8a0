package epub

import (
	"regexp"
	"strings"

	"github.com/beevik/etree"
)

var (
	isbnSchemePattern = regexp.MustCompile(`(?i)^(e-?)?isbn`)
	asinSchemePattern = regexp.MustCompile(`(?i)^(mobi-)?asin`)
	isbnValuePattern  = regexp.MustCompile(`(?i)^(?:URN:ISBN|ISBN):?(.+)`)
	asinValuePattern  = regexp.MustCompile(`(?i)^URN:ASIN:(.+)`)
	isbnIDPattern     = regexp.MustCompile(`(?i)^e?isbn(\d{10,13})$`)

	isbnSeparators = strings.NewReplacer(" ", "", "\t", "", "\n", "", "\r", "", "-", "", ".", "")
	asinSeparators = strings.NewReplacer(" ", "", "\t", "", "\n", "", "\r", "", "-", "")
)

// identifierOrigin records how a candidate was read from its element, so an
// edited value can be written back in the same form.
type identifierOrigin int

const (
	originScheme identifierOrigin = iota + 1
	originValue
	originID
)

type identifierSource struct {
	el     *etree.Element
	origin identifierOrigin
	prefix string
}

type identifierSources struct {
	isbn identifierSource
	asin identifierSource
}

// resolveIdentifiers classifies dc:identifier elements into ISBN and ASIN.
// Later matches overwrite earlier ones of the same kind. The winners are
// normalized and dropped unless they have a valid length.
func resolveIdentifiers(ids []*etree.Element, refines refinesMap) (isbn, asin string, sources identifierSources) {
	for _, el := range ids {
		value := strings.TrimSpace(el.Text())
		if value == "" {
			continue
		}
		id := attrValue(el, "id")
		scheme := attrValue(el, "scheme")
		if scheme == "" && id != "" {
			scheme = refines.find(id, "identifier-type")
		}

		switch {
		case isbnSchemePattern.MatchString(scheme):
			isbn = value
			sources.isbn = identifierSource{el: el, origin: originScheme}
		case asinSchemePattern.MatchString(scheme):
			asin = value
			sources.asin = identifierSource{el: el, origin: originScheme}
		case isbnValuePattern.MatchString(value):
			m := isbnValuePattern.FindStringSubmatchIndex(value)
			isbn = value[m[2]:m[3]]
			sources.isbn = identifierSource{el: el, origin: originValue, prefix: value[:m[2]]}
		case asinValuePattern.MatchString(value):
			m := asinValuePattern.FindStringSubmatchIndex(value)
			asin = value[m[2]:m[3]]
			sources.asin = identifierSource{el: el, origin: originValue, prefix: value[:m[2]]}
		case isbnIDPattern.MatchString(id):
			isbn = isbnIDPattern.FindStringSubmatch(id)[1]
			sources.isbn = identifierSource{el: el, origin: originID}
		}
	}

	isbn = NormalizeISBN(isbn)
	if isbn == "" {
		sources.isbn = identifierSource{}
	}
	asin = NormalizeASIN(asin)
	if asin == "" {
		sources.asin = identifierSource{}
	}
	return isbn, asin, sources
}

// NormalizeISBN strips whitespace, hyphens and periods from raw and returns
// it when exactly 10 or 13 characters remain, otherwise "".
func NormalizeISBN(raw string) string {
	v := isbnSeparators.Replace(raw)
	if len(v) != 10 && len(v) != 13 {
		return ""
	}
	return v
}

// NormalizeASIN strips whitespace and hyphens from raw and returns it when
// exactly 10 characters remain, otherwise "".
func NormalizeASIN(raw string) string {
	v := asinSeparators.Replace(raw)
	if len(v) != 10 {
		return ""
	}
	return v
}
