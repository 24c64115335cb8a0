package epub

import (
	"golang.org/x/text/language"
)

// LanguageTags parses the declared languages as BCP 47 tags. Values that do
// not parse are reported as language.Und so positions line up with
// Languages.
func (md Metadata) LanguageTags() []language.Tag {
	if len(md.Languages) == 0 {
		return nil
	}
	tags := make([]language.Tag, len(md.Languages))
	for i, l := range md.Languages {
		tag, err := language.Parse(l)
		if err != nil {
			tag = language.Und
		}
		tags[i] = tag
	}
	return tags
}
