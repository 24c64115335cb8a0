package epub

import "testing"

func TestNewResolver_Base(t *testing.T) {
	tests := []struct {
		opfPath string
		want    string
	}{
		{"OEBPS/content.opf", "OEBPS/"},
		{"/OEBPS/content.opf", "OEBPS/"},
		{"a/b/package.opf", "a/b/"},
		{"content.opf", ""},
	}
	for _, tt := range tests {
		if got := NewResolver(tt.opfPath).Base(); got != tt.want {
			t.Errorf("NewResolver(%q).Base() = %q, want %q", tt.opfPath, got, tt.want)
		}
	}
}

func TestResolver_Resolve(t *testing.T) {
	tests := []struct {
		name string
		base string
		ref  string
		want string
	}{
		{name: "relative", base: "OEBPS/content.opf", ref: "cover.css", want: "OEBPS/cover.css"},
		{name: "relative subdir", base: "OEBPS/content.opf", ref: "css/cover.css", want: "OEBPS/css/cover.css"},
		{name: "absolute", base: "OEBPS/content.opf", ref: "/META-INF/x.xml", want: "META-INF/x.xml"},
		{name: "absolute at root", base: "content.opf", ref: "/META-INF/x.xml", want: "META-INF/x.xml"},
		{name: "root package", base: "content.opf", ref: "text/ch1.xhtml", want: "text/ch1.xhtml"},
		{name: "parent reference", base: "OEBPS/text/content.opf", ref: "../images/a.png", want: "OEBPS/images/a.png"},
		{name: "percent encoded", base: "OEBPS/content.opf", ref: "text/chapter%201.xhtml", want: "OEBPS/text/chapter 1.xhtml"},
		{name: "entity escaped", base: "OEBPS/content.opf", ref: "text/a&amp;b.xhtml", want: "OEBPS/text/a&b.xhtml"},
		{name: "percent then entity", base: "OEBPS/content.opf", ref: "text/a%26amp;b.xhtml", want: "OEBPS/text/a&b.xhtml"},
		{name: "invalid escape kept", base: "OEBPS/content.opf", ref: "text/100%.xhtml", want: "OEBPS/text/100%.xhtml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver(tt.base)
			if got := r.Resolve(tt.ref); got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.ref, got, tt.want)
			}
		})
	}
}
