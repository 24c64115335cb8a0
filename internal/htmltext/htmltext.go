// Package htmltext converts HTML fragments into plain text.
//
// Output is not word-wrapped. Block elements start a new line, images and
// the contents of script and style elements are dropped, and runs of
// whitespace inside text collapse to a single space.
package htmltext

import (
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// blockTags insert a line break when they open.
var blockTags = map[atom.Atom]bool{
	atom.P:          true,
	atom.Br:         true,
	atom.Div:        true,
	atom.H1:         true,
	atom.H2:         true,
	atom.H3:         true,
	atom.H4:         true,
	atom.H5:         true,
	atom.H6:         true,
	atom.Li:         true,
	atom.Tr:         true,
	atom.Blockquote: true,
	atom.Hr:         true,
}

// skipTags have their content dropped.
var skipTags = map[atom.Atom]bool{
	atom.Script: true,
	atom.Style:  true,
}

// Extract returns the trimmed plain text of fragment.
func Extract(fragment string) (string, error) {
	z := html.NewTokenizer(strings.NewReader(fragment))
	var b strings.Builder
	skipDepth := 0
	lastWasNewline := true

	newline := func() {
		if b.Len() > 0 && !lastWasNewline {
			b.WriteByte('\n')
			lastWasNewline = true
		}
	}

	for {
		switch z.Next() {
		case html.ErrorToken:
			if err := z.Err(); !errors.Is(err, io.EOF) {
				return "", err
			}
			return tidyLines(b.String()), nil

		case html.StartTagToken:
			name, _ := z.TagName()
			a := atom.Lookup(name)
			if skipTags[a] {
				skipDepth++
				continue
			}
			if skipDepth == 0 && blockTags[a] {
				newline()
			}

		case html.SelfClosingTagToken:
			name, _ := z.TagName()
			if skipDepth == 0 && blockTags[atom.Lookup(name)] {
				newline()
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			if skipTags[atom.Lookup(name)] && skipDepth > 0 {
				skipDepth--
			}

		case html.TextToken:
			if skipDepth > 0 {
				continue
			}
			if text := collapseWhitespace(string(z.Text())); text != "" {
				if lastWasNewline {
					text = strings.TrimLeft(text, " ")
				}
				if text != "" {
					b.WriteString(text)
					lastWasNewline = false
				}
			}
		}
	}
}

// tidyLines drops trailing spaces from every line and trims the result.
func tidyLines(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " ")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// collapseWhitespace folds whitespace runs to one space. A string holding
// only whitespace becomes a single space so adjacent inline text stays
// separated; an empty string stays empty.
func collapseWhitespace(s string) string {
	if s == "" {
		return ""
	}
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return " "
	}
	out := strings.Join(fields, " ")
	if isSpace(s[0]) {
		out = " " + out
	}
	if isSpace(s[len(s)-1]) {
		out += " "
	}
	return out
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}
