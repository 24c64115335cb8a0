package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"sigs.k8s.io/yaml"

	"github.com/yuanying/epubmeta/internal/epub"
)

// infoDocument is the machine-readable form of the info command.
type infoDocument struct {
	Version   string           `json:"version"`
	Package   string           `json:"package"`
	Metadata  metadataDocument `json:"metadata"`
	Manifest  int              `json:"manifestItems"`
	Spine     int              `json:"spineItems"`
	TOCSource string           `json:"tocSource"`
	TOC       []tocDocument    `json:"toc,omitempty"`
}

type metadataDocument struct {
	Title       string            `json:"title,omitempty"`
	Creators    []creatorDocument `json:"creators,omitempty"`
	Publisher   string            `json:"publisher,omitempty"`
	Description string            `json:"description,omitempty"`
	Languages   []string          `json:"languages,omitempty"`
	ISBN        string            `json:"isbn,omitempty"`
	ASIN        string            `json:"asin,omitempty"`
	Subjects    []string          `json:"subjects,omitempty"`
	Date        string            `json:"date,omitempty"`
	Rights      string            `json:"rights,omitempty"`
	Source      string            `json:"source,omitempty"`
}

type creatorDocument struct {
	Name   string `json:"name"`
	Role   string `json:"role,omitempty"`
	FileAs string `json:"fileAs,omitempty"`
}

type tocDocument struct {
	Label    string        `json:"label"`
	Href     string        `json:"href,omitempty"`
	Children []tocDocument `json:"children,omitempty"`
}

func newInfoDocument(book *epub.Book) infoDocument {
	md := book.Metadata
	doc := infoDocument{
		Version: book.Version,
		Package: book.OPFPath(),
		Metadata: metadataDocument{
			Title:       md.Title,
			Publisher:   md.Publisher,
			Description: md.Description,
			Languages:   md.Languages,
			ISBN:        md.ISBN,
			ASIN:        md.ASIN,
			Subjects:    md.Subjects,
			Date:        md.Date,
			Rights:      md.Rights,
			Source:      md.Source,
		},
		Manifest:  len(book.Manifest),
		Spine:     len(book.Spine),
		TOCSource: book.Nav.Source.String(),
		TOC:       newTOCDocuments(book.Nav.TOC),
	}
	for _, c := range md.Creators {
		doc.Metadata.Creators = append(doc.Metadata.Creators, creatorDocument(c))
	}
	return doc
}

func newTOCDocuments(nodes []epub.TOCNode) []tocDocument {
	if len(nodes) == 0 {
		return nil
	}
	out := make([]tocDocument, len(nodes))
	for i, n := range nodes {
		out[i] = tocDocument{Label: n.Label, Href: n.Href, Children: newTOCDocuments(n.Children)}
	}
	return out
}

// encodeInfo renders the info command output in format.
func encodeInfo(w io.Writer, format string, book *epub.Book) error {
	var data []byte
	var err error
	switch format {
	case "text":
		printInfo(w, book)
		return nil
	case "json":
		data, err = json.MarshalIndent(newInfoDocument(book), "", "  ")
		data = append(data, '\n')
	case "yaml":
		data, err = yaml.Marshal(newInfoDocument(book))
	default:
		return fmt.Errorf("invalid --format %q: must be text, json or yaml", format)
	}
	if err != nil {
		return fmt.Errorf("encoding info as %s failed: %w", format, err)
	}
	_, err = w.Write(data)
	return err
}

// renderManifest writes the manifest as a table with the spine position of
// every item and whether its content is present in the archive.
func renderManifest(w io.Writer, book *epub.Book) {
	spinePos := make(map[string]int, len(book.Spine))
	for i, ref := range book.Spine {
		if _, seen := spinePos[ref.IDRef]; !seen {
			spinePos[ref.IDRef] = i + 1
		}
	}

	var buf bytes.Buffer
	t := table.NewWriter()
	t.SetOutputMirror(&buf)
	t.AppendHeader(table.Row{"ID", "Href", "Media Type", "Properties", "Spine", "Present"})
	for _, item := range book.Manifest {
		spine := ""
		if pos, ok := spinePos[item.ID]; ok {
			spine = fmt.Sprint(pos)
		}
		present := "no"
		if item.Exists() {
			present = "yes"
		}
		t.AppendRow(table.Row{item.ID, item.Href, item.MediaType, item.Properties, spine, present})
	}
	style := table.StyleLight
	style.Options.DrawBorder = false
	t.SetStyle(style)
	t.Render()
	_, _ = w.Write(buf.Bytes())
}
