package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/yuanying/epubmeta/internal/epub"
	"github.com/yuanying/epubmeta/internal/thumbnail"
)

// openBook parses the shared options and the input publication.
func openBook(cmd *cobra.Command, args []string) (*epub.Book, cliOptions, error) {
	opts, err := readCLIOptions(cmd, args)
	if err != nil {
		return nil, opts, err
	}
	book, err := epub.Open(opts.InputPath, epub.WithLogger(opts.Logger))
	if err != nil {
		return nil, opts, fmt.Errorf("failed to open %s: %w", opts.InputPath, err)
	}
	return book, opts, nil
}

func newInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info <file.epub>",
		Short: "Print version, metadata and manifest summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			format = strings.ToLower(format)
			if format != "text" && format != "json" && format != "yaml" {
				return fmt.Errorf("invalid --format %q: must be text, json or yaml", format)
			}
			book, _, err := openBook(cmd, args)
			if err != nil {
				return err
			}
			return encodeInfo(cmd.OutOrStdout(), format, book)
		},
	}
	cmd.Flags().String("format", "text", "Output format: text, json, yaml")
	return cmd
}

func newManifestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "manifest <file.epub>",
		Short: "List manifest items with their spine position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			book, _, err := openBook(cmd, args)
			if err != nil {
				return err
			}
			renderManifest(cmd.OutOrStdout(), book)
			return nil
		},
	}
}

func printInfo(w io.Writer, book *epub.Book) {
	md := book.Metadata
	fmt.Fprintf(w, "Version:     %s\n", book.Version)
	fmt.Fprintf(w, "Package:     %s\n", book.OPFPath())
	fmt.Fprintf(w, "Title:       %s\n", md.Title)
	for _, c := range md.Creators {
		if c.Role != "" {
			fmt.Fprintf(w, "Creator:     %s (%s)\n", c.Name, c.Role)
		} else {
			fmt.Fprintf(w, "Creator:     %s\n", c.Name)
		}
	}
	printField(w, "Publisher:", md.Publisher)
	printField(w, "Date:", md.Date)
	printField(w, "ISBN:", md.ISBN)
	printField(w, "ASIN:", md.ASIN)
	tags := md.LanguageTags()
	for i, l := range md.Languages {
		if tags[i] != language.Und {
			fmt.Fprintf(w, "Language:    %s (%s)\n", l, display.Self.Name(tags[i]))
		} else {
			fmt.Fprintf(w, "Language:    %s\n", l)
		}
	}
	if len(md.Subjects) > 0 {
		fmt.Fprintf(w, "Subjects:    %s\n", strings.Join(md.Subjects, ", "))
	}
	printField(w, "Rights:", md.Rights)
	printField(w, "Description:", md.Description)
	fmt.Fprintf(w, "Manifest:    %d items\n", len(book.Manifest))
	fmt.Fprintf(w, "Spine:       %d items\n", len(book.Spine))
	fmt.Fprintf(w, "TOC:         %d entries (%s)\n", len(book.Nav.TOC), book.Nav.Source)
}

func printField(w io.Writer, label, value string) {
	if value != "" {
		fmt.Fprintf(w, "%-12s %s\n", label, value)
	}
}

func newTOCCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toc <file.epub>",
		Short: "Print the table of contents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			book, _, err := openBook(cmd, args)
			if err != nil {
				return err
			}
			writeTOC(cmd.OutOrStdout(), book.Nav.TOC, 0)
			return nil
		},
	}
}

func writeTOC(w io.Writer, nodes []epub.TOCNode, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, n := range nodes {
		if n.Href != "" {
			fmt.Fprintf(w, "%s- %s [%s]\n", indent, n.Label, n.Href)
		} else {
			fmt.Fprintf(w, "%s- %s\n", indent, n.Label)
		}
		writeTOC(w, n.Children, depth+1)
	}
}

func newCatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cat <file.epub> <href>",
		Short: "Print a file from the publication, relative to the package document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			book, _, err := openBook(cmd, args)
			if err != nil {
				return err
			}
			data, err := book.ReadFile(args[1])
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

func newSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <file.epub>",
		Short: "Edit metadata and write a new EPUB",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			book, opts, err := openBook(cmd, args)
			if err != nil {
				return err
			}
			changed, err := applyMetadataFlags(cmd, &book.Metadata)
			if err != nil {
				return err
			}
			if changed == 0 {
				return fmt.Errorf("no metadata flags given")
			}
			if err := book.UpdateMetadata(); err != nil {
				return err
			}

			outputPath, _ := cmd.Flags().GetString("output")
			if outputPath == "" {
				outputPath = defaultOutputPath(opts.InputPath)
			}
			if err := book.Save(outputPath); err != nil {
				return err
			}
			opts.Logger.Info("metadata updated",
				zap.String("output", outputPath), zap.Int("fields", changed))
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringP("output", "o", "", "Output file path (default: input with .edited before the extension)")
	flags.String("title", "", "Title")
	flags.String("publisher", "", "Publisher")
	flags.String("description", "", "Description")
	flags.String("date", "", "Publication date")
	flags.String("rights", "", "Rights statement")
	flags.String("source", "", "Source")
	flags.String("isbn", "", "ISBN (10 or 13 digits, separators allowed)")
	flags.String("asin", "", "ASIN (10 characters)")
	flags.StringSlice("language", nil, "Languages (replaces all)")
	flags.StringSlice("subject", nil, "Subjects (replaces all)")
	flags.StringArray("creator", nil, `Creators as "Name" or "Name:role" with a MARC relator code (replaces all)`)
	return cmd
}

// applyMetadataFlags copies every metadata flag the user set onto md and
// returns how many were applied.
func applyMetadataFlags(cmd *cobra.Command, md *epub.Metadata) (int, error) {
	flags := cmd.Flags()
	changed := 0

	textFields := map[string]*string{
		"title":       &md.Title,
		"publisher":   &md.Publisher,
		"description": &md.Description,
		"date":        &md.Date,
		"rights":      &md.Rights,
		"source":      &md.Source,
	}
	for name, dst := range textFields {
		if flags.Changed(name) {
			*dst, _ = flags.GetString(name)
			changed++
		}
	}

	if flags.Changed("isbn") {
		raw, _ := flags.GetString("isbn")
		isbn := epub.NormalizeISBN(raw)
		if raw != "" && isbn == "" {
			return 0, fmt.Errorf("invalid --isbn %q: must have 10 or 13 characters without separators", raw)
		}
		md.ISBN = isbn
		changed++
	}
	if flags.Changed("asin") {
		raw, _ := flags.GetString("asin")
		asin := epub.NormalizeASIN(raw)
		if raw != "" && asin == "" {
			return 0, fmt.Errorf("invalid --asin %q: must have 10 characters", raw)
		}
		md.ASIN = asin
		changed++
	}
	if flags.Changed("language") {
		md.Languages, _ = flags.GetStringSlice("language")
		changed++
	}
	if flags.Changed("subject") {
		md.Subjects, _ = flags.GetStringSlice("subject")
		changed++
	}
	if flags.Changed("creator") {
		values, _ := flags.GetStringArray("creator")
		md.Creators = parseCreators(values, md.Creators)
		changed++
	}
	return changed, nil
}

// parseCreators builds creators from "Name" or "Name:role" values, keeping
// file-as from the creator previously at the same position when the name
// is unchanged. Only a MARC relator code after the last colon is taken as
// the role, so names containing a colon stay whole.
func parseCreators(values []string, prev []epub.Creator) []epub.Creator {
	creators := make([]epub.Creator, 0, len(values))
	for i, v := range values {
		c := epub.Creator{Name: v}
		if idx := strings.LastIndex(v, ":"); idx > 0 && isRelatorCode(strings.TrimSpace(v[idx+1:])) {
			c.Name, c.Role = v[:idx], v[idx+1:]
		}
		c.Name = strings.TrimSpace(c.Name)
		c.Role = strings.TrimSpace(c.Role)
		if i < len(prev) && prev[i].Name == c.Name {
			c.FileAs = prev[i].FileAs
			if c.Role == "" {
				c.Role = prev[i].Role
			}
		}
		creators = append(creators, c)
	}
	return creators
}

// isRelatorCode reports whether s has the shape of a MARC relator code.
func isRelatorCode(s string) bool {
	if len(s) != 3 {
		return false
	}
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}

func newCoverCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cover <file.epub>",
		Short: "Extract the cover image, optionally scaled",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			book, opts, err := openBook(cmd, args)
			if err != nil {
				return err
			}
			cover, err := book.Cover()
			if err != nil {
				return err
			}
			data, err := cover.Item.Bytes()
			if err != nil {
				return err
			}

			width, _ := cmd.Flags().GetInt("width")
			quality, _ := cmd.Flags().GetInt("quality")
			format, _ := cmd.Flags().GetString("format")
			if width < 0 {
				return fmt.Errorf("invalid --width %d: must be >= 0", width)
			}
			if quality < 1 || quality > 100 {
				return fmt.Errorf("invalid --quality %d: must be between 1 and 100", quality)
			}
			img, err := thumbnail.Make(data, thumbnail.Options{
				MaxWidth:    width,
				JPEGQuality: quality,
				Format:      format,
			})
			if err != nil {
				return err
			}

			outputPath, _ := cmd.Flags().GetString("output")
			if outputPath == "" {
				outputPath = strings.TrimSuffix(opts.InputPath, ".epub") + ".cover." + extension(img.Format)
			}
			if err := os.WriteFile(outputPath, img.Data, 0o644); err != nil {
				return fmt.Errorf("failed to write cover: %w", err)
			}
			opts.Logger.Info("cover extracted",
				zap.String("href", cover.Item.Href),
				zap.String("method", cover.DetectionMethod),
				zap.String("output", outputPath),
				zap.Int("width", img.Width),
				zap.Int("height", img.Height))
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringP("output", "o", "", "Output image path")
	flags.Int("width", thumbnail.DefaultMaxWidth, "Maximum width in pixels (0 keeps the original)")
	flags.Int("quality", thumbnail.DefaultJPEGQuality, "JPEG quality (1-100)")
	flags.String("format", "", "Output format: jpeg or png (default: follow the source)")
	return cmd
}

func extension(format string) string {
	if format == "jpeg" {
		return "jpg"
	}
	return format
}
