package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	defaultLogLevel  = "info"
	defaultLogFormat = "text"
)

// cliOptions holds the options shared by every subcommand.
type cliOptions struct {
	InputPath string
	Logger    *zap.Logger
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "epubmeta",
		Short: "Inspect and edit EPUB metadata",
		Long: `epubmeta reads the package document of an EPUB publication, prints its
metadata, manifest and table of contents, and writes metadata edits back
without disturbing the rest of the package document.`,
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.String("log-level", defaultLogLevel, "Log level: debug, info, warn, error")
	flags.String("log-format", defaultLogFormat, "Log format: text, json")
	flags.BoolP("verbose", "v", false, "Enable debug logging (overrides --log-level)")

	root.AddCommand(
		newInfoCmd(),
		newManifestCmd(),
		newTOCCmd(),
		newCatCmd(),
		newSetCmd(),
		newCoverCmd(),
	)
	return root
}

// readCLIOptions validates the shared flags and builds the logger.
func readCLIOptions(cmd *cobra.Command, args []string) (cliOptions, error) {
	var opts cliOptions
	if len(args) > 0 {
		opts.InputPath = args[0]
	}

	level, _ := cmd.Flags().GetString("log-level")
	format, _ := cmd.Flags().GetString("log-format")
	verbose, _ := cmd.Flags().GetBool("verbose")

	level = strings.ToLower(level)
	if _, err := zapcore.ParseLevel(level); err != nil || !isSupportedLevel(level) {
		return opts, fmt.Errorf("invalid --log-level %q: must be one of debug, info, warn, error", level)
	}
	format = strings.ToLower(format)
	if format != "text" && format != "json" {
		return opts, fmt.Errorf("invalid --log-format %q: must be text or json", format)
	}
	if verbose {
		level = "debug"
	}

	opts.Logger = buildLogger(cmd.ErrOrStderr(), level, format)
	return opts, nil
}

func isSupportedLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}

// buildLogger returns a zap logger writing to w. Unknown levels fall back to
// info, and any format other than json produces console output.
func buildLogger(w io.Writer, level, format string) *zap.Logger {
	lvl, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	if strings.EqualFold(format, "json") {
		enc = zapcore.NewJSONEncoder(cfg)
	} else {
		cfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(cfg)
	}
	return zap.New(zapcore.NewCore(enc, zapcore.AddSync(w), lvl))
}

// defaultOutputPath places edits next to the input: book.epub → book.edited.epub.
func defaultOutputPath(inputPath string) string {
	ext := filepath.Ext(inputPath)
	return strings.TrimSuffix(inputPath, ext) + ".edited" + ext
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
