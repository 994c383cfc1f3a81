package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mindgrid/pkg/cache"
	"github.com/matzehuels/mindgrid/pkg/export"
)

// exportFlags collects the flags for the export command.
type exportFlags struct {
	storeFlags
	formats string
	output  string
	scale   float64
	padding float64
	title   string
	indent  string
	bullet  string
	refresh bool
	noCache bool
}

// textFormats render to stdout when no output path is given.
var textFormats = map[string]bool{
	export.FormatOutline:  true,
	export.FormatMarkdown: true,
	export.FormatDOT:      true,
	export.FormatJSON:     true,
}

// exportCommand creates the export command.
func (c *CLI) exportCommand() *cobra.Command {
	var flags exportFlags

	cmd := &cobra.Command{
		Use:   "export [map-id]",
		Short: "Render a map to outline, image, or graph formats",
		Long: `Render a map to one or more output formats.

Text formats (outline, md, dot, json) print to stdout when no
output path is given. Image formats (svg, png, pdf) always write
files, named after the map id unless --output is set.`,
		Example: `  mindgrid export roadmap -f outline
  mindgrid export roadmap -f svg,png -o build/roadmap
  mindgrid export roadmap -f md --bullet "*" > roadmap.md`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExport(cmd, args[0], flags)
		},
	}

	flags.storeFlags.register(cmd)
	cmd.Flags().StringVarP(&flags.formats, "format", "f", "", "comma-separated formats: outline, md, svg, png, pdf, dot, json")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output path base (format extension is appended)")
	cmd.Flags().Float64Var(&flags.scale, "scale", 0, "raster scale factor for png")
	cmd.Flags().Float64Var(&flags.padding, "padding", 0, "canvas padding in pixels around the drawing")
	cmd.Flags().StringVar(&flags.title, "title", "", "override the map title in rendered output")
	cmd.Flags().StringVar(&flags.indent, "indent", "", "indentation string for outline output")
	cmd.Flags().StringVar(&flags.bullet, "bullet", "", "bullet string for outline output")
	cmd.Flags().BoolVar(&flags.refresh, "refresh", false, "re-render even when a cached artifact exists")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable the artifact cache entirely")

	return cmd
}

func (c *CLI) runExport(cmd *cobra.Command, mapID string, flags exportFlags) error {
	ctx := cmd.Context()

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	// Config supplies the defaults, flags win when set.
	opts := export.Options{
		Formats: []string{cfg.Export.Format},
		Scale:   cfg.Export.Scale,
		Padding: cfg.Export.Padding,
		Indent:  cfg.Export.Indent,
		Bullet:  cfg.Export.Bullet,
		Title:   flags.title,
		Refresh: flags.refresh,
	}
	if flags.formats != "" {
		opts.Formats = splitFormats(flags.formats)
	}
	if cmd.Flags().Changed("scale") {
		opts.Scale = flags.scale
	}
	if cmd.Flags().Changed("padding") {
		opts.Padding = flags.padding
	}
	if cmd.Flags().Changed("indent") {
		opts.Indent = flags.indent
	}
	if cmd.Flags().Changed("bullet") {
		opts.Bullet = flags.bullet
	}
	if err := export.ValidateFormats(opts.Formats); err != nil {
		return err
	}

	st, err := c.openStore(ctx, cfg, flags.storeFlags)
	if err != nil {
		return err
	}
	defer st.Close(ctx)

	runner := export.NewRunner(st, c.newCache(flags.noCache), cache.NewDefaultKeyer(), c.Logger)
	defer runner.Close()

	toStdout := len(opts.Formats) == 1 && flags.output == "" && textFormats[opts.Formats[0]]

	sp := newSpinner(ctx, fmt.Sprintf("Exporting %s", mapID))
	if !toStdout {
		sp.Start()
	}

	result, err := runner.Execute(ctx, mapID, opts)
	if err != nil {
		sp.Fail("Export failed")
		return err
	}
	sp.Stop()

	if toStdout {
		_, err := os.Stdout.Write(result.Artifacts[opts.Formats[0]])
		return err
	}

	base := flags.output
	if base == "" {
		base = mapID
	}
	for _, format := range opts.Formats {
		path := artifactPath(base, format)
		if err := writeArtifact(path, result.Artifacts[format]); err != nil {
			return err
		}
		printFile(path)
	}

	cached := true
	for _, format := range opts.Formats {
		if !result.CacheInfo.ArtifactHits[format] {
			cached = false
		}
	}

	printNewline()
	printSuccess("Exported %d %s", len(opts.Formats), plural(len(opts.Formats), "format", "formats"))
	printStats(result.Stats.NodeCount, result.Stats.ConnectionCount, cached)
	return nil
}

// splitFormats parses a comma-separated format list, trimming whitespace.
func splitFormats(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// artifactPath appends the format extension to base unless it already has it.
func artifactPath(base, format string) string {
	if strings.TrimPrefix(filepath.Ext(base), ".") == format {
		return base
	}
	return base + "." + format
}

// writeArtifact writes data to path, creating parent directories as needed.
func writeArtifact(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	w, err := openOutput(path)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// openOutput opens path for writing, or stdout when path is empty.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
