package export

import (
	"time"

	"github.com/matzehuels/mindgrid/pkg/board"
	"github.com/matzehuels/mindgrid/pkg/cache"
	"github.com/matzehuels/mindgrid/pkg/errors"
	"github.com/matzehuels/mindgrid/pkg/render"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultScale is the output scale factor for image formats.
	DefaultScale = render.DefaultScale

	// DefaultPadding is the whitespace around SVG content.
	DefaultPadding = render.DefaultPadding

	// DefaultIndent is the per-depth indentation of outline formats.
	DefaultIndent = render.DefaultIndent

	// DefaultBullet is the line prefix of outline formats.
	DefaultBullet = render.DefaultBullet
)

// Format constants for output formats.
const (
	FormatOutline  = "outline"
	FormatMarkdown = "md"
	FormatSVG      = "svg"
	FormatPNG      = "png"
	FormatPDF      = "pdf"
	FormatDOT      = "dot"
	FormatJSON     = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatOutline:  true,
	FormatMarkdown: true,
	FormatSVG:      true,
	FormatPNG:      true,
	FormatPDF:      true,
	FormatDOT:      true,
	FormatJSON:     true,
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: outline, md, svg, png, pdf, dot, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options - Export Configuration
// =============================================================================

// Options contains all configuration for an export run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Formats selects the output formats to render.
	Formats []string `json:"formats,omitempty"`

	// Scale multiplies the output size of image formats.
	Scale float64 `json:"scale,omitempty"`

	// Padding is the whitespace around SVG content.
	Padding float64 `json:"padding,omitempty"`

	// Title is drawn above the board in image formats. Empty means no title.
	Title string `json:"title,omitempty"`

	// Indent and Bullet shape the outline formats.
	Indent string `json:"indent,omitempty"`
	Bullet string `json:"bullet,omitempty"`

	// Refresh skips the artifact cache and re-renders everything.
	Refresh bool `json:"refresh,omitempty"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// ValidateAndSetDefaults checks the options and applies defaults.
// This method is idempotent - calling it multiple times has the same effect
// as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}

	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}

	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Scale < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "scale must be positive, got %g", o.Scale)
	}
	if o.Padding == 0 {
		o.Padding = DefaultPadding
	}
	if o.Padding < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "padding must not be negative, got %g", o.Padding)
	}
	if o.Indent == "" {
		o.Indent = DefaultIndent
	}
	if o.Bullet == "" {
		o.Bullet = DefaultBullet
	}

	o.validated = true
	return nil
}

// ArtifactKeyOpts returns the cache key options for one rendered format.
// Every option that changes the output bytes is part of the key.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:  format,
		Scale:   o.Scale,
		Padding: o.Padding,
		Title:   o.Title,
		Indent:  o.Indent,
		Bullet:  o.Bullet,
	}
}

// =============================================================================
// Result - Export Outputs
// =============================================================================

// Result contains the outputs of an export run.
type Result struct {
	// Board is the loaded board the artifacts were rendered from.
	Board *board.Board

	// BoardHash is the content hash of the serialized board.
	BoardHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which artifacts came from the cache.
	CacheInfo CacheInfo
}

// Stats contains export execution statistics.
type Stats struct {
	NodeCount       int
	ConnectionCount int
	LoadTime        time.Duration
	RenderTime      time.Duration
}

// CacheInfo tracks artifact cache hits. Formats are rendered independently,
// so one run can mix hits and misses.
type CacheInfo struct {
	// ArtifactHits records, per format, whether the artifact came from cache.
	ArtifactHits map[string]bool
}
