// Package sanitize cleans untrusted HTML email bodies.
// It strips active content, hidden content, tracking artifacts and layout
// cruft while preserving genuine tabular data, producing markup that is safe
// to hand to a text renderer.
package sanitize

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config defines all configuration options for the sanitizer.
type Config struct {
	// === Pre-parse stages ===

	// DecodeEscapes reverses literal backslash escapes (\n, \r, \t, \", \\)
	// left over from JSON-string transport of the body.
	DecodeEscapes bool `json:"decode_escapes" yaml:"decode_escapes"`

	// StripConditionalComments deletes Outlook [if ...]...[endif] blocks,
	// including everything between the markers.
	StripConditionalComments bool `json:"strip_conditional_comments" yaml:"strip_conditional_comments"`

	// === Removal options ===

	// StripDangerous removes script, style, noscript, iframe, object, embed,
	// applet and head elements along with their subtrees.
	StripDangerous bool `json:"strip_dangerous" yaml:"strip_dangerous"`

	// StripHidden removes elements with display:none or visibility:hidden in
	// their style attribute, or with a hidden attribute.
	StripHidden bool `json:"strip_hidden" yaml:"strip_hidden"`

	// StripTrackingPixels removes img elements whose width and height are
	// both "1" or both "0".
	StripTrackingPixels bool `json:"strip_tracking_pixels" yaml:"strip_tracking_pixels"`

	// StripBlockquotes removes blockquote subtrees. Useful for dropping
	// quoted replies before rendering; off by default.
	StripBlockquotes bool `json:"strip_blockquotes" yaml:"strip_blockquotes"`

	// StripComments removes all remaining HTML comment nodes.
	StripComments bool `json:"strip_comments" yaml:"strip_comments"`

	// === Table handling ===

	// UnwrapLayoutTables replaces tables without header cells or a
	// grid/table role by the newline-joined markup of their cells.
	// Tables are resolved innermost first.
	UnwrapLayoutTables bool `json:"unwrap_layout_tables" yaml:"unwrap_layout_tables"`

	// UnwrapOrphanTableParts unwraps tbody/thead/tfoot/tr/td/th/center
	// elements that are no longer inside a table.
	UnwrapOrphanTableParts bool `json:"unwrap_orphan_table_parts" yaml:"unwrap_orphan_table_parts"`

	// === Attribute cleaning ===

	// StripPresentationAttrs removes the attributes in PresentationAttrs
	// from every remaining element.
	StripPresentationAttrs bool `json:"strip_presentation_attrs" yaml:"strip_presentation_attrs"`

	// PresentationAttrs is the list of attributes removed by
	// StripPresentationAttrs.
	PresentationAttrs []string `json:"presentation_attrs" yaml:"presentation_attrs" validate:"dive,required"`

	// === Whitespace ===

	// CollapseBlankLines replaces runs of three or more blank lines in the
	// serialized output with a single blank line and trims the result.
	CollapseBlankLines bool `json:"collapse_blank_lines" yaml:"collapse_blank_lines"`

	// MaxUnwrapPasses bounds the fixed-point loops over nested tables and
	// orphaned table parts. Zero means the default.
	MaxUnwrapPasses int `json:"max_unwrap_passes" yaml:"max_unwrap_passes" validate:"gte=0"`
}

// defaultMaxUnwrapPasses bounds fixed-point iteration on adversarial input.
const defaultMaxUnwrapPasses = 100

// defaultPresentationAttrs are attributes that carry styling, not content.
var defaultPresentationAttrs = []string{
	"style", "class", "bgcolor", "align", "valign",
	"cellpadding", "cellspacing", "border",
}

// DefaultConfig returns the full email-cleaning configuration: every removal
// and unwrapping stage enabled, quoted replies kept.
func DefaultConfig() *Config {
	return &Config{
		DecodeEscapes:            true,
		StripConditionalComments: true,
		StripDangerous:           true,
		StripHidden:              true,
		StripTrackingPixels:      true,
		StripBlockquotes:         false,
		StripComments:            true,
		UnwrapLayoutTables:       true,
		UnwrapOrphanTableParts:   true,
		StripPresentationAttrs:   true,
		PresentationAttrs:        append([]string(nil), defaultPresentationAttrs...),
		CollapseBlankLines:       true,
	}
}

// PresetMinimal returns a conservative configuration that only removes
// active content and comments. Use when maximum fidelity matters more than
// noise reduction.
func PresetMinimal() *Config {
	return &Config{
		StripDangerous:     true,
		StripComments:      true,
		CollapseBlankLines: true,
	}
}

// Merge merges another config into this one. Boolean stages from other win
// when true; attribute lists are appended, deduplicated.
func (c *Config) Merge(other *Config) *Config {
	if other == nil {
		return c
	}

	merged := *c

	if other.DecodeEscapes {
		merged.DecodeEscapes = true
	}
	if other.StripConditionalComments {
		merged.StripConditionalComments = true
	}
	if other.StripDangerous {
		merged.StripDangerous = true
	}
	if other.StripHidden {
		merged.StripHidden = true
	}
	if other.StripTrackingPixels {
		merged.StripTrackingPixels = true
	}
	if other.StripBlockquotes {
		merged.StripBlockquotes = true
	}
	if other.StripComments {
		merged.StripComments = true
	}
	if other.UnwrapLayoutTables {
		merged.UnwrapLayoutTables = true
	}
	if other.UnwrapOrphanTableParts {
		merged.UnwrapOrphanTableParts = true
	}
	if other.StripPresentationAttrs {
		merged.StripPresentationAttrs = true
	}
	if other.CollapseBlankLines {
		merged.CollapseBlankLines = true
	}
	if other.MaxUnwrapPasses > 0 {
		merged.MaxUnwrapPasses = other.MaxUnwrapPasses
	}

	if len(other.PresentationAttrs) > 0 {
		seen := make(map[string]bool)
		for _, a := range merged.PresentationAttrs {
			seen[a] = true
		}
		for _, a := range other.PresentationAttrs {
			if !seen[a] {
				merged.PresentationAttrs = append(merged.PresentationAttrs, a)
				seen[a] = true
			}
		}
	}

	return &merged
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid sanitize config: %w", err)
	}
	return nil
}

// ConfigFromFile loads a configuration from a JSON or YAML file and
// validates it.
func ConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", filepath.Ext(path))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// maxPasses returns the configured fixed-point iteration bound.
func (c *Config) maxPasses() int {
	if c.MaxUnwrapPasses > 0 {
		return c.MaxUnwrapPasses
	}
	return defaultMaxUnwrapPasses
}
