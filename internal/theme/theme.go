// Package theme holds the visual tokens shared by the web pages and the
// mobile API. A Theme is loaded once at startup and passed by value; it
// exposes no mutable state.
package theme

import (
	_ "embed"
	"errors"
	"fmt"
	"html/template"
	"maps"
	"regexp"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed theme.yaml
var defaultYAML []byte

var colorPattern = regexp.MustCompile(`^(#[0-9A-Fa-f]{6}|#[0-9A-Fa-f]{3}|transparent)$`)

// Theme is an immutable set of design tokens.
type Theme struct {
	name       string
	fontFamily string
	colors     map[string]string
	spacing    map[string]int
	radius     map[string]int
	fontSize   map[string]int
	lineHeight map[string]int
	fontWeight map[string]string
}

type themeFile struct {
	Name       string            `yaml:"name"`
	FontFamily string            `yaml:"font_family"`
	Colors     map[string]string `yaml:"colors"`
	Spacing    map[string]int    `yaml:"spacing"`
	Radius     map[string]int    `yaml:"radius"`
	FontSize   map[string]int    `yaml:"font_size"`
	LineHeight map[string]int    `yaml:"line_height"`
	FontWeight map[string]string `yaml:"font_weight"`
}

// Snapshot is the JSON shape served to the mobile client.
type Snapshot struct {
	Name       string            `json:"name"`
	FontFamily string            `json:"fontFamily"`
	Colors     map[string]string `json:"colors"`
	Spacing    map[string]int    `json:"spacing"`
	Radius     map[string]int    `json:"borderRadius"`
	FontSize   map[string]int    `json:"fontSize"`
	LineHeight map[string]int    `json:"lineHeight"`
	FontWeight map[string]string `json:"fontWeight"`
}

// Default returns the embedded SmartShuttle theme.
func Default() Theme {
	t, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("theme: embedded theme.yaml is invalid: %v", err))
	}
	return t
}

// Parse builds a Theme from YAML.
func Parse(data []byte) (Theme, error) {
	var f themeFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Theme{}, fmt.Errorf("decode theme: %w", err)
	}
	if strings.TrimSpace(f.Name) == "" {
		return Theme{}, errors.New("theme name is required")
	}
	if len(f.Colors) == 0 {
		return Theme{}, errors.New("theme has no colors")
	}
	for name, value := range f.Colors {
		if !colorPattern.MatchString(value) {
			return Theme{}, fmt.Errorf("color %s: invalid value %q", name, value)
		}
	}
	return Theme{
		name:       f.Name,
		fontFamily: f.FontFamily,
		colors:     maps.Clone(f.Colors),
		spacing:    maps.Clone(f.Spacing),
		radius:     maps.Clone(f.Radius),
		fontSize:   maps.Clone(f.FontSize),
		lineHeight: maps.Clone(f.LineHeight),
		fontWeight: maps.Clone(f.FontWeight),
	}, nil
}

func (t Theme) Name() string { return t.name }

// Color looks up a named color.
func (t Theme) Color(name string) (string, bool) {
	c, ok := t.colors[name]
	return c, ok
}

// Spacing looks up a spacing step in logical pixels.
func (t Theme) Spacing(name string) (int, bool) {
	v, ok := t.spacing[name]
	return v, ok
}

// Snapshot returns a copy of every token, safe for the caller to modify.
func (t Theme) Snapshot() Snapshot {
	return Snapshot{
		Name:       t.name,
		FontFamily: t.fontFamily,
		Colors:     maps.Clone(t.colors),
		Spacing:    maps.Clone(t.spacing),
		Radius:     maps.Clone(t.radius),
		FontSize:   maps.Clone(t.fontSize),
		LineHeight: maps.Clone(t.lineHeight),
		FontWeight: maps.Clone(t.fontWeight),
	}
}

// CSSVariables renders the tokens as CSS custom properties for :root.
// Keys are sorted so the output is stable.
func (t Theme) CSSVariables() template.CSS {
	var b strings.Builder
	writeGroup(&b, "color", t.colors, func(v string) string { return v })
	writeGroup(&b, "space", t.spacing, px)
	writeGroup(&b, "radius", t.radius, px)
	writeGroup(&b, "font-size", t.fontSize, px)
	writeGroup(&b, "line-height", t.lineHeight, px)
	writeGroup(&b, "font-weight", t.fontWeight, func(v string) string { return v })
	if t.fontFamily != "" {
		fmt.Fprintf(&b, "--font-family: %q, system-ui, sans-serif;\n", t.fontFamily)
	}
	return template.CSS(b.String())
}

func px(v int) string { return fmt.Sprintf("%dpx", v) }

func writeGroup[V any](b *strings.Builder, prefix string, m map[string]V, format func(V) string) {
	for _, key := range slices.Sorted(maps.Keys(m)) {
		fmt.Fprintf(b, "--%s-%s: %s;\n", prefix, kebab(key), format(m[key]))
	}
}

// kebab turns camelCase token names into CSS-friendly kebab-case.
func kebab(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('-')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
