package marker

import (
	"strings"
	"unicode"
)

// Glyph is the structure drawn under a marker's label.
type Glyph string

const (
	GlyphBuilding Glyph = "building"
	GlyphStage    Glyph = "stage"
	GlyphDome     Glyph = "dome"
	GlyphTent     Glyph = "tent"
)

// FallbackGlyph is used for empty or unrecognised categories.
const FallbackGlyph = GlyphBuilding

var glyphByCategory = map[string]Glyph{
	"performance":  GlyphStage,
	"performances": GlyphStage,
	"wellness":     GlyphDome,
	"art":          GlyphDome,
	"arts":         GlyphDome,
	"food":         GlyphTent,
}

// GlyphFor maps a free-text category to a glyph. The whole normalised
// category is looked up first, then each word from left to right; the
// first hit wins.
func GlyphFor(category string) Glyph {
	norm := strings.ToLower(strings.TrimSpace(category))
	if norm == "" {
		return FallbackGlyph
	}
	if g, ok := glyphByCategory[norm]; ok {
		return g
	}
	words := strings.FieldsFunc(norm, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		if g, ok := glyphByCategory[w]; ok {
			return g
		}
	}
	return FallbackGlyph
}
