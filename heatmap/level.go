package heatmap

import (
	"fmt"
	"math"
	"strings"
)

// MaxLevel is the highest intensity level. Level 0 means "no contribution".
const MaxLevel = 4

// EmptyColor fills level-0 cells. It is not part of any palette.
const EmptyColor = "#ebedf0"

// Level maps value onto 0..MaxLevel relative to maxValue.
//
// Zero, negative and NaN values map to 0. Positive values map to
// ceil(value/maxValue*4) clamped to [1, 4]. When maxValue is not positive,
// any positive value maps to MaxLevel.
func Level(value, maxValue float64) int {
	if !(value > 0) {
		return 0
	}
	if !(maxValue > 0) {
		return MaxLevel
	}
	l := int(math.Ceil(math.Min(MaxLevel, value/maxValue*MaxLevel)))
	return min(max(l, 1), MaxLevel)
}

// Palette holds the colors of levels 1..4 in order.
type Palette [MaxLevel]string

// Color returns the color of level. Level 0 and out-of-range levels below it
// use EmptyColor; levels above MaxLevel use the darkest color.
func (p Palette) Color(level int) string {
	if level <= 0 {
		return EmptyColor
	}
	return p[min(level, MaxLevel)-1]
}

// ColorScheme names one of the built-in palettes.
type ColorScheme string

const (
	Green  ColorScheme = "green"
	Blue   ColorScheme = "blue"
	Purple ColorScheme = "purple"
	Orange ColorScheme = "orange"
	Red    ColorScheme = "red"
)

var palettes = map[ColorScheme]Palette{
	Green:  {"#9be9a8", "#40c463", "#30a14e", "#216e39"},
	Blue:   {"#9db9f5", "#4078c0", "#2e5ea8", "#1e4a7a"},
	Purple: {"#c5b3e6", "#9678d3", "#7048b5", "#4a2b8f"},
	Orange: {"#ffcc80", "#ff9800", "#f57c00", "#e65100"},
	Red:    {"#ff9999", "#ff6666", "#ff3333", "#cc0000"},
}

// ColorSchemes lists the built-in schemes.
func ColorSchemes() []ColorScheme {
	return []ColorScheme{Green, Blue, Purple, Orange, Red}
}

// ParseColorScheme accepts a scheme name, case-insensitively.
func ParseColorScheme(s string) (ColorScheme, error) {
	c := ColorScheme(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := palettes[c]; !ok {
		return "", fmt.Errorf("heatmap: unknown color scheme %q", s)
	}
	return c, nil
}

// Palette returns the colors of c. Unknown schemes fall back to green.
func (c ColorScheme) Palette() Palette {
	if p, ok := palettes[c]; ok {
		return p
	}
	return palettes[Green]
}
