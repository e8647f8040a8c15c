package heatmap

import (
	"strconv"
)

// TooltipLayout formats the date part of a tooltip.
const TooltipLayout = "Mon, Jan 2, 2006"

// FormatValue prints v without trailing zeros.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Tooltip returns the hover text of c, e.g. "Mon, Jan 1, 2024: 5 contributions".
func Tooltip(c *Cell) string {
	unit := "contributions"
	if c.Value == 1 {
		unit = "contribution"
	}
	return c.Date.Format(TooltipLayout) + ": " + FormatValue(c.Value) + " " + unit
}
