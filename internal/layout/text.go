package layout

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rivo/uniseg"
	"golang.org/x/text/unicode/norm"
)

const depthHeader = "Depth"

// RenderText writes g as an ASCII table: a Depth column, a header cell
// spanning the grid, then one line per row. Every grid column gets the same
// width, wide enough for the widest label given its span.
func RenderText(w io.Writer, g Grid) error {
	depthWidth := displayWidth(depthHeader)
	for _, r := range g.Rows {
		depthWidth = max(depthWidth, displayWidth(strconv.Itoa(r.Depth)))
	}
	unit := unitWidth(g)

	var sb strings.Builder
	sep := separator(depthWidth, unit, g.Width)

	sb.WriteString(sep)
	sb.WriteString("| " + padRight(depthHeader, depthWidth) + " |")
	if g.Width > 0 {
		sb.WriteString(" " + padRight(HeaderLabel, spanWidth(g.Width, unit)) + " |")
	}
	sb.WriteString("\n")
	sb.WriteString(sep)

	for _, r := range g.Rows {
		sb.WriteString("| " + padRight(strconv.Itoa(r.Depth), depthWidth) + " |")
		for _, c := range r.Cells {
			sb.WriteString(" " + padRight(c.Label, spanWidth(c.Span, unit)) + " |")
		}
		sb.WriteString("\n")
	}
	if len(g.Rows) > 0 {
		sb.WriteString(sep)
	}

	_, err := io.WriteString(w, sb.String())
	if err != nil {
		return fmt.Errorf("render text: %w", err)
	}
	return nil
}

// spanWidth is the inner width of a cell spanning span columns of unit
// width, absorbing the " | " separators between them.
func spanWidth(span, unit int) int {
	return span*unit + (span-1)*3
}

// unitWidth finds the narrowest column width that fits every label.
func unitWidth(g Grid) int {
	unit := 1
	fit := func(label string, span int) {
		if span <= 0 {
			return
		}
		need := displayWidth(label) - 3*(span-1)
		unit = max(unit, (need+span-1)/span)
	}
	if g.Width > 0 {
		fit(HeaderLabel, g.Width)
	}
	for _, r := range g.Rows {
		for _, c := range r.Cells {
			fit(c.Label, c.Span)
		}
	}
	return unit
}

func separator(depthWidth, unit, columns int) string {
	var sb strings.Builder
	sb.WriteString("+" + strings.Repeat("-", depthWidth+2) + "+")
	for i := 0; i < columns; i++ {
		sb.WriteString(strings.Repeat("-", unit+2) + "+")
	}
	sb.WriteString("\n")
	return sb.String()
}

func displayWidth(s string) int {
	return uniseg.StringWidth(norm.NFC.String(s))
}

func padRight(s string, width int) string {
	s = norm.NFC.String(s)
	if gap := width - uniseg.StringWidth(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}
