package ui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-saucer/internal/body"
)

// cell is one terminal character with its colours and depth.
type cell struct {
	ch    rune
	fg    body.Color
	bg    body.Color
	depth float64
}

// canvas is a depth-tested character grid.
type canvas struct {
	w, h  int
	cells []cell
}

func newCanvas(w, h int, bg body.Color) *canvas {
	c := &canvas{w: w, h: h, cells: make([]cell, w*h)}
	for i := range c.cells {
		c.cells[i] = cell{ch: ' ', bg: bg, depth: math.Inf(1)}
	}
	return c
}

func (c *canvas) at(x, y int) *cell {
	if x < 0 || x >= c.w || y < 0 || y >= c.h {
		return nil
	}
	return &c.cells[y*c.w+x]
}

// set draws ch if it is nearer than what the cell already holds.
func (c *canvas) set(x, y int, ch rune, fg body.Color, depth float64) bool {
	p := c.at(x, y)
	if p == nil || depth >= p.depth {
		return false
	}
	p.ch, p.fg, p.depth = ch, fg, depth
	return true
}

// text writes s starting at (x, y) over anything but nearer geometry.
func (c *canvas) text(x, y int, s string, fg body.Color) {
	for _, r := range s {
		if p := c.at(x, y); p != nil {
			p.ch, p.fg = r, fg
		}
		x++
	}
}

// String renders the grid, batching runs of identical colours into one
// styled segment.
func (c *canvas) String() string {
	var b strings.Builder
	var run strings.Builder

	for y := 0; y < c.h; y++ {
		row := c.cells[y*c.w : (y+1)*c.w]
		start := 0
		for x := 1; x <= len(row); x++ {
			if x < len(row) && sameStyle(row[x], row[start]) {
				continue
			}
			run.Reset()
			for _, cl := range row[start:x] {
				run.WriteRune(cl.ch)
			}
			b.WriteString(cellStyle(row[start]).Render(run.String()))
			start = x
		}
		if y < c.h-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func sameStyle(a, b cell) bool {
	if a.bg != b.bg {
		return false
	}
	blankA, blankB := a.ch == ' ', b.ch == ' '
	if blankA || blankB {
		// Foreground is irrelevant for blanks.
		return blankA == blankB
	}
	return a.fg == b.fg
}

func cellStyle(cl cell) lipgloss.Style {
	s := lipgloss.NewStyle().Background(lipgloss.Color(cl.bg.Hex()))
	if cl.ch != ' ' {
		s = s.Foreground(lipgloss.Color(cl.fg.Hex()))
	}
	return s
}

// shadeGlyphs go from dim to bright so shading survives monochrome terminals.
var shadeGlyphs = []rune{'░', '▒', '▓', '█'}

func shadeGlyph(brightness float64) rune {
	i := int(brightness * float64(len(shadeGlyphs)))
	if i < 0 {
		i = 0
	}
	if i >= len(shadeGlyphs) {
		i = len(shadeGlyphs) - 1
	}
	return shadeGlyphs[i]
}
