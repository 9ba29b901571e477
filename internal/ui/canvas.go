package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// brailleBase is U+2800, the empty braille pattern.
const brailleBase = 0x2800

// brailleBits maps a dot inside a cell (column 0-1, row 0-3) to its bit.
var brailleBits = [2][4]uint8{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

type cell struct {
	dots     uint8
	dotColor lipgloss.Color
	glyph    rune
	color    lipgloss.Color
}

// canvas is a grid of terminal cells. Line art is plotted at sub-cell
// resolution (2x4 dots per cell in braille mode, one per cell otherwise);
// glyphs and text sit on top of it.
type canvas struct {
	width   int
	height  int
	braille bool
	cells   [][]cell
	bg      lipgloss.Color
}

func newCanvas(width, height int, braille bool) *canvas {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	c := &canvas{
		width:   width,
		height:  height,
		braille: braille,
		cells:   make([][]cell, height),
		bg:      "236",
	}
	for y := range c.cells {
		c.cells[y] = make([]cell, width)
	}
	return c
}

// plot sets the dot nearest to the host position (x, y), in cell units.
func (c *canvas) plot(x, y float64, color lipgloss.Color) {
	if x < 0 || y < 0 {
		return
	}
	cx, cy := int(x), int(y)
	if cx >= c.width || cy >= c.height {
		return
	}
	dst := &c.cells[cy][cx]
	if c.braille {
		col := int((x - float64(cx)) * 2)
		row := int((y - float64(cy)) * 4)
		dst.dots |= brailleBits[col][row]
	} else {
		dst.dots = 1
	}
	dst.dotColor = color
}

// set places a glyph in a cell, replacing any line art.
func (c *canvas) set(x, y int, r rune, color lipgloss.Color) {
	if x < 0 || y < 0 || x >= c.width || y >= c.height {
		return
	}
	c.cells[y][x].glyph = r
	c.cells[y][x].color = color
}

// text writes s starting at (x, y), clipped to the canvas.
func (c *canvas) text(x, y int, s string, color lipgloss.Color) {
	for i, r := range []rune(s) {
		c.set(x+i, y, r, color)
	}
}

func (c *canvas) runeAt(x, y int) rune {
	cl := c.cells[y][x]
	switch {
	case cl.glyph != 0:
		return cl.glyph
	case cl.dots == 0:
		return ' '
	case c.braille:
		return rune(brailleBase + int(cl.dots))
	default:
		return '·'
	}
}

func (c *canvas) colorAt(x, y int) lipgloss.Color {
	cl := c.cells[y][x]
	switch {
	case cl.glyph != 0:
		return cl.color
	case cl.dots != 0:
		return cl.dotColor
	default:
		return c.bg
	}
}

// String renders the canvas, one styled run per stretch of equal colour.
func (c *canvas) String() string {
	var b strings.Builder
	for y := 0; y < c.height; y++ {
		var run strings.Builder
		runColor := lipgloss.Color("")
		flush := func() {
			if run.Len() == 0 {
				return
			}
			b.WriteString(lipgloss.NewStyle().Foreground(runColor).Render(run.String()))
			run.Reset()
		}
		for x := 0; x < c.width; x++ {
			col := c.colorAt(x, y)
			if col != runColor {
				flush()
				runColor = col
			}
			run.WriteRune(c.runeAt(x, y))
		}
		flush()
		if y < c.height-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}
