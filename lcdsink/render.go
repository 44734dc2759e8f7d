// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package lcdsink

import (
	"bytes"
	"image"
	"image/color"
	"io"
	"os"

	"github.com/fogleman/gg"
	"github.com/maruel/ansi256"
	colorable "github.com/mattn/go-colorable"
	isatty "github.com/mattn/go-isatty"
)

// snapshot is the state a renderer needs, copied under the display lock so
// rendering never races the bus.
type snapshot struct {
	rows      [][]byte
	cgram     [64]byte
	on        bool
	cursor    bool
	cursorRow int
	cursorCol int
}

func (d *Display) snapshot() snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	s := snapshot{
		cgram:     d.cgram,
		on:        d.on,
		cursor:    d.cursor,
		cursorRow: -1,
		cursorCol: -1,
	}
	s.rows = make([][]byte, d.rows)
	for row := range s.rows {
		line := make([]byte, d.cols)
		for col := range line {
			addr := d.cellAddr(row, col)
			line[col] = d.ddram[addr&0x7f]
			if !d.cgMode && addr == d.ac {
				s.cursorRow, s.cursorCol = row, col
			}
		}
		s.rows[row] = line
	}
	return s
}

// TerminalOpts configures a Terminal renderer.
type TerminalOpts struct {
	// Writer receives the frames. Defaults to a colorable stdout.
	Writer io.Writer

	// Palette maps the backlight color to the terminal. Defaults to
	// ansi256.Default.
	Palette *ansi256.Palette

	// Monochrome suppresses all escape codes. It defaults to true when
	// stdout is not a terminal.
	Monochrome bool
}

// Terminal renders a Display to a terminal, one frame per Render call.
// Useful while waiting for the actual glass to come by mail.
type Terminal struct {
	d       *Display
	w       io.Writer
	palette ansi256.Palette
	mono    bool
	buf     bytes.Buffer
}

// NewTerminal returns a renderer for d.
func NewTerminal(d *Display, opts *TerminalOpts) *Terminal {
	if opts == nil {
		opts = &TerminalOpts{}
	}
	t := &Terminal{d: d, w: opts.Writer, mono: opts.Monochrome}
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	t.palette = *p
	if t.w == nil {
		t.w = colorable.NewColorableStdout()
		if !isatty.IsTerminal(os.Stdout.Fd()) {
			t.mono = true
		}
	}
	return t
}

var backlight = color.NRGBA{R: 0x9a, G: 0xc1, B: 0x1e, A: 255}

// printable maps a DDRAM byte to something a terminal can show. Custom
// characters become '*'; bytes outside the ASCII part of the character ROM
// become '?'.
func printable(b byte) byte {
	switch {
	case b < 8:
		return '*'
	case b >= 0x20 && b < 0x7f:
		return b
	default:
		return '?'
	}
}

// Render writes one frame. A switched-off display renders as a blank
// frame, like the real glass.
func (t *Terminal) Render() error {
	s := t.d.snapshot()
	t.buf.Reset()
	cols := 0
	if len(s.rows) > 0 {
		cols = len(s.rows[0])
	}

	edge := func() {
		if t.mono {
			t.buf.WriteByte('+')
			for i := 0; i < cols; i++ {
				t.buf.WriteByte('-')
			}
			t.buf.WriteString("+\n")
			return
		}
		for i := 0; i < cols+2; i++ {
			t.buf.WriteString(t.palette.Block(backlight))
		}
		t.buf.WriteString("\033[0m\n")
	}

	edge()
	for row, line := range s.rows {
		if t.mono {
			t.buf.WriteByte('|')
		} else {
			t.buf.WriteString(t.palette.Block(backlight))
			t.buf.WriteString("\033[30;102m")
		}
		for col, b := range line {
			c := printable(b)
			if !s.on {
				c = ' '
			}
			underline := !t.mono && s.on && s.cursor &&
				row == s.cursorRow && col == s.cursorCol
			if underline {
				t.buf.WriteString("\033[4m")
			}
			t.buf.WriteByte(c)
			if underline {
				t.buf.WriteString("\033[24m")
			}
		}
		if t.mono {
			t.buf.WriteString("|\n")
		} else {
			t.buf.WriteString("\033[0m")
			t.buf.WriteString(t.palette.Block(backlight))
			t.buf.WriteString("\033[0m\n")
		}
	}
	edge()
	_, err := t.buf.WriteTo(t.w)
	return err
}

// Pixel geometry of the rendered image: 5x8 glyphs on a 6x9 pitch, scaled.
const (
	glyphW = 5
	glyphH = 8
	pitchX = glyphW + 1
	pitchY = glyphH + 1
	scale  = 4
)

// Image renders the display into an image, drawing each character from the
// ASCII part of the HD44780 A00 character ROM or from the programmed CGRAM
// for codes 0-7.
func (d *Display) Image() image.Image {
	s := d.snapshot()
	rows := len(s.rows)
	cols := 0
	if rows > 0 {
		cols = len(s.rows[0])
	}
	dc := gg.NewContext((cols*pitchX+1)*scale, (rows*pitchY+1)*scale)
	if s.on {
		dc.SetRGB(0.60, 0.76, 0.12)
	} else {
		dc.SetRGB(0.42, 0.52, 0.10)
	}
	dc.Clear()
	if !s.on {
		return dc.Image()
	}
	dc.SetRGB(0.08, 0.10, 0.12)
	for row, line := range s.rows {
		for col, b := range line {
			g := glyphFor(b, &s.cgram)
			if s.cursor && row == s.cursorRow && col == s.cursorCol {
				g[glyphH-1] = 0x1f
			}
			ox := float64((col*pitchX + 1) * scale)
			oy := float64((row*pitchY + 1) * scale)
			for y, bits := range g {
				for x := 0; x < glyphW; x++ {
					if bits&(1<<(glyphW-1-x)) == 0 {
						continue
					}
					dc.DrawRectangle(ox+float64(x*scale), oy+float64(y*scale),
						scale, scale)
				}
			}
		}
	}
	dc.Fill()
	return dc.Image()
}

func glyphFor(b byte, cgram *[64]byte) [glyphH]byte {
	var g [glyphH]byte
	switch {
	case b < 8:
		copy(g[:], cgram[int(b)*8:int(b)*8+8])
	case b >= 0x20 && b < 0x80:
		g = fontROM[b-0x20]
	}
	return g
}
