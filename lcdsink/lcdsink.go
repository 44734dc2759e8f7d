// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package lcdsink emulates an HD44780 character LCD behind virtual GPIO
// lines and renders it to a terminal or an image.
//
// The sink hands out gpio.PinOut and gpio.Group implementations that can be
// wired to any bit-banging driver. It latches the data lines on the falling
// edge of the enable line, decodes the instruction stream including the 4
// bit interface negotiation, and maintains DDRAM, CGRAM, the address
// counter, entry mode and display shift like the real controller.
//
// The primary use case is developing display output on a host machine with
// no LCD attached, and end to end testing of drivers.
package lcdsink

import (
	"bytes"
	"sync"
)

// Number of DDRAM addresses per line in 2 line mode, and in total.
const (
	lineLen  = 40
	ddramLen = 80
)

// Opts configures the emulated display glass.
type Opts struct {
	// Visible geometry. Defaults to 16x2.
	Cols, Rows int
}

// Display is an emulated HD44780. Obtain its lines with RS, RW, Enable and
// DataGroup and pass them to a driver. The zero value is not usable; call
// New.
type Display struct {
	cols, rows int

	mu sync.Mutex

	// Bus side.
	rs, rw, e   bool
	bus         uint8 // current data line levels
	groupWidth  int
	eightBit    bool // negotiated interface width
	havePending bool // upper nibble latched, waiting for the lower one
	pending     uint8

	// Controller side.
	ddram     [128]byte
	cgram     [64]byte
	ac        int  // address counter
	cgMode    bool // ac addresses CGRAM
	shift     int  // DDRAM offset of the leftmost visible column
	twoLines  bool
	font5x10  bool
	on        bool
	cursor    bool
	blink     bool
	increment bool // entry mode I/D
	autoShift bool // entry mode S
}

// New returns an emulated display. Like the real chip it powers up in 8 bit
// mode with the display off, waiting for the wake-up sequence.
func New(opts *Opts) *Display {
	cols, rows := 16, 2
	if opts != nil {
		if opts.Cols > 0 {
			cols = opts.Cols
		}
		if opts.Rows > 0 {
			rows = opts.Rows
		}
	}
	d := &Display{
		cols:       cols,
		rows:       rows,
		groupWidth: 8,
		eightBit:   true,
		increment:  true,
	}
	d.clear()
	return d
}

// latch runs on the falling edge of E: sample the data lines and route the
// value through the interface width negotiation.
func (d *Display) latch() {
	if d.groupWidth == 8 {
		d.execute(d.bus)
		return
	}
	// Only D4-D7 are wired; each strobe carries one nibble.
	nib := d.bus & 0x0f
	if d.eightBit {
		// The controller believes it is in 8 bit mode and reads the
		// nibble as DB7-DB4 with the low bus half floating.
		d.execute(nib << 4)
		return
	}
	if !d.havePending {
		d.pending = nib
		d.havePending = true
		return
	}
	d.havePending = false
	d.execute(d.pending<<4 | nib)
}

func (d *Display) execute(b byte) {
	if d.rs {
		d.writeData(b)
		return
	}
	switch {
	case b&0x80 != 0: // set DDRAM address
		d.ac = int(b & 0x7f)
		d.cgMode = false
	case b&0x40 != 0: // set CGRAM address
		d.ac = int(b & 0x3f)
		d.cgMode = true
	case b&0x20 != 0: // function set
		wasEight := d.eightBit
		d.eightBit = b&0x10 != 0
		d.twoLines = b&0x08 != 0
		d.font5x10 = b&0x04 != 0
		if wasEight && !d.eightBit {
			// 4 bit mode committed; pair nibbles from here on.
			d.havePending = false
		}
	case b&0x10 != 0: // cursor or display shift
		right := b&0x04 != 0
		if b&0x08 != 0 {
			d.shiftDisplay(right)
		} else if right {
			d.ac = d.advance(d.ac, 1)
		} else {
			d.ac = d.advance(d.ac, -1)
		}
	case b&0x08 != 0: // display control
		d.on = b&0x04 != 0
		d.cursor = b&0x02 != 0
		d.blink = b&0x01 != 0
	case b&0x04 != 0: // entry mode set
		d.increment = b&0x02 != 0
		d.autoShift = b&0x01 != 0
	case b&0x02 != 0: // return home
		d.ac = 0
		d.shift = 0
		d.cgMode = false
	case b&0x01 != 0:
		d.clear()
	}
}

func (d *Display) clear() {
	for ix := range d.ddram {
		d.ddram[ix] = ' '
	}
	d.ac = 0
	d.shift = 0
	d.cgMode = false
	d.increment = true
}

func (d *Display) writeData(b byte) {
	if d.cgMode {
		d.cgram[d.ac&0x3f] = b
		if d.increment {
			d.ac = (d.ac + 1) & 0x3f
		} else {
			d.ac = (d.ac + 0x3f) & 0x3f
		}
		return
	}
	d.ddram[d.ac&0x7f] = b
	step := 1
	if !d.increment {
		step = -1
	}
	d.ac = d.advance(d.ac, step)
	if d.autoShift {
		// The display follows the cursor so the write position stays
		// put on the glass.
		d.shiftDisplay(!d.increment)
	}
}

// advance steps the address counter the way the controller does: within a
// 40 byte line in 2 line mode, hopping to the other line at the ends.
func (d *Display) advance(ac, step int) int {
	if !d.twoLines {
		return (ac + step + ddramLen) % ddramLen
	}
	line := ac & 0x40
	pos := (ac & 0x3f) + step
	switch {
	case pos >= lineLen:
		line ^= 0x40
		pos = 0
	case pos < 0:
		line ^= 0x40
		pos = lineLen - 1
	}
	return line | pos
}

// shiftDisplay moves the visible window. Shifting the display right moves
// the text right, so the window start moves left.
func (d *Display) shiftDisplay(right bool) {
	span := ddramLen
	if d.twoLines {
		span = lineLen
	}
	if right {
		d.shift = (d.shift + span - 1) % span
	} else {
		d.shift = (d.shift + 1) % span
	}
}

// rowOffsets mirrors the DDRAM base address of each visible row.
func (d *Display) rowOffsets() [4]int {
	return [4]int{0x00, 0x40, d.cols, 0x40 + d.cols}
}

// cellAddr returns the DDRAM address shown at the given visible cell,
// honoring the current display shift.
func (d *Display) cellAddr(row, col int) int {
	span := ddramLen
	if d.twoLines {
		span = lineLen
	}
	base := d.rowOffsets()[row]
	line := base & 0x40
	pos := ((base & 0x3f) + d.shift + col) % span
	return line | pos
}

// Line returns the raw bytes visible on one row, custom character codes
// included.
func (d *Display) Line(row int) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if row < 0 || row >= d.rows {
		return ""
	}
	var buf bytes.Buffer
	for col := 0; col < d.cols; col++ {
		buf.WriteByte(d.ddram[d.cellAddr(row, col)&0x7f])
	}
	return buf.String()
}

// Screen returns all visible rows.
func (d *Display) Screen() []string {
	rows := make([]string, d.rows)
	for ix := range rows {
		rows[ix] = d.Line(ix)
	}
	return rows
}

// CursorAddr returns the current address counter value, for tests and
// debugging.
func (d *Display) CursorAddr() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ac
}

// FourBit reports whether the driver has negotiated the 4 bit interface.
func (d *Display) FourBit() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return !d.eightBit
}

// TwoLines reports whether 2 line mode was configured.
func (d *Display) TwoLines() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.twoLines
}

// On reports whether the display is switched on.
func (d *Display) On() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.on
}

func (d *Display) String() string {
	return "lcdsink"
}

// Halt implements conn.Resource for the emulated glass.
func (d *Display) Halt() error {
	return nil
}
