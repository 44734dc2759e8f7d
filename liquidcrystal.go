// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package liquidcrystal drives Hitachi HD44780 compatible character LCDs by
// bit-banging GPIO lines. It supports the 4 and 8 bit parallel interfaces,
// custom characters, display scrolling and the full display/cursor/blink and
// entry mode command set.
//
// The controller is write-only to this driver. The busy flag is never
// polled; fixed worst-case delays from the datasheet are used instead, so an
// R/W line is optional and is tied low when bound.
//
// Implements periph.io/x/conn/v3/display.TextDisplay.
//
// # Datasheet
//
// https://www.sparkfun.com/datasheets/LCD/HD44780.pdf
package liquidcrystal

import (
	"errors"
	"fmt"
	"strings"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
)

const packageName = "liquidcrystal"

var (
	// ErrNotImplemented is returned for text display features the HD44780
	// has no command for.
	ErrNotImplemented = fmt.Errorf("%s: %w", packageName, display.ErrNotImplemented)
	// ErrNotInitialized is returned when a bus operation is attempted
	// before Begin() has run the power-on sequence.
	ErrNotInitialized = errors.New(packageName + ": Begin() not called")
	// ErrInvalidWidth is returned when the data group is not 4 or 8 lines.
	ErrInvalidWidth = errors.New(packageName + ": data group must have 4 or 8 pins")
)

type busWidth int

const (
	bus4Bit busWidth = 4
	bus8Bit busWidth = 8
)

// Font selects the character matrix of the connected glass. Font5x10 is only
// honored on single line displays; with two lines the controller forces 5x8
// and so does Begin().
type Font byte

const (
	Font5x8  Font = 0
	Font5x10 Font = Font(flagFont5x10)
)

// Opts holds the optional construction parameters.
type Opts struct {
	// RW is the read/write select line if it is wired to a GPIO instead of
	// being strapped to ground. The driver only writes, so the line is
	// driven low and kept there.
	RW gpio.PinOut

	// Backlight controls the backlight if one is wired. Leave nil for
	// displays with a hard-wired backlight.
	Backlight display.DisplayBacklight
}

// Dev is a handle to an HD44780 controller wired to GPIO lines. All methods
// that touch the bus block the caller for the required settle time. A Dev
// owns its lines exclusively; no other code may drive them while the Dev is
// alive.
//
// Dev is not safe for concurrent use. Interrupting a method mid-transmission
// leaves the controller in an undefined protocol state.
type Dev struct {
	dataPins  gpio.Group
	rsPin     gpio.PinOut
	enablePin gpio.PinOut
	rwPin     gpio.PinOut
	backlight display.DisplayBacklight

	width      busWidth
	rows       int
	cols       int
	rowOffsets [4]byte
	fn         function
	ctrl       displayControl
	mode       entryMode
	phase      initPhase

	// sleep is the delay primitive. Tests substitute it to audit the
	// timing schedule.
	sleep sleepFunc
}

// New binds an HD44780 to the given lines. The data group carries the data
// bus: 8 pins bind D0-D7 for the 8 bit interface, 4 pins bind D4-D7 for the
// 4 bit interface. The bus width is therefore fixed by whether the low data
// nibble is connected, and never changes afterwards.
//
// All lines remain idle until Begin() runs the power-on sequence.
func New(data gpio.Group, rs, enable gpio.PinOut, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &Opts{}
	}
	if data == nil || rs == nil || enable == nil {
		return nil, errors.New(packageName + ": data, rs and enable are required")
	}
	var width busWidth
	switch len(data.Pins()) {
	case 4:
		width = bus4Bit
	case 8:
		width = bus8Bit
	default:
		return nil, ErrInvalidWidth
	}
	return &Dev{
		dataPins:  data,
		rsPin:     rs,
		enablePin: enable,
		rwPin:     opts.RW,
		backlight: opts.Backlight,
		width:     width,
		sleep:     defaultSleep,
	}, nil
}

func wrap(err error) error {
	if err == nil || strings.HasPrefix(err.Error(), packageName) {
		return err
	}
	return fmt.Errorf("%s: %w", packageName, err)
}

func (d *Dev) ready() error {
	if d.phase != phaseReady {
		return ErrNotInitialized
	}
	return nil
}

// SetCursor moves the cursor to the zero-based column and row. Rows past the
// last configured line collapse to the last line. The column is not checked
// against the display width; addressing past it writes into the off-screen
// part of DDRAM.
func (d *Dev) SetCursor(col, row int) error {
	if err := d.ready(); err != nil {
		return err
	}
	if row >= len(d.rowOffsets) {
		row = len(d.rowOffsets) - 1
	}
	if row >= d.rows {
		row = d.rows - 1
	}
	if row < 0 {
		row = 0
	}
	return d.command(encodeDDRAMAddr(d.rowOffsets[row], byte(col)))
}

// MoveTo moves the cursor to the one-based row and column, validating both
// against the configured geometry.
func (d *Dev) MoveTo(row, col int) error {
	if err := d.ready(); err != nil {
		return err
	}
	if row < d.MinRow() || row > d.rows || col < d.MinCol() || col > d.cols {
		return fmt.Errorf("%s: MoveTo(%d,%d) value out of range", packageName, row, col)
	}
	return d.SetCursor(col-1, row-1)
}

// Write sends raw data bytes to the current cursor position. There is no
// line wrapping; text running past the display width is the caller's
// responsibility. Bytes 0-7 show the corresponding custom character.
func (d *Dev) Write(p []byte) (n int, err error) {
	if err = d.ready(); err != nil {
		return 0, err
	}
	for _, b := range p {
		if err = d.writeData(b); err != nil {
			return n, wrap(err)
		}
		n++
	}
	return n, nil
}

// WriteString writes text to the display at the current cursor position.
func (d *Dev) WriteString(text string) (int, error) {
	return d.Write([]byte(text))
}

// Clear blanks the display and moves the cursor home. Clearing needs the
// long 1.52ms execution window, so the call blocks for 2ms.
func (d *Dev) Clear() error {
	if err := d.ready(); err != nil {
		return err
	}
	if err := d.command(cmdClearDisplay); err != nil {
		return err
	}
	d.sleep(clearSettle)
	return nil
}

// Home moves the cursor home and undoes any display scroll. Blocks for 2ms
// like Clear.
func (d *Dev) Home() error {
	if err := d.ready(); err != nil {
		return err
	}
	if err := d.command(cmdReturnHome); err != nil {
		return err
	}
	d.sleep(clearSettle)
	return nil
}

// Display turns the display on or off without losing its contents.
func (d *Dev) Display(on bool) error {
	if err := d.ready(); err != nil {
		return err
	}
	d.ctrl.on = on
	return d.command(d.ctrl.encode())
}

// ShowCursor turns the underline cursor on or off.
func (d *Dev) ShowCursor(on bool) error {
	if err := d.ready(); err != nil {
		return err
	}
	d.ctrl.cursor = on
	return d.command(d.ctrl.encode())
}

// Blink turns the blinking block cursor on or off.
func (d *Dev) Blink(on bool) error {
	if err := d.ready(); err != nil {
		return err
	}
	d.ctrl.blink = on
	return d.command(d.ctrl.encode())
}

// Cursor sets the cursor rendering. The modes given replace the previous
// cursor state entirely: Cursor(CursorOff) hides it, and underline/blink can
// be combined by passing both.
func (d *Dev) Cursor(modes ...display.CursorMode) error {
	if err := d.ready(); err != nil {
		return err
	}
	cursor, blink := false, false
	for _, mode := range modes {
		switch mode {
		case display.CursorOff:
			cursor, blink = false, false
		case display.CursorUnderline:
			cursor = true
		case display.CursorBlink:
			blink = true
		case display.CursorBlock:
			cursor, blink = true, true
		default:
			return fmt.Errorf("%s: unexpected cursor mode: %d", packageName, mode)
		}
	}
	d.ctrl.cursor = cursor
	d.ctrl.blink = blink
	return d.command(d.ctrl.encode())
}

// TextFlow sets the direction text runs. Forward is left-to-right (the
// power-on default), Backward is right-to-left.
func (d *Dev) TextFlow(dir display.CursorDirection) error {
	if err := d.ready(); err != nil {
		return err
	}
	switch dir {
	case display.Forward:
		d.mode.leftToRight = true
	case display.Backward:
		d.mode.leftToRight = false
	default:
		return ErrNotImplemented
	}
	return d.command(d.mode.encode())
}

// AutoScroll makes the display shift on every character written so that the
// cursor position stays fixed on the glass.
func (d *Dev) AutoScroll(enabled bool) error {
	if err := d.ready(); err != nil {
		return err
	}
	d.mode.autoScroll = enabled
	return d.command(d.mode.encode())
}

// ScrollDisplay shifts the whole display one position left (Backward) or
// right (Forward) without touching DDRAM or the entry mode. The shift is a
// one-shot effect, not a mode.
func (d *Dev) ScrollDisplay(dir display.CursorDirection) error {
	if err := d.ready(); err != nil {
		return err
	}
	switch dir {
	case display.Forward:
		return d.command(encodeShift(true, true))
	case display.Backward:
		return d.command(encodeShift(true, false))
	}
	return ErrNotImplemented
}

// Move shifts the cursor one position forward or backward.
func (d *Dev) Move(dir display.CursorDirection) error {
	if err := d.ready(); err != nil {
		return err
	}
	switch dir {
	case display.Forward:
		return d.command(encodeShift(false, true))
	case display.Backward:
		return d.command(encodeShift(false, false))
	}
	return ErrNotImplemented
}

// CreateChar programs one of the 8 custom character slots with a 5x8 glyph.
// Each of the 8 bitmap bytes holds one glyph row in its low 5 bits, top row
// first. Slot numbers above 7 wrap. Writing a glyph leaves the controller
// addressing CGRAM; call SetCursor before writing more text.
//
// The glyph is shown by writing its slot number as a data byte.
func (d *Dev) CreateChar(slot byte, glyph [8]byte) error {
	if err := d.ready(); err != nil {
		return err
	}
	if err := d.command(encodeCGRAMAddr(slot)); err != nil {
		return err
	}
	for _, b := range glyph {
		if err := d.writeData(b); err != nil {
			return wrap(err)
		}
	}
	return nil
}

// Backlight sets the backlight intensity if a backlight controller was
// bound.
func (d *Dev) Backlight(intensity display.Intensity) error {
	if d.backlight == nil {
		return ErrNotImplemented
	}
	return wrap(d.backlight.Backlight(intensity))
}

// Rows returns the number of rows configured by Begin.
func (d *Dev) Rows() int {
	return d.rows
}

// Cols returns the number of columns configured by Begin.
func (d *Dev) Cols() int {
	return d.cols
}

// MinRow returns the minimum row for MoveTo.
func (d *Dev) MinRow() int {
	return 1
}

// MinCol returns the minimum column for MoveTo.
func (d *Dev) MinCol() int {
	return 1
}

func (d *Dev) String() string {
	return fmt.Sprintf("%s::%s %d bit - Rows: %d, Cols: %d",
		packageName, d.dataPins, int(d.width), d.rows, d.cols)
}

// Halt clears the display, turns it and the backlight off, and halts the
// data group. The lines are released back to their owner; the Dev must not
// be used afterwards.
func (d *Dev) Halt() error {
	if d.phase == phaseReady {
		_ = d.Clear()
		_ = d.Display(false)
	}
	if d.backlight != nil {
		_ = d.backlight.Backlight(0)
	}
	return d.dataPins.Halt()
}

var _ display.TextDisplay = &Dev{}
var _ display.DisplayBacklight = &Dev{}
var _ conn.Resource = &Dev{}
