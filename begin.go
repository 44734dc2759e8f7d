// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package liquidcrystal

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
)

// initPhase tracks progress through the datasheet power-on sequence. The
// controller is only usable once the sequence has completed.
type initPhase int

const (
	phasePoweredUnknown initPhase = iota
	phaseForcedIdle
	phaseBusWidthNegotiated
	phaseFunctionConfigured
	phaseDisplayOnCleared
	phaseReady
)

const (
	// Minimum wait from power application before any bus activity. The
	// datasheet asks for 40ms after Vcc reaches 2.7V; 50ms covers slow
	// supplies.
	powerOnSettle = 50 * time.Millisecond

	// Settle times between the three wake-up function set writes. The
	// controller may still be in 8 bit mode with its oscillator barely
	// up, so the first wait is generous.
	resyncSettle1 = 45 * time.Millisecond
	resyncSettle2 = 4500 * time.Microsecond
	resyncSettle3 = 150 * time.Microsecond
)

// Begin runs the power-on initialization mandated by the datasheet and
// configures the display geometry. It must be called once before any other
// operation; calling it again is allowed and resets the display to its
// defaults (on, no cursor, no blink, left-to-right, no autoscroll).
//
// rows greater than 1 select the controller's 2 line mode. font is forced
// to 5x8 unless the display is a single line, which is the only geometry
// the controller supports 5x10 on.
func (d *Dev) Begin(cols, rows int, font Font) error {
	// DDRAM holds 80 characters: one line of up to 80, or 40 per line in
	// 2 line mode.
	if cols <= 0 || rows <= 0 || cols > 80 || (rows > 1 && cols > 40) {
		return fmt.Errorf("%s: Begin(%d,%d) invalid geometry", packageName, cols, rows)
	}
	d.cols = cols
	d.rows = rows
	// DDRAM layout: lines 1/2 start at 0x00/0x40, and on 4 line glass
	// lines 3/4 continue line 1/2 past the visible width.
	d.rowOffsets = [4]byte{0x00, 0x40, byte(cols), byte(0x40 + cols)}

	d.phase = phasePoweredUnknown
	d.sleep(powerOnSettle)

	// Force the control lines to a known idle state.
	if err := d.rsPin.Out(gpio.Low); err != nil {
		return wrap(err)
	}
	if err := d.enablePin.Out(gpio.Low); err != nil {
		return wrap(err)
	}
	if d.rwPin != nil {
		if err := d.rwPin.Out(gpio.Low); err != nil {
			return wrap(err)
		}
	}
	d.phase = phaseForcedIdle

	d.fn = function{
		eightBit: d.width == bus8Bit,
		twoLines: rows > 1,
		font5x10: font == Font5x10 && rows == 1,
	}
	if err := d.negotiateBusWidth(); err != nil {
		return wrap(err)
	}
	d.phase = phaseBusWidthNegotiated

	// The authoritative function set. Width, line count and font are
	// frozen from here on.
	if err := d.command(d.fn.encode()); err != nil {
		return err
	}
	d.phase = phaseFunctionConfigured

	d.ctrl = displayControl{on: true}
	if err := d.command(d.ctrl.encode()); err != nil {
		return err
	}
	if err := d.command(cmdClearDisplay); err != nil {
		return err
	}
	d.sleep(clearSettle)
	d.phase = phaseDisplayOnCleared

	d.mode = entryMode{leftToRight: true}
	if err := d.command(d.mode.encode()); err != nil {
		return err
	}
	d.phase = phaseReady
	return nil
}

// negotiateBusWidth wakes the controller up and commits the interface
// width. The controller powers up in 8 bit mode and, depending on how a
// previous run ended, may be desynchronized mid-byte in 4 bit mode, so the
// "function set, 8 bit" pattern is sent three times to force it back to a
// known state before the width is committed.
func (d *Dev) negotiateBusWidth() error {
	if d.width == bus4Bit {
		// Only D4-D7 are wired, so each write is a bare nibble.
		if err := d.write4Bits(0x03); err != nil {
			return err
		}
		d.sleep(resyncSettle1)
		if err := d.write4Bits(0x03); err != nil {
			return err
		}
		d.sleep(resyncSettle2)
		if err := d.write4Bits(0x03); err != nil {
			return err
		}
		d.sleep(resyncSettle3)
		// Commit 4 bit mode. From the next transfer on, bytes travel
		// as two nibbles.
		return d.write4Bits(0x02)
	}
	if err := d.write8Bits(d.fn.encode()); err != nil {
		return err
	}
	d.sleep(resyncSettle2)
	if err := d.write8Bits(d.fn.encode()); err != nil {
		return err
	}
	d.sleep(resyncSettle3)
	return d.write8Bits(d.fn.encode())
}
