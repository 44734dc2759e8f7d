// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package liquidcrystal

import (
	"time"

	"periph.io/x/conn/v3/gpio"
)

type sleepFunc func(time.Duration)

func defaultSleep(d time.Duration) {
	time.Sleep(d)
}

const (
	// The enable line must be held on both sides of each edge. The
	// datasheet asks for 450ns; 1us is the resolution floor of most
	// hosts.
	enableHold = time.Microsecond

	// Settle time after each latched byte. The datasheet worst case for
	// ordinary instructions is 37us, but slow displays and long wires
	// need margin. Clear and home are not covered by this; they get
	// clearSettle.
	commandSettle = 100 * time.Microsecond

	// Execution window for clear and return home (1.52ms worst case).
	clearSettle = 2 * time.Millisecond
)

// command latches one instruction byte (RS low).
func (d *Dev) command(b byte) error {
	return wrap(d.send(b, gpio.Low))
}

// writeData latches one data byte (RS high).
func (d *Dev) writeData(b byte) error {
	return d.send(b, gpio.High)
}

// send drives the register select line and shifts one byte onto the bus,
// as a single transfer in 8 bit mode or as two nibble transfers, high
// nibble first, in 4 bit mode.
//
// A failed line write is fatal: the transfer cannot be resumed or retried
// without corrupting the controller state, so the error propagates
// immediately and the caller must re-run Begin().
func (d *Dev) send(b byte, rs gpio.Level) error {
	if err := d.rsPin.Out(rs); err != nil {
		return err
	}
	if d.rwPin != nil {
		// Write-only driver; the busy flag is never read back.
		if err := d.rwPin.Out(gpio.Low); err != nil {
			return err
		}
	}
	if d.width == bus8Bit {
		return d.write8Bits(b)
	}
	if err := d.write4Bits(b >> 4); err != nil {
		return err
	}
	return d.write4Bits(b)
}

// write4Bits puts the low nibble of value on D4-D7 and latches it.
func (d *Dev) write4Bits(value byte) error {
	return d.writeBits(gpio.GPIOValue(value), 0x0f)
}

func (d *Dev) write8Bits(value byte) error {
	return d.writeBits(gpio.GPIOValue(value), 0xff)
}

func (d *Dev) writeBits(value, mask gpio.GPIOValue) error {
	if err := d.dataPins.Out(value, mask); err != nil {
		return err
	}
	return d.pulseEnable()
}

// pulseEnable latches the data lines into the controller. The byte is
// sampled on the falling edge. The trailing settle keeps the bus quiet for
// the instruction execution time.
func (d *Dev) pulseEnable() error {
	if err := d.enablePin.Out(gpio.Low); err != nil {
		return err
	}
	d.sleep(enableHold)
	if err := d.enablePin.Out(gpio.High); err != nil {
		return err
	}
	d.sleep(enableHold)
	if err := d.enablePin.Out(gpio.Low); err != nil {
		return err
	}
	d.sleep(commandSettle)
	return nil
}
