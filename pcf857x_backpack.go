// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package liquidcrystal

import (
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/devices/v3/pcf857x"
)

// PCF8574 backpack wiring. The name is the LCD pin, the value the GPIO
// number on the expander.
const (
	pcfRS        = 0
	pcfRW        = 1
	pcfEnable    = 2
	pcfBacklight = 3
	pcfD4        = 4
	pcfD5        = 5
	pcfD6        = 6
	pcfD7        = 7
)

// NewPCF857xBackpack returns an initialized display wired through one of
// the common PCF8574 I2C backpacks (LCD1602/LCD2004 modules). The backpack
// only wires D4-D7, so the display runs in 4 bit mode. Begin has already
// been run on the returned Dev.
//
// # Product Information
//
// https://www.handsontec.com/dataspecs/I2C_2004_LCD.pdf
func NewPCF857xBackpack(bus i2c.Bus, address uint16, rows, cols int) (*Dev, error) {
	pcf, err := pcf857x.New(bus, address, pcf857x.PCF8574)
	if err != nil {
		return nil, wrap(err)
	}
	gr, err := pcf.Group(pcfD4, pcfD5, pcfD6, pcfD7)
	if err != nil {
		return nil, wrap(err)
	}
	opts := &Opts{
		// R/W is wired on this backpack; the driver keeps it low.
		RW:        pcf.Pins[pcfRW],
		Backlight: NewGPIOBacklight(pcf.Pins[pcfBacklight]),
	}
	var rs, enable gpio.PinOut = pcf.Pins[pcfRS], pcf.Pins[pcfEnable]
	d, err := New(gr, rs, enable, opts)
	if err != nil {
		return nil, err
	}
	if err = d.Begin(cols, rows, Font5x8); err != nil {
		return nil, err
	}
	return d, nil
}
