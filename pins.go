// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package liquidcrystal

import (
	"fmt"
	"strings"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/pin"
)

// Pins describes a direct wiring of the controller to discrete GPIO lines.
// Data holds either 4 pins wired to D4-D7 (4 bit interface) or 8 pins wired
// to D0-D7 (8 bit interface), lowest line first. RW is optional; leave it
// nil when the pin is strapped to ground.
type Pins struct {
	RS     gpio.PinOut
	Enable gpio.PinOut
	RW     gpio.PinOut
	Data   []gpio.PinOut
}

// NewFromPins binds an HD44780 to discrete GPIO pins, wrapping the data
// pins into a write-only gpio.Group. Every line must be distinct; a pin
// bound twice within the descriptor is rejected, since the driver assumes
// exclusive custody of each line for the life of the Dev.
func NewFromPins(p Pins, opts *Opts) (*Dev, error) {
	if p.RS == nil || p.Enable == nil {
		return nil, fmt.Errorf("%s: RS and Enable pins are required", packageName)
	}
	if len(p.Data) != 4 && len(p.Data) != 8 {
		return nil, ErrInvalidWidth
	}
	seen := map[string]struct{}{}
	claim := func(pn gpio.PinOut) error {
		if pn == nil {
			return fmt.Errorf("%s: nil data pin in binding", packageName)
		}
		if _, dup := seen[pn.Name()]; dup {
			return fmt.Errorf("%s: pin %s bound twice", packageName, pn.Name())
		}
		seen[pn.Name()] = struct{}{}
		return nil
	}
	for _, pn := range p.Data {
		if err := claim(pn); err != nil {
			return nil, err
		}
	}
	if err := claim(p.RS); err != nil {
		return nil, err
	}
	if err := claim(p.Enable); err != nil {
		return nil, err
	}
	if p.RW != nil {
		if err := claim(p.RW); err != nil {
			return nil, err
		}
	}

	o := Opts{RW: p.RW}
	if opts != nil {
		o.Backlight = opts.Backlight
		if o.RW == nil {
			o.RW = opts.RW
		}
	}
	gr := &pinGroup{pins: append([]gpio.PinOut(nil), p.Data...)}
	return New(gr, p.RS, p.Enable, &o)
}

// pinGroup adapts discrete output pins into a gpio.Group so that the data
// bus can be written through one call regardless of how the lines were
// obtained.
type pinGroup struct {
	pins []gpio.PinOut
}

func (pg *pinGroup) Pins() []pin.Pin {
	pins := make([]pin.Pin, len(pg.pins))
	for ix, p := range pg.pins {
		pins[ix] = p
	}
	return pins
}

func (pg *pinGroup) ByOffset(offset int) pin.Pin {
	if offset < 0 || offset >= len(pg.pins) {
		return nil
	}
	return pg.pins[offset]
}

func (pg *pinGroup) ByName(name string) pin.Pin {
	for _, p := range pg.pins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

func (pg *pinGroup) ByNumber(number int) pin.Pin {
	for _, p := range pg.pins {
		if p.Number() == number {
			return p
		}
	}
	return nil
}

// Out writes value to the pins selected by mask, bit 0 of value going to
// the first pin of the group.
func (pg *pinGroup) Out(value, mask gpio.GPIOValue) error {
	if mask == 0 {
		mask = gpio.GPIOValue(1<<len(pg.pins)) - 1
	}
	for ix, p := range pg.pins {
		bit := gpio.GPIOValue(1) << ix
		if mask&bit == 0 {
			continue
		}
		if err := p.Out(gpio.Level(value&bit != 0)); err != nil {
			return fmt.Errorf("%s: %s: %w", packageName, p.Name(), err)
		}
	}
	return nil
}

// Read is not supported; the driver never reads its lines.
func (pg *pinGroup) Read(mask gpio.GPIOValue) (gpio.GPIOValue, error) {
	return 0, gpio.ErrGroupFeatureNotImplemented
}

func (pg *pinGroup) WaitForEdge(timeout time.Duration) (int, gpio.Edge, error) {
	return -1, gpio.NoEdge, gpio.ErrGroupFeatureNotImplemented
}

func (pg *pinGroup) Halt() error {
	for _, p := range pg.pins {
		if err := p.Halt(); err != nil {
			return err
		}
	}
	return nil
}

func (pg *pinGroup) String() string {
	names := make([]string, len(pg.pins))
	for ix, p := range pg.pins {
		names[ix] = p.Name()
	}
	return "Group(" + strings.Join(names, ",") + ")"
}

var _ gpio.Group = &pinGroup{}
