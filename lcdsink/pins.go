// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package lcdsink

import (
	"errors"
	"strings"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/pin"
)

var errNoPWM = errors.New("lcdsink: PWM not supported")

type pinRole int

const (
	roleRS pinRole = iota
	roleRW
	roleEnable
	roleData
)

// sinkPin is a virtual output line of the emulated display.
type sinkPin struct {
	d      *Display
	role   pinRole
	name   string
	number int
	level  gpio.Level
}

func (p *sinkPin) Name() string     { return p.name }
func (p *sinkPin) Number() int      { return p.number }
func (p *sinkPin) Function() string { return "Out" }
func (p *sinkPin) String() string   { return p.name }
func (p *sinkPin) Halt() error      { return nil }

func (p *sinkPin) PWM(duty gpio.Duty, f physic.Frequency) error {
	return errNoPWM
}

func (p *sinkPin) Out(l gpio.Level) error {
	d := p.d
	d.mu.Lock()
	defer d.mu.Unlock()
	switch p.role {
	case roleRS:
		d.rs = bool(l)
	case roleRW:
		d.rw = bool(l)
	case roleData:
		bit := uint8(1) << p.number
		if l {
			d.bus |= bit
		} else {
			d.bus &^= bit
		}
	case roleEnable:
		falling := p.level == gpio.High && l == gpio.Low
		p.level = l
		if falling && !d.rw {
			d.latch()
		}
		return nil
	}
	p.level = l
	return nil
}

// RS returns the register select line.
func (d *Display) RS() gpio.PinOut {
	return &sinkPin{d: d, role: roleRS, name: "lcdsink_RS", number: 100}
}

// RW returns the read/write select line. The sink ignores latches with RW
// high since reads are not emulated.
func (d *Display) RW() gpio.PinOut {
	return &sinkPin{d: d, role: roleRW, name: "lcdsink_RW", number: 101}
}

// Enable returns the enable line. Data is latched on its falling edge.
func (d *Display) Enable() gpio.PinOut {
	return &sinkPin{d: d, role: roleEnable, name: "lcdsink_E", number: 102}
}

// DataGroup returns the data bus as a group of width virtual lines: 8 lines
// wire D0-D7, 4 lines wire D4-D7 for the 4 bit interface.
func (d *Display) DataGroup(width int) gpio.Group {
	d.mu.Lock()
	d.groupWidth = width
	d.mu.Unlock()
	pins := make([]*sinkPin, width)
	for ix := range pins {
		pins[ix] = &sinkPin{
			d:      d,
			role:   roleData,
			name:   "lcdsink_D" + string(rune('0'+ix)),
			number: ix,
		}
	}
	return &sinkGroup{d: d, pins: pins}
}

// sinkGroup is the virtual data bus.
type sinkGroup struct {
	d    *Display
	pins []*sinkPin
}

func (g *sinkGroup) Pins() []pin.Pin {
	pins := make([]pin.Pin, len(g.pins))
	for ix, p := range g.pins {
		pins[ix] = p
	}
	return pins
}

func (g *sinkGroup) ByOffset(offset int) pin.Pin {
	if offset < 0 || offset >= len(g.pins) {
		return nil
	}
	return g.pins[offset]
}

func (g *sinkGroup) ByName(name string) pin.Pin {
	for _, p := range g.pins {
		if p.name == name {
			return p
		}
	}
	return nil
}

func (g *sinkGroup) ByNumber(number int) pin.Pin {
	for _, p := range g.pins {
		if p.number == number {
			return p
		}
	}
	return nil
}

func (g *sinkGroup) Out(value, mask gpio.GPIOValue) error {
	g.d.mu.Lock()
	defer g.d.mu.Unlock()
	if mask == 0 {
		mask = gpio.GPIOValue(1<<len(g.pins)) - 1
	}
	g.d.bus = (g.d.bus &^ uint8(mask)) | uint8(value&mask)
	return nil
}

func (g *sinkGroup) Read(mask gpio.GPIOValue) (gpio.GPIOValue, error) {
	return 0, gpio.ErrGroupFeatureNotImplemented
}

func (g *sinkGroup) WaitForEdge(timeout time.Duration) (int, gpio.Edge, error) {
	return -1, gpio.NoEdge, gpio.ErrGroupFeatureNotImplemented
}

func (g *sinkGroup) Halt() error {
	return nil
}

func (g *sinkGroup) String() string {
	names := make([]string, len(g.pins))
	for ix, p := range g.pins {
		names[ix] = p.name
	}
	return "lcdsink(" + strings.Join(names, ",") + ")"
}

var _ gpio.PinOut = &sinkPin{}
var _ gpio.Group = &sinkGroup{}
