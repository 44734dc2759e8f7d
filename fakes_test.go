// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package liquidcrystal

import (
	"errors"
	"strings"
	"testing"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/pin"
)

// The gpiotest fakes keep only the last level written, but asserting the
// protocol needs the full write history, so the tests record every
// operation themselves.

var errFakeWrite = errors.New("fake write failure")

type fakePin struct {
	name   string
	number int
	hist   []gpio.Level
	halted bool
}

func (p *fakePin) Name() string     { return p.name }
func (p *fakePin) Number() int      { return p.number }
func (p *fakePin) Function() string { return "Out" }
func (p *fakePin) String() string   { return p.name }

func (p *fakePin) Halt() error {
	p.halted = true
	return nil
}

func (p *fakePin) Out(l gpio.Level) error {
	p.hist = append(p.hist, l)
	return nil
}

func (p *fakePin) PWM(duty gpio.Duty, f physic.Frequency) error {
	return errors.New("fake: no PWM")
}

type fakeGroup struct {
	pins   []*fakePin
	writes []gpio.GPIOValue // value & mask per Out call
	failAt int              // write index that fails, -1 for never
	halted bool
}

func newFakeGroup(width int) *fakeGroup {
	g := &fakeGroup{failAt: -1}
	for ix := 0; ix < width; ix++ {
		g.pins = append(g.pins, &fakePin{name: "D" + string(rune('0'+ix)), number: ix})
	}
	return g
}

func (g *fakeGroup) Pins() []pin.Pin {
	pins := make([]pin.Pin, len(g.pins))
	for ix, p := range g.pins {
		pins[ix] = p
	}
	return pins
}

func (g *fakeGroup) ByOffset(offset int) pin.Pin { return g.pins[offset] }

func (g *fakeGroup) ByName(name string) pin.Pin {
	for _, p := range g.pins {
		if p.name == name {
			return p
		}
	}
	return nil
}

func (g *fakeGroup) ByNumber(number int) pin.Pin {
	for _, p := range g.pins {
		if p.number == number {
			return p
		}
	}
	return nil
}

func (g *fakeGroup) Out(value, mask gpio.GPIOValue) error {
	if g.failAt >= 0 && len(g.writes) == g.failAt {
		return errFakeWrite
	}
	g.writes = append(g.writes, value&mask)
	return nil
}

func (g *fakeGroup) Read(mask gpio.GPIOValue) (gpio.GPIOValue, error) {
	return 0, gpio.ErrGroupFeatureNotImplemented
}

func (g *fakeGroup) WaitForEdge(timeout time.Duration) (int, gpio.Edge, error) {
	return -1, gpio.NoEdge, gpio.ErrGroupFeatureNotImplemented
}

func (g *fakeGroup) Halt() error {
	g.halted = true
	return nil
}

func (g *fakeGroup) String() string {
	names := make([]string, len(g.pins))
	for ix, p := range g.pins {
		names[ix] = p.name
	}
	return "fake(" + strings.Join(names, ",") + ")"
}

// rig is a Dev wired to recording fakes with sleeps captured instead of
// slept.
type rig struct {
	dev    *Dev
	group  *fakeGroup
	rs     *fakePin
	enable *fakePin
	rw     *fakePin
	sleeps []time.Duration
}

func newRig(t *testing.T, width int, withRW bool) *rig {
	t.Helper()
	r := &rig{
		group:  newFakeGroup(width),
		rs:     &fakePin{name: "RS", number: 10},
		enable: &fakePin{name: "E", number: 11},
	}
	opts := &Opts{}
	if withRW {
		r.rw = &fakePin{name: "RW", number: 12}
		opts.RW = r.rw
	}
	dev, err := New(r.group, r.rs, r.enable, opts)
	if err != nil {
		t.Fatal(err)
	}
	dev.sleep = func(d time.Duration) {
		r.sleeps = append(r.sleeps, d)
	}
	r.dev = dev
	return r
}

// begun returns a rig already through the power-on sequence, with the
// recorded traffic cleared so tests see only their own.
func begun(t *testing.T, width int) *rig {
	t.Helper()
	r := newRig(t, width, false)
	if err := r.dev.Begin(16, 2, Font5x8); err != nil {
		t.Fatal(err)
	}
	r.reset()
	return r
}

func (r *rig) reset() {
	r.group.writes = nil
	r.sleeps = nil
	r.rs.hist = nil
	r.enable.hist = nil
	if r.rw != nil {
		r.rw.hist = nil
	}
}

// bytes reconstructs the instruction/data bytes from the recorded bus
// writes, pairing nibbles in 4 bit mode.
func (r *rig) bytes(t *testing.T) []byte {
	t.Helper()
	if len(r.group.pins) == 8 {
		out := make([]byte, len(r.group.writes))
		for ix, w := range r.group.writes {
			out[ix] = byte(w)
		}
		return out
	}
	if len(r.group.writes)%2 != 0 {
		t.Fatalf("odd number of nibble transfers: %d", len(r.group.writes))
	}
	var out []byte
	for ix := 0; ix < len(r.group.writes); ix += 2 {
		out = append(out, byte(r.group.writes[ix])<<4|byte(r.group.writes[ix+1]))
	}
	return out
}

// pulses counts complete low-high-low transitions on the enable line.
func (r *rig) pulses() int {
	n := 0
	for ix := 0; ix+2 < len(r.enable.hist); ix++ {
		if r.enable.hist[ix] == gpio.Low &&
			r.enable.hist[ix+1] == gpio.High &&
			r.enable.hist[ix+2] == gpio.Low {
			n++
		}
	}
	return n
}
