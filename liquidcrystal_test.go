// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package liquidcrystal

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
)

func TestNewRejectsBadGroups(t *testing.T) {
	for _, width := range []int{0, 1, 5, 7, 9} {
		g := newFakeGroup(width)
		if _, err := New(g, &fakePin{name: "RS"}, &fakePin{name: "E"}, nil); !errors.Is(err, ErrInvalidWidth) {
			t.Errorf("width %d: err = %v, want ErrInvalidWidth", width, err)
		}
	}
	if _, err := New(nil, &fakePin{name: "RS"}, &fakePin{name: "E"}, nil); err == nil {
		t.Error("nil group must be rejected")
	}
	if _, err := New(newFakeGroup(4), nil, &fakePin{name: "E"}, nil); err == nil {
		t.Error("nil RS must be rejected")
	}
}

func TestOperationsBeforeBegin(t *testing.T) {
	r := newRig(t, 4, false)
	if _, err := r.dev.Write([]byte("x")); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Write: %v, want ErrNotInitialized", err)
	}
	if err := r.dev.SetCursor(0, 0); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("SetCursor: %v, want ErrNotInitialized", err)
	}
	if err := r.dev.Clear(); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Clear: %v, want ErrNotInitialized", err)
	}
	if len(r.group.writes) != 0 {
		t.Error("no bus traffic may happen before Begin")
	}
}

func TestSetCursorAddresses(t *testing.T) {
	r := begun(t, 4)
	if err := r.dev.Begin(16, 4, Font5x8); err != nil {
		t.Fatal(err)
	}
	r.reset()
	for _, row := range []int{0, 1, 2, 3} {
		if err := r.dev.SetCursor(3, row); err != nil {
			t.Fatal(err)
		}
	}
	want := []byte{0x83, 0xc3, 0x93, 0xd3}
	if diff := cmp.Diff(want, r.bytes(t)); diff != "" {
		t.Errorf("DDRAM addresses differ (-want +got):\n%s", diff)
	}
}

func TestSetCursorClampsRow(t *testing.T) {
	// Two line display: rows past the last line collapse to the last
	// line instead of erroring.
	r := begun(t, 4)
	if err := r.dev.SetCursor(0, 5); err != nil {
		t.Fatal(err)
	}
	clamped := r.bytes(t)
	r.reset()
	if err := r.dev.SetCursor(0, 1); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(r.bytes(t), clamped); diff != "" {
		t.Errorf("row 5 must address like row 1 (-row1 +row5):\n%s", diff)
	}
}

func TestMoveTo(t *testing.T) {
	r := begun(t, 4)
	if err := r.dev.MoveTo(2, 2); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]byte{0xc1}, r.bytes(t)); diff != "" {
		t.Errorf("MoveTo(2,2) traffic differs (-want +got):\n%s", diff)
	}
	for _, tc := range [][2]int{{0, 1}, {3, 1}, {1, 0}, {1, 17}} {
		if err := r.dev.MoveTo(tc[0], tc[1]); err == nil {
			t.Errorf("MoveTo(%d,%d) must fail", tc[0], tc[1])
		}
	}
}

func TestDisplayControlOps(t *testing.T) {
	r := begun(t, 4)
	steps := []struct {
		op   func() error
		want byte
	}{
		{func() error { return r.dev.ShowCursor(true) }, 0x0e},
		{func() error { return r.dev.Blink(true) }, 0x0f},
		{func() error { return r.dev.Display(false) }, 0x0b},
		{func() error { return r.dev.Display(true) }, 0x0f},
		{func() error { return r.dev.Blink(false) }, 0x0e},
		{func() error { return r.dev.ShowCursor(false) }, 0x0c},
	}
	var want []byte
	for _, s := range steps {
		if err := s.op(); err != nil {
			t.Fatal(err)
		}
		want = append(want, s.want)
	}
	if diff := cmp.Diff(want, r.bytes(t)); diff != "" {
		t.Errorf("display control traffic differs (-want +got):\n%s", diff)
	}
}

func TestDisplayIdempotent(t *testing.T) {
	r := begun(t, 4)
	if err := r.dev.Display(true); err != nil {
		t.Fatal(err)
	}
	if err := r.dev.Display(true); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]byte{0x0c, 0x0c}, r.bytes(t)); diff != "" {
		t.Errorf("repeated Display(true) traffic differs (-want +got):\n%s", diff)
	}
}

func TestCursorModes(t *testing.T) {
	r := begun(t, 4)
	for _, tc := range []struct {
		modes []display.CursorMode
		want  byte
	}{
		{[]display.CursorMode{display.CursorOff}, 0x0c},
		{[]display.CursorMode{display.CursorUnderline}, 0x0e},
		{[]display.CursorMode{display.CursorBlink}, 0x0d},
		{[]display.CursorMode{display.CursorBlock}, 0x0f},
		{[]display.CursorMode{display.CursorUnderline, display.CursorBlink}, 0x0f},
	} {
		r.reset()
		if err := r.dev.Cursor(tc.modes...); err != nil {
			t.Fatal(err)
		}
		if got := r.bytes(t); len(got) != 1 || got[0] != tc.want {
			t.Errorf("Cursor(%v) sent %#v, want [%#02x]", tc.modes, got, tc.want)
		}
	}
	if err := r.dev.Cursor(display.CursorMode(99)); err == nil {
		t.Error("unknown cursor mode must fail")
	}
}

func TestEntryModeOps(t *testing.T) {
	r := begun(t, 4)
	steps := []struct {
		op   func() error
		want byte
	}{
		{func() error { return r.dev.AutoScroll(true) }, 0x07},
		{func() error { return r.dev.TextFlow(display.Backward) }, 0x05},
		{func() error { return r.dev.AutoScroll(false) }, 0x04},
		{func() error { return r.dev.TextFlow(display.Forward) }, 0x06},
	}
	var want []byte
	for _, s := range steps {
		if err := s.op(); err != nil {
			t.Fatal(err)
		}
		want = append(want, s.want)
	}
	if diff := cmp.Diff(want, r.bytes(t)); diff != "" {
		t.Errorf("entry mode traffic differs (-want +got):\n%s", diff)
	}
}

func TestScrollAndMove(t *testing.T) {
	r := begun(t, 4)
	if err := r.dev.ScrollDisplay(display.Backward); err != nil {
		t.Fatal(err)
	}
	if err := r.dev.ScrollDisplay(display.Forward); err != nil {
		t.Fatal(err)
	}
	if err := r.dev.Move(display.Forward); err != nil {
		t.Fatal(err)
	}
	if err := r.dev.Move(display.Backward); err != nil {
		t.Fatal(err)
	}
	want := []byte{0x18, 0x1c, 0x14, 0x10}
	if diff := cmp.Diff(want, r.bytes(t)); diff != "" {
		t.Errorf("shift traffic differs (-want +got):\n%s", diff)
	}
	if err := r.dev.Move(display.Up); !errors.Is(err, display.ErrNotImplemented) {
		t.Errorf("Move(Up) = %v, want ErrNotImplemented", err)
	}
}

func TestCreateCharSlotWraps(t *testing.T) {
	glyph := [8]byte{0x0a, 0x1f, 0x1f, 0x1f, 0x0e, 0x04, 0x00, 0x00}
	r := begun(t, 4)
	if err := r.dev.CreateChar(9, glyph); err != nil {
		t.Fatal(err)
	}
	nine := r.bytes(t)
	r.reset()
	if err := r.dev.CreateChar(1, glyph); err != nil {
		t.Fatal(err)
	}
	one := r.bytes(t)
	if diff := cmp.Diff(one, nine); diff != "" {
		t.Errorf("slot 9 must behave like slot 1 (-slot1 +slot9):\n%s", diff)
	}
	if one[0] != 0x48 {
		t.Errorf("CGRAM address = %#02x, want 0x48", one[0])
	}
	if diff := cmp.Diff(glyph[:], one[1:]); diff != "" {
		t.Errorf("glyph payload differs (-want +got):\n%s", diff)
	}
}

func TestClearAndHomeSettle(t *testing.T) {
	r := begun(t, 4)
	if err := r.dev.Clear(); err != nil {
		t.Fatal(err)
	}
	if err := r.dev.Home(); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]byte{0x01, 0x02}, r.bytes(t)); diff != "" {
		t.Errorf("traffic differs (-want +got):\n%s", diff)
	}
	long := 0
	for _, s := range r.sleeps {
		if s == clearSettle {
			long++
		}
	}
	if long != 2 {
		t.Errorf("long settles = %d, want 2 (one per clear/home)", long)
	}
}

func TestBacklightWithoutController(t *testing.T) {
	r := begun(t, 4)
	if err := r.dev.Backlight(0xff); !errors.Is(err, display.ErrNotImplemented) {
		t.Errorf("Backlight = %v, want ErrNotImplemented", err)
	}
}

func TestHalt(t *testing.T) {
	r := begun(t, 4)
	if err := r.dev.Halt(); err != nil {
		t.Fatal(err)
	}
	if !r.group.halted {
		t.Error("Halt must halt the data group")
	}
	b := r.bytes(t)
	if len(b) == 0 || b[0] != 0x01 {
		t.Error("Halt must clear the display first")
	}
	if b[len(b)-1] != 0x08 {
		t.Errorf("Halt must end turning the display off, got %#02x", b[len(b)-1])
	}
}

func TestString(t *testing.T) {
	r := begun(t, 4)
	s := r.dev.String()
	if !strings.Contains(s, "Rows: 2") || !strings.Contains(s, "Cols: 16") {
		t.Errorf("String() = %q", s)
	}
}

func TestNewFromPins(t *testing.T) {
	mk := func(n int) []gpio.PinOut {
		var pins []gpio.PinOut
		for ix := 0; ix < n; ix++ {
			pins = append(pins, &fakePin{name: "GPIO" + string(rune('0'+ix)), number: ix})
		}
		return pins
	}

	d, err := NewFromPins(Pins{
		RS:     &fakePin{name: "RS"},
		Enable: &fakePin{name: "E"},
		Data:   mk(4),
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if d.width != bus4Bit {
		t.Errorf("width = %d, want 4 bit", d.width)
	}

	d, err = NewFromPins(Pins{
		RS:     &fakePin{name: "RS"},
		Enable: &fakePin{name: "E"},
		RW:     &fakePin{name: "RW"},
		Data:   mk(8),
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if d.width != bus8Bit {
		t.Errorf("width = %d, want 8 bit", d.width)
	}
	if d.rwPin == nil {
		t.Error("RW pin not bound")
	}

	if _, err = NewFromPins(Pins{
		RS:     &fakePin{name: "RS"},
		Enable: &fakePin{name: "E"},
		Data:   mk(5),
	}, nil); !errors.Is(err, ErrInvalidWidth) {
		t.Errorf("5 data pins: %v, want ErrInvalidWidth", err)
	}

	// A line may only be owned once.
	shared := &fakePin{name: "GPIO7"}
	if _, err = NewFromPins(Pins{
		RS:     shared,
		Enable: &fakePin{name: "E"},
		Data:   []gpio.PinOut{mk(3)[0], mk(3)[1], mk(3)[2], shared},
	}, nil); err == nil || !strings.Contains(err.Error(), "bound twice") {
		t.Errorf("shared pin: %v, want bound twice error", err)
	}
}
