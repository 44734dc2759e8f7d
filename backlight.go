// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package liquidcrystal

import (
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

// GPIOBacklight drives a display backlight from a single GPIO pin. If the
// pin supports PWM the intensity is applied as a duty cycle, otherwise any
// non-zero intensity turns the pin on.
type GPIOBacklight struct {
	pin   gpio.PinOut
	noPWM bool
}

// NewGPIOBacklight returns a backlight controller for the given pin.
func NewGPIOBacklight(pin gpio.PinOut) *GPIOBacklight {
	return &GPIOBacklight{pin: pin}
}

// Backlight sets the backlight intensity, 0 (off) to 255 (full).
func (bl *GPIOBacklight) Backlight(intensity display.Intensity) error {
	if !bl.noPWM {
		duty := gpio.Duty(int64(gpio.DutyMax) * int64(intensity) / 255)
		if err := bl.pin.PWM(duty, physic.KiloHertz); err == nil {
			return nil
		}
		// Expander pins typically can't PWM. Fall back to on/off for
		// good.
		bl.noPWM = true
	}
	return bl.pin.Out(intensity > 0)
}

var _ display.DisplayBacklight = &GPIOBacklight{}
