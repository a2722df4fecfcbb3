// Copyright 2020 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package jtagio defines the minimal GPIO contract the bit-banged TAP driver
// depends on and the concrete backends that satisfy it. The contract mirrors
// dpuser.h's gpio_handle: four output lines and one input line, nothing
// else. The package offers two ways to obtain those five lines: ByNames,
// which looks them up in periph's gpioreg, and a bare go-rpio mapping.
package jtagio

import "periph.io/x/conn/v3/gpio"

// Pins is the complete surface a TAP needs: four outputs and one input.
// Sleep, if non-nil, is invoked after every TCK edge to pace the link; a nil
// Sleep drives the target as fast as the host can toggle GPIO.
type Pins struct {
	TCK  gpio.PinOut
	TMS  gpio.PinOut
	TDI  gpio.PinOut
	TRST gpio.PinOut
	TDO  gpio.PinIn

	Sleep func()
}

// Halt drives every output pin high (idle, per the reference's power-up
// default); it does not release the pins. Errors from individual pins are
// collapsed to the first one encountered.
func (p Pins) Halt() error {
	var first error
	for _, o := range []gpio.PinOut{p.TCK, p.TMS, p.TDI, p.TRST} {
		if o == nil {
			continue
		}
		if err := o.Out(gpio.High); err != nil && first == nil {
			first = err
		}
	}
	return first
}
