// Copyright 2020 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package jtagio

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
)

// ByNames resolves five GPIO pin names through gpioreg (populated by
// whichever host driver self-registered; this module ships the sysfs
// driver) into a jtagio.Pins. This is the normal
// construction path: it works identically regardless of which periph host
// driver actually owns the pin, since every one of them registers its pins
// with gpioreg under a resolvable name.
func ByNames(tck, tms, tdi, trst, tdo string, sleep func()) (Pins, error) {
	get := func(name string) (gpio.PinIO, error) {
		p := gpioreg.ByName(name)
		if p == nil {
			return nil, fmt.Errorf("jtagio: pin %q not found", name)
		}
		return p, nil
	}

	tckPin, err := get(tck)
	if err != nil {
		return Pins{}, err
	}
	tmsPin, err := get(tms)
	if err != nil {
		return Pins{}, err
	}
	tdiPin, err := get(tdi)
	if err != nil {
		return Pins{}, err
	}
	trstPin, err := get(trst)
	if err != nil {
		return Pins{}, err
	}
	tdoPin, err := get(tdo)
	if err != nil {
		return Pins{}, err
	}

	if err := tdoPin.In(gpio.PullNoChange, gpio.NoEdge); err != nil {
		return Pins{}, fmt.Errorf("jtagio: configuring %s as input: %w", tdo, err)
	}

	return Pins{
		TCK:   tckPin,
		TMS:   tmsPin,
		TDI:   tdiPin,
		TRST:  trstPin,
		TDO:   tdoPin,
		Sleep: sleep,
	}, nil
}
