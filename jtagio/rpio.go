// Copyright 2020 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package jtagio

import (
	"fmt"
	"time"

	"github.com/stianeikeland/go-rpio"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/pin"
)

// rpioPin adapts a single github.com/stianeikeland/go-rpio pin to periph's
// gpio.PinIO surface, grounded on gremwell-go-jtagenum's JtagPinDriverRpio
// (pinWrite/pinRead/pinOutput/pinInput).
type rpioPin struct {
	p    rpio.Pin
	name string
}

func (r *rpioPin) String() string          { return r.name }
func (r *rpioPin) Halt() error              { return nil }
func (r *rpioPin) Name() string             { return r.name }
func (r *rpioPin) Number() int              { return int(r.p) }
func (r *rpioPin) Function() string         { return string(r.Func()) }
func (r *rpioPin) Func() pin.Func           { return pin.FuncNone }
func (r *rpioPin) SupportedFuncs() []pin.Func { return nil }
func (r *rpioPin) SetFunc(f pin.Func) error { return fmt.Errorf("jtagio: SetFunc not supported") }

func (r *rpioPin) Out(l gpio.Level) error {
	r.p.Output()
	if l {
		r.p.High()
	} else {
		r.p.Low()
	}
	return nil
}

func (r *rpioPin) PWM(duty gpio.Duty, freq physic.Frequency) error {
	return fmt.Errorf("jtagio: PWM not supported")
}

func (r *rpioPin) In(pull gpio.Pull, edge gpio.Edge) error {
	r.p.Input()
	switch pull {
	case gpio.PullUp:
		r.p.PullUp()
	case gpio.PullDown:
		r.p.PullDown()
	default:
		r.p.PullOff()
	}
	return nil
}

func (r *rpioPin) Read() gpio.Level {
	return r.p.Read() == rpio.High
}

func (r *rpioPin) WaitForEdge(timeout time.Duration) bool { return false }
func (r *rpioPin) Pull() gpio.Pull                        { return gpio.PullNoChange }
func (r *rpioPin) DefaultPull() gpio.Pull                 { return gpio.PullNoChange }

// NewRPIOPins opens the go-rpio memory-mapped register window and wraps the
// five requested BCM GPIO numbers as a jtagio.Pins. Callers on non-Raspberry
// Pi hosts should use a different backend.
func NewRPIOPins(tck, tms, tdi, trst, tdo int, sleep func()) (Pins, error) {
	if err := rpio.Open(); err != nil {
		return Pins{}, fmt.Errorf("jtagio: rpio.Open: %w", err)
	}
	mk := func(n int, name string) *rpioPin { return &rpioPin{p: rpio.Pin(n), name: name} }
	return Pins{
		TCK:   mk(tck, "TCK"),
		TMS:   mk(tms, "TMS"),
		TDI:   mk(tdi, "TDI"),
		TRST:  mk(trst, "TRST"),
		TDO:   mk(tdo, "TDO"),
		Sleep: sleep,
	}, nil
}
