// Copyright 2020 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package jtag

import (
	"testing"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpiotest"

	"github.com/microchip-fpga/directc/directcerr"
	"github.com/microchip-fpga/directc/jtagio"
)

func newFakePins(tdo gpio.Level) jtagio.Pins {
	return jtagio.Pins{
		TCK:  &gpiotest.Pin{N: "TCK"},
		TMS:  &gpiotest.Pin{N: "TMS"},
		TDI:  &gpiotest.Pin{N: "TDI"},
		TRST: &gpiotest.Pin{N: "TRST"},
		TDO:  &gpiotest.Pin{N: "TDO", L: tdo},
	}
}

func TestGotoFromReset(t *testing.T) {
	tap := New(newFakePins(gpio.Low))
	if tap.State() != TestLogicReset {
		t.Fatalf("new TAP state = %v, want TestLogicReset", tap.State())
	}
	if err := tap.Goto(RunTestIdle, 0); err != nil {
		t.Fatalf("Goto(RunTestIdle): %v", err)
	}
	if tap.State() != RunTestIdle {
		t.Fatalf("state after Goto(RunTestIdle) = %v", tap.State())
	}
}

func TestGotoUnhandledTarget(t *testing.T) {
	tap := New(newFakePins(gpio.Low))
	err := tap.Goto(UpdateIR, 0)
	if err == nil {
		t.Fatal("Goto(UpdateIR) from Test-Logic-Reset: want error, got nil")
	}
	de, ok := err.(*directcerr.Error)
	if !ok || de.Code != directcerr.JTAGStateNotHandled {
		t.Fatalf("Goto(UpdateIR) error = %v, want JTAGStateNotHandled", err)
	}
}

func TestGotoIdempotent(t *testing.T) {
	tap := New(newFakePins(gpio.Low))
	if err := tap.Goto(TestLogicReset, 0); err != nil {
		t.Fatalf("Goto(TestLogicReset): %v", err)
	}
	if tap.State() != TestLogicReset {
		t.Fatalf("state = %v, want unchanged TestLogicReset", tap.State())
	}
}

func TestFullCycleShiftIR(t *testing.T) {
	tap := New(newFakePins(gpio.Low))
	if err := tap.Goto(ShiftIR, 0); err != nil {
		t.Fatalf("Goto(ShiftIR): %v", err)
	}
	if tap.State() != ShiftIR {
		t.Fatalf("state = %v, want ShiftIR", tap.State())
	}
	if err := tap.Goto(PauseIR, 0); err != nil {
		t.Fatalf("Goto(PauseIR): %v", err)
	}
	if tap.State() != PauseIR {
		t.Fatalf("state = %v, want PauseIR", tap.State())
	}
}

func TestWaitCyclesPreservesState(t *testing.T) {
	tap := New(newFakePins(gpio.Low))
	if err := tap.Goto(RunTestIdle, 0); err != nil {
		t.Fatalf("Goto(RunTestIdle): %v", err)
	}
	tap.WaitCycles(10)
	if tap.State() != RunTestIdle {
		t.Fatalf("state after WaitCycles = %v, want RunTestIdle", tap.State())
	}
}
