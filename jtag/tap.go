// Copyright 2020 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package jtag implements the IEEE 1149.1 TAP state machine and the
// bit-banged shift primitives the programming engine drives it with. State
// numbering and the state-to-state TMS sequences mirror goto_jtag_state from
// the reference source bit-for-bit; operator tooling and waveform captures
// depend on the exact sequences.
package jtag

import (
	"periph.io/x/conn/v3/gpio"

	"github.com/microchip-fpga/directc/directcerr"
	"github.com/microchip-fpga/directc/jtagio"
)

// State is one of the eleven IEEE 1149.1 TAP states. Values match the
// reference source's JTAG_* enumeration.
type State uint8

const (
	TestLogicReset State = 1
	RunTestIdle    State = 2
	ShiftDR        State = 3
	ShiftIR        State = 4
	Exit1DR        State = 5
	Exit1IR        State = 6
	PauseDR        State = 7
	PauseIR        State = 8
	UpdateDR       State = 9
	UpdateIR       State = 10
	CaptureDR      State = 11
)

var stateNames = map[State]string{
	TestLogicReset: "Test-Logic-Reset",
	RunTestIdle:    "Run-Test/Idle",
	ShiftDR:        "Shift-DR",
	ShiftIR:        "Shift-IR",
	Exit1DR:        "Exit1-DR",
	Exit1IR:        "Exit1-IR",
	PauseIR:        "Pause-IR",
	PauseDR:        "Pause-DR",
	UpdateDR:       "Update-DR",
	UpdateIR:       "Update-IR",
	CaptureDR:      "Capture-DR",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return "unknown"
}

// TAP drives an IEEE 1149.1 state machine over a 4-wire (TCK/TMS/TDI/TDO)
// GPIO contract. It is not safe for concurrent use.
type TAP struct {
	Pins  jtagio.Pins
	state State
}

// New returns a TAP that believes the target is already in
// Test-Logic-Reset, the power-on default for every JTAG TAP controller.
func New(pins jtagio.Pins) *TAP {
	return &TAP{Pins: pins, state: TestLogicReset}
}

// State reports the TAP's last known state.
func (t *TAP) State() State { return t.state }

// transition describes one entry of the goto_jtag_state lookup table: the
// number of TCK cycles and the TMS bit pattern (LSB shifted out first) used
// to move from "from" to "target".
type transition struct {
	count int
	tms   uint8
}

// lookup reproduces goto_jtag_state's switch verbatim, including the
// branches that legitimately produce a zero-length (no TMS pulses)
// transition. ok is false only for the target states the reference source
// never handles (Update-IR, Exit1-DR, Exit1-IR, Capture-IR), which is the
// exact condition that raises DPE_JTAG_STATE_NOT_HANDLED in the reference.
func lookup(from, target State) (transition, bool) {
	switch target {
	case TestLogicReset:
		return transition{5, 0x1F}, true

	case ShiftDR:
		switch from {
		case TestLogicReset, RunTestIdle:
			return transition{4, 0x2}, true
		case PauseIR, PauseDR:
			return transition{5, 0x7}, true
		default:
			return transition{}, true
		}

	case ShiftIR:
		switch from {
		case TestLogicReset, RunTestIdle:
			return transition{5, 0x6}, true
		case PauseDR, PauseIR:
			return transition{6, 0xF}, true
		case UpdateDR:
			return transition{4, 0x3}, true
		default:
			return transition{}, true
		}

	case RunTestIdle:
		switch from {
		case TestLogicReset:
			return transition{1, 0x0}, true
		case Exit1IR, Exit1DR:
			return transition{2, 0x1}, true
		case PauseDR, PauseIR:
			return transition{3, 0x3}, true
		case CaptureDR:
			return transition{3, 0x3}, true
		default:
			return transition{}, true
		}

	case PauseIR:
		if from == Exit1IR {
			return transition{1, 0x0}, true
		}
		return transition{}, true

	case PauseDR:
		switch from {
		case Exit1DR:
			return transition{1, 0x0}, true
		case RunTestIdle:
			return transition{4, 0x5}, true
		default:
			return transition{}, true
		}

	case UpdateDR:
		switch from {
		case Exit1DR, Exit1IR:
			return transition{1, 0x1}, true
		case PauseDR:
			return transition{2, 0x3}, true
		default:
			return transition{}, true
		}

	case CaptureDR:
		if from == PauseIR {
			return transition{5, 0xE}, true
		}
		return transition{}, true

	default:
		return transition{}, false
	}
}

// Goto drives the TAP from its current state to target, then holds it there
// for an additional cycles TCK cycles with TMS low (the reference's trailing
// dp_wait_cycles-style idle padding folded into the same call). A target of
// Test-Logic-Reset always emits its TMS sequence, even when the TAP is
// already there.
func (t *TAP) Goto(target State, cycles uint8) error {
	if target != t.state || target == TestLogicReset {
		tr, ok := lookup(t.state, target)
		if !ok {
			return directcerr.New(directcerr.JTAGStateNotHandled, 0)
		}
		bits := tr.tms
		for i := 0; i < tr.count; i++ {
			t.pulseTMS(bits&0x1 != 0)
			bits >>= 1
		}
		t.state = target
	}
	for i := uint8(0); i < cycles; i++ {
		t.pulseTMS(false)
	}
	return nil
}

// WaitCycles idles the TAP for cycles TCK cycles without changing state
// (dp_wait_cycles).
func (t *TAP) WaitCycles(cycles uint8) {
	for i := uint8(0); i < cycles; i++ {
		t.pulseTMS(false)
	}
}

// pulseTMS drives TMS to level, TDI low, and toggles TCK once.
func (t *TAP) pulseTMS(level bool) {
	t.Pins.TMS.Out(gpio.Level(level))
	t.Pins.TDI.Out(gpio.Low)
	t.clock()
}

// clockTDI drives TMS to level and TDI to tdiLevel, toggles TCK once.
func (t *TAP) clockTDI(tmsLevel, tdiLevel bool) {
	t.Pins.TMS.Out(gpio.Level(tmsLevel))
	t.Pins.TDI.Out(gpio.Level(tdiLevel))
	t.clock()
}

// clockTDITDO is clockTDI plus a TDO sample taken before the falling edge,
// matching the reference's sample-on-rising-edge convention.
func (t *TAP) clockTDITDO(tmsLevel, tdiLevel bool) bool {
	t.Pins.TMS.Out(gpio.Level(tmsLevel))
	t.Pins.TDI.Out(gpio.Level(tdiLevel))
	t.Pins.TCK.Out(gpio.High)
	t.sleep()
	v := t.Pins.TDO.Read() == gpio.High
	t.Pins.TCK.Out(gpio.Low)
	t.sleep()
	return v
}

func (t *TAP) clock() {
	t.Pins.TCK.Out(gpio.High)
	t.sleep()
	t.Pins.TCK.Out(gpio.Low)
	t.sleep()
}

func (t *TAP) sleep() {
	if t.Pins.Sleep != nil {
		t.Pins.Sleep()
	}
}
