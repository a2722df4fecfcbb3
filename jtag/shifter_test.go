// Copyright 2020 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package jtag

import (
	"testing"

	"periph.io/x/conn/v3/gpio"

	"github.com/microchip-fpga/directc/jtagio"
)

// loopbackPin is a gpio.PinIO fake whose Read() returns the last level Out
// was called with, used to verify bit ordering through a TDI->TDO loopback.
type loopbackPin struct {
	gpio.PinIO
	level gpio.Level
}

func (l *loopbackPin) Out(lvl gpio.Level) error { l.level = lvl; return nil }
func (l *loopbackPin) Read() gpio.Level         { return l.level }
func (l *loopbackPin) In(gpio.Pull, gpio.Edge) error { return nil }
func (l *loopbackPin) String() string           { return "loopback" }

type discardPin struct{ gpio.PinIO }

func (discardPin) Out(gpio.Level) error { return nil }
func (discardPin) String() string       { return "discard" }

func newLoopbackPins() (jtagio.Pins, *loopbackPin) {
	lp := &loopbackPin{}
	return jtagio.Pins{
		TCK:  discardPin{},
		TMS:  discardPin{},
		TDI:  lp,
		TRST: discardPin{},
		TDO:  lp,
	}, lp
}

func TestShiftInOutLoopback(t *testing.T) {
	pins, _ := newLoopbackPins()
	tap := New(pins)

	in := []byte{0xA5} // 1010 0101
	out := make([]byte, 1)
	if err := tap.DRScanOut(8, in, out); err != nil {
		t.Fatalf("DRScanOut: %v", err)
	}
	if out[0] != in[0] {
		t.Fatalf("loopback mismatch: got 0x%02x, want 0x%02x", out[0], in[0])
	}
	if tap.State() != PauseDR {
		t.Fatalf("state after DRScanOut = %v, want PauseDR", tap.State())
	}
}

func TestGetAndShiftInSpansPages(t *testing.T) {
	pins, _ := newLoopbackPins()
	tap := New(pins)

	src := fakeBlockSource{data: []byte{0xFF, 0x00, 0xFF}, chunk: 1}
	if err := tap.DRScanInFromBlock(src, 7, 0, 24); err != nil {
		t.Fatalf("DRScanInFromBlock: %v", err)
	}
	if tap.State() != PauseDR {
		t.Fatalf("state = %v, want PauseDR", tap.State())
	}
}

// fakeBlockSource serves bytes from data in windows of chunk bytes,
// exercising the multi-refill path in getAndShiftIn.
type fakeBlockSource struct {
	data  []byte
	chunk int
}

func (f fakeBlockSource) GetData(blockID uint8, bitIndex uint64) ([]byte, uint64) {
	byteIdx := int(bitIndex / 8)
	if byteIdx >= len(f.data) {
		return nil, 0
	}
	end := byteIdx + f.chunk
	if end > len(f.data) {
		end = len(f.data)
	}
	return f.data[byteIdx:], uint64(end - byteIdx)
}
