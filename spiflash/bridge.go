// Copyright 2020 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package spiflash implements the JTAG-tunneled SPI-NOR flash subsystem:
// the SPIPROG bit-bang bridge that turns a handful of the FPGA's boundary
// scan cells into SPI chip-select/clock/MOSI/MISO lines, and the Cypress
// S25F vendor state machine driven over that bridge.
package spiflash

import "github.com/microchip-fpga/directc/jtag"

// Bridge opcodes: the JTAG instructions that select the SPIPROG boundary
// scan register the reference bit-bangs SPI over (dpSPIprog.c's
// SPI_PROG/EXTEST opcodes).
const (
	opSPIProg = 0xB0
	opExtest  = 0x09
)

// bridge bit positions within the SPIPROG data register: one bit each for
// chip-select, clock, MOSI, and the captured MISO sample.
const (
	bitCS   = 0
	bitSCK  = 1
	bitMOSI = 2
	bitMISO = 3
	bridgeBits = 4
)

// Bridge drives SPI transactions over a JTAG TAP through the SPIPROG
// boundary scan cell, the Go realization of dpSPIprog.c's init_spiprog_port/
// enable_cs/disable_cs/spi_shift_byte_in/spi_shift_byte_out.
type Bridge struct {
	tap *jtag.TAP
}

// NewBridge selects the SPIPROG boundary scan register for subsequent SPI
// transactions (init_spiprog_port).
func NewBridge(tap *jtag.TAP) (*Bridge, error) {
	b := &Bridge{tap: tap}
	if err := tap.IRScanIn([]byte{opSPIProg}, 8); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Bridge) shiftBit(cs, sck, mosi bool) bool {
	var out byte
	if cs {
		out |= 1 << bitCS
	}
	if sck {
		out |= 1 << bitSCK
	}
	if mosi {
		out |= 1 << bitMOSI
	}
	in := make([]byte, 1)
	// DRScanOut only errors on an unhandled Shift-DR/Pause-DR transition,
	// which the TAP's transition table always handles from any state.
	_ = b.tap.DRScanOut(bridgeBits, []byte{out}, in)
	return in[0]&(1<<bitMISO) != 0
}

// EnableCS asserts chip-select and idles the clock low (enable_cs).
func (b *Bridge) EnableCS() {
	b.shiftBit(true, false, false)
}

// DisableCS deasserts chip-select (disable_cs).
func (b *Bridge) DisableCS() {
	b.shiftBit(false, false, false)
}

// ShiftDummyBit pulses the clock once with chip-select held low and MOSI
// held low, used by the reference to flush the SPI core's pipeline between
// commands (spi_shift_dummy_bit).
func (b *Bridge) ShiftDummyBit() {
	b.shiftBit(true, false, false)
	b.shiftBit(true, true, false)
}

// ShiftByteOut clocks out one byte MSB-first on MOSI, returning the byte simultaneously clocked in on MISO (spi_shift_byte_in,
// which despite its reference name is a full-duplex shift).
func (b *Bridge) ShiftByteOut(out byte) byte {
	var in byte
	for i := 7; i >= 0; i-- {
		mosi := out&(1<<uint(i)) != 0
		b.shiftBit(true, false, mosi)
		if b.shiftBit(true, true, mosi) {
			in |= 1 << uint(i)
		}
	}
	return in
}

// ShiftByteIn is ShiftByteOut(0xFF): used to clock data out of the device
// with nothing meaningful on MOSI (spi_shift_byte_out's read-only usage).
func (b *Bridge) ShiftByteIn() byte {
	return b.ShiftByteOut(0xFF)
}

// Transfer asserts chip-select, shifts cmd followed by data (data both
// supplies outgoing bytes and receives the full-duplex response), and
// releases chip-select (spi_scan).
func (b *Bridge) Transfer(cmd byte, data []byte) []byte {
	b.EnableCS()
	defer b.DisableCS()
	b.ShiftByteOut(cmd)
	resp := make([]byte, len(data))
	for i, out := range data {
		resp[i] = b.ShiftByteOut(out)
	}
	return resp
}
