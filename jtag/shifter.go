// Copyright 2020 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package jtag

import "github.com/microchip-fpga/directc/directcerr"

// shiftIn clocks numBits bits out of tdiData (LSB first, starting at bit
// startBit within tdiData) into TDI while holding TMS low, except the final
// bit, whose TMS level is 1 iff terminate is set (dp_shift_in). A nil
// tdiData shifts zeros. When terminate is set and the TAP was in Shift-IR or
// Shift-DR, the tracked state advances to the matching Exit1 state exactly
// as the reference's shift primitive does, without an explicit Goto.
func (t *TAP) shiftIn(startBit uint64, numBits uint32, tdiData []byte, terminate bool) {
	idx := int(startBit >> 3)
	bitPos := uint(startBit & 0x7)
	var cur byte
	if tdiData != nil {
		cur = tdiData[idx] >> bitPos
	}
	for i := uint32(0); i < numBits; i++ {
		last := terminate && i == numBits-1
		t.clockTDI(last, cur&0x1 != 0)
		cur >>= 1
		bitPos++
		if bitPos == 8 {
			bitPos = 0
			idx++
			cur = 0
			if tdiData != nil && i+1 < numBits {
				cur = tdiData[idx]
			}
		}
	}
	if terminate {
		t.advanceFromShift()
	}
}

// shiftInOut is dp_shift_in_out: always starts at bit 0 of tdiData, always
// terminates with TMS=1 on the last bit, and captures every sampled TDO bit
// (LSB first) into tdoData, which it zeroes first.
func (t *TAP) shiftInOut(numBits uint32, tdiData, tdoData []byte) {
	nBytes := (numBits + 7) >> 3
	for i := uint32(0); i < nBytes; i++ {
		tdoData[i] = 0
	}
	for i := uint32(0); i < numBits; i++ {
		byteIdx := i >> 3
		bit := uint(i & 0x7)
		var in byte
		if tdiData != nil {
			in = (tdiData[byteIdx] >> bit) & 0x1
		}
		last := i == numBits-1
		if t.clockTDITDO(last, in != 0) {
			tdoData[byteIdx] |= 1 << bit
		}
	}
	t.advanceFromShift()
}

func (t *TAP) advanceFromShift() {
	switch t.state {
	case ShiftIR:
		t.state = Exit1IR
	case ShiftDR:
		t.state = Exit1DR
	}
}

// IRScanIn loads opcode (irBits bits, LSB first) into the instruction
// register and leaves the TAP in Pause-IR (IRSCAN_in).
func (t *TAP) IRScanIn(opcode []byte, irBits uint32) error {
	if err := t.Goto(ShiftIR, 0); err != nil {
		return err
	}
	t.shiftIn(0, irBits, opcode, true)
	return t.Goto(PauseIR, 0)
}

// IRScanInOut is IRScanIn, additionally capturing the bits shifted out of
// the instruction register into tdoData (IRSCAN_out).
func (t *TAP) IRScanInOut(opcode []byte, irBits uint32, tdoData []byte) error {
	if err := t.Goto(ShiftIR, 0); err != nil {
		return err
	}
	t.shiftInOut(irBits, opcode, tdoData)
	return t.Goto(PauseIR, 0)
}

// DRScanIn shifts bits bits of data (LSB first, starting at startBit) into
// the selected data register and leaves the TAP in Pause-DR (DRSCAN_in).
func (t *TAP) DRScanIn(startBit uint64, bits uint32, data []byte) error {
	if err := t.Goto(ShiftDR, 0); err != nil {
		return err
	}
	t.shiftIn(startBit, bits, data, true)
	return t.Goto(PauseDR, 0)
}

// DRScanOut is DRScanIn, additionally capturing tdoData (DRSCAN_out).
func (t *TAP) DRScanOut(bits uint32, tdiData, tdoData []byte) error {
	if err := t.Goto(ShiftDR, 0); err != nil {
		return err
	}
	t.shiftInOut(bits, tdiData, tdoData)
	return t.Goto(PauseDR, 0)
}

// BlockSource supplies page-cached image data the same way *image.Reader's
// GetData does: a byte slice view starting at bitIndex/8 within blockID,
// plus the number of valid bytes in the slice (0 meaning the block is
// absent).
type BlockSource interface {
	GetData(blockID uint8, bitIndex uint64) ([]byte, uint64)
}

// getAndShiftIn is dp_get_and_shift_in: it streams totalBits bits starting
// at startBitIndex out of blockID, refilling from src's page cache for
// every page boundary crossed, terminating (TMS=1 on the final bit) only on
// the chunk that completes the request.
func (t *TAP) getAndShiftIn(src BlockSource, blockID uint8, startBitIndex uint64, totalBits uint32) {
	pageStartBit := startBitIndex & 0x7
	requestedBytes := (pageStartBit + uint64(totalBits) + 7) >> 3

	for requestedBytes > 0 {
		data, returnBytes := src.GetData(blockID, startBitIndex)
		var bitsToShift uint32
		var terminate bool
		if returnBytes >= requestedBytes {
			returnBytes = requestedBytes
			bitsToShift = totalBits
			terminate = true
		} else {
			bitsToShift = uint32(returnBytes*8 - pageStartBit)
		}
		t.shiftIn(pageStartBit, bitsToShift, data, terminate)

		requestedBytes -= returnBytes
		totalBits -= bitsToShift
		startBitIndex += uint64(bitsToShift)
		pageStartBit = startBitIndex & 0x7
	}
}

// getAndShiftInOut is dp_get_and_shift_in_out: unlike getAndShiftIn it never
// refills across a page boundary, matching the reference's single
// page_buffer_ptr lookup; a request spanning more than one page cache
// window is a DAT-access failure.
func (t *TAP) getAndShiftInOut(src BlockSource, blockID uint8, startBitIndex uint64, totalBits uint32, tdoData []byte) error {
	requestedBytes := (uint64(totalBits) + 7) >> 3
	data, returnBytes := src.GetData(blockID, startBitIndex)
	if returnBytes < requestedBytes {
		return directcerr.New(directcerr.DATAccessFailure, 0)
	}
	t.shiftInOut(totalBits, data, tdoData)
	return nil
}

// DRScanInFromBlock is dp_get_and_DRSCAN_in: goto Shift-DR, stream totalBits
// bits out of blockID starting at startBitIndex, goto Pause-DR.
func (t *TAP) DRScanInFromBlock(src BlockSource, blockID uint8, startBitIndex uint64, totalBits uint32) error {
	if err := t.Goto(ShiftDR, 0); err != nil {
		return err
	}
	t.getAndShiftIn(src, blockID, startBitIndex, totalBits)
	return t.Goto(PauseDR, 0)
}

// DRScanInOutFromBlock is dp_get_and_DRSCAN_in_out.
func (t *TAP) DRScanInOutFromBlock(src BlockSource, blockID uint8, startBitIndex uint64, totalBits uint32, tdoData []byte) error {
	if err := t.Goto(ShiftDR, 0); err != nil {
		return err
	}
	if err := t.getAndShiftInOut(src, blockID, startBitIndex, totalBits, tdoData); err != nil {
		return err
	}
	return t.Goto(PauseDR, 0)
}
