// Copyright 2020 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package spiflash

import (
	"github.com/microchip-fpga/directc/directcerr"
	"github.com/microchip-fpga/directc/image"
	"github.com/microchip-fpga/directc/jtag"
)

// Action identifies one of dp_top_spi_flash's dispatched operations.
type Action uint8

const (
	ActionErase Action = iota
	ActionProgram
	ActionVerify
	ActionBlankCheck
	ActionRead
)

// spiDataBlockID is the block the SPI payload is read from: the DAT header
// block, so the payload is the image file's bytes from offset 0.
const spiDataBlockID = image.HeaderIDBlock

// Engine is the Go analogue of dp_top_spi_flash: it owns the bridge and
// the detected S25F device, and checks the requested address range
// against the device's capacity before dispatching.
type Engine struct {
	Image *image.Reader

	br  *Bridge
	dev *Device
}

// New brings up the SPIPROG bridge over tap and detects the attached S25F
// part (init_spiprog_port + SPI_read_idcode).
func New(tap *jtag.TAP, img *image.Reader) (*Engine, error) {
	br, err := NewBridge(tap)
	if err != nil {
		return nil, err
	}
	dev, err := NewDevice(br)
	if err != nil {
		return nil, err
	}
	return &Engine{Image: img, br: br, dev: dev}, nil
}

// Geometry returns the detected flash part's geometry.
func (e *Engine) Geometry() Geometry { return e.dev.Geometry() }

// checkAddressAndSize is dp_check_image_address_and_size: the requested
// range must fit within the detected part's capacity. The range is not
// checked against the image's size.
func (e *Engine) checkAddressAndSize(addr, size uint32) error {
	if uint64(addr)+uint64(size) > uint64(e.dev.Geometry().SizeBytes) {
		return directcerr.New(directcerr.ImageSizeError, 0)
	}
	return nil
}

// Run dispatches action over [addr, addr+size), reading the image through
// its header block for Program/Verify.
func (e *Engine) Run(action Action, addr, size uint32) error {
	if err := e.checkAddressAndSize(addr, size); err != nil {
		return err
	}
	switch action {
	case ActionErase:
		return e.dev.Erase(addr, size)
	case ActionProgram:
		data := e.imageBytes(size)
		return e.dev.Program(addr, data)
	case ActionVerify:
		data := e.imageBytes(size)
		return e.dev.Verify(addr, data)
	case ActionBlankCheck:
		return e.dev.BlankCheck(addr, int(size))
	case ActionRead:
		_, err := e.dev.Read(addr, int(size))
		return err
	default:
		return directcerr.New(directcerr.ActionNotSupported, 0)
	}
}

// imageBytes pulls size bytes of the SPI payload out of the image's page
// cache, refilling across page boundaries the same way the jtag shifter's
// getAndShiftIn does.
func (e *Engine) imageBytes(size uint32) []byte {
	out := make([]byte, 0, size)
	var byteIndex uint64
	for uint32(len(out)) < size {
		data, n := e.Image.GetData(spiDataBlockID, byteIndex*8)
		if n == 0 {
			break
		}
		want := uint64(size) - uint64(len(out))
		if n > want {
			n = want
		}
		out = append(out, data[:n]...)
		byteIndex += n
	}
	return out
}
