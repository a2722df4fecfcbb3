// Copyright 2020 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package g5

import "github.com/microchip-fpga/directc/directcerr"

// Action identifies one of the top-level operations dp_perform_G5_action
// dispatches on.
type Action uint8

const (
	ActionErase Action = iota
	ActionProgram
	ActionVerify
	ActionEncDataAuthentication
	ActionVerifyDigest
	ActionReadDeviceCertificate
	ActionZeroizeLikeNew
	ActionZeroizeUnrecoverable
	ActionDeviceInfo
)

// Identity reads the expected device identity out of the image header
// (dp_check_G5_action's preamble, before any JTAG traffic happens).
func (e *Engine) Identity() Identity {
	return Identity{
		DeviceID:        uint32(e.Image.GetHeaderBytes(idOffset, 4)),
		DeviceIDMask:    uint32(e.Image.GetHeaderBytes(idMaskOffset, 4)),
		DeviceException: uint8(e.Image.GetHeaderBytes(deviceExceptionOffset, 1)),
		Family:          uint8(e.Image.GetHeaderBytes(deviceFamilyOffset, 1)),
	}
}

func (e *Engine) dataSizeBits() uint64 {
	return e.Image.GetHeaderBytes(dataSizeOffset, dataSizeLen) * 8
}

func (e *Engine) eraseDataSizeBits() uint64 {
	return e.Image.GetHeaderBytes(eraseDataSizeOffset, eraseDataSizeLen) * 8
}

// bsrBits is the boundary scan register length the header declares.
func (e *Engine) bsrBits() uint32 {
	const bsrBitsOffset = 51
	return uint32(e.Image.GetHeaderBytes(bsrBitsOffset, 2))
}

// Run is dp_perform_G5_action: it checks the device identity, runs the
// requested action's initialize/body/exit sequence, and always attempts the
// exit step even when the body fails, matching the reference's best-effort
// cleanup.
func (e *Engine) Run(action Action) error {
	if err := e.checkDeviceID(e.Identity()); err != nil {
		return err
	}

	var bodyErr error
	switch action {
	case ActionErase:
		bodyErr = e.erase()
	case ActionProgram:
		bodyErr = e.program()
	case ActionVerify:
		bodyErr = e.verify()
	case ActionEncDataAuthentication:
		bodyErr = e.encDataAuthentication()
	case ActionVerifyDigest:
		bodyErr = e.verifyDigest()
	case ActionReadDeviceCertificate:
		bodyErr = e.reportCertificate()
	case ActionZeroizeLikeNew:
		bodyErr = e.zeroize(ZeroizeLikeNew)
	case ActionZeroizeUnrecoverable:
		bodyErr = e.zeroize(ZeroizeUnrecoverable)
	case ActionDeviceInfo:
		bodyErr = e.deviceInfo()
	default:
		bodyErr = directcerr.New(directcerr.ActionNotSupported, 0)
	}

	if exitErr := e.exit(); exitErr != nil && bodyErr == nil {
		bodyErr = exitErr
	}
	return bodyErr
}

// erase is dp_G5M_erase_action: initialize, set erase mode, and stream the
// erase data stream through the frame loop.
func (e *Engine) erase() error {
	if err := e.initialize(e.bsrBits()); err != nil {
		return err
	}
	if err := e.setMode(0x1); err != nil {
		return err
	}
	return e.processData(compEOB, erasedatastreamID, e.eraseDataSizeBits())
}

// program is dp_G5M_program_action/do_program: initialize, set program
// mode, and stream the programming data stream.
func (e *Engine) program() error {
	if err := e.initialize(e.bsrBits()); err != nil {
		return err
	}
	if err := e.setMode(0x1); err != nil {
		return err
	}
	return e.processData(compFPGA, datastreamID, e.dataSizeBits())
}

// verify is dp_G5M_verify_action/do_verify: identical shape to program, but
// against verify mode, so the device compares instead of writes.
func (e *Engine) verify() error {
	if err := e.initialize(e.bsrBits()); err != nil {
		return err
	}
	if err := e.setMode(0x2); err != nil {
		return err
	}
	return e.processData(compFPGA, datastreamID, e.dataSizeBits())
}

// encDataAuthentication is dp_G5M_enc_data_authentication_action: it runs
// the same frame loop as verify but against the authentication mode
// opcode, used to validate an encrypted data stream's signature without
// writing it.
func (e *Engine) encDataAuthentication() error {
	if err := e.initialize(e.bsrBits()); err != nil {
		return err
	}
	if err := e.setMode(0x0); err != nil {
		return err
	}
	return e.processData(compFPGA, datastreamID, e.dataSizeBits())
}

// zeroize is dp_G5M_zeroize_like_new_action/zeroize_unrecoverable_action:
// enable ISC, issue the zeroize command for mode, and read back the
// completion result.
func (e *Engine) zeroize(mode ZeroizeMode) error {
	if err := e.performISCEnable(); err != nil {
		return err
	}
	if err := e.doZeroize(mode); err != nil {
		return err
	}
	return e.doReadZeroizationResult()
}

// deviceInfo is dp_G5M_device_info_action: it reports the live IDCODE
// alongside the image's expected identity, without touching programming
// mode at all.
func (e *Engine) deviceInfo() error {
	id := e.Identity()
	e.Log.WithFields(map[string]interface{}{
		"liveIDCode":     fmtHex(e.DeviceID),
		"expectedIDCode": fmtHex(id.DeviceID),
		"mask":           fmtHex(id.DeviceIDMask),
	}).Info("g5: device info")
	return nil
}
