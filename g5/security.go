// Copyright 2020 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package g5

import "github.com/microchip-fpga/directc/directcerr"

// keyKind identifies which of the three passcodes loadKey/unlock operate on.
// The reference's dp_G5M_unlock_dpk/unlock_upk1/unlock_upk2 and
// load_dpk/load_upk1/load_upk2 are each other's twins modulo the data block
// ID and unlock opcode, so one generalized pair of helpers replaces all six.
type keyKind struct {
	blockID uint8
	unlockOp byte
}

var (
	dpkKey  = keyKind{blockID: dpkID, unlockOp: opUnlockDebugPasscode}
	upk1Key = keyKind{blockID: upk1ID, unlockOp: opUnlockUserPasscode}
	upk2Key = keyKind{blockID: upk2ID, unlockOp: opUnlockVendorPasscode}
)

// loadKey is dp_G5M_load_dpk/load_upk1/load_upk2 generalized over the key's
// data block: it shifts the 256-bit passcode out of the image in two
// 128-bit halves through KEY_LO/KEY_HI, the split the reference's JTAG
// register width forces.
func (e *Engine) loadKey(k keyKind) error {
	if err := e.irscan(opKeyLo); err != nil {
		return err
	}
	if err := e.TAP.DRScanInFromBlock(e.Image, k.blockID, 0, 128); err != nil {
		return err
	}
	if err := e.irscan(opKeyHi); err != nil {
		return err
	}
	return e.TAP.DRScanInFromBlock(e.Image, k.blockID, 128, 128)
}

// unlock is dp_G5M_unlock_dpk/unlock_upk1/unlock_upk2 generalized: load the
// key, shift the corresponding unlock opcode, and poll until the device
// reports ready. The unlock outcome itself is not read back, so a rejected
// passcode does not produce an error here.
func (e *Engine) unlock(k keyKind) error {
	if err := e.loadKey(k); err != nil {
		return err
	}
	if err := e.irscan(k.unlockOp); err != nil {
		return err
	}
	e.TAP.WaitCycles(standardCycles)
	return e.pollDeviceReady()
}

func (e *Engine) unlockDPK() error  { return e.unlock(dpkKey) }
func (e *Engine) unlockUPK1() error { return e.unlock(upk1Key) }
func (e *Engine) unlockUPK2() error { return e.unlock(upk2Key) }

// querySecurity is dp_G5M_query_security: it reads the 16-bit security
// status register, reporting which of the device's passcodes and
// permanent-lock fuses are currently set.
func (e *Engine) querySecurity() (uint16, error) {
	if err := e.irscan(opQuerySecurity); err != nil {
		return 0, err
	}
	var buf [2]byte
	if err := e.TAP.DRScanOut(securityStatusRegisterBits, nil, buf[:]); err != nil {
		return 0, err
	}
	return uint16(buf[0]) | uint16(buf[1])<<8, nil
}

// readSecurity is dp_G5M_read_security: a querySecurity wrapped with the
// human-readable field breakdown the CLI layer reports to the operator.
func (e *Engine) readSecurity() (SecuritySummary, error) {
	status, err := e.querySecurity()
	if err != nil {
		return SecuritySummary{}, err
	}
	return SecuritySummary{
		UPK1Set:       status&ulUserKey1 != 0,
		UPK2Set:       status&ulUserKey2 != 0,
		DigestCheckOn: status&ulExternalDigestCheck != 0,
		Raw:           status,
	}, nil
}

// SecuritySummary is the decoded form of the security status register, the
// Go analogue of what the reference's dp_G5M_read_security prints.
type SecuritySummary struct {
	UPK1Set       bool
	UPK2Set       bool
	DigestCheckOn bool
	Raw           uint16
}

// doZeroize is dp_G5M_do_zeroize: it shifts the fixed 16-byte zeroize
// payload (byte 0 selects like-new vs unrecoverable) into the ZEROIZE DR,
// then polls completion. Both bit-test sites in the reference
// (`perform_isc_enable` and here) use the same mis-parenthesized `==`/`>`
// expression that actually reduces to a low-bit test; see performISCEnable.
func (e *Engine) doZeroize(mode ZeroizeMode) error {
	payload := make([]byte, 16)
	payload[0] = byte(mode)
	if err := e.irscan(opZeroize); err != nil {
		return err
	}
	if err := e.TAP.DRScanIn(0, 16*8, payload); err != nil {
		return err
	}
	e.TAP.WaitCycles(standardCycles)
	var buf [4]byte
	if err := e.TAP.DRScanOut(iscStatusRegisterBits, nil, buf[:]); err != nil {
		return err
	}
	if buf[0]&0x1 != 0 {
		return directcerr.New(directcerr.PollError, 32849)
	}
	return nil
}

// doReadZeroizationResult is dp_G5M_do_read_zeroization_result: it reads
// back the zeroize completion status, applying the same "low two bits, low
// bit set" reduction the reference's `& 0x3u > 0u` expression collapses to.
func (e *Engine) doReadZeroizationResult() error {
	if err := e.irscan(opReadZeroizationResult); err != nil {
		return err
	}
	var buf [4]byte
	if err := e.TAP.DRScanOut(iscStatusRegisterBits, nil, buf[:]); err != nil {
		return err
	}
	if buf[0]&0x1 != 0 {
		return directcerr.New(directcerr.ProcessDataError, 32854)
	}
	return nil
}
