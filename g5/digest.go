// Copyright 2020 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package g5

import "github.com/microchip-fpga/directc/directcerr"

// DigestResult is one row of dp_G5M_verify_digest_action's pass/fail
// report: one bit per component, read out of an 11-bit digest status
// register.
type DigestResult struct {
	Component string
	Pass      bool
}

// digestStatusBits is the width of CHECK_DIGESTS' result register: one bit
// per reportable component (BITS, Fabric, Security, sNVM x4, eNVM, OWP,
// and the FSN/design-info rows), rounded up from the reference's 11-field
// display table.
const digestStatusBits = 11

var digestFields = [digestStatusBits]string{
	"BITS", "Fabric", "Security", "sNVM-0", "sNVM-1", "sNVM-2", "sNVM-3",
	"eNVM", "OWP", "FSN", "Design info",
}

// verifyDigest is dp_G5M_verify_digest_action: it shifts CHECK_DIGESTS,
// polls for completion, then reads the digest status register and unpacks
// one pass/fail bit per component.
func (e *Engine) verifyDigest() error {
	if err := e.irscan(opCheckDigests); err != nil {
		return err
	}
	e.TAP.WaitCycles(standardCycles)
	if err := e.pollDeviceReady(); err != nil {
		return err
	}

	var buf [2]byte
	if err := e.TAP.DRScanOut(digestStatusBits, nil, buf[:]); err != nil {
		return err
	}
	status := uint16(buf[0]) | uint16(buf[1])<<8

	results := make([]DigestResult, digestStatusBits)
	allPass := true
	for i := 0; i < digestStatusBits; i++ {
		pass := status&(1<<uint(i)) == 0
		results[i] = DigestResult{Component: digestFields[i], Pass: pass}
		if !pass {
			allPass = false
			e.Log.Errorf("g5: digest mismatch: %s", digestFields[i])
		}
	}
	e.lastDigestResults = results
	if !allPass {
		return directcerr.New(directcerr.VerifyDigestError, 0)
	}
	return nil
}

// reportCertificate is dp_G5M_report_certificate: it reads the device
// certificate out of the shared buffer and logs the generation byte and
// per-component type header used to decide how to decode it.
func (e *Engine) reportCertificate() error {
	cert, err := e.readCertificate()
	if err != nil {
		return err
	}
	e.supportsCert = len(cert) > genCertByte
	if e.supportsCert {
		e.Log.WithFields(map[string]interface{}{
			"generation":    cert[genCertByte],
			"componentType": cert[componentTypeHeaderByte],
		}).Info("g5: device certificate")
	}
	return nil
}

// readCertificate is dp_G5M_read_certificate: READ_DEVICE_CERTIFICATE
// followed by a shared-buffer read sized to the reference's fixed
// certificate-of-conformance block count.
func (e *Engine) readCertificate() ([]byte, error) {
	if err := e.irscan(opReadDeviceCert); err != nil {
		return nil, err
	}
	e.TAP.WaitCycles(standardCycles)
	if err := e.pollDeviceReady(); err != nil {
		return nil, err
	}
	return e.readSharedBuffer(numberOfCofCBlocks * frameBytes)
}
