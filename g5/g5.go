// Copyright 2020 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package g5 implements the programming/verify/erase/authenticate/zeroize
// protocol for the Microsemi/Microchip PolarFire ("G5") FPGA family, driven
// over a shared jtag.TAP and image.Reader. It is the Go realization of the
// reference source's dpG5alg.c state machine: one Engine replaces the
// reference's file-scope globals, and every protocol step that used to be a
// bare function taking the implicit global state is now a method.
package g5

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/microchip-fpga/directc/image"
	"github.com/microchip-fpga/directc/jtag"
)

// Data block IDs within the programming image, as assigned by the
// reference's dpG5alg.h.
const (
	headerID             = 0
	userInfoID           = 1
	bsrPatternID          = 3
	bsrPatternMaskID     = 4
	numberOfBlocksID     = 5
	upk1ID               = 6
	upk2ID               = 7
	datastreamID         = 8
	erasedatastreamID    = 9
	dpkID                = 13
)

// JTAG instruction opcodes for the G5 TAP.
const (
	opISCEnable            = 0x0B
	opISCDisable            = 0x0C
	opISCNoop                = 0x0D
	opFrameInit              = 0xAE
	opReadDesignInfo         = 0xA6
	opReadDigest             = 0xA3
	opReadDebugInfo          = 0xE7
	opTVSMonitor             = 0xE3
	opReadBuffer             = 0xF2
	opReadFSN                = 0xF0
	opQuerySecurity          = 0xB8
	opMode                   = 0xAF
	opFrameData              = 0xEE
	opFrameStatus            = 0xD8
	opKeyLo                  = 0xEB
	opKeyHi                  = 0xEC
	opUnlockDebugPasscode    = 0xA9
	opUnlockUserPasscode     = 0xA8
	opUnlockVendorPasscode   = 0xAA
	opReadDeviceCert         = 0xA2
	opCheckDigests           = 0xBC
	opExtest2                = 0x09
	opZeroize                = 0xE6
	opReadZeroizationResult  = 0xE2
)

// Protocol-fixed bit widths and pacing constants.
const (
	maxControllerPoll = 1000000
	maxExitPoll       = 10000

	iscStatusRegisterBits     = 32
	dataStatusRegisterBits    = 64
	standardCycles            = 3
	securityStatusRegisterBits = 16
	statusRegisterBits        = 8
	frameBits                 = 128
	frameStatusBits           = 129
	frameBytes                = 16
	componentDigestBytes      = 32

	numberOfCofCBlocks = 8

	genCertByte               = 340
	componentTypeHeaderByte   = 50

	idOffset           = 37
	idMaskOffset       = 41
	deviceFamilyOffset = 36
	deviceExceptionOffset = 69
	numOfComponentOffset = 53
	numOfComponentLen    = 2
	dataSizeOffset       = 55
	dataSizeLen          = 2
	eraseDataSizeOffset  = 57
	eraseDataSizeLen     = 2

	ulUserKey1           = 0x2
	ulUserKey2           = 0x4
	ulExternalDigestCheck = 0x4

	microsemiID = 0x1CF

	compBITS = 0
	compFPGA = 1
	compKEYS = 2
	compSNVM = 3
	compENVM = 6
	compOWP  = 7
	compEOB  = 127
)

var componentNames = map[uint8]string{
	compBITS: "BITS", compFPGA: "Fabric", compKEYS: "Security",
	compSNVM: "sNVM", compENVM: "eNVM", compOWP: "OWP", compEOB: "EOB",
}

// ZeroizeMode selects the depth of a zeroize action.
type ZeroizeMode uint8

const (
	ZeroizeLikeNew        ZeroizeMode = 1
	ZeroizeUnrecoverable  ZeroizeMode = 3
)

// Identity is the target device's expected silicon identity, read from the
// header block once per run and cross-checked against the live IDCODE by
// checkDeviceID.
type Identity struct {
	DeviceID        uint32
	DeviceIDMask    uint32
	DeviceException uint8
	DeviceRevision  uint8
	Family          uint8
}

// Engine drives the G5 protocol state machine over a single TAP/image pair.
// It is not safe for concurrent use: exactly one action runs at a time, per
// the reference's single programming session model.
type Engine struct {
	TAP   *jtag.TAP
	Image *image.Reader
	Log   *logrus.Entry

	pgmModeFlag bool
	coreEnabled bool

	sharedBuf [1024]byte
	pollBuf   [17]byte

	componentDigest [componentDigestBytes]byte
	componentType   uint8
	supportsCert    bool
	lastDigestResults []DigestResult

	prevFailedComponent uint32
	prevFailedBlock     uint64
	prevUniqueErrorCode uint32

	currentFailedComponent uint32
	currentFailedBlock     uint64
	currentUniqueErrorCode uint32

	// DeviceID is the live silicon IDCODE, read once by the caller (via the
	// jtag layer's bypass/IDCODE DR read) before invoking any G5 action.
	DeviceID uint32

	uniqueExitCode uint32
}

// New returns an Engine ready to drive actions over tap/img. log may be nil,
// in which case a disabled logger is used (messages are discarded).
func New(tap *jtag.TAP, img *image.Reader, log *logrus.Entry) *Engine {
	if log == nil {
		l := logrus.New()
		l.SetOutput(nopWriter{})
		log = logrus.NewEntry(l)
	}
	return &Engine{TAP: tap, Image: img, Log: log}
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }

func (e *Engine) opcode(op byte) []byte { return []byte{op} }

func (e *Engine) irscan(op byte) error {
	return e.TAP.IRScanIn(e.opcode(op), 8)
}

func fmtHex(v uint32) string { return fmt.Sprintf("0x%x", v) }
