// Copyright 2020 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package g5

import "github.com/microchip-fpga/directc/directcerr"

// failureCode is the low nibble of a frame status word's result field, the
// reference's DATA_STATUS_FAIL_CODE. dp_G5M_get_data_status maps each value
// to a distinct "unique exit code" and log line; here that large switch
// collapses into one table plus one lookup, since every branch differs only
// in the three fields captured below.
type failureCode uint8

const (
	failNone               failureCode = 0x0
	failDesign             failureCode = 0x1
	failOverflow           failureCode = 0x2
	failCRC                failureCode = 0x3
	failProtected          failureCode = 0x4
	failDeviceID           failureCode = 0x5
	failProgramVerify      failureCode = 0x6
	failInvalidComponent   failureCode = 0x7
)

type failureInfo struct {
	code       directcerr.Code
	uniqueExit uint32
	message    string
}

var failureTable = map[failureCode]failureInfo{
	failNone:             {directcerr.Success, 0, ""},
	failDesign:           {directcerr.ProcessDataError, 1001, "design mismatch"},
	failOverflow:         {directcerr.ProcessDataError, 1002, "frame overflow"},
	failCRC:              {directcerr.CRCMismatch, 1003, "frame CRC mismatch"},
	failProtected:        {directcerr.UnlockError, 1004, "component write-protected"},
	failDeviceID:         {directcerr.IDCodeError, 1005, "device ID mismatch mid-stream"},
	failProgramVerify:    {directcerr.VerifyError, 1006, "program/verify mismatch"},
	failInvalidComponent: {directcerr.ProcessDataError, 1007, "unrecognized component type"},
}

// frameStatus is the decoded form of the 129-bit status word
// deviceShiftAndPoll returns for the frame shifted one cycle earlier
// (dp_G5M_device_shift_and_poll pipelines status a frame behind).
type frameStatus struct {
	busy    bool
	failure failureCode
}

func decodeFrameStatus(buf []byte) frameStatus {
	return frameStatus{
		busy:    buf[0]&0x1 != 0,
		failure: failureCode(buf[0]>>1) & 0xF,
	}
}

// getDataStatus is dp_G5M_get_data_status: given a decoded frame status, it
// records the failing component/frame index for diagnostics and returns the
// engine error the failure maps to, or nil if the frame reported success.
func (e *Engine) getDataStatus(st frameStatus, component uint32, blockIndex uint64) error {
	if st.failure == failNone {
		return nil
	}
	info, ok := failureTable[st.failure]
	if !ok {
		info = failureInfo{directcerr.ProcessDataError, 1000, "unknown failure code"}
	}
	e.prevFailedComponent, e.prevFailedBlock, e.prevUniqueErrorCode =
		e.currentFailedComponent, e.currentFailedBlock, e.currentUniqueErrorCode
	e.currentFailedComponent = component
	e.currentFailedBlock = blockIndex
	e.currentUniqueErrorCode = info.uniqueExit
	e.Log.WithFields(map[string]interface{}{
		"component": componentNames[uint8(component)],
		"frame":     blockIndex / frameBits,
	}).Errorf("g5: %s", info.message)
	return directcerr.New(info.code, info.uniqueExit)
}

// ClearErrors is dp_G5M_clear_errors: it resets the failure-bookkeeping
// fields getDataStatus maintains. The reference declares this function but
// never calls it from dp_perform_G5_action, so Run doesn't either; it's kept
// for parity and for callers that want to reuse one Engine across multiple
// Run calls without carrying stale failure state between them.
func (e *Engine) ClearErrors() {
	e.prevFailedComponent, e.prevFailedBlock, e.prevUniqueErrorCode = 0, 0, 0
	e.currentFailedComponent, e.currentFailedBlock, e.currentUniqueErrorCode = 0, 0, 0
}

// processData is dp_G5M_process_data: it streams totalBits bits of blockID
// through the device frame by frame, pipelining each frame's shift with the
// status readback of the frame shifted one cycle earlier, and stops at the
// first reported failure.
func (e *Engine) processData(component uint32, blockID uint8, totalBits uint64) error {
	var bitIndex uint64
	frame := make([]byte, frameBytes)
	for bitIndex < totalBits {
		remaining := totalBits - bitIndex
		n := uint64(frameBits)
		if remaining < n {
			n = remaining
		}
		for i := range frame {
			frame[i] = 0
		}
		data, avail := e.Image.GetData(blockID, bitIndex)
		copyBits := n
		if avail*8 < copyBits {
			copyBits = avail * 8
		}
		copy(frame[:(copyBits+7)/8], data)

		status, err := e.deviceShiftAndPoll(frame)
		if err != nil {
			return err
		}
		if err := e.getDataStatus(decodeFrameStatus(status), component, bitIndex); err != nil {
			return err
		}
		bitIndex += n
	}
	return nil
}
