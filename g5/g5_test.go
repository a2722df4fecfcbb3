// Copyright 2020 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package g5

import (
	"testing"

	"github.com/microchip-fpga/directc/directcerr"
)

func TestCheckDeviceIDExactMatch(t *testing.T) {
	e := New(nil, nil, nil)
	e.DeviceID = 0x1F1A0CF

	id := Identity{DeviceID: 0x1F1A0CF, DeviceIDMask: 0xFFFFFFF}
	if err := e.checkDeviceID(id); err != nil {
		t.Fatalf("checkDeviceID exact match: %v", err)
	}
}

func TestCheckDeviceIDMismatch(t *testing.T) {
	e := New(nil, nil, nil)
	e.DeviceID = 0x1234567

	id := Identity{DeviceID: 0x7654321, DeviceIDMask: 0xFFFFFFF}
	err := e.checkDeviceID(id)
	if err == nil {
		t.Fatal("checkDeviceID mismatch: want error, got nil")
	}
	de, ok := err.(*directcerr.Error)
	if !ok || de.Code != directcerr.IDCodeError {
		t.Fatalf("checkDeviceID error = %v, want IDCodeError", err)
	}
}

func TestCheckDeviceIDMPF300Exception(t *testing.T) {
	e := New(nil, nil, nil)
	e.DeviceID = 0x1F15000 // production silicon

	id := Identity{
		DeviceID:        0x1F1A000, // ES silicon image
		DeviceIDMask:    0xFFFFFFF,
		DeviceException: 1,
	}
	if err := e.checkDeviceID(id); err != nil {
		t.Fatalf("checkDeviceID MPF300 exception: %v", err)
	}
}

func TestGetDataStatusNoFailure(t *testing.T) {
	e := New(nil, nil, nil)
	if err := e.getDataStatus(frameStatus{failure: failNone}, compFPGA, 0); err != nil {
		t.Fatalf("getDataStatus(none): %v", err)
	}
}

func TestGetDataStatusRecordsFailure(t *testing.T) {
	e := New(nil, nil, nil)
	err := e.getDataStatus(frameStatus{failure: failCRC}, compFPGA, 256)
	if err == nil {
		t.Fatal("getDataStatus(failCRC): want error, got nil")
	}
	de, ok := err.(*directcerr.Error)
	if !ok || de.Code != directcerr.CRCMismatch {
		t.Fatalf("getDataStatus error = %v, want CRCMismatch", err)
	}
	if e.currentFailedComponent != compFPGA || e.currentFailedBlock != 256 {
		t.Fatalf("failure bookkeeping = (%d,%d), want (%d,256)", e.currentFailedComponent, e.currentFailedBlock, compFPGA)
	}
}

func TestClearErrorsResetsBookkeeping(t *testing.T) {
	e := New(nil, nil, nil)
	if err := e.getDataStatus(frameStatus{failure: failCRC}, compFPGA, 256); err == nil {
		t.Fatal("getDataStatus(failCRC): want error, got nil")
	}
	e.ClearErrors()
	if e.currentFailedComponent != 0 || e.currentFailedBlock != 0 || e.currentUniqueErrorCode != 0 {
		t.Fatalf("ClearErrors left current failure state = (%d,%d,%d), want all zero",
			e.currentFailedComponent, e.currentFailedBlock, e.currentUniqueErrorCode)
	}
	if e.prevFailedComponent != 0 || e.prevFailedBlock != 0 || e.prevUniqueErrorCode != 0 {
		t.Fatalf("ClearErrors left previous failure state = (%d,%d,%d), want all zero",
			e.prevFailedComponent, e.prevFailedBlock, e.prevUniqueErrorCode)
	}
}

func TestDecodeFrameStatusLowBitSet(t *testing.T) {
	// byte[0] = 0b0000_0111: busy bit set, failure nibble = 0b011 = failCRC.
	st := decodeFrameStatus([]byte{0x07, 0, 0, 0})
	if !st.busy {
		t.Fatal("decodeFrameStatus: busy = false, want true")
	}
	if st.failure != failCRC {
		t.Fatalf("decodeFrameStatus: failure = %v, want failCRC", st.failure)
	}
}
