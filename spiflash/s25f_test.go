// Copyright 2020 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package spiflash

import (
	"testing"

	"github.com/microchip-fpga/directc/directcerr"
)

func TestParseIDCode3Byte(t *testing.T) {
	geo, err := ParseIDCode([3]byte{0x01, 0x02, 0x18}) // 128 Mbit (16 MiB) part
	if err != nil {
		t.Fatalf("ParseIDCode: %v", err)
	}
	if geo.SizeBytes != 1<<0x18 {
		t.Fatalf("SizeBytes = %d, want %d", geo.SizeBytes, uint32(1)<<0x18)
	}
	if geo.NeedsAddr4 {
		t.Fatal("16MB part should not need 4-byte addressing")
	}
}

func TestParseIDCodeNeeds4ByteAddr(t *testing.T) {
	geo, err := ParseIDCode([3]byte{0x01, 0x02, 0x20}) // >128Mbit part
	if err != nil {
		t.Fatalf("ParseIDCode: %v", err)
	}
	if !geo.NeedsAddr4 {
		t.Fatal("large part should need 4-byte addressing")
	}
}

func TestParseIDCodeRejectsUnknownDensity(t *testing.T) {
	if _, err := ParseIDCode([3]byte{0x01, 0x02, 0xFF}); err == nil {
		t.Fatal("want error for unrecognized density byte")
	}
}

// fakeTransport is a transport fake recording every command issued and
// returning scripted responses, letting Device's command sequencing be
// tested without a live bridge.
type fakeTransport struct {
	status  byte
	cmds    []byte
	idBytes [3]byte
}

func (f *fakeTransport) Transfer(cmd byte, data []byte) []byte {
	f.cmds = append(f.cmds, cmd)
	switch cmd {
	case cmdReadID:
		return []byte{f.idBytes[0], f.idBytes[1], f.idBytes[2]}
	case cmdReadStatus:
		return []byte{f.status}
	default:
		return make([]byte, len(data))
	}
}

func newTestDevice(t *testing.T) (*Device, *fakeTransport) {
	t.Helper()
	ft := &fakeTransport{idBytes: [3]byte{0x01, 0x02, 0x16}} // 32 Mbit (4 MiB) part, no 4-byte addr
	dev, err := NewDevice(ft)
	if err != nil {
		t.Fatalf("NewDevice: %v", err)
	}
	return dev, ft
}

func TestEraseRejectsUnalignedSector(t *testing.T) {
	dev, _ := newTestDevice(t)
	err := dev.Erase(1, dev.geo.SectorBytes)
	if err == nil {
		t.Fatal("want error for unaligned erase start")
	}
	de, ok := err.(*directcerr.Error)
	if !ok || de.Code != directcerr.SPIFlashEraseError {
		t.Fatalf("Erase error = %v, want SPIFlashEraseError", err)
	}
}

func TestEraseFullPartIssuesBulkErase(t *testing.T) {
	dev, ft := newTestDevice(t)
	if err := dev.Erase(0, dev.geo.SizeBytes); err != nil {
		t.Fatalf("Erase: %v", err)
	}
	found := false
	for _, c := range ft.cmds {
		if c == cmdBulkErase {
			found = true
		}
	}
	if !found {
		t.Fatal("full-part erase did not issue a bulk erase command")
	}
}

func TestProgramChunksAtPageBoundary(t *testing.T) {
	dev, ft := newTestDevice(t)
	data := make([]byte, int(dev.geo.PageBytes)+10)
	if err := dev.Program(dev.geo.PageBytes-5, data); err != nil {
		t.Fatalf("Program: %v", err)
	}
	n := 0
	for _, c := range ft.cmds {
		if c == cmdPageProgram3 {
			n++
		}
	}
	if n != 3 {
		t.Fatalf("page program command count = %d, want 3 (crossing two page boundaries)", n)
	}
}

func TestBlankCheckDetectsNonFF(t *testing.T) {
	ft := &fakeTransport{idBytes: [3]byte{0x01, 0x02, 0x16}}
	dev, err := NewDevice(ft)
	if err != nil {
		t.Fatalf("NewDevice: %v", err)
	}
	// fakeTransport's default Transfer returns zeroed bytes, not 0xFF.
	err = dev.BlankCheck(0, 4)
	if err == nil {
		t.Fatal("want blank-check failure against zeroed fake data")
	}
	de, ok := err.(*directcerr.Error)
	if !ok || de.Code != directcerr.SPIFlashBlankCheckErr {
		t.Fatalf("BlankCheck error = %v, want SPIFlashBlankCheckErr", err)
	}
}
