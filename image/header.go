// Copyright 2020 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package image implements random, bit-indexed access into an Actel/DirectC
// programming image ("DAT" file) through a small fixed-size page cache, plus
// the header validation and CRC-16 check that gate every action.
package image

import "encoding/binary"

// Fixed layout constants. Mirror the reference format exactly; operators and
// downstream tooling depend on these offsets.
const (
	HeaderIDBlock = 0

	headerSizeOffset = 24
	imageSizeOffset  = 25

	actelHeaderSize      = 24
	minImageSize         = 56
	bytesPerTableRecord  = 9

	// PageBufferSize is the page cache window width.
	PageBufferSize = 1024
	// MinValidBytesInPage is the margin the cache requires beyond a
	// requested byte before it is considered still valid.
	MinValidBytesInPage = 16
)

// Magic words accepted at byte offset 0, as little-endian ASCII u32s.
var magicWords = [5]uint32{
	0x69736544, // "Desi"
	0x65746341, // "Acte"
	0x2D4D3447, // "G4M-"
	0x34475452, // "4GTR"
	0x2D4D3547, // "G5M-"
}

// G5 target identity fields, byte offsets within the header (spec §3: bytes
// 36..68).
const (
	g5IdentityOffset       = 36
	g5FamilyByteOffset     = g5IdentityOffset
	g5DeviceIDOffset       = g5IdentityOffset + 1
	g5DeviceIDMaskOffset   = g5IdentityOffset + 5
	g5SiliconSigOffset     = g5IdentityOffset + 9
	g5ChecksumOffset       = g5IdentityOffset + 13
	g5BSRBitsOffset        = g5IdentityOffset + 15
	g5ComponentCountOffset = g5IdentityOffset + 17
	g5DataSizeOffset       = g5IdentityOffset + 19
	g5EraseDataSizeOffset  = g5IdentityOffset + 21
	g5VerifyDataSizeOffset = g5IdentityOffset + 23
	g5ENVMDataSizeOffset   = g5IdentityOffset + 25
	g5ENVMVerifyOffset     = g5IdentityOffset + 27
	g5KeyFlagsOffset       = g5IdentityOffset + 29
	g5ExceptionOffset      = g5IdentityOffset + 30
)

// Key presence bitmask values within the byte at g5KeyFlagsOffset.
const (
	KeyFlagUEK1 = 0x1
	KeyFlagUEK2 = 0x2
	KeyFlagDPK  = 0x4
	KeyFlagUEK3 = 0x8
)

func magicIsValid(word uint32) bool {
	for _, m := range magicWords {
		if m == word {
			return true
		}
	}
	return false
}

// isValidU32LE reads a little-endian u32 from the first 4 bytes of b.
func isValidU32LE(b []byte) uint32 {
	return binary.LittleEndian.Uint32(b)
}
