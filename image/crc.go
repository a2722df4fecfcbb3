// Copyright 2020 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package image

import "github.com/microchip-fpga/directc/directcerr"

// computeCRC16 is the polynomial-0x8408, right-shifting, byte-at-a-time CRC
// used by the reference source (dp_compute_crc), with a zero initial
// register.
func computeCRC16(seed uint16, b byte) uint16 {
	crc := seed ^ uint16(b)
	for i := 0; i < 8; i++ {
		if crc&1 != 0 {
			crc = (crc >> 1) ^ 0x8408
		} else {
			crc >>= 1
		}
	}
	return crc
}

// CheckAndGetImageSize validates the magic word at byte 0 and returns the
// declared image size. It does not validate the CRC.
func (r *Reader) CheckAndGetImageSize() (int64, error) {
	magic := uint32(r.GetHeaderBytes(0, 4))
	if !magicIsValid(magic) {
		return 0, directcerr.New(directcerr.DATAccessFailure, 0)
	}
	size := int64(r.GetHeaderBytes(imageSizeOffset, 4))
	r.imageSize = size
	return size, nil
}

// CheckImageCRC streams every byte of the image except the trailing CRC
// word through computeCRC16 and compares against the stored value. The
// whole image is never resident: bytes are pulled through the header block
// reader's page cache, up to one cached page at a time.
func (r *Reader) CheckImageCRC() error {
	magic := uint32(r.GetHeaderBytes(0, 4))
	if !magicIsValid(magic) {
		return directcerr.New(directcerr.CRCMismatch, 0)
	}

	size, err := r.CheckAndGetImageSize()
	if err != nil || size == 0 {
		return directcerr.New(directcerr.CRCMismatch, 0)
	}

	var crc uint16
	var index uint64
	end := uint64(size - 2)
	for index < end {
		data, n := r.getHeaderData(index * 8)
		if n == 0 {
			break
		}
		if index+n > end {
			n = end - index
		}
		for i := uint64(0); i < n; i++ {
			crc = computeCRC16(crc, data[i])
		}
		index += n
	}

	stored := uint16(r.GetHeaderBytes(end, 2))
	if crc != stored {
		return directcerr.New(directcerr.CRCMismatch, 0)
	}
	return nil
}
