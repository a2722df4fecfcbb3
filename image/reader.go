// Copyright 2020 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package image

import (
	"io"
)

// Reader provides paged, block-addressed access into a DAT image through a
// fixed 1024-byte page cache. It is the Go realization of the reference
// source's dp_get_data/dp_get_data_block_address/dp_get_page_data trio,
// unified into a single always-paging abstraction per the design note in
// SPEC_FULL.md §9 ("Image paging").
//
// A Reader is not safe for concurrent use; it is owned exclusively by the
// active Engine action, matching the single-action concurrency model.
type Reader struct {
	ra io.ReaderAt

	buf        [PageBufferSize]byte
	pageValid  bool
	startAddr  int64
	endAddr    int64
	filled     int64

	blockAddr int64
	blockID   uint8

	// imageSize is the running bound used to avoid reading past the image.
	// It starts at the conservative minimum and is replaced by the real
	// value (read from the header) the first time a non-header block is
	// resolved, mirroring the reference's bootstrap sequence exactly.
	imageSize int64
}

// New wraps ra (e.g. an *os.File) as a paged DAT image reader.
func New(ra io.ReaderAt) *Reader {
	return &Reader{
		ra:        ra,
		blockID:   HeaderIDBlock,
		imageSize: minImageSize,
	}
}

// ImageSize returns the image size the header declares, once resolved.
// Before that it returns minImageSize (56).
func (r *Reader) ImageSize() int64 { return r.imageSize }

// GetData resolves blockID's absolute start address (memoized across calls
// while blockID does not change) and returns a page-cache-backed slice
// beginning at bitIndex/8 within that block, plus the number of valid bytes
// in the slice. A zero return count means the block is absent from the
// lookup table.
func (r *Reader) GetData(blockID uint8, bitIndex uint64) ([]byte, uint64) {
	r.resolveBlockAddress(blockID)
	if r.blockAddr == 0 && blockID != HeaderIDBlock {
		return nil, 0
	}
	return r.elementAddress(int64(bitIndex / 8))
}

// getHeaderData is dp_get_header_data: the header block's address is always
// zero, so there is no lookup-table dependency (avoiding the chicken/egg
// problem of using the lookup table to find the lookup table).
func (r *Reader) getHeaderData(bitIndex uint64) ([]byte, uint64) {
	r.blockAddr = 0
	return r.elementAddress(int64(bitIndex / 8))
}

func (r *Reader) resolveBlockAddress(requested uint8) {
	if r.blockID == requested {
		return
	}
	r.blockAddr = 0
	r.blockID = HeaderIDBlock
	if requested == HeaderIDBlock {
		return
	}

	headerSize := int64(r.GetHeaderBytes(headerSizeOffset, 1))
	r.imageSize = int64(r.GetHeaderBytes(imageSizeOffset, 4))

	numVars := int(r.GetHeaderBytes(uint64(headerSize-1), 1))
	for i := 0; i < numVars; i++ {
		recordOffset := uint64(headerSize) + bytesPerTableRecord*uint64(i)
		id := uint8(r.GetHeaderBytes(recordOffset, 1))
		if id == requested {
			r.blockAddr = int64(r.GetHeaderBytes(recordOffset+1, 4))
			r.blockID = id
			break
		}
	}
}

func (r *Reader) elementAddress(byteIndex int64) ([]byte, uint64) {
	requested := r.blockAddr + byteIndex

	if r.pageValid && requested >= r.startAddr && requested <= r.endAddr &&
		requested+MinValidBytesInPage <= r.endAddr {
		offset := requested - r.startAddr
		return r.buf[offset:r.filled], uint64(r.endAddr - requested + 1)
	}

	r.fillPage(requested)
	return r.buf[:r.filled], uint64(r.filled)
}

func (r *Reader) fillPage(requestedAddr int64) {
	want := int64(PageBufferSize)
	if requestedAddr+want > r.imageSize {
		want = r.imageSize - requestedAddr
	}
	if want < 0 {
		want = 0
	}

	n := 0
	if want > 0 {
		read, err := r.ra.ReadAt(r.buf[:want], requestedAddr)
		if err != nil && err != io.EOF {
			read = 0
		}
		n = read
	}

	r.startAddr = requestedAddr
	r.filled = int64(n)
	r.endAddr = requestedAddr + r.filled - 1
	r.pageValid = r.filled > 0
}

// GetBytes composes up to 4 consecutive little-endian bytes from blockID
// starting at byteIndex, refilling the page cache as needed.
func (r *Reader) GetBytes(blockID uint8, byteIndex uint64, count uint8) uint64 {
	var ret uint64
	var shift uint
	for count > 0 {
		data, n := r.GetData(blockID, byteIndex*8)
		if n == 0 {
			break
		}
		if n > uint64(count) {
			n = uint64(count)
		}
		for i := uint64(0); i < n; i++ {
			ret |= uint64(data[i]) << shift
			shift += 8
		}
		byteIndex += n
		count -= uint8(n)
	}
	return ret
}

// GetHeaderBytes is GetBytes restricted to the header block.
func (r *Reader) GetHeaderBytes(byteIndex uint64, count uint8) uint64 {
	var ret uint64
	var shift uint
	for count > 0 {
		data, n := r.getHeaderData(byteIndex * 8)
		if n == 0 {
			break
		}
		if n > uint64(count) {
			n = uint64(count)
		}
		for i := uint64(0); i < n; i++ {
			ret |= uint64(data[i]) << shift
			shift += 8
		}
		byteIndex += n
		count -= uint8(n)
	}
	return ret
}
