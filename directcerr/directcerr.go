// Copyright 2020 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package directcerr defines the numeric error taxonomy produced by the
// programming engine and the process exit-code mapping for the CLI.
package directcerr

import (
	"errors"
	"fmt"
)

// Code is one of the DPE_* engine error codes.
type Code uint8

// Engine error codes. Values match the reference protocol's error_code
// enumeration bit-for-bit; operator tooling depends on the exact numbers.
const (
	Success                Code = 0
	ProcessDataError       Code = 2
	IDCodeError            Code = 6
	PollError              Code = 7
	EraseError             Code = 8
	ChecksumError          Code = 9
	CoreProgramError       Code = 10
	VerifyError            Code = 12
	UnlockError            Code = 16
	AuthenticationFailure  Code = 18
	InitFailure            Code = 25
	MatchError             Code = 35
	VerifyDigestError      Code = 60
	CRCMismatch            Code = 100
	JTAGStateNotHandled    Code = 110
	ActionNotSupported     Code = 151
	CodeNotEnabled         Code = 152
	DATAccessFailure       Code = 180
	SPIFlashEraseError     Code = 202
	SPIFlashProgramError   Code = 203
	SPIFlashVerifyError    Code = 204
	SPIFlashTimeoutError   Code = 206
	ImageSizeError         Code = 209
	SPIFlashBlankCheckErr  Code = 210
)

var names = map[Code]string{
	Success:               "success",
	ProcessDataError:      "process data error",
	IDCodeError:           "idcode error",
	PollError:             "poll timeout",
	EraseError:            "erase error",
	ChecksumError:         "checksum error",
	CoreProgramError:      "core program error",
	VerifyError:           "verify error",
	UnlockError:           "unlock error",
	AuthenticationFailure: "authentication failure",
	InitFailure:           "initialization failure",
	MatchError:            "match error",
	VerifyDigestError:     "verify digest error",
	CRCMismatch:           "crc mismatch",
	JTAGStateNotHandled:   "jtag state not handled",
	ActionNotSupported:    "action not supported",
	CodeNotEnabled:        "action not enabled in this build",
	DATAccessFailure:      "dat access failure",
	SPIFlashEraseError:    "spi flash erase error",
	SPIFlashProgramError:  "spi flash program error",
	SPIFlashVerifyError:   "spi flash verify error",
	SPIFlashTimeoutError:  "spi flash timeout",
	ImageSizeError:        "image size exceeds device capacity",
	SPIFlashBlankCheckErr: "spi flash not blank",
}

func (c Code) String() string {
	if s, ok := names[c]; ok {
		return s
	}
	return fmt.Sprintf("error code %d", uint8(c))
}

// Error is the engine's typed error, carrying the protocol error code plus
// the finer-grained unique exit code the reference tooling surfaces to
// operators.
type Error struct {
	Code           Code
	UniqueExitCode uint32

	// Component/Block pin down which part of a frame-data loop failed, zero
	// when not applicable.
	Component uint32
	Block     uint32

	// Reason optionally overrides the default code->string mapping with a
	// context-specific message.
	Reason string
}

func (e *Error) Error() string {
	reason := e.Reason
	if reason == "" {
		reason = e.Code.String()
	}
	if e.UniqueExitCode != 0 {
		return fmt.Sprintf("%s (exit code %d)", reason, e.UniqueExitCode)
	}
	return reason
}

// New builds an *Error from a code and an optional unique exit code.
func New(code Code, uniqueExitCode uint32) *Error {
	return &Error{Code: code, UniqueExitCode: uniqueExitCode}
}

// Newf builds an *Error with a custom reason string.
func Newf(code Code, uniqueExitCode uint32, format string, args ...interface{}) *Error {
	return &Error{Code: code, UniqueExitCode: uniqueExitCode, Reason: fmt.Sprintf(format, args...)}
}

// File-layer exit codes, distinct from the engine's own Code space; these
// are never stored in an *Error, only returned directly by ExitCode callers
// that fail before an Engine exists.
const (
	ExitFileOpenFailure  = 103
	ExitAllocFailure     = 104
	ExitReadFailure      = 105
	ExitMissingFile      = 106
)

// ExitCode maps an error returned by the engine or CLI file layer to the
// process exit status described in the external interfaces contract: 0 on
// success, 103-106 for file-layer failures, otherwise the raw engine error
// code.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var de *Error
	if errors.As(err, &de) {
		return int(de.Code)
	}
	switch err {
	case ErrFileOpen:
		return ExitFileOpenFailure
	case ErrAlloc:
		return ExitAllocFailure
	case ErrRead:
		return ExitReadFailure
	case ErrMissingFile:
		return ExitMissingFile
	default:
		return int(ProcessDataError)
	}
}

// Sentinel file-layer errors. These live outside the Code space because
// they occur before an Engine can even be constructed (the DAT file cannot
// be opened/read), matching the reference CLI's distinct 103-106 exit codes.
var (
	ErrFileOpen    = fmt.Errorf("directc: failed to open dat file")
	ErrAlloc       = fmt.Errorf("directc: failed to allocate image buffer")
	ErrRead        = fmt.Errorf("directc: failed to read dat file")
	ErrMissingFile = fmt.Errorf("directc: dat file not specified")
)
