// Copyright 2020 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package directc

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/microchip-fpga/directc/g5"
	"github.com/microchip-fpga/directc/image"
	"github.com/microchip-fpga/directc/jtag"
	"github.com/microchip-fpga/directc/jtagio"
	"github.com/microchip-fpga/directc/platform"
	"github.com/microchip-fpga/directc/spiflash"
)

// Chip selects which protocol engine a Session's TAP talks to.
type Chip uint8

const (
	ChipG5 Chip = iota
	ChipSPINORviaJTAG
)

// Session owns everything one programming run needs: the resolved GPIO
// lines, the TAP driving them, the image being applied, and whichever
// protocol engine (g5.Engine or spiflash.Engine) the caller selected. It
// is the single collaborator cmd/directc's subcommands depend on.
type Session struct {
	Log  *logrus.Entry
	Board platform.Driver
	TAP  *jtag.TAP
	Image *image.Reader

	g5      *g5.Engine
	spi     *spiflash.Engine
}

// Open detects (or accepts an explicit override of) the board, resolves
// its JTAG lines, brings up the TAP, and wraps ra as the programming
// image — the Go analogue of the reference's per-run setup sequence
// (dp_jtag_init + dp_check_and_get_image_size).
func Open(boardName string, ra io.ReaderAt, sleep func(), log *logrus.Entry) (*Session, error) {
	if log == nil {
		log = logrus.NewEntry(logrus.New())
	}

	board, err := resolveBoard(boardName)
	if err != nil {
		return nil, err
	}
	lines := board.Lines()
	pins, err := jtagio.ByNames(lines.TCK, lines.TMS, lines.TDI, lines.TRST, lines.TDO, sleep)
	if err != nil {
		return nil, fmt.Errorf("directc: resolving JTAG lines for %s: %w", board.String(), err)
	}

	img := image.New(ra)
	if _, err := img.CheckAndGetImageSize(); err != nil {
		return nil, fmt.Errorf("directc: reading image: %w", err)
	}
	if err := img.CheckImageCRC(); err != nil {
		return nil, fmt.Errorf("directc: image CRC check: %w", err)
	}

	return &Session{
		Log:   log,
		Board: board,
		TAP:   jtag.New(pins),
		Image: img,
	}, nil
}

func resolveBoard(name string) (platform.Driver, error) {
	if name != "" {
		return platform.ByName(name)
	}
	return platform.Detect()
}

// G5 lazily builds (and caches) the session's G5 protocol engine.
func (s *Session) G5() *g5.Engine {
	if s.g5 == nil {
		s.g5 = g5.New(s.TAP, s.Image, s.Log)
	}
	return s.g5
}

// SPI lazily builds (and caches) the session's JTAG-tunneled SPI-NOR
// engine, probing the attached part's JEDEC ID the first time it's
// requested.
func (s *Session) SPI() (*spiflash.Engine, error) {
	if s.spi != nil {
		return s.spi, nil
	}
	eng, err := spiflash.New(s.TAP, s.Image)
	if err != nil {
		return nil, fmt.Errorf("directc: bringing up SPI bridge: %w", err)
	}
	s.spi = eng
	return s.spi, nil
}

// Close releases the Session's JTAG lines, driving every line high the
// same way jtagio.Pins.Halt does on program exit.
func (s *Session) Close() error {
	return s.TAP.Pins.Halt()
}
