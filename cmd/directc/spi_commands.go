// Copyright 2020 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"github.com/spf13/cobra"

	"github.com/microchip-fpga/directc/spiflash"
)

func spiAddrSizeFlags(cmd *cobra.Command) (addr, size *uint32) {
	addr = cmd.Flags().Uint32("addr", 0, "starting byte address within the SPI-NOR part")
	size = cmd.Flags().Uint32("size", 0, "byte count (0 means the image's declared data size)")
	return
}

func runSPIAction(action spiflash.Action, addr, size uint32) error {
	sess, cleanup, err := openSession()
	if err != nil {
		return err
	}
	defer cleanup()
	eng, err := sess.SPI()
	if err != nil {
		return err
	}
	if size == 0 {
		size = uint32(sess.Image.ImageSize())
	}
	return eng.Run(action, addr, size)
}

func spiEraseCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "spi-erase", Short: "Erase a range of the JTAG-tunneled SPI-NOR flash"}
	addr, size := spiAddrSizeFlags(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runSPIAction(spiflash.ActionErase, *addr, *size)
	}
	return cmd
}

func spiProgramCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "spi-program", Short: "Program the SPI-NOR flash from the image file"}
	addr, size := spiAddrSizeFlags(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runSPIAction(spiflash.ActionProgram, *addr, *size)
	}
	return cmd
}

func spiVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "spi-verify", Short: "Verify the SPI-NOR flash against the image file"}
	addr, size := spiAddrSizeFlags(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runSPIAction(spiflash.ActionVerify, *addr, *size)
	}
	return cmd
}

func spiReadCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "spi-read", Short: "Read a range of the SPI-NOR flash"}
	addr, size := spiAddrSizeFlags(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runSPIAction(spiflash.ActionRead, *addr, *size)
	}
	return cmd
}
