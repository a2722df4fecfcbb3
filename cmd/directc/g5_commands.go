// Copyright 2020 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"encoding/binary"

	"github.com/spf13/cobra"

	"github.com/microchip-fpga/directc/g5"
)

func runG5Action(action g5.Action) error {
	sess, cleanup, err := openSession()
	if err != nil {
		return err
	}
	defer cleanup()
	eng := sess.G5()
	if err := eng.TAP.IRScanIn([]byte{0x0F}, 8); err != nil {
		return err
	}
	var id [4]byte
	if err := eng.TAP.DRScanOut(32, nil, id[:]); err != nil {
		return err
	}
	eng.DeviceID = binary.LittleEndian.Uint32(id[:])
	return eng.Run(action)
}

func eraseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "erase",
		Short: "Erase the FPGA's configuration memory",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runG5Action(g5.ActionErase)
		},
	}
}

func programCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "program",
		Short: "Program the FPGA from the image file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runG5Action(g5.ActionProgram)
		},
	}
}

func verifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Verify the FPGA's contents against the image file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runG5Action(g5.ActionVerify)
		},
	}
}

func deviceInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "device-info",
		Short: "Report the live IDCODE and the image's expected device identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runG5Action(g5.ActionDeviceInfo)
		},
	}
}

func verifyDigestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify-digest",
		Short: "Verify each component's bitstream digest without a full readback",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runG5Action(g5.ActionVerifyDigest)
		},
	}
}

func readCertificateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "read-certificate",
		Short: "Read the device's certificate of conformance",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runG5Action(g5.ActionReadDeviceCertificate)
		},
	}
}

func zeroizeLikeNewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "zeroize-like-new",
		Short: "Zeroize the device, leaving it usable for reprogramming",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runG5Action(g5.ActionZeroizeLikeNew)
		},
	}
}

func zeroizeUnrecoverableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "zeroize-unrecoverable",
		Short: "Permanently and irrecoverably zeroize the device",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runG5Action(g5.ActionZeroizeUnrecoverable)
		},
	}
}
