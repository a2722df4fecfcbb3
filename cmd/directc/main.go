// Copyright 2020 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Command directc is the operator-facing CLI for programming, verifying,
// erasing, authenticating, interrogating, and zeroizing G5-family FPGAs
// over JTAG, and for driving the JTAG-tunneled SPI-NOR flash subsystem.
package main

import (
	"os"

	"github.com/microchip-fpga/directc/directcerr"
)

func main() {
	os.Exit(directcerr.ExitCode(rootCmd().Execute()))
}
