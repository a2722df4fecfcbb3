// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package directc ties together the GPIO line drivers, the JTAG TAP, the
// DAT image reader, and the G5/SPI-NOR protocol engines into the single
// entry point the CLI layer drives.
package directc

import "periph.io/x/conn/v3/driver/driverreg"

// Init calls driverreg.Init() and returns it as-is.
//
// The only difference is that by calling directc.Init(), you are guaranteed
// to have this module's sysfs GPIO backend registered before platform.Detect
// runs.
func Init() (*driverreg.State, error) {
	return driverreg.Init()
}
