// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package directc

import (
	// Make sure this module's GPIO backend is registered with gpioreg, so
	// jtagio.ByNames and platform line names resolve.
	_ "github.com/microchip-fpga/directc/sysfs"
)
