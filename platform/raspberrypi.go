// Copyright 2020 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package platform

// raspberryPi is the built-in board descriptor for Raspberry Pi boards,
// grounded on periph-host's board-detection DTModel prefix check. The pin
// names match sysfs's GPIO<N> naming so they resolve through gpioreg
// without any board-specific adapter.
type raspberryPi struct{}

func (raspberryPi) String() string { return "raspberry-pi" }

func (raspberryPi) Present() bool { return dtModelHasPrefix("Raspberry Pi") }

// Lines is the module's default JTAG wiring: BCM GPIO 11/25/10/9/7 for
// TCK/TMS/TDI/TDO/TRST, matching the header layout gremwell-go-jtagenum's
// rpio driver assumes.
func (raspberryPi) Lines() Lines {
	return Lines{TCK: "GPIO11", TMS: "GPIO25", TDI: "GPIO10", TDO: "GPIO9", TRST: "GPIO7"}
}

func init() {
	Register(raspberryPi{})
}
