// Copyright 2020 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package platform

import "github.com/spf13/viper"

// generic is the catch-all board descriptor: it always reports present
// (so Detect never fails outright) and reads its pin names from
// environment/config, the way rcornwell-S370 binds its hardware
// configuration through viper rather than hard-coded board tables.
type generic struct{}

func (generic) String() string { return "generic" }

func (generic) Present() bool { return true }

func (generic) Lines() Lines {
	return Lines{
		TCK:  viper.GetString("jtag.tck"),
		TMS:  viper.GetString("jtag.tms"),
		TDI:  viper.GetString("jtag.tdi"),
		TRST: viper.GetString("jtag.trst"),
		TDO:  viper.GetString("jtag.tdo"),
	}
}

func init() {
	viper.SetDefault("jtag.tck", "GPIO11")
	viper.SetDefault("jtag.tms", "GPIO25")
	viper.SetDefault("jtag.tdi", "GPIO10")
	viper.SetDefault("jtag.trst", "GPIO7")
	viper.SetDefault("jtag.tdo", "GPIO9")
	Register(generic{})
}
