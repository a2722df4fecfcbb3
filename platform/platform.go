// Copyright 2020 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package platform is the board descriptor registry: it maps a detected
// board to the GPIO pin names the five JTAG lines live on, the way
// periph-host's per-board packages map a detected board to its pinout.
package platform

import (
	"fmt"
	"strings"

	"periph.io/x/host/v3/distro"
)

// Lines names the GPIO pins a board wires to the five JTAG signals.
type Lines struct {
	TCK, TMS, TDI, TRST, TDO string
}

// Driver is a board descriptor, the same three-method shape
// periph.io/x/conn/v3/driver/driverreg.Driver uses for host drivers
// (String/Prerequisites/Init), narrowed to what board detection needs here:
// a name and a presence check.
type Driver interface {
	String() string
	Present() bool
	Lines() Lines
}

var registry []Driver

// Register adds d to the set Detect considers. Board packages call this
// from their own init(), mirroring periph-host's driverreg.Register
// self-registration pattern.
func Register(d Driver) {
	registry = append(registry, d)
}

// Detect returns the first registered Driver whose Present() reports true,
// preferring any board-specific match over the catch-all "generic" driver
// regardless of package init order (Go does not guarantee init order across
// a package's files by declaration order, only by file name, so Detect
// itself — not registration order — is what keeps "generic" a last resort).
func Detect() (Driver, error) {
	var fallback Driver
	for _, d := range registry {
		if d.String() == "generic" {
			fallback = d
			continue
		}
		if d.Present() {
			return d, nil
		}
	}
	if fallback != nil && fallback.Present() {
		return fallback, nil
	}
	return nil, fmt.Errorf("platform: no registered board matched this host")
}

// ByName returns the registered Driver with the given name, for explicit
// `--board=` overrides of the auto-detected one.
func ByName(name string) (Driver, error) {
	for _, d := range registry {
		if d.String() == name {
			return d, nil
		}
	}
	return nil, fmt.Errorf("platform: unknown board %q", name)
}

// dtModelHasPrefix is Present()'s usual implementation, grounded on
// periph-host/nanopi.Present's distro.DTModel() prefix check.
func dtModelHasPrefix(prefix string) bool {
	return strings.HasPrefix(distro.DTModel(), prefix)
}
