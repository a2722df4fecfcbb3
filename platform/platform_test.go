// Copyright 2020 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package platform

import "testing"

type fakeDriver struct {
	name    string
	present bool
}

func (f fakeDriver) String() string { return f.name }
func (f fakeDriver) Present() bool  { return f.present }
func (f fakeDriver) Lines() Lines   { return Lines{} }

func TestDetectPrefersSpecificOverGeneric(t *testing.T) {
	saved := registry
	defer func() { registry = saved }()

	registry = []Driver{
		fakeDriver{name: "generic", present: true},
		fakeDriver{name: "raspberry-pi", present: true},
	}
	d, err := Detect()
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if d.String() != "raspberry-pi" {
		t.Fatalf("Detect = %q, want raspberry-pi even though generic was registered first", d.String())
	}
}

func TestDetectFallsBackToGeneric(t *testing.T) {
	saved := registry
	defer func() { registry = saved }()

	registry = []Driver{
		fakeDriver{name: "raspberry-pi", present: false},
		fakeDriver{name: "generic", present: true},
	}
	d, err := Detect()
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if d.String() != "generic" {
		t.Fatalf("Detect = %q, want generic fallback", d.String())
	}
}

func TestDetectNoMatch(t *testing.T) {
	saved := registry
	defer func() { registry = saved }()

	registry = []Driver{fakeDriver{name: "raspberry-pi", present: false}}
	if _, err := Detect(); err == nil {
		t.Fatal("want error when no driver matches and there is no generic fallback")
	}
}

func TestByName(t *testing.T) {
	saved := registry
	defer func() { registry = saved }()

	registry = []Driver{fakeDriver{name: "raspberry-pi"}}
	if _, err := ByName("raspberry-pi"); err != nil {
		t.Fatalf("ByName: %v", err)
	}
	if _, err := ByName("nope"); err == nil {
		t.Fatal("want error for unknown board name")
	}
}
