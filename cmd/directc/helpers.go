// Copyright 2020 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	directc "github.com/microchip-fpga/directc"
	"github.com/microchip-fpga/directc/directcerr"
)

func directcMissingFileErr() error { return directcerr.ErrMissingFile }

func directcFileOpenErr(cause error) error {
	log.WithError(cause).Error("directc: opening image file")
	return directcerr.ErrFileOpen
}

// openSession opens the image file named by --image and brings up a
// Session against the board named by --board (or auto-detected).
func openSession() (*directc.Session, func(), error) {
	f, err := openImage()
	if err != nil {
		return nil, func() {}, err
	}
	entry := logrus.NewEntry(log)
	sess, err := directc.Open(viper.GetString("board"), f, nil, entry)
	if err != nil {
		f.Close()
		return nil, func() {}, err
	}
	return sess, func() {
		sess.Close()
		f.Close()
	}, nil
}
