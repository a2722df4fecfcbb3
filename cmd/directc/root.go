// Copyright 2020 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	directc "github.com/microchip-fpga/directc"
	_ "github.com/microchip-fpga/directc/platform"
)

var log = logrus.New()

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "directc",
		Short: "Program, verify, erase, authenticate, interrogate, and zeroize G5-family FPGAs over JTAG",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			lvl, err := logrus.ParseLevel(viper.GetString("log-level"))
			if err != nil {
				return err
			}
			log.SetLevel(lvl)
			if _, err := directc.Init(); err != nil {
				return err
			}
			return nil
		},
	}

	root.PersistentFlags().String("image", "", "path to the programming image (.dat) file")
	root.PersistentFlags().String("board", "", "board name override (default: auto-detect)")
	root.PersistentFlags().String("log-level", "info", "log level: trace, debug, info, warn, error")
	_ = viper.BindPFlags(root.PersistentFlags())

	viper.SetEnvPrefix("directc")
	viper.AutomaticEnv()
	viper.SetConfigName("directc")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.config/directc")
	_ = viper.ReadInConfig()

	root.AddCommand(
		eraseCmd(), programCmd(), verifyCmd(), deviceInfoCmd(),
		verifyDigestCmd(), readCertificateCmd(),
		zeroizeLikeNewCmd(), zeroizeUnrecoverableCmd(),
		spiEraseCmd(), spiProgramCmd(), spiVerifyCmd(), spiReadCmd(),
	)
	return root
}

func openImage() (*os.File, error) {
	path := viper.GetString("image")
	if path == "" {
		return nil, directcMissingFileErr()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, directcFileOpenErr(err)
	}
	return f, nil
}
