// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/gentoo/gemato-go/lib/config"
)

func openpgpVerifyCommand(cfg *config.Config) *Command {
	var keyPath string

	return &Command{
		Name:    "openpgp-verify",
		Summary: "Verify the OpenPGP clearsignature on one or more files",
		Usage:   "gemato openpgp-verify [-K KEY] PATH...",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("openpgp-verify", pflag.ContinueOnError)
			fs.StringVarP(&keyPath, "key", "K", "", "import this OpenPGP public key before verifying")
			return fs
		},
		Run: func(args []string) error {
			if len(args) == 0 {
				return usageError("openpgp-verify requires at least one PATH argument")
			}

			ctx := context.Background()
			env, err := openEnvironment(ctx, cfg, keyPath)
			if err != nil {
				return classifyError(err)
			}
			defer env.Close()

			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return classifyError(wrapOpenPGPError(err))
				}
				sigs, err := env.VerifyClearsigned(ctx, data, true)
				if err != nil {
					return classifyError(wrapOpenPGPError(err))
				}
				for _, sig := range sigs {
					fmt.Printf("%s: good signature by %s (timestamp %s)\n", path, sig.Fingerprint, sig.Timestamp.Format("2006-01-02T15:04:05Z"))
				}
			}
			return nil
		},
	}
}

func openpgpVerifyDetachedCommand(cfg *config.Config) *Command {
	var keyPath string

	return &Command{
		Name:    "openpgp-verify-detached",
		Summary: "Verify a detached OpenPGP signature against its data file",
		Usage:   "gemato openpgp-verify-detached -K KEY SIG DATA",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("openpgp-verify-detached", pflag.ContinueOnError)
			fs.StringVarP(&keyPath, "key", "K", "", "import this OpenPGP public key before verifying")
			return fs
		},
		Run: func(args []string) error {
			if len(args) != 2 {
				return usageError("openpgp-verify-detached requires exactly two arguments: SIG DATA")
			}
			sigPath, dataPath := args[0], args[1]

			ctx := context.Background()
			env, err := openEnvironment(ctx, cfg, keyPath)
			if err != nil {
				return classifyError(err)
			}
			defer env.Close()

			sigs, err := env.VerifyDetached(ctx, sigPath, dataPath, true)
			if err != nil {
				return classifyError(wrapOpenPGPError(err))
			}
			for _, sig := range sigs {
				fmt.Printf("%s: good signature by %s (timestamp %s)\n", dataPath, sig.Fingerprint, sig.Timestamp.Format("2006-01-02T15:04:05Z"))
			}
			return nil
		},
	}
}
