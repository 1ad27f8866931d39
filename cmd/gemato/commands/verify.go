// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/gentoo/gemato-go/lib/config"
	"github.com/gentoo/gemato-go/lib/loader"
)

func verifyCommand(cfg *config.Config) *Command {
	var keepGoing, requireSigned bool
	var openpgpKey string

	return &Command{
		Name:    "verify",
		Summary: "Verify a Manifest tree against the files on disk",
		Usage:   "gemato verify PATH [flags]",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("verify", pflag.ContinueOnError)
			fs.BoolVar(&keepGoing, "keep-going", false, "report every mismatch instead of stopping at the first")
			fs.BoolVar(&requireSigned, "require-signed-manifest", false, "fail if the top-level Manifest carries no OpenPGP signature")
			fs.StringVar(&openpgpKey, "openpgp-key", "", "import this OpenPGP public key before checking the Manifest's signature")
			return fs
		},
		Run: func(args []string) error {
			path, err := singlePathArg(args)
			if err != nil {
				return err
			}

			ctx := context.Background()
			manifestPath, err := locateManifest(path)
			if err != nil {
				return err
			}

			var opts []loader.Option
			if openpgpKey != "" || requireSigned {
				env, err := openEnvironment(ctx, cfg, openpgpKey)
				if err != nil {
					return classifyError(err)
				}
				defer env.Close()
				opts = append(opts, loader.WithOpenPGPVerify(func(relpath string, raw []byte) error {
					_, err := env.VerifyClearsigned(ctx, raw, true)
					if err != nil {
						return wrapOpenPGPError(err)
					}
					return nil
				}))
			}

			l, err := loader.New(manifestPath, opts...)
			if err != nil {
				return classifyError(err)
			}

			mismatches, err := l.VerifyTree(ctx, loader.VerifyOptions{
				KeepGoing:             keepGoing,
				RequireSignedManifest: requireSigned,
				OpenPGPKeyPath:        openpgpKey,
				Workers:               cfg.Workers,
			})
			if err != nil {
				return classifyError(err)
			}

			if len(mismatches) == 0 {
				return nil
			}
			for _, m := range mismatches {
				fmt.Fprintln(os.Stderr, m)
			}
			return classifyError(mismatches[0])
		},
	}
}
