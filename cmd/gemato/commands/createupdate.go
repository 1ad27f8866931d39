// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"

	gemato "github.com/gentoo/gemato-go"
	"github.com/gentoo/gemato-go/lib/config"
	"github.com/gentoo/gemato-go/lib/loader"
	"github.com/gentoo/gemato-go/lib/manifest"
	"github.com/gentoo/gemato-go/lib/openpgp"
	"github.com/gentoo/gemato-go/lib/secret"
)

// createOrUpdateCommand builds both the create and update commands:
// they take the same flags and both end in a loader.Update call, and
// differ only in whether a Manifest is already expected to exist
// (§4.G names them as the same underlying operation). cfg supplies
// the --profile flag's default, so a deployment with a fixed policy
// (e.g. always "ebuild") does not need to repeat it on every call.
func createOrUpdateCommand(name, summary string, allowMissing bool, cfg *config.Config) *Command {
	var profileName, hashes, compressFormat, openpgpID, timestamp, passphraseFile string
	var sign bool

	return &Command{
		Name:    name,
		Summary: summary,
		Usage:   "gemato " + name + " PATH [flags]",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
			fs.StringVarP(&profileName, "profile", "p", cfg.DefaultProfile, "policy profile (default, ebuild, old-ebuild, egencache)")
			fs.StringVarP(&hashes, "hashes", "H", "", "comma- or space-separated hash algorithm list, overriding the profile's")
			fs.StringVar(&compressFormat, "compress-format", "", "override the profile's sub-manifest compression (gz, bz2, or xz; empty keeps the profile's default)")
			fs.BoolVar(&sign, "sign", false, "OpenPGP clearsign the regenerated top-level Manifest")
			fs.StringVar(&openpgpID, "openpgp-id", "", "signing key ID, when --sign is given (default key otherwise)")
			fs.StringVar(&timestamp, "timestamp", "", "RFC3339 timestamp for the TIMESTAMP entry, instead of the current time")
			fs.StringVar(&passphraseFile, "openpgp-passphrase-file", "", "file (or - for stdin) holding the signing key's passphrase, when --sign is given and the key is protected")
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
				if !allowMissing {
					return err
				}
				manifestPath, err = writeStubManifest(path)
				if err != nil {
					return classifyError(err)
				}
			}

			var ts *time.Time
			if timestamp != "" {
				parsed, err := time.Parse(time.RFC3339, timestamp)
				if err != nil {
					return usageError("invalid --timestamp %q: %v", timestamp, err)
				}
				ts = &parsed
			}

			var algorithms []string
			if hashes != "" {
				algorithms = splitHashList(hashes)
			}

			var opts []loader.Option
			var env openpgp.Environment
			var passphrase *secret.Buffer
			if sign {
				env, err = openEnvironment(ctx, cfg, "")
				if err != nil {
					return classifyError(err)
				}
				defer env.Close()

				if passphraseFile != "" {
					passphrase, err = secret.ReadFromPath(passphraseFile)
					if err != nil {
						return gemato.New(gemato.KindIOFailure, passphraseFile, err)
					}
					defer passphrase.Close()
				}
			}

			l, err := loader.New(manifestPath, opts...)
			if err != nil {
				return classifyError(err)
			}

			if err := l.Update(ctx, loader.UpdateOptions{
				Profile:        profileName,
				HashAlgorithms: algorithms,
				CompressFormat: compressFormat,
				Sign:           sign,
				OpenPGPKeyID:   openpgpID,
				Timestamp:      ts,
				Workers:        cfg.Workers,
			}); err != nil {
				return classifyError(err)
			}

			if sign {
				if err := signTopManifest(ctx, env, manifestPath, openpgpID, passphrase); err != nil {
					return classifyError(err)
				}
			}
			return nil
		},
	}
}

// writeStubManifest writes a bare, empty top-level Manifest at dir so
// loader.New has something to load before the first Update populates
// it for real.
func writeStubManifest(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", gemato.New(gemato.KindIOFailure, dir, err)
	}
	path := filepath.Join(dir, "Manifest")
	var buf strings.Builder
	if err := manifest.Write(&buf, []manifest.Entry{manifest.TimestampEntry{Time: time.Now().UTC()}}); err != nil {
		return "", gemato.New(gemato.KindManifestSyntax, path, err)
	}
	if err := os.WriteFile(path, []byte(buf.String()), 0o644); err != nil {
		return "", gemato.New(gemato.KindIOFailure, path, err)
	}
	return path, nil
}

// signTopManifest clearsigns the just-written top-level Manifest in
// place. Update always writes a plain Manifest; signing is a separate
// pass over the finished file, mirroring how gemato's OpenPGP
// envelope is kept independent of manifest generation (§4.E).
// passphrase, if non-nil, unlocks a passphrase-protected signing key;
// its backing memory is owned and zeroed by the caller.
func signTopManifest(ctx context.Context, env openpgp.Environment, manifestPath, keyID string, passphrase *secret.Buffer) error {
	raw, err := os.ReadFile(manifestPath)
	if err != nil {
		return gemato.New(gemato.KindIOFailure, manifestPath, err)
	}

	var passBytes []byte
	if passphrase != nil {
		passBytes = passphrase.Bytes()
	}
	signed, err := env.ClearSign(ctx, raw, keyID, passBytes)
	if err != nil {
		return wrapOpenPGPError(err)
	}
	info, err := os.Stat(manifestPath)
	if err != nil {
		return gemato.New(gemato.KindIOFailure, manifestPath, err)
	}
	if err := os.WriteFile(manifestPath, signed, info.Mode()); err != nil {
		return gemato.New(gemato.KindIOFailure, manifestPath, err)
	}
	return nil
}

func splitHashList(s string) []string {
	s = strings.ReplaceAll(s, ",", " ")
	fields := strings.Fields(s)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, strings.ToUpper(f))
	}
	return out
}
