// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"os"
	"path/filepath"

	gemato "github.com/gentoo/gemato-go"
	"github.com/gentoo/gemato-go/lib/config"
	"github.com/gentoo/gemato-go/lib/openpgp"
)

// openEnvironment builds an Isolated OpenPGP environment, imports and
// trusts every key under cfg.TrustedKeysDir (if the directory exists),
// and then imports and trusts keyPath on top if it is non-empty. Per
// §4.E, gemato verifies against a throwaway keyring rather than the
// caller's ambient one; lib/loader delegates signature checks to a
// WithOpenPGPVerify hook, and CLI commands that need OpenPGP back that
// hook with the environment built here. cfg.OpenPGPProxy is passed through to gpg for
// keyserver/WKD lookups.
func openEnvironment(ctx context.Context, cfg *config.Config, keyPath string) (openpgp.Environment, error) {
	env, err := openpgp.NewIsolated(cfg.OpenPGPProxy, false)
	if err != nil {
		return nil, wrapOpenPGPError(err)
	}

	if err := importTrustedKeys(ctx, env, cfg.TrustedKeysDir); err != nil {
		env.Close()
		return nil, err
	}

	if keyPath == "" {
		return env, nil
	}

	keyData, err := os.ReadFile(keyPath)
	if err != nil {
		env.Close()
		return nil, gemato.New(gemato.KindIOFailure, keyPath, err)
	}
	if err := env.ImportKey(ctx, keyData, true); err != nil {
		env.Close()
		return nil, wrapOpenPGPError(err)
	}
	return env, nil
}

// importTrustedKeys imports every regular file under dir as a trusted
// OpenPGP public key. A missing or empty dir is not an error: most
// deployments rely on --openpgp-key/--key instead.
func importTrustedKeys(ctx context.Context, env openpgp.Environment, dir string) error {
	if dir == "" {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return gemato.New(gemato.KindIOFailure, dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		keyData, err := os.ReadFile(path)
		if err != nil {
			return gemato.New(gemato.KindIOFailure, path, err)
		}
		if err := env.ImportKey(ctx, keyData, true); err != nil {
			return wrapOpenPGPError(err)
		}
	}
	return nil
}

// wrapOpenPGPError lifts one of lib/openpgp's error types into a
// *gemato.Error carrying the matching Kind, so classifyError (which
// only inspects *gemato.Error) maps it to exit code 3 rather than the
// generic I/O fallback.
func wrapOpenPGPError(err error) error {
	if err == nil {
		return nil
	}
	switch err.(type) {
	case *openpgp.NoImplementationError:
		return gemato.New(gemato.KindOpenPGPNoImplementation, "", err)
	case *openpgp.ExpiredKeyFailureError:
		return gemato.New(gemato.KindOpenPGPExpiredKey, "", err)
	case *openpgp.RevokedKeyFailureError:
		return gemato.New(gemato.KindOpenPGPRevokedKey, "", err)
	case *openpgp.UntrustedSigFailureError:
		return gemato.New(gemato.KindOpenPGPUntrusted, "", err)
	case *openpgp.UnknownSigFailureError:
		return gemato.New(gemato.KindOpenPGPUnknownSig, "", err)
	case *openpgp.VerificationFailureError, *openpgp.KeyImportError,
		*openpgp.KeyRefreshError, *openpgp.KeyListingError, *openpgp.SigningFailureError:
		return gemato.New(gemato.KindOpenPGPVerificationFailure, "", err)
	default:
		return gemato.New(gemato.KindOpenPGPVerificationFailure, "", err)
	}
}
