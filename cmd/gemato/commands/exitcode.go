// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"errors"
	"fmt"

	gemato "github.com/gentoo/gemato-go"
)

// Exit codes per §6: 0 success, 1 verification failure, 2 usage
// error, 3 cryptographic (OpenPGP) failure, 4 I/O error.
const (
	exitSuccess           = 0
	exitVerificationFail  = 1
	exitUsageError        = 2
	exitCryptoFailure     = 3
	exitIOFailure         = 4
)

// exitCodeError wraps an error with the process exit code main.go
// should use for it, via the ExitCode() int duck-typed interface
// main.go already checks for.
type exitCodeError struct {
	code int
	err  error
}

func (e *exitCodeError) Error() string { return e.err.Error() }
func (e *exitCodeError) Unwrap() error { return e.err }
func (e *exitCodeError) ExitCode() int { return e.code }

func usageError(format string, args ...any) error {
	return &exitCodeError{code: exitUsageError, err: fmt.Errorf(format, args...)}
}

// classifyError maps a gemato operation's error to the exit code its
// Kind implies, per §6's table. A non-*gemato.Error is always an I/O
// failure (the operation could not even get as far as the domain's
// own error taxonomy).
func classifyError(err error) error {
	if err == nil {
		return nil
	}
	var gerr *gemato.Error
	if !errors.As(err, &gerr) {
		return &exitCodeError{code: exitIOFailure, err: err}
	}

	switch gerr.Kind {
	case gemato.KindOpenPGPNoImplementation, gemato.KindOpenPGPVerificationFailure,
		gemato.KindOpenPGPExpiredKey, gemato.KindOpenPGPRevokedKey,
		gemato.KindOpenPGPUntrusted, gemato.KindOpenPGPUnknownSig,
		gemato.KindOpenPGPFeatureUnavailable:
		return &exitCodeError{code: exitCryptoFailure, err: err}
	case gemato.KindIOFailure, gemato.KindUnsupportedCompression:
		return &exitCodeError{code: exitIOFailure, err: err}
	default:
		return &exitCodeError{code: exitVerificationFail, err: err}
	}
}
