// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"errors"
	"testing"

	gemato "github.com/gentoo/gemato-go"
)

func TestClassifyErrorMapsKindToExitCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, exitSuccess},
		{"hash mismatch", gemato.New(gemato.KindHashMismatch, "a.txt", errors.New("x")), exitVerificationFail},
		{"missing file", gemato.New(gemato.KindMissingFile, "a.txt", errors.New("x")), exitVerificationFail},
		{"io failure", gemato.New(gemato.KindIOFailure, "a.txt", errors.New("x")), exitIOFailure},
		{"unsupported compression", gemato.New(gemato.KindUnsupportedCompression, "a.txt", errors.New("x")), exitIOFailure},
		{"openpgp verification failure", gemato.New(gemato.KindOpenPGPVerificationFailure, "", errors.New("x")), exitCryptoFailure},
		{"openpgp untrusted", gemato.New(gemato.KindOpenPGPUntrusted, "", errors.New("x")), exitCryptoFailure},
		{"plain error", errors.New("boom"), exitIOFailure},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			got := classifyError(test.err)
			if test.err == nil {
				if got != nil {
					t.Fatalf("classifyError(nil) = %v, want nil", got)
				}
				return
			}
			coder, ok := got.(interface{ ExitCode() int })
			if !ok {
				t.Fatalf("classifyError result does not implement ExitCode(): %v", got)
			}
			if coder.ExitCode() != test.want {
				t.Errorf("ExitCode() = %d, want %d", coder.ExitCode(), test.want)
			}
		})
	}
}

func TestUsageErrorIsExitCode2(t *testing.T) {
	t.Parallel()

	err := usageError("bad input: %s", "oops")
	coder, ok := err.(interface{ ExitCode() int })
	if !ok {
		t.Fatal("usageError result does not implement ExitCode()")
	}
	if coder.ExitCode() != exitUsageError {
		t.Errorf("ExitCode() = %d, want %d", coder.ExitCode(), exitUsageError)
	}
}
