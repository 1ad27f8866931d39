// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package openpgp

import "fmt"

// NoImplementationError is raised when the gpg binary cannot be found
// on PATH.
type NoImplementationError struct {
	Detail string
}

func (e *NoImplementationError) Error() string {
	return fmt.Sprintf("no OpenPGP implementation available: %s", e.Detail)
}

// VerificationFailureError is raised when a signature is present but
// does not check out (bad, expired, missing public key, or gpg
// returned an error status for it).
type VerificationFailureError struct {
	Detail string
	Sig    SignatureData
}

func (e *VerificationFailureError) Error() string {
	return fmt.Sprintf("OpenPGP verification failed: %s", e.Detail)
}

// ExpiredKeyFailureError is raised when a signature is otherwise
// valid but was made by, or verified against, an expired key.
type ExpiredKeyFailureError struct {
	Detail string
	Sig    SignatureData
}

func (e *ExpiredKeyFailureError) Error() string {
	return fmt.Sprintf("OpenPGP key expired: %s", e.Detail)
}

// RevokedKeyFailureError is raised when a signature was made by a
// revoked key.
type RevokedKeyFailureError struct {
	Detail string
	Sig    SignatureData
}

func (e *RevokedKeyFailureError) Error() string {
	return fmt.Sprintf("OpenPGP key revoked: %s", e.Detail)
}

// UnknownSigFailureError is raised when gpg's status output does not
// match any recognized outcome, or no signature was found at all.
type UnknownSigFailureError struct {
	Detail string
}

func (e *UnknownSigFailureError) Error() string {
	return fmt.Sprintf("OpenPGP signature status unknown: %s", e.Detail)
}

// UntrustedSigFailureError is raised when a signature is
// cryptographically valid but the signing key is not trusted (and
// require_all_good demands a trusted signature).
type UntrustedSigFailureError struct {
	Detail string
	Sig    SignatureData
}

func (e *UntrustedSigFailureError) Error() string {
	return fmt.Sprintf("OpenPGP signature untrusted: %s", e.Detail)
}

// KeyImportError is raised when gpg fails to import a key.
type KeyImportError struct {
	Detail string
}

func (e *KeyImportError) Error() string {
	return fmt.Sprintf("OpenPGP key import failed: %s", e.Detail)
}

// KeyRefreshError is raised when refreshing keys from a keyserver
// fails.
type KeyRefreshError struct {
	Detail string
}

func (e *KeyRefreshError) Error() string {
	return fmt.Sprintf("OpenPGP key refresh failed: %s", e.Detail)
}

// KeyListingError is raised when gpg's --list-keys output cannot be
// parsed as expected.
type KeyListingError struct {
	Detail string
}

func (e *KeyListingError) Error() string {
	return fmt.Sprintf("OpenPGP key listing failed: %s", e.Detail)
}

// SigningFailureError is raised when gpg fails to produce a clearsign
// signature.
type SigningFailureError struct {
	Detail string
}

func (e *SigningFailureError) Error() string {
	return fmt.Sprintf("OpenPGP signing failed: %s", e.Detail)
}
