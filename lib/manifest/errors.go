// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package manifest

import "fmt"

// SyntaxError reports a malformed manifest line, carrying enough
// context (line number, raw text) for the caller to point a human at
// the offending line.
type SyntaxError struct {
	Line int
	Raw  string
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("manifest syntax error at line %d: %s (%q)", e.Line, e.Msg, e.Raw)
}

// TraversalError reports a manifest entry whose path escapes the tree
// root (an absolute path, or one with a ".." component climbing above
// root). Kept distinct from SyntaxError so callers can tell a hostile
// path apart from an ordinary malformed line and classify it as such.
type TraversalError struct {
	Line int
	Raw  string
	Path string
	Err  error
}

func (e *TraversalError) Error() string {
	return fmt.Sprintf("manifest path traversal at line %d: %q: %v", e.Line, e.Path, e.Err)
}

func (e *TraversalError) Unwrap() error { return e.Err }

// UnsignedDataError is raised when a manifest contains non-whitespace
// content outside a single OpenPGP clearsign envelope: entries before
// the BEGIN PGP SIGNED MESSAGE header, or any content after END PGP
// SIGNATURE.
type UnsignedDataError struct{}

func (*UnsignedDataError) Error() string {
	return "unsigned data found outside the OpenPGP-signed portion of the manifest"
}

// UnexpectedOpenPGPHeaderError is raised when a line looks like an
// OpenPGP armor header ("-----...-----") in a place the clearsign FSM
// does not expect one.
type UnexpectedOpenPGPHeaderError struct {
	Line int
	Raw  string
}

func (e *UnexpectedOpenPGPHeaderError) Error() string {
	return fmt.Sprintf("unexpected OpenPGP header at line %d: %q", e.Line, e.Raw)
}

// TruncatedError is raised when the input ends while the clearsign
// FSM is still inside the header, signed-data, or signature region.
type TruncatedError struct {
	Where string
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("manifest terminated early: %s", e.Where)
}
