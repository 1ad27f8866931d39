// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"fmt"
	"os"
)

// coder is satisfied by errors that carry their own process exit code,
// such as cmd/gemato/commands' usage and classification errors.
type coder interface {
	ExitCode() int
}

// Fatal writes "error: err" to stderr and exits the process. If err
// implements coder, its ExitCode() is used; otherwise the exit code is
// 1. Use it as gemato's binary entrypoint's sole error handler, so
// every command surfaces the same exit code whether it fails with a
// *gemato.Error, a usage error, or something unclassified.
func Fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	if c, ok := err.(coder); ok {
		os.Exit(c.ExitCode())
	}
	os.Exit(1)
}
