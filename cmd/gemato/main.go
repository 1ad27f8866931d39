// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"os"

	"github.com/gentoo/gemato-go/cmd/gemato/commands"
	"github.com/gentoo/gemato-go/lib/process"
)

// Exit codes per the CLI surface: 0 success, 1 verification failure,
// 2 usage error, 3 cryptographic (OpenPGP) failure, 4 I/O error.
func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

func run() error {
	return commands.Root().Execute(os.Args[1:])
}
