// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"os"

	"github.com/gentoo/gemato-go/lib/config"
)

// Root returns the top-level gemato command tree (§6): verify,
// create, update, hash, openpgp-verify, openpgp-verify-detached.
// Ambient defaults (default profile, worker concurrency, OpenPGP
// proxy, trusted keys directory) are loaded once from GEMATO_CONFIG,
// if set, and threaded into each command. Only the default profile is
// a flag default (-p/--profile on create and update) that an
// invocation can override; the others have no per-invocation flag.
func Root() *Command {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v; using built-in defaults\n", err)
		cfg = config.Default()
	}

	return &Command{
		Name:    "gemato",
		Summary: "GLEP 74 manifest tree verifier and generator",
		Subcommands: []*Command{
			verifyCommand(cfg),
			createOrUpdateCommand("create", "Create a new Manifest tree rooted at PATH", true, cfg),
			createOrUpdateCommand("update", "Regenerate an existing Manifest tree rooted at PATH", false, cfg),
			hashCommand(),
			openpgpVerifyCommand(cfg),
			openpgpVerifyDetachedCommand(cfg),
		},
	}
}
