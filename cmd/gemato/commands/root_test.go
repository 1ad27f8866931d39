// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import "testing"

func TestRootRegistersEverySubcommand(t *testing.T) {
	t.Parallel()

	want := []string{"verify", "create", "update", "hash", "openpgp-verify", "openpgp-verify-detached"}
	root := Root()

	got := make(map[string]bool, len(root.Subcommands))
	for _, sub := range root.Subcommands {
		got[sub.Name] = true
	}
	for _, name := range want {
		if !got[name] {
			t.Errorf("Root() is missing subcommand %q", name)
		}
	}
}

func TestRootHelpFlagListsSubcommands(t *testing.T) {
	t.Parallel()

	root := Root()
	if err := root.Execute([]string{"--help"}); err != nil {
		t.Fatalf("Execute([--help]): %v", err)
	}
}
