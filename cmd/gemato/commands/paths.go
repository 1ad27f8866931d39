// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"os"
	"path/filepath"
)

// manifestSuffixes lists the on-disk suffixes a top-level Manifest may
// carry, bare first since that is by far the common case.
var manifestSuffixes = []string{"", ".gz", ".bz2", ".xz"}

// locateManifest finds the top-level Manifest file under root, trying
// every compression suffix gemato recognizes. root may itself already
// name the manifest file directly.
func locateManifest(root string) (string, error) {
	if info, err := os.Stat(root); err == nil && !info.IsDir() {
		return root, nil
	}

	for _, suffix := range manifestSuffixes {
		candidate := filepath.Join(root, "Manifest"+suffix)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", usageError("no Manifest found under %s", root)
}

// singlePathArg validates that exactly one positional path argument
// was given, defaulting to the current directory when cmd allows it.
func singlePathArg(args []string) (string, error) {
	switch len(args) {
	case 0:
		return ".", nil
	case 1:
		return args[0], nil
	default:
		return "", usageError("expected exactly one PATH argument, got %d", len(args))
	}
}
