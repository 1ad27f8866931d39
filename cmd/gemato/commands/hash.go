// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/pflag"

	gemato "github.com/gentoo/gemato-go"
	"github.com/gentoo/gemato-go/lib/hashmux"
)

func hashCommand() *Command {
	var hashes string

	return &Command{
		Name:    "hash",
		Summary: "Hash one or more files with a given algorithm set",
		Usage:   "gemato hash -H HASHES PATH...",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("hash", pflag.ContinueOnError)
			fs.StringVarP(&hashes, "hashes", "H", "SHA256", "comma- or space-separated hash algorithm list")
			return fs
		},
		Run: func(args []string) error {
			if len(args) == 0 {
				return usageError("hash requires at least one PATH argument")
			}
			algorithms := splitHashList(hashes)

			for _, path := range args {
				f, err := os.Open(path)
				if err != nil {
					return classifyError(gemato.New(gemato.KindIOFailure, path, err))
				}
				result, err := hashmux.Multiplex(f, algorithms)
				f.Close()
				if err != nil {
					return classifyError(gemato.New(gemato.KindUnsupportedHash, path, err))
				}

				fmt.Printf("%s\tsize=%d", path, result.Size)
				for _, alg := range sortedKeys(algorithms) {
					fmt.Printf("\t%s=%s", alg, result.Digests[alg])
				}
				fmt.Println()
			}
			return nil
		},
	}
}

// sortedKeys returns algorithms in the order they are printed:
// deduplicated and sorted alphabetically.
func sortedKeys(algorithms []string) []string {
	seen := make(map[string]bool, len(algorithms))
	out := make([]string, 0, len(algorithms))
	for _, a := range algorithms {
		if !seen[a] {
			seen[a] = true
			out = append(out, a)
		}
	}
	sort.Strings(out)
	return out
}
