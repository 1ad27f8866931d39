// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package openpgp

import (
	"crypto/sha1"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWKDURLShape(t *testing.T) {
	u, err := wkdURL("Alice@Example.COM")
	require.NoError(t, err)
	require.Contains(t, u, "https://example.com/.well-known/openpgpkey/hu/")
	require.Contains(t, u, "?l=Alice")
}

func TestWKDURLRejectsNonEmail(t *testing.T) {
	_, err := wkdURL("not-an-email")
	require.Error(t, err)
}

func TestZBase32EncodeSHA1Length(t *testing.T) {
	// a SHA-1 digest is 160 bits; zbase32 packs 5 bits per character,
	// so the encoded local part is always 32 characters.
	digest := sha1.Sum([]byte("test1"))
	encoded := zbase32EncodeSHA1(digest)
	require.Len(t, encoded, 32)
}

func TestZBase32EncodeSHA1UsesOnlyItsAlphabet(t *testing.T) {
	digest := sha1.Sum([]byte("test1"))
	encoded := zbase32EncodeSHA1(digest)
	for _, c := range encoded {
		require.Contains(t, zbase32Alphabet, string(c))
	}
}
