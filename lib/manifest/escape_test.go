// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEscapeUnescapeRoundTrip(t *testing.T) {
	cases := []string{
		"plain/path.txt",
		"has space/file.txt",
		"back\\slash",
		"tab\tcontrol",
		"unicode/café.txt",
	}
	for _, c := range cases {
		escaped := EscapePath(c)
		unescaped, err := UnescapePath(escaped)
		require.NoError(t, err)
		require.Equal(t, c, unescaped)
	}
}

func TestEscapeProducesNoRawSpaces(t *testing.T) {
	escaped := EscapePath("a b")
	require.NotContains(t, escaped, " ")
	require.Equal(t, `a\x20b`, escaped)
}

func TestUnescapeRejectsMalformedEscape(t *testing.T) {
	_, err := UnescapePath(`a\xZZ`)
	require.Error(t, err)
}

func TestUnescapeRejectsTruncatedEscape(t *testing.T) {
	_, err := UnescapePath(`a\x2`)
	require.Error(t, err)
}
