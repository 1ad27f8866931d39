// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitClearsignUnsigned(t *testing.T) {
	input := "TIMESTAMP 2026-08-06T12:00:00Z\nDATA foo 4 SHA256 aabbcc\n"
	result, err := splitClearsign(strings.NewReader(input))
	require.NoError(t, err)
	require.False(t, result.Signed)
	require.Len(t, result.TagLines, 2)
	require.Empty(t, result.Envelope)
}

func TestSplitClearsignEnvelope(t *testing.T) {
	input := strings.Join([]string{
		"-----BEGIN PGP SIGNED MESSAGE-----",
		"Hash: SHA256",
		"",
		"TIMESTAMP 2026-08-06T12:00:00Z",
		"- DATA foo 4 SHA256 aabbcc",
		"-----BEGIN PGP SIGNATURE-----",
		"",
		"iQEz...",
		"-----END PGP SIGNATURE-----",
	}, "\n") + "\n"

	result, err := splitClearsign(strings.NewReader(input))
	require.NoError(t, err)
	require.True(t, result.Signed)
	require.Len(t, result.TagLines, 2)
	require.Equal(t, "DATA foo 4 SHA256 aabbcc", result.TagLines[1].Text)
	require.Contains(t, string(result.Envelope), "BEGIN PGP SIGNED MESSAGE")
	require.Contains(t, string(result.Envelope), "END PGP SIGNATURE")
}

func TestSplitClearsignRejectsDataAfterSignature(t *testing.T) {
	input := strings.Join([]string{
		"-----BEGIN PGP SIGNED MESSAGE-----",
		"Hash: SHA256",
		"",
		"TIMESTAMP 2026-08-06T12:00:00Z",
		"-----BEGIN PGP SIGNATURE-----",
		"",
		"iQEz...",
		"-----END PGP SIGNATURE-----",
		"DATA foo 4 SHA256 aabbcc",
	}, "\n") + "\n"

	_, err := splitClearsign(strings.NewReader(input))
	require.Error(t, err)
	require.IsType(t, &UnsignedDataError{}, err)
}

func TestSplitClearsignRejectsTruncatedEnvelope(t *testing.T) {
	input := strings.Join([]string{
		"-----BEGIN PGP SIGNED MESSAGE-----",
		"Hash: SHA256",
		"",
		"TIMESTAMP 2026-08-06T12:00:00Z",
	}, "\n") + "\n"

	_, err := splitClearsign(strings.NewReader(input))
	require.Error(t, err)
	require.IsType(t, &TruncatedError{}, err)
}

func TestSplitClearsignRejectsStrayArmorHeader(t *testing.T) {
	input := "TIMESTAMP 2026-08-06T12:00:00Z\n-----BEGIN PGP PUBLIC KEY BLOCK-----\n"
	_, err := splitClearsign(strings.NewReader(input))
	require.Error(t, err)
	require.IsType(t, &UnexpectedOpenPGPHeaderError{}, err)
}
