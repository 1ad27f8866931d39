// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package openpgp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseVerifyOutputGoodTrustedSignature(t *testing.T) {
	out := []byte(strings.Join([]string{
		"[GNUPG:] NEWSIG",
		"[GNUPG:] GOODSIG ABCDEF1234567890 Alice <alice@example.com>",
		"[GNUPG:] VALIDSIG FPR1234567890FPR1234567890FPR12345 2026-08-06 1754481600 0 4 0 1 2 00 FPR1234567890FPR1234567890FPR12345",
		"[GNUPG:] TRUST_ULTIMATE 0 pgp",
	}, "\n"))

	sigs, err := parseVerifyOutput(out, nil)
	require.NoError(t, err)
	require.Len(t, sigs, 1)
	require.Equal(t, StatusGood, sigs[0].Status)
	require.True(t, sigs[0].ValidSig)
	require.True(t, sigs[0].TrustedSig)

	evaluated, err := evaluate(sigs, true, nil)
	require.NoError(t, err)
	require.Len(t, evaluated, 1)
}

func TestParseVerifyOutputBadSignatureFails(t *testing.T) {
	out := []byte("[GNUPG:] NEWSIG\n[GNUPG:] BADSIG DEADBEEF Alice\n")
	sigs, err := parseVerifyOutput(out, []byte("gpg: Signature verification failed"))
	require.NoError(t, err)

	_, err = evaluate(sigs, true, []byte("bad"))
	require.Error(t, err)
	require.IsType(t, &VerificationFailureError{}, err)
}

func TestParseVerifyOutputNoSignatureIsUnknown(t *testing.T) {
	_, err := parseVerifyOutput([]byte(""), []byte("no data"))
	require.Error(t, err)
	require.IsType(t, &UnknownSigFailureError{}, err)
}

func TestEvaluateUntrustedSignature(t *testing.T) {
	out := []byte(strings.Join([]string{
		"[GNUPG:] NEWSIG",
		"[GNUPG:] GOODSIG ABCDEF1234567890 Alice <alice@example.com>",
		"[GNUPG:] VALIDSIG FPR 2026-08-06 1754481600 0 4 0 1 2 00 FPR",
	}, "\n"))
	sigs, err := parseVerifyOutput(out, nil)
	require.NoError(t, err)

	_, err = evaluate(sigs, true, nil)
	require.Error(t, err)
	require.IsType(t, &UntrustedSigFailureError{}, err)
}

func TestEvaluateBadSignatureFailsWhenNotRequireAllGood(t *testing.T) {
	out := []byte(strings.Join([]string{
		"[GNUPG:] NEWSIG",
		"[GNUPG:] BADSIG DEADBEEF Bob",
	}, "\n"))
	sigs, err := parseVerifyOutput(out, nil)
	require.NoError(t, err)

	// a bad signature always fails, even with requireAllGood=false
	_, err = evaluate(sigs, false, nil)
	require.Error(t, err)
}

func TestParseKeyListing(t *testing.T) {
	out := []byte(strings.Join([]string{
		"pub:u:4096:1:ABCDEF1234567890:1700000000:::u:::escaESCA::::::23::0:",
		"fpr:::::::::1111222233334444555566667777ABCDEF1234567890:",
		"uid:u::::1700000000::HASH::Alice <alice@example.com>::::::::::0:",
	}, "\n"))

	keys, err := parseKeyListing(out)
	require.NoError(t, err)
	require.Len(t, keys, 1)
	for _, uids := range keys {
		require.Equal(t, []string{"alice@example.com"}, uids)
	}
}

func TestParseGPGTimestampVariants(t *testing.T) {
	require.True(t, parseGPGTimestamp("0").IsZero())
	require.Equal(t, 2026, parseGPGTimestamp("1786017600").Year())
	require.Equal(t, 2026, parseGPGTimestamp("20260806T120000").Year())
}
