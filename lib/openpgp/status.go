// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package openpgp

import (
	"bytes"
	"strings"
	"time"
)

// SignatureStatus is gpg's verdict on a single signature, decoded
// from its machine-readable --status-fd protocol.
type SignatureStatus int

const (
	StatusUnknown SignatureStatus = iota
	StatusGood
	StatusBad
	StatusExpired
	StatusNoPublicKey
	StatusError
	StatusExpiredKey
	StatusRevokedKey
)

// SignatureData describes the outcome of verifying one signature
// within a (possibly multi-signature) OpenPGP message.
type SignatureData struct {
	Fingerprint            string
	Timestamp               time.Time
	ExpireTimestamp         time.Time
	PrimaryKeyFingerprint   string
	Status                  SignatureStatus
	ValidSig                bool
	TrustedSig              bool
}

// parseGPGTimestamp decodes a gpg status-line timestamp, which is
// either a Unix time_t or an ISO-8601-ish %Y%m%dT%H%M%S value, or "0"
// for "no timestamp".
func parseGPGTimestamp(raw string) time.Time {
	if raw == "0" || raw == "" {
		return time.Time{}
	}
	if strings.Contains(raw, "T") {
		t, err := time.Parse("20060102T150405", raw)
		if err != nil {
			return time.Time{}
		}
		return t
	}
	var seconds int64
	for _, c := range raw {
		if c < '0' || c > '9' {
			return time.Time{}
		}
		seconds = seconds*10 + int64(c-'0')
	}
	return time.Unix(seconds, 0).UTC()
}

// parseVerifyOutput decodes gpg's --status-fd=1 --batch --verify
// output into one SignatureData per NEWSIG block, matching upstream
// gemato's _process_gpg_verify_output state machine field-for-field.
func parseVerifyOutput(out, stderr []byte) ([]SignatureData, error) {
	var sigs []SignatureData
	cur := func() *SignatureData {
		if len(sigs) == 0 {
			return nil
		}
		return &sigs[len(sigs)-1]
	}

	for _, line := range bytes.Split(out, []byte("\n")) {
		switch {
		case bytes.HasPrefix(line, []byte("[GNUPG:] NEWSIG")):
			sigs = append(sigs, SignatureData{})

		case bytes.HasPrefix(line, []byte("[GNUPG:] GOODSIG")):
			if s := cur(); s != nil {
				s.Status = StatusGood
			}

		case bytes.HasPrefix(line, []byte("[GNUPG:] BADSIG")):
			if s := cur(); s != nil {
				s.Status = StatusBad
			}

		case bytes.HasPrefix(line, []byte("[GNUPG:] EXPSIG")):
			if s := cur(); s != nil {
				s.Status = StatusExpired
			}

		case bytes.HasPrefix(line, []byte("[GNUPG:] ERRSIG")):
			if s := cur(); s != nil {
				fields := bytes.Fields(line)
				if len(fields) >= 8 && string(fields[7]) == "9" {
					s.Status = StatusNoPublicKey
				} else {
					s.Status = StatusError
				}
			}

		case bytes.HasPrefix(line, []byte("[GNUPG:] EXPKEYSIG")):
			if s := cur(); s != nil {
				s.Status = StatusExpiredKey
			}

		case bytes.HasPrefix(line, []byte("[GNUPG:] REVKEYSIG")):
			if s := cur(); s != nil {
				s.Status = StatusRevokedKey
			}

		case bytes.HasPrefix(line, []byte("[GNUPG:] VALIDSIG")):
			if s := cur(); s != nil {
				fields := bytes.Fields(line)
				if len(fields) >= 12 {
					s.ValidSig = true
					s.Fingerprint = string(fields[2])
					s.Timestamp = parseGPGTimestamp(string(fields[4]))
					s.ExpireTimestamp = parseGPGTimestamp(string(fields[5]))
					s.PrimaryKeyFingerprint = string(fields[11])
				}
			}

		case bytes.HasPrefix(line, []byte("[GNUPG:] TRUST_")):
			if s := cur(); s != nil {
				fields := bytes.Fields(line)
				if len(fields) >= 2 {
					switch string(fields[1]) {
					case "TRUST_MARGINAL", "TRUST_FULL", "TRUST_ULTIMATE":
						s.TrustedSig = true
					}
				}
			}
		}
	}

	if len(sigs) == 0 {
		return nil, &UnknownSigFailureError{Detail: string(stderr)}
	}
	return sigs, nil
}

// evaluate applies gemato's accept/reject rules to a parsed signature
// list: a single bad signature always fails; otherwise, if
// requireAllGood is false, one good-valid-trusted signature is
// sufficient, else every signature must be good, valid, and trusted.
func evaluate(sigs []SignatureData, requireAllGood bool, stderr []byte) ([]SignatureData, error) {
	detail := string(stderr)

	for _, sig := range sigs {
		if sig.Status == StatusBad {
			return nil, &VerificationFailureError{Detail: detail, Sig: sig}
		}
	}

	if !requireAllGood {
		for _, sig := range sigs {
			if sig.Status == StatusGood && sig.ValidSig && sig.TrustedSig {
				return sigs, nil
			}
		}
	}

	for _, sig := range sigs {
		switch sig.Status {
		case StatusGood:
			// fall through to the valid/trusted checks below
		case StatusExpired, StatusNoPublicKey, StatusError:
			return nil, &VerificationFailureError{Detail: detail, Sig: sig}
		case StatusExpiredKey:
			return nil, &ExpiredKeyFailureError{Detail: detail, Sig: sig}
		case StatusRevokedKey:
			return nil, &RevokedKeyFailureError{Detail: detail, Sig: sig}
		default:
			return nil, &UnknownSigFailureError{Detail: detail}
		}
		if !sig.ValidSig {
			return nil, &UnknownSigFailureError{Detail: detail}
		}
		if !sig.TrustedSig {
			return nil, &UntrustedSigFailureError{Detail: detail, Sig: sig}
		}
	}

	return sigs, nil
}
