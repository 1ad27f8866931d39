// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package openpgp

import "context"

// System is the OpenPGP environment backed by the caller's ambient
// keyring (GNUPGHOME, or gpg's default ~/.gnupg if unset). Use it
// when the caller's own configuration — trust settings, keyserver
// preferences — should govern verification.
type System struct {
	r runner
}

// NewSystem constructs a System environment. proxy, if non-empty, is
// passed to gpg as http_proxy for keyserver/WKD operations.
func NewSystem(proxy string) *System {
	return &System{r: runner{proxy: proxy}}
}

func (s *System) VerifyClearsigned(ctx context.Context, data []byte, requireAllGood bool) ([]SignatureData, error) {
	return s.r.verify(ctx, nil, data, requireAllGood)
}

func (s *System) VerifyDetached(ctx context.Context, signaturePath, dataPath string, requireAllGood bool) ([]SignatureData, error) {
	return s.r.verify(ctx, []string{signaturePath, dataPath}, nil, requireAllGood)
}

func (s *System) ClearSign(ctx context.Context, data []byte, keyID string, passphrase []byte) ([]byte, error) {
	return s.r.clearSign(ctx, data, keyID, passphrase)
}

func (s *System) ImportKey(ctx context.Context, keyData []byte, trust bool) error {
	return s.r.importKey(ctx, keyData, trust)
}

func (s *System) ListKeys(ctx context.Context) (map[string][]string, error) {
	return s.r.listKeys(ctx)
}

func (s *System) RefreshKeys(ctx context.Context, allowWKD bool, keyserver string) error {
	return refreshKeys(ctx, &s.r, allowWKD, keyserver)
}

func (s *System) Close() error { return nil }

// refreshKeys implements the System/Isolated-shared policy: try WKD
// first (if allowed), and fall back to a keyserver refresh whenever
// WKD does not recover every key.
func refreshKeys(ctx context.Context, r *runner, allowWKD bool, keyserver string) error {
	if allowWKD {
		ok, err := refreshKeysWKD(ctx, defaultWKDClient(), r)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}

	args := []string{"--batch", "--refresh-keys"}
	if keyserver != "" {
		args = append(args, "--keyserver", keyserver)
	}
	_, errOut, err := r.gpg(ctx, args, nil)
	if nie, ok := err.(*NoImplementationError); ok {
		return nie
	}
	if err != nil {
		return &KeyRefreshError{Detail: string(errOut)}
	}
	return nil
}
