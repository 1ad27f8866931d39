// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package openpgp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Isolated is an OpenPGP environment backed by a throwaway GNUPGHOME,
// so verification results do not depend on the invoking user's own
// keyring or trust settings. This is the environment the gemato
// command's openEnvironment builds: reproducible verification
// independent of ambient configuration (§4.E). lib/loader itself does
// not construct an Environment; it calls the WithOpenPGPVerify hook.
type Isolated struct {
	r     runner
	debug bool
}

// NewIsolated creates a fresh, empty GNUPGHOME and returns an
// Environment backed by it. The caller must call Close to remove the
// temporary directory.
func NewIsolated(proxy string, debug bool) (*Isolated, error) {
	home, err := os.MkdirTemp("", "gemato.")
	if err != nil {
		return nil, fmt.Errorf("openpgp: creating isolated GNUPGHOME: %w", err)
	}

	if err := writeIsolatedConfig(home); err != nil {
		os.RemoveAll(home)
		return nil, err
	}

	return &Isolated{r: runner{gnupgHome: home, proxy: proxy}, debug: debug}, nil
}

func writeIsolatedConfig(home string) error {
	files := map[string]string{
		"dirmngr.conf": fmt.Sprintf(`# autogenerated by gemato

# honor the caller's http_proxy setting
honor-http-proxy

log-file %s
debug-level guru
`, filepath.Join(home, "dirmngr.log")),
		"gpg.conf": `# autogenerated by gemato

# validity is set directly on keys, not derived from a web of trust
trust-model direct
`,
		"gpg-agent.conf": fmt.Sprintf(`# autogenerated by gemato

# no smartcard access from an isolated, disposable environment
disable-scdaemon

log-file %s
debug-level guru
`, filepath.Join(home, "gpg-agent.log")),
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(home, name), []byte(content), 0o600); err != nil {
			return fmt.Errorf("openpgp: writing %s: %w", name, err)
		}
	}
	return nil
}

func (e *Isolated) VerifyClearsigned(ctx context.Context, data []byte, requireAllGood bool) ([]SignatureData, error) {
	return e.r.verify(ctx, nil, data, requireAllGood)
}

func (e *Isolated) VerifyDetached(ctx context.Context, signaturePath, dataPath string, requireAllGood bool) ([]SignatureData, error) {
	return e.r.verify(ctx, []string{signaturePath, dataPath}, nil, requireAllGood)
}

func (e *Isolated) ClearSign(ctx context.Context, data []byte, keyID string, passphrase []byte) ([]byte, error) {
	return e.r.clearSign(ctx, data, keyID, passphrase)
}

func (e *Isolated) ImportKey(ctx context.Context, keyData []byte, trust bool) error {
	return e.r.importKey(ctx, keyData, trust)
}

func (e *Isolated) ListKeys(ctx context.Context) (map[string][]string, error) {
	return e.r.listKeys(ctx)
}

func (e *Isolated) RefreshKeys(ctx context.Context, allowWKD bool, keyserver string) error {
	return refreshKeys(ctx, &e.r, allowWKD, keyserver)
}

// Close kills any gpg-agent/dirmngr spawned inside this GNUPGHOME and
// removes the temporary directory, unless debug is set, in which case
// the directory is left in place for inspection.
func (e *Isolated) Close() error {
	if e.r.gnupgHome == "" {
		return nil
	}
	ctx := context.Background()
	e.r.spawn(ctx, []string{gnupgconfBinary, "--kill", "all"}, nil)

	if e.debug {
		return nil
	}
	home := e.r.gnupgHome
	e.r.gnupgHome = ""
	return os.RemoveAll(home)
}
