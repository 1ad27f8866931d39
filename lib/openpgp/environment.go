// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package openpgp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// gnupgBinary and gnupgconfBinary name the subprocess this package
// shells out to. Both are overridable via environment variables, the
// same override upstream gemato honors.
var (
	gnupgBinary     = envOr("GNUPG", "gpg")
	gnupgconfBinary = envOr("GNUPGCONF", "gpgconf")
)

func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

// Environment is the OpenPGP verification envelope: every operation
// that needs to consult a keyring or invoke gpg goes through one of
// these, never directly.
type Environment interface {
	// VerifyClearsigned verifies a clearsigned OpenPGP message,
	// returning the per-signature outcomes. require_all_good (the
	// upstream term) controls whether every signature present must be
	// good and trusted, or just one.
	VerifyClearsigned(ctx context.Context, data []byte, requireAllGood bool) ([]SignatureData, error)

	// VerifyDetached verifies dataPath against a detached signature
	// at signaturePath.
	VerifyDetached(ctx context.Context, signaturePath, dataPath string, requireAllGood bool) ([]SignatureData, error)

	// ClearSign produces a clearsigned copy of data, signed by keyID
	// (or the default key if keyID is empty). passphrase unlocks the
	// signing key via --pinentry-mode loopback when the key is
	// passphrase-protected; pass nil to rely on gpg-agent or an
	// unprotected key.
	ClearSign(ctx context.Context, data []byte, keyID string, passphrase []byte) ([]byte, error)

	// ImportKey imports a public key. When trust is true, the
	// imported fingerprints are marked ultimately trusted.
	ImportKey(ctx context.Context, keyData []byte, trust bool) error

	// ListKeys returns every key fingerprint in the keyring mapped to
	// its email-address user IDs.
	ListKeys(ctx context.Context) (map[string][]string, error)

	// RefreshKeys updates the keyring's keys from their keyservers
	// (falling back from WKD to a keyserver, per gemato's policy) so
	// that revocations are honored.
	RefreshKeys(ctx context.Context, allowWKD bool, keyserver string) error

	// Close releases any resources (notably, the isolated GNUPGHOME).
	Close() error
}

// runner is the subprocess boundary shared by System and Isolated: it
// invokes gpg/gpgconf with a given GNUPGHOME override and returns the
// captured stdout/stderr, in the idiom of a wrapped exec.CommandContext
// call with both streams captured separately.
type runner struct {
	gnupgHome string // empty means the ambient GNUPGHOME/~/.gnupg
	proxy     string
}

func (r *runner) spawn(ctx context.Context, argv []string, stdin []byte) (stdout, stderr []byte, exitErr error) {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Env = append(os.Environ(), "TZ=UTC")
	if r.gnupgHome != "" {
		cmd.Env = append(cmd.Env, "GNUPGHOME="+r.gnupgHome)
	}
	if r.proxy != "" {
		cmd.Env = append(cmd.Env, "http_proxy="+r.proxy)
	}

	cmd.Stdin = bytes.NewReader(stdin)
	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	err := cmd.Run()
	if errors.Is(err, exec.ErrNotFound) {
		return nil, nil, &NoImplementationError{Detail: fmt.Sprintf("install %s", argv[0])}
	}
	return out.Bytes(), errBuf.Bytes(), err
}

func (r *runner) gpg(ctx context.Context, args []string, stdin []byte) (stdout, stderr []byte, exitErr error) {
	return r.spawn(ctx, append([]string{gnupgBinary}, args...), stdin)
}

func (r *runner) verify(ctx context.Context, args []string, stdin []byte, requireAllGood bool) ([]SignatureData, error) {
	out, errOut, runErr := r.gpg(ctx, append([]string{"--batch", "--status-fd", "1", "--verify"}, args...), stdin)
	if _, ok := runErr.(*NoImplementationError); ok {
		return nil, runErr
	}
	sigs, err := parseVerifyOutput(out, errOut)
	if err != nil {
		return nil, err
	}
	return evaluate(sigs, requireAllGood, errOut)
}

func (r *runner) clearSign(ctx context.Context, data []byte, keyID string, passphrase []byte) ([]byte, error) {
	args := []string{"--batch", "--clearsign"}
	if keyID != "" {
		args = append(args, "--local-user", keyID)
	}

	if len(passphrase) > 0 {
		passFile, cleanup, err := writePassphraseFile(passphrase)
		if err != nil {
			return nil, &SigningFailureError{Detail: err.Error()}
		}
		defer cleanup()
		args = append(args, "--pinentry-mode", "loopback", "--passphrase-file", passFile)
	}

	out, errOut, err := r.gpg(ctx, args, data)
	if _, ok := err.(*NoImplementationError); ok {
		return nil, err
	}
	if err != nil {
		return nil, &SigningFailureError{Detail: string(errOut)}
	}
	return out, nil
}

// writePassphraseFile stages a signing key passphrase in a private
// temp file, since gpg's --passphrase-file wants a real path rather
// than a pipe. The caller must call cleanup once gpg has exited.
func writePassphraseFile(passphrase []byte) (path string, cleanup func(), err error) {
	f, err := os.CreateTemp("", "gemato-passphrase.")
	if err != nil {
		return "", nil, err
	}
	name := f.Name()
	cleanup = func() { os.Remove(name) }

	if err := f.Chmod(0o600); err != nil {
		f.Close()
		cleanup()
		return "", nil, err
	}
	if _, err := f.Write(passphrase); err != nil {
		f.Close()
		cleanup()
		return "", nil, err
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, err
	}
	return name, cleanup, nil
}

func (r *runner) importKey(ctx context.Context, keyData []byte, trust bool) error {
	out, errOut, err := r.gpg(ctx, []string{"--batch", "--import", "--status-fd", "1"}, keyData)
	if nie, ok := err.(*NoImplementationError); ok {
		return nie
	}
	if err != nil {
		return &KeyImportError{Detail: string(errOut)}
	}

	if !trust {
		return nil
	}
	fingerprints := importedFingerprints(out)
	if len(fingerprints) == 0 {
		return nil
	}
	var ownertrust bytes.Buffer
	for _, fpr := range fingerprints {
		fmt.Fprintf(&ownertrust, "%s:6:\n", fpr)
	}
	_, errOut, err = r.gpg(ctx, []string{"--batch", "--import-ownertrust"}, ownertrust.Bytes())
	if err != nil {
		return &KeyImportError{Detail: string(errOut)}
	}
	return nil
}

func importedFingerprints(out []byte) []string {
	var fprs []string
	for _, line := range bytes.Split(out, []byte("\n")) {
		if !bytes.HasPrefix(line, []byte("[GNUPG:] IMPORT_OK")) {
			continue
		}
		fields := bytes.Fields(line)
		if len(fields) >= 4 {
			fprs = append(fprs, string(fields[3]))
		}
	}
	return fprs
}

func (r *runner) listKeys(ctx context.Context) (map[string][]string, error) {
	out, errOut, err := r.gpg(ctx, []string{"--batch", "--with-colons", "--list-keys"}, nil)
	if nie, ok := err.(*NoImplementationError); ok {
		return nil, nie
	}
	if err != nil {
		return nil, &KeyListingError{Detail: string(errOut)}
	}
	return parseKeyListing(out)
}

func parseKeyListing(out []byte) (map[string][]string, error) {
	result := make(map[string][]string)
	var pendingKeyID string
	var currentFPR string

	for _, line := range bytes.Split(out, []byte("\n")) {
		fields := bytes.Split(line, []byte(":"))
		if len(fields) == 0 {
			continue
		}
		switch string(fields[0]) {
		case "pub":
			if len(fields) > 4 {
				pendingKeyID = string(fields[4])
			}
		case "fpr":
			if pendingKeyID == "" {
				continue
			}
			if len(fields) <= 9 {
				return nil, &KeyListingError{Detail: "fpr record missing fingerprint field"}
			}
			fpr := string(fields[9])
			if len(fpr) < len(pendingKeyID) || fpr[len(fpr)-len(pendingKeyID):] != pendingKeyID {
				return nil, &KeyListingError{Detail: fmt.Sprintf("incorrect fingerprint %s for key %s", fpr, pendingKeyID)}
			}
			currentFPR = fpr
			result[currentFPR] = nil
			pendingKeyID = ""
		case "uid":
			if currentFPR == "" || len(fields) <= 9 {
				continue
			}
			addr := extractEmail(string(fields[9]))
			if addr != "" {
				result[currentFPR] = append(result[currentFPR], addr)
			}
		}
	}
	return result, nil
}

func extractEmail(uid string) string {
	start := bytes.IndexByte([]byte(uid), '<')
	end := bytes.IndexByte([]byte(uid), '>')
	if start < 0 || end < 0 || end <= start {
		return ""
	}
	return uid[start+1 : end]
}
