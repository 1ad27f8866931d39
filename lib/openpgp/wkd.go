// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package openpgp

import (
	"context"
	"crypto/sha1"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gentoo/gemato-go/lib/netutil"
)

// zbase32Alphabet is the alphabet WKD's local-part hashing uses, matching upstream's ZBASE32_TRANSLATE table exactly (it is
// not the RFC 4648 base32 alphabet).
const zbase32Alphabet = "ybndrfg8ejkmcpqxot1uwisza345h769"

// zbase32EncodeSHA1 z-base-32-encodes a SHA-1 digest, 5 bits at a
// time, matching the base32.b32encode(...).translate(...) two-step
// upstream performs.
func zbase32EncodeSHA1(digest [sha1.Size]byte) string {
	var b strings.Builder
	var buffer uint32
	var bits int
	for _, byte_ := range digest {
		buffer = (buffer << 8) | uint32(byte_)
		bits += 8
		for bits >= 5 {
			bits -= 5
			index := (buffer >> uint(bits)) & 0x1F
			b.WriteByte(zbase32Alphabet[index])
		}
	}
	if bits > 0 {
		index := (buffer << uint(5-bits)) & 0x1F
		b.WriteByte(zbase32Alphabet[index])
	}
	return b.String()
}

// wkdURL builds the Web Key Directory "direct" lookup URL for an
// email address, per draft-koch-openpgp-webkey-service. The
// "advanced" form (https://openpgpkey.<domain>/...) is not built.
func wkdURL(email string) (string, error) {
	local, domain, ok := strings.Cut(email, "@")
	if !ok {
		return "", fmt.Errorf("openpgp: %q is not an email address", email)
	}
	digest := sha1.Sum([]byte(strings.ToLower(local)))
	hashed := zbase32EncodeSHA1(digest)
	return fmt.Sprintf("https://%s/.well-known/openpgpkey/hu/%s?l=%s",
		strings.ToLower(domain), hashed, url.QueryEscape(local)), nil
}

// refreshKeysWKD attempts to refresh every key in the keyring via
// WKD, returning true only if every key (every one of its email UIDs
// resolved) was found. Any key without a usable email UID, or any
// fetch failure, is a total failure — the caller falls back to a
// keyserver.
func refreshKeysWKD(ctx context.Context, client *http.Client, r *runner) (bool, error) {
	keys, err := r.listKeys(ctx)
	if err != nil {
		return false, err
	}
	if len(keys) == 0 {
		return false, nil
	}

	addrs := make(map[string]struct{})
	remaining := make(map[string]struct{}, len(keys))
	for fpr, uids := range keys {
		if len(uids) == 0 {
			return false, nil
		}
		remaining[fpr] = struct{}{}
		for _, addr := range uids {
			addrs[addr] = struct{}{}
		}
	}

	var fetched []byte
	for addr := range addrs {
		target, err := wkdURL(addr)
		if err != nil {
			return false, nil
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return false, nil
		}
		resp, err := client.Do(req)
		if err != nil {
			return false, nil
		}
		body, readErr := netutil.ReadResponse(resp.Body)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK || readErr != nil {
			return false, nil
		}
		fetched = append(fetched, body...)
	}

	out, errOut, err := r.gpg(ctx, []string{"--batch", "--import", "--status-fd", "1"}, fetched)
	if err != nil {
		return false, &KeyRefreshError{Detail: string(errOut)}
	}
	for _, fpr := range importedFingerprints(out) {
		if _, expected := remaining[fpr]; expected {
			delete(remaining, fpr)
			continue
		}
		// a key we did not ask for arrived via WKD; drop it
		if _, _, err := r.gpg(ctx, []string{"--batch", "--delete-keys", fpr}, nil); err != nil {
			return false, &KeyRefreshError{Detail: fmt.Sprintf("cleaning up unexpected key %s", fpr)}
		}
	}
	return len(remaining) == 0, nil
}

func defaultWKDClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}
