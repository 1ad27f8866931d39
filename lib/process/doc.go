// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides the gemato binary's entrypoint error
// handler: report an error to stderr and exit with the process code
// the error carries, or 1 if it carries none. Centralized so main()
// stays a two-line dispatch to cmd/gemato/commands.
package process
