// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides the one test helper gemato's concurrency
// tests share: a bounded wait for a channel close, so a regression to
// sequential dispatch in a worker pool fails fast instead of hanging
// the test suite.
package testutil

import (
	"fmt"
	"time"
)

// RequireClosed waits for ch to be closed (or to receive a value)
// within timeout, or fails the test. Use this for barrier channels that
// a worker pool test closes once every worker has reached it.
//
//	testutil.RequireClosed(t, allArrived, 2*time.Second, "workers did not overlap")
func RequireClosed(t interface {
	Helper()
	Fatalf(format string, args ...any)
}, ch <-chan struct{}, timeout time.Duration, msgAndArgs ...any) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(timeout):
		t.Fatalf("timed out after %v waiting for channel close: %s", timeout, formatMessage(msgAndArgs))
	}
}

// formatMessage formats optional message arguments into a string.
// Accepts either a single string or a format string followed by args.
func formatMessage(msgAndArgs []any) string {
	if len(msgAndArgs) == 0 {
		return "(no message)"
	}
	if len(msgAndArgs) == 1 {
		if s, ok := msgAndArgs[0].(string); ok {
			return s
		}
		return fmt.Sprintf("%v", msgAndArgs[0])
	}
	if format, ok := msgAndArgs[0].(string); ok {
		return fmt.Sprintf(format, msgAndArgs[1:]...)
	}
	return fmt.Sprintf("%v", msgAndArgs)
}
