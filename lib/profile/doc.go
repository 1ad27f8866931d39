// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package profile implements the closed profile registry (§4.F): the
// small set of named policies that tell lib/loader's create/update
// path which hash algorithms to compute, which compression format to
// write, where to split a tree into sub-manifests, and which manifest
// tag a given path gets classified as.
package profile
