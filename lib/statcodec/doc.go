// Copyright 2026 The Burrow Authors
// SPDX-License-Identifier: Apache-2.0

// Package statcodec encodes and decodes the per-path metadata record
// (kind, size, content-log byte range, mode, ownership, timestamps)
// stored as the value in a drive's path index.
//
// Encoding goes through lib/codec's CBOR Core Deterministic
// configuration with keyasint struct tags, so the wire format is
// stable and forward-compatible: a decoder built against a newer field
// set silently ignores fields it doesn't recognize.
//
// [NewFile] and [NewDirectory] apply the timestamp and ownership
// defaults a drive uses when it doesn't have caller-supplied overrides
// for a given field, taking a [clock.Clock] so tests can inject
// deterministic mtimes rather than depending on wall-clock time.
package statcodec
