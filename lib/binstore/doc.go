// Copyright 2026 The Burrow Authors
// SPDX-License-Identifier: Apache-2.0

// Package binstore binds a log's abstract storage requirement — a
// randomly addressable, growable byte store — to a concrete backend.
//
// A log never opens files itself. It is handed a [Storage] value and
// only ever calls ReadAt, WriteAt, Truncate, Size, Sync, and Close on
// it. [Bind] accepts the three shapes a caller may pass when opening a
// drive: a folder path (the common case, producing one file per log
// under metadata/ and content/ subdirectories), a [Factory] function
// (the caller names storage handles itself, still through this
// package's naming convention), or a fully assembled [Descriptor] (for
// callers that want distinct backends per log, e.g. metadata on local
// disk and content on a remote block store).
//
// The default [Factory] returned for a folder path opens ordinary
// files with [FileStorage], taking an exclusive advisory flock on each
// so two processes cannot open the same writable drive folder at once.
package binstore
