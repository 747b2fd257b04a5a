// Copyright 2026 The Burrow Authors
// SPDX-License-Identifier: Apache-2.0

package drive

import (
	"errors"
	"fmt"
)

// FileNotFoundError is returned by read, stat, unlink, or read_stream
// operations on a path that has no index entry.
type FileNotFoundError struct {
	Path string
}

func (err *FileNotFoundError) Error() string {
	return fmt.Sprintf("drive: file not found: %s", err.Path)
}

// DirectoryNotEmptyError is returned by rmdir when the directory has
// at least one child entry.
type DirectoryNotEmptyError struct {
	Path string
}

func (err *DirectoryNotEmptyError) Error() string {
	return fmt.Sprintf("drive: directory not empty: %s", err.Path)
}

// InvalidCheckoutError reports a checkout that cannot be built:
// [Drive.Checkout] returns it when the index cannot produce a snapshot
// at the requested version.
type InvalidCheckoutError struct {
	Reason string
}

func (err *InvalidCheckoutError) Error() string {
	return fmt.Sprintf("drive: invalid checkout: %s", err.Reason)
}

// BootstrapError wraps the first failure encountered during bootstrap.
// It is cached and returned verbatim to every subsequent caller.
type BootstrapError struct {
	Cause error
}

func (err *BootstrapError) Error() string {
	return fmt.Sprintf("drive: bootstrap failed: %v", err.Cause)
}

func (err *BootstrapError) Unwrap() error { return err.Cause }

// StreamError wraps an underlying log stream failure surfaced on a
// user-facing read or write stream.
type StreamError struct {
	Cause error
}

func (err *StreamError) Error() string {
	return fmt.Sprintf("drive: stream error: %v", err.Cause)
}

func (err *StreamError) Unwrap() error { return err.Cause }

// IsFileNotFound reports whether err is (or wraps) a FileNotFoundError.
func IsFileNotFound(err error) bool {
	var target *FileNotFoundError
	return errors.As(err, &target)
}

// IsDirectoryNotEmpty reports whether err is (or wraps) a
// DirectoryNotEmptyError.
func IsDirectoryNotEmpty(err error) bool {
	var target *DirectoryNotEmptyError
	return errors.As(err, &target)
}

// IsInvalidCheckout reports whether err is (or wraps) an
// InvalidCheckoutError.
func IsInvalidCheckout(err error) bool {
	var target *InvalidCheckoutError
	return errors.As(err, &target)
}
