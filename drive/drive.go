// Copyright 2026 The Burrow Authors
// SPDX-License-Identifier: Apache-2.0

// Package drive binds a metadata log and a content log into one
// versioned, peer-to-peer filesystem: the metadata log carries a
// persistent path index, the content log carries raw file bytes, and
// a Drive coordinates the two under a single append mutex.
//
// A Drive is obtained by calling [Open]. The metadata and content logs
// are opened, restored, or freshly created depending on what the
// caller passes in [Options] and what the storage already holds;
// bootstrap runs exactly once per instance and its result is cached
// and replayed to every operation.
package drive

import (
	"crypto/ed25519"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/burrowfs/burrow/lib/binstore"
	"github.com/burrowfs/burrow/lib/clock"
	"github.com/burrowfs/burrow/lib/feed"
	"github.com/burrowfs/burrow/lib/trie"
)

// Options configures [Open].
type Options struct {
	// Storage is passed to binstore.Bind: a folder path, a
	// binstore.Factory, or a binstore.Descriptor.
	Storage any

	// PublicKey and SecretKey identify the metadata log to open. Both
	// nil creates a brand new drive with a freshly generated keypair.
	// PublicKey alone opens an existing drive read-only. Both set opens
	// (or restores) a drive this caller can write to.
	PublicKey ed25519.PublicKey
	SecretKey ed25519.PrivateKey

	Clock  clock.Clock
	Logger *slog.Logger
}

// headerV1 is the metadata log's block 0: the content log's public
// key, opaque to every consumer except this package.
type headerV1 struct {
	ContentKey []byte `cbor:"1,keyasint"`
}

// Drive coordinates a metadata log and a content log into one
// filesystem. The zero value is not usable; construct with [Open].
type Drive struct {
	clk    clock.Clock
	logger *slog.Logger

	descriptor binstore.Descriptor

	metadataFeed *feed.Feed
	index        *trie.Index

	contentMu   sync.RWMutex
	contentFeed *feed.Feed

	appendMu sync.Mutex

	bootstrap *onceResult[struct{}]
	content   *onceResult[struct{}]

	events eventBus
	stopCh chan struct{}

	// closesLogs is false for a checkout: the checkout shares the
	// parent's logs by reference and must never close them out from
	// under the parent.
	closesLogs bool
}

// Open opens or creates a drive per opts. It blocks until bootstrap
// completes (metadata log opened, content log opened or scheduled to
// open, index replayed) and returns the first bootstrap error, if any.
func Open(opts Options) (*Drive, error) {
	clk := opts.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	descriptor, err := binstore.Bind(opts.Storage)
	if err != nil {
		return nil, &BootstrapError{Cause: fmt.Errorf("binding storage: %w", err)}
	}

	d := &Drive{
		clk:        clk,
		logger:     logger,
		descriptor: descriptor,
		bootstrap:  newOnceResult[struct{}](),
		content:    newOnceResult[struct{}](),
		stopCh:     make(chan struct{}),
		closesLogs: true,
	}

	if err := d.bootstrapFresh(opts); err != nil {
		return nil, err
	}
	return d, nil
}

// Key returns the drive's public key. Valid only after bootstrap
// completes; callers that construct a Drive via [Open] always see a
// resolved key since Open blocks on bootstrap.
func (d *Drive) Key() ed25519.PublicKey { return d.metadataFeed.Key() }

// DiscoveryKey returns the public rendezvous tag for this drive.
func (d *Drive) DiscoveryKey() [32]byte { return d.metadataFeed.DiscoveryKey() }

// Writable reports whether this drive holds the metadata log's secret
// key.
func (d *Drive) Writable() bool { return d.metadataFeed.Writable() }

// SecretKey returns the drive's secret key, or nil if it was opened
// read-only. Used by callers that need to persist the key to reopen
// the drive writable later; the coordinator itself never logs it.
func (d *Drive) SecretKey() ed25519.PrivateKey { return d.metadataFeed.SecretKey() }

// Version returns the number of index mutations applied so far. Pass
// to [Drive.Checkout] to pin a historical view.
func (d *Drive) Version() int { return d.index.Version() }

// Subscribe returns a channel of drive-level events. The channel is
// buffered; a slow subscriber misses events rather than stalling the
// drive.
func (d *Drive) Subscribe() <-chan Event { return d.events.subscribe() }

// awaitReady blocks until bootstrap completes.
func (d *Drive) awaitReady() error {
	_, err := d.bootstrap.await()
	return err
}

// awaitContent blocks until the content log is available.
func (d *Drive) awaitContent() error {
	_, err := d.content.await()
	return err
}

// Close closes the metadata log and, if present, the content log. A
// checkout drive shares both logs with its parent and never closes
// them. Calling Close again after the first call returns nil.
func (d *Drive) Close() error {
	select {
	case <-d.stopCh:
		return nil
	default:
		close(d.stopCh)
	}
	if !d.closesLogs {
		return nil
	}
	if err := d.metadataFeed.Close(); err != nil {
		return fmt.Errorf("drive: closing metadata log: %w", err)
	}
	d.contentMu.RLock()
	contentFeed := d.contentFeed
	d.contentMu.RUnlock()
	if contentFeed != nil {
		if err := contentFeed.Close(); err != nil {
			return fmt.Errorf("drive: closing content log: %w", err)
		}
	}
	return nil
}
