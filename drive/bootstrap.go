// Copyright 2026 The Burrow Authors
// SPDX-License-Identifier: Apache-2.0

package drive

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"

	"github.com/burrowfs/burrow/lib/codec"
	"github.com/burrowfs/burrow/lib/feed"
	"github.com/burrowfs/burrow/lib/kdf"
	"github.com/burrowfs/burrow/lib/trie"
)

// bootstrapFresh runs the Start / Metadata ready / Done sequence for a
// drive constructed via [Open] (as opposed to [Drive.Checkout], which
// bypasses bootstrap entirely). Bootstrap runs exactly once: its
// result is cached in d.bootstrap and replayed to every subsequent
// awaiter.
func (d *Drive) bootstrapFresh(opts Options) error {
	err := d.runBootstrap(opts)
	d.bootstrap.resolve(struct{}{}, err)
	if err != nil {
		d.events.publish(Event{Kind: EventError, Err: err})
		return err
	}
	d.events.publish(Event{Kind: EventReady})
	go d.forwardMetadataAppends()
	return nil
}

func (d *Drive) runBootstrap(opts Options) error {
	publicKey, secretKey, err := resolveMetadataKeypair(opts)
	if err != nil {
		return &BootstrapError{Cause: err}
	}

	metadataStorage, err := d.descriptor.Metadata("feed", secretKey != nil)
	if err != nil {
		return &BootstrapError{Cause: fmt.Errorf("opening metadata storage: %w", err)}
	}
	metadataFeed, err := feed.Open(metadataStorage, publicKey, secretKey)
	if err != nil {
		return &BootstrapError{Cause: fmt.Errorf("opening metadata log: %w", err)}
	}
	d.metadataFeed = metadataFeed

	if metadataFeed.Writable() && metadataFeed.Length() == 0 {
		return d.bootstrapFreshWritable()
	}
	return d.bootstrapRestore()
}

// resolveMetadataKeypair fills in a freshly generated keypair when the
// caller supplied neither key, so Open() with a zero-value Options
// always creates a brand new writable drive.
func resolveMetadataKeypair(opts Options) (ed25519.PublicKey, ed25519.PrivateKey, error) {
	if opts.PublicKey != nil {
		return opts.PublicKey, opts.SecretKey, nil
	}
	if opts.SecretKey != nil {
		return opts.SecretKey.Public().(ed25519.PublicKey), opts.SecretKey, nil
	}
	public, private, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("generating metadata keypair: %w", err)
	}
	return public, private, nil
}

// bootstrapFreshWritable handles a metadata log that is writable and
// empty: this drive is minting a brand new content log and writing
// the header that binds the two together.
func (d *Drive) bootstrapFreshWritable() error {
	contentPublic, contentPrivate, err := kdf.DeriveContentKeypair(d.metadataFeed.SecretKey())
	if err != nil {
		return &BootstrapError{Cause: fmt.Errorf("deriving content keypair: %w", err)}
	}

	contentStorage, err := d.descriptor.Content("feed", true)
	if err != nil {
		return &BootstrapError{Cause: fmt.Errorf("opening content storage: %w", err)}
	}
	contentFeed, err := feed.Open(contentStorage, contentPublic, contentPrivate)
	if err != nil {
		return &BootstrapError{Cause: fmt.Errorf("opening content log: %w", err)}
	}

	idx, err := trie.Open(d.metadataFeed)
	if err != nil {
		return &BootstrapError{Cause: fmt.Errorf("opening index: %w", err)}
	}
	header, err := codec.Marshal(headerV1{ContentKey: contentFeed.Key()})
	if err != nil {
		return &BootstrapError{Cause: fmt.Errorf("encoding header: %w", err)}
	}
	if err := idx.WriteHeader(header); err != nil {
		return &BootstrapError{Cause: fmt.Errorf("writing header: %w", err)}
	}

	d.index = idx
	d.setContentFeed(contentFeed)
	return nil
}

// bootstrapRestore handles every mode other than fresh-writable: an
// existing metadata log, opened either writable (this caller can
// recover the content log's secret key too) or read-only (the content
// log's public key must come from the header).
func (d *Drive) bootstrapRestore() error {
	idx, err := trie.Open(d.metadataFeed)
	if err != nil {
		return &BootstrapError{Cause: fmt.Errorf("opening index: %w", err)}
	}
	d.index = idx

	if d.metadataFeed.Writable() {
		contentPublic, contentPrivate, err := kdf.DeriveContentKeypair(d.metadataFeed.SecretKey())
		if err != nil {
			return &BootstrapError{Cause: fmt.Errorf("deriving content keypair: %w", err)}
		}
		contentStorage, err := d.descriptor.Content("feed", true)
		if err != nil {
			return &BootstrapError{Cause: fmt.Errorf("opening content storage: %w", err)}
		}
		contentFeed, err := feed.Open(contentStorage, contentPublic, contentPrivate)
		if err != nil {
			return &BootstrapError{Cause: fmt.Errorf("opening content log: %w", err)}
		}
		d.setContentFeed(contentFeed)
		return nil
	}

	header, ok := idx.GetMetadata()
	if !ok {
		return &BootstrapError{Cause: fmt.Errorf("metadata log has no header yet")}
	}
	var decoded headerV1
	if err := codec.Unmarshal(header, &decoded); err != nil {
		return &BootstrapError{Cause: fmt.Errorf("decoding header: %w", err)}
	}
	contentStorage, err := d.descriptor.Content("feed", false)
	if err != nil {
		return &BootstrapError{Cause: fmt.Errorf("opening content storage: %w", err)}
	}
	contentFeed, err := feed.Open(contentStorage, ed25519.PublicKey(decoded.ContentKey), nil)
	if err != nil {
		return &BootstrapError{Cause: fmt.Errorf("opening content log read-only: %w", err)}
	}
	d.setContentFeed(contentFeed)
	return nil
}

func (d *Drive) setContentFeed(f *feed.Feed) {
	d.contentMu.Lock()
	d.contentFeed = f
	d.contentMu.Unlock()
	d.content.resolve(struct{}{}, nil)
	d.events.publish(Event{Kind: EventContent})
}

// forwardMetadataAppends republishes every metadata-log append as a
// drive-level update event and catches the index up when the append
// arrived through replication rather than a local Put/Del (which
// already updated the index synchronously before this goroutine sees
// the corresponding AppendEvent).
func (d *Drive) forwardMetadataAppends() {
	events := d.metadataFeed.Subscribe()
	for {
		select {
		case <-events:
			if err := d.index.ApplyRemoteOperations(); err != nil {
				d.logger.Error("drive: applying replicated metadata operations", "error", err)
				continue
			}
			d.events.publish(Event{Kind: EventUpdate})
		case <-d.stopCh:
			return
		}
	}
}
