// Copyright 2026 The Burrow Authors
// SPDX-License-Identifier: Apache-2.0

package feed

import (
	"crypto/ed25519"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/burrowfs/burrow/lib/binstore"
	"github.com/burrowfs/burrow/lib/codec"
	"github.com/burrowfs/burrow/lib/kdf"
)

// blockRef locates a stored block's payload within the backing
// storage, independent of the framing (the 4-byte length prefix is
// not included in offset/length).
type blockRef struct {
	physicalOffset int64
	length         uint32
}

// AppendEvent is delivered to subscribers when a block is appended,
// whether appended locally through [Feed.Append] or received from a
// peer during replication.
type AppendEvent struct {
	Index int
}

// Feed is an append-only, Ed25519-signed, Merkle-linked log of binary
// blocks. See the package doc for the on-storage layout.
type Feed struct {
	storage binstore.Storage
	public  ed25519.PublicKey
	private ed25519.PrivateKey // nil for a read-only feed

	mu             sync.RWMutex
	blocks         []blockRef
	leaves         [][32]byte
	blockByteStart []int64
	byteLength     int64
	physicalSize   int64

	subMu       sync.Mutex
	subscribers []chan AppendEvent
}

// Open opens a feed over storage, reconstructing its in-memory index
// by scanning any blocks already present. An empty (freshly created)
// storage handle yields a feed of length zero, so Open serves both the
// "create" and "restore" cases the caller's log implementation needs.
//
// private may be nil, producing a read-only feed: [Feed.Append] then
// fails, but [Feed.Get], [Feed.CreateReadStream], and replication
// receipt still work.
func Open(storage binstore.Storage, public ed25519.PublicKey, private ed25519.PrivateKey) (*Feed, error) {
	if len(public) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("feed: public key must be %d bytes, got %d", ed25519.PublicKeySize, len(public))
	}

	size, err := storage.Size()
	if err != nil {
		return nil, fmt.Errorf("feed: reading storage size: %w", err)
	}

	f := &Feed{storage: storage, public: public, private: private}

	var cursor int64
	for cursor < size {
		var lengthPrefix [4]byte
		if _, err := storage.ReadAt(lengthPrefix[:], cursor); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("feed: reading block header at offset %d: %w", cursor, err)
		}
		blockLength := binary.BigEndian.Uint32(lengthPrefix[:])
		if cursor+4+int64(blockLength) > size {
			// A partial trailing write from a crash mid-append. The
			// storage is truncated back to the last complete block so
			// a subsequent append overwrites the torn record.
			break
		}

		payload := make([]byte, blockLength)
		if blockLength > 0 {
			if _, err := storage.ReadAt(payload, cursor+4); err != nil {
				return nil, fmt.Errorf("feed: reading block payload at offset %d: %w", cursor+4, err)
			}
		}

		f.blocks = append(f.blocks, blockRef{physicalOffset: cursor + 4, length: blockLength})
		f.leaves = append(f.leaves, leafHash(payload))
		f.blockByteStart = append(f.blockByteStart, f.byteLength)
		f.byteLength += int64(blockLength)
		cursor += 4 + int64(blockLength)
	}
	f.physicalSize = cursor

	if cursor != size {
		if err := storage.Truncate(cursor); err != nil {
			return nil, fmt.Errorf("feed: discarding partial trailing block: %w", err)
		}
	}

	return f, nil
}

// Key returns the feed's public key.
func (f *Feed) Key() ed25519.PublicKey { return f.public }

// SecretKey returns the feed's private key, or nil if the feed is
// read-only.
func (f *Feed) SecretKey() ed25519.PrivateKey { return f.private }

// Writable reports whether the caller holds the feed's private key.
func (f *Feed) Writable() bool { return f.private != nil }

// DiscoveryKey returns the public rendezvous tag derived from the
// feed's public key.
func (f *Feed) DiscoveryKey() [32]byte { return kdf.DeriveDiscoveryKey(f.public) }

// Length returns the number of blocks appended so far.
func (f *Feed) Length() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.blocks)
}

// ByteLength returns the total size in bytes of all block payloads
// appended so far. This does not include the 4-byte framing per block.
func (f *Feed) ByteLength() int64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.byteLength
}

// RootHash returns the Merkle root over all blocks appended so far.
func (f *Feed) RootHash() [32]byte {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return merkleRoot(f.leaves)
}

// signedState is the value signed over a feed's length and Merkle
// root, letting a holder of only the public key verify that a feed
// reported by a peer has not been tampered with or truncated.
type signedState struct {
	Length   int      `cbor:"1,keyasint"`
	RootHash [32]byte `cbor:"2,keyasint"`
}

// Signature returns an Ed25519 signature over the feed's current
// length and Merkle root. Returns nil if the feed is read-only.
func (f *Feed) Signature() []byte {
	f.mu.RLock()
	length := len(f.blocks)
	root := merkleRoot(f.leaves)
	private := f.private
	f.mu.RUnlock()

	if private == nil {
		return nil
	}
	data, err := codec.Marshal(signedState{Length: length, RootHash: root})
	if err != nil {
		panic("feed: marshaling signed state: " + err.Error())
	}
	return ed25519.Sign(private, data)
}

// VerifyState checks that signature is a valid signature by this
// feed's public key over the given (length, root) pair.
func (f *Feed) VerifyState(length int, root [32]byte, signature []byte) bool {
	data, err := codec.Marshal(signedState{Length: length, RootHash: root})
	if err != nil {
		return false
	}
	return ed25519.Verify(f.public, data, signature)
}

// Get returns the payload of the block at index.
func (f *Feed) Get(index int) ([]byte, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if index < 0 || index >= len(f.blocks) {
		return nil, fmt.Errorf("feed: block index %d out of range [0,%d)", index, len(f.blocks))
	}
	ref := f.blocks[index]
	payload := make([]byte, ref.length)
	if ref.length > 0 {
		if _, err := f.storage.ReadAt(payload, ref.physicalOffset); err != nil {
			return nil, fmt.Errorf("feed: reading block %d: %w", index, err)
		}
	}
	return payload, nil
}

// Append adds data as a new block. Requires a writable feed.
func (f *Feed) Append(data []byte) (int, error) {
	f.mu.Lock()
	if f.private == nil {
		f.mu.Unlock()
		return 0, fmt.Errorf("feed: append requires a writable feed")
	}
	index, err := f.appendLocked(data)
	f.mu.Unlock()

	if err != nil {
		return 0, err
	}
	f.dispatch(AppendEvent{Index: index})
	return index, nil
}

// acceptRemote appends data received from a peer during replication.
// Unlike Append, it does not require a writable feed — a read-only
// mirror still needs to record blocks pushed to it — but it does
// require the block arrive in order, since the Merkle chain has no
// meaning otherwise.
func (f *Feed) acceptRemote(index int, data []byte) error {
	f.mu.Lock()
	if index != len(f.blocks) {
		f.mu.Unlock()
		return fmt.Errorf("feed: out-of-order remote block %d, expected %d", index, len(f.blocks))
	}
	appendedIndex, err := f.appendLocked(data)
	f.mu.Unlock()

	if err != nil {
		return err
	}
	f.dispatch(AppendEvent{Index: appendedIndex})
	return nil
}

// appendLocked performs the actual write. Caller holds f.mu.
func (f *Feed) appendLocked(data []byte) (int, error) {
	var lengthPrefix [4]byte
	binary.BigEndian.PutUint32(lengthPrefix[:], uint32(len(data)))
	if _, err := f.storage.WriteAt(lengthPrefix[:], f.physicalSize); err != nil {
		return 0, fmt.Errorf("feed: writing block header: %w", err)
	}

	physicalOffset := f.physicalSize + 4
	if len(data) > 0 {
		if _, err := f.storage.WriteAt(data, physicalOffset); err != nil {
			return 0, fmt.Errorf("feed: writing block payload: %w", err)
		}
	}

	index := len(f.blocks)
	f.blocks = append(f.blocks, blockRef{physicalOffset: physicalOffset, length: uint32(len(data))})
	f.leaves = append(f.leaves, leafHash(data))
	f.blockByteStart = append(f.blockByteStart, f.byteLength)
	f.byteLength += int64(len(data))
	f.physicalSize = physicalOffset + int64(len(data))

	return index, nil
}

// Close closes the underlying storage handle.
func (f *Feed) Close() error {
	return f.storage.Close()
}
