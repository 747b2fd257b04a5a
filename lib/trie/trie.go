// Copyright 2026 The Burrow Authors
// SPDX-License-Identifier: Apache-2.0

package trie

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/burrowfs/burrow/lib/codec"
	"github.com/burrowfs/burrow/lib/feed"
)

// Entry is a single path/value pair returned by [Index.Get],
// [Index.List], and [Index.Iterator].
type Entry struct {
	Path  string
	Value []byte
}

// opRecord is the operation record appended to the metadata feed for
// every mutation. It is the only thing ever written to blocks after
// block 0.
type opRecord struct {
	Kind  string `cbor:"1,keyasint"` // "put" or "del"
	Path  string `cbor:"2,keyasint"`
	Value []byte `cbor:"3,keyasint,omitempty"`
}

// Index is a persistent map from path to arbitrary CBOR-encoded value,
// backed by a metadata [feed.Feed]. It is safe for concurrent use.
type Index struct {
	feed *feed.Feed

	mu            sync.RWMutex
	header        []byte
	headerWritten bool
	entries       map[string][]byte
	version       int // number of applied put/del operations

	// immutable is true for a [Index.Checkout] snapshot: Put and Del
	// become no-ops rather than mutating the underlying feed, matching
	// the checkout's frozen view of history.
	immutable bool

	watchMu sync.Mutex
	watches []*watcher
}

type watcher struct {
	prefix string
	ch     chan Event
}

// Event describes a single change delivered by [Index.Watch].
type Event struct {
	Path string
	Kind string // "put" or "del"
}

// Open replays the metadata feed's operation log to reconstruct the
// index. Block 0, if present, is treated as the reserved header and is
// not replayed as an operation.
func Open(f *feed.Feed) (*Index, error) {
	idx := &Index{feed: f, entries: make(map[string][]byte)}

	length := f.Length()
	if length == 0 {
		return idx, nil
	}

	header, err := f.Get(0)
	if err != nil {
		return nil, fmt.Errorf("trie: reading header block: %w", err)
	}
	idx.header = header
	idx.headerWritten = true

	for i := 1; i < length; i++ {
		block, err := f.Get(i)
		if err != nil {
			return nil, fmt.Errorf("trie: reading operation block %d: %w", i, err)
		}
		var op opRecord
		if err := codec.Unmarshal(block, &op); err != nil {
			return nil, fmt.Errorf("trie: decoding operation block %d: %w", i, err)
		}
		idx.applyLocked(op)
	}
	return idx, nil
}

func (idx *Index) applyLocked(op opRecord) {
	switch op.Kind {
	case "put":
		idx.entries[op.Path] = op.Value
	case "del":
		delete(idx.entries, op.Path)
	}
	idx.version++
}

// WriteHeader appends the reserved header block. Only valid once, on a
// freshly created index with no blocks yet.
func (idx *Index) WriteHeader(header []byte) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.headerWritten {
		return fmt.Errorf("trie: header already written")
	}
	if _, err := idx.feed.Append(header); err != nil {
		return fmt.Errorf("trie: appending header block: %w", err)
	}
	idx.header = header
	idx.headerWritten = true
	return nil
}

// GetMetadata returns the header block and whether it has been
// written yet.
func (idx *Index) GetMetadata() ([]byte, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.header, idx.headerWritten
}

// Version returns the number of put/del operations applied so far.
func (idx *Index) Version() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.version
}

// Get returns the value stored at path.
func (idx *Index) Get(path string) ([]byte, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	value, ok := idx.entries[path]
	return value, ok
}

// Put stores value at path, appending a put operation to the feed. On
// an immutable checkout snapshot this is a no-op: nothing is appended
// to the feed and the frozen view is unchanged.
func (idx *Index) Put(path string, value []byte) error {
	if idx.immutable {
		return nil
	}

	idx.mu.Lock()
	if !idx.headerWritten {
		idx.mu.Unlock()
		return fmt.Errorf("trie: header must be written before the index accepts entries")
	}
	data, err := codec.Marshal(opRecord{Kind: "put", Path: path, Value: value})
	if err != nil {
		idx.mu.Unlock()
		return fmt.Errorf("trie: encoding put operation: %w", err)
	}
	if _, err := idx.feed.Append(data); err != nil {
		idx.mu.Unlock()
		return fmt.Errorf("trie: appending put operation: %w", err)
	}
	idx.entries[path] = value
	idx.version++
	watchers := idx.snapshotWatchers()
	idx.mu.Unlock()

	idx.dispatch(watchers, Event{Path: path, Kind: "put"})
	return nil
}

// Del removes the entry at path, appending a del operation to the
// feed. Reports whether the path previously existed. No-op on an
// immutable checkout snapshot.
func (idx *Index) Del(path string) (bool, error) {
	if idx.immutable {
		return false, nil
	}

	idx.mu.Lock()
	_, existed := idx.entries[path]
	if !existed {
		idx.mu.Unlock()
		return false, nil
	}
	data, err := codec.Marshal(opRecord{Kind: "del", Path: path})
	if err != nil {
		idx.mu.Unlock()
		return false, fmt.Errorf("trie: encoding del operation: %w", err)
	}
	if _, err := idx.feed.Append(data); err != nil {
		idx.mu.Unlock()
		return false, fmt.Errorf("trie: appending del operation: %w", err)
	}
	delete(idx.entries, path)
	idx.version++
	watchers := idx.snapshotWatchers()
	idx.mu.Unlock()

	idx.dispatch(watchers, Event{Path: path, Kind: "del"})
	return true, nil
}

// List returns every entry whose path has the given prefix, sorted by
// path.
func (idx *Index) List(prefix string) []Entry {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var entries []Entry
	for path, value := range idx.entries {
		if strings.HasPrefix(path, prefix) {
			entries = append(entries, Entry{Path: path, Value: value})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries
}

// Iterator returns a function that yields matching entries one at a
// time in path order, for callers that want to stop early without
// materializing the full list. The returned function returns
// (Entry{}, false) once exhausted.
func (idx *Index) Iterator(prefix string) func() (Entry, bool) {
	entries := idx.List(prefix)
	position := 0
	return func() (Entry, bool) {
		if position >= len(entries) {
			return Entry{}, false
		}
		entry := entries[position]
		position++
		return entry, true
	}
}

// Checkout returns an immutable snapshot of the index as of the given
// version (a count of put/del operations, as returned by [Index.Version]).
func (idx *Index) Checkout(version int) (*Index, error) {
	idx.mu.RLock()
	f := idx.feed
	header := idx.header
	headerWritten := idx.headerWritten
	currentVersion := idx.version
	idx.mu.RUnlock()

	if version < 0 || version > currentVersion {
		return nil, fmt.Errorf("trie: version %d out of range [0,%d]", version, currentVersion)
	}

	snapshot := &Index{
		feed:          f,
		entries:       make(map[string][]byte),
		header:        header,
		headerWritten: headerWritten,
		immutable:     true,
	}
	for i := 1; i <= version; i++ {
		block, err := f.Get(i)
		if err != nil {
			return nil, fmt.Errorf("trie: reading operation block %d for checkout: %w", i, err)
		}
		var op opRecord
		if err := codec.Unmarshal(block, &op); err != nil {
			return nil, fmt.Errorf("trie: decoding operation block %d for checkout: %w", i, err)
		}
		snapshot.applyLocked(op)
	}
	return snapshot, nil
}

// ApplyRemoteOperations advances the index to catch up with a metadata
// feed that just grew via replication, applying every operation block
// past the index's current version. Called by the drive layer after
// every feed.AppendEvent on the metadata log; blocks this index already
// applied locally are skipped.
func (idx *Index) ApplyRemoteOperations() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	length := idx.feed.Length()
	next := idx.version + 1 // block 0 is the header, operations start at block 1
	watchers := idx.snapshotWatchers()
	for i := next; i < length; i++ {
		block, err := idx.feed.Get(i)
		if err != nil {
			return fmt.Errorf("trie: reading replicated operation block %d: %w", i, err)
		}
		var op opRecord
		if err := codec.Unmarshal(block, &op); err != nil {
			return fmt.Errorf("trie: decoding replicated operation block %d: %w", i, err)
		}
		idx.applyLocked(op)
		kind := op.Kind
		if kind != "put" && kind != "del" {
			continue
		}
		idx.dispatch(watchers, Event{Path: op.Path, Kind: kind})
	}
	if !idx.headerWritten && length > 0 {
		header, err := idx.feed.Get(0)
		if err != nil {
			return fmt.Errorf("trie: reading replicated header block: %w", err)
		}
		idx.header = header
		idx.headerWritten = true
	}
	return nil
}
