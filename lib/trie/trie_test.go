// Copyright 2026 The Burrow Authors
// SPDX-License-Identifier: Apache-2.0

package trie

import (
	"crypto/ed25519"
	"crypto/rand"
	"path/filepath"
	"testing"
	"time"

	"github.com/burrowfs/burrow/lib/binstore"
	"github.com/burrowfs/burrow/lib/feed"
)

func newTestFeed(t *testing.T) *feed.Feed {
	t.Helper()
	public, private, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("ed25519.GenerateKey: %v", err)
	}
	storage, err := binstore.OpenFile(filepath.Join(t.TempDir(), "log"), true)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	f, err := feed.Open(storage, public, private)
	if err != nil {
		t.Fatalf("feed.Open: %v", err)
	}
	return f
}

func TestPutGetDel(t *testing.T) {
	idx, err := Open(newTestFeed(t))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := idx.WriteHeader([]byte("header")); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}

	if err := idx.Put("/a.txt", []byte("one")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := idx.Put("/dir/b.txt", []byte("two")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	value, ok := idx.Get("/a.txt")
	if !ok || string(value) != "one" {
		t.Errorf("Get(/a.txt) = %q, %v, want one, true", value, ok)
	}

	existed, err := idx.Del("/a.txt")
	if err != nil {
		t.Fatalf("Del: %v", err)
	}
	if !existed {
		t.Error("Del reported the path did not exist")
	}
	if _, ok := idx.Get("/a.txt"); ok {
		t.Error("entry still present after Del")
	}
}

func TestPutRequiresHeader(t *testing.T) {
	idx, err := Open(newTestFeed(t))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := idx.Put("/a.txt", []byte("one")); err == nil {
		t.Fatal("expected an error putting before a header is written")
	}
}

func TestListSortedByPrefix(t *testing.T) {
	idx, err := Open(newTestFeed(t))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := idx.WriteHeader([]byte("header")); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}
	for _, path := range []string{"/dir/c.txt", "/dir/a.txt", "/dir/b.txt", "/other.txt"} {
		if err := idx.Put(path, []byte(path)); err != nil {
			t.Fatalf("Put(%s): %v", path, err)
		}
	}

	entries := idx.List("/dir/")
	if len(entries) != 3 {
		t.Fatalf("List(/dir/) returned %d entries, want 3", len(entries))
	}
	want := []string{"/dir/a.txt", "/dir/b.txt", "/dir/c.txt"}
	for i, entry := range entries {
		if entry.Path != want[i] {
			t.Errorf("entries[%d].Path = %s, want %s", i, entry.Path, want[i])
		}
	}
}

func TestOpenReplaysExistingFeed(t *testing.T) {
	f := newTestFeed(t)
	idx, err := Open(f)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := idx.WriteHeader([]byte("header")); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}
	if err := idx.Put("/a.txt", []byte("one")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := idx.Put("/b.txt", []byte("two")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, err := idx.Del("/a.txt"); err != nil {
		t.Fatalf("Del: %v", err)
	}

	replayed, err := Open(f)
	if err != nil {
		t.Fatalf("re-Open: %v", err)
	}
	if header, ok := replayed.GetMetadata(); !ok || string(header) != "header" {
		t.Errorf("GetMetadata() = %q, %v, want header, true", header, ok)
	}
	if _, ok := replayed.Get("/a.txt"); ok {
		t.Error("/a.txt should have been deleted")
	}
	value, ok := replayed.Get("/b.txt")
	if !ok || string(value) != "two" {
		t.Errorf("Get(/b.txt) = %q, %v, want two, true", value, ok)
	}
}

func TestCheckoutIsFrozen(t *testing.T) {
	idx, err := Open(newTestFeed(t))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := idx.WriteHeader([]byte("header")); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}
	if err := idx.Put("/a.txt", []byte("v1")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	snapshotVersion := idx.Version()

	if err := idx.Put("/a.txt", []byte("v2")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := idx.Put("/b.txt", []byte("new")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	snapshot, err := idx.Checkout(snapshotVersion)
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	value, ok := snapshot.Get("/a.txt")
	if !ok || string(value) != "v1" {
		t.Errorf("snapshot Get(/a.txt) = %q, %v, want v1, true", value, ok)
	}
	if _, ok := snapshot.Get("/b.txt"); ok {
		t.Error("checkout snapshot should not see /b.txt, added after the checkout version")
	}

	// Writes against the frozen snapshot are silently invisible to it.
	if err := snapshot.Put("/c.txt", []byte("ignored")); err != nil {
		t.Fatalf("Put on checkout: %v", err)
	}
	if _, ok := snapshot.Get("/c.txt"); ok {
		t.Error("checkout snapshot must not observe its own writes")
	}
}

func TestWatchReceivesMatchingEvents(t *testing.T) {
	idx, err := Open(newTestFeed(t))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := idx.WriteHeader([]byte("header")); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}

	received := make(chan Event, 4)
	unsubscribe := idx.Watch("/dir/", func(event Event) { received <- event })
	defer unsubscribe()

	if err := idx.Put("/other.txt", []byte("x")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := idx.Put("/dir/a.txt", []byte("x")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	select {
	case event := <-received:
		if event.Path != "/dir/a.txt" || event.Kind != "put" {
			t.Errorf("event = %+v, want /dir/a.txt put", event)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for a watch event")
	}

	select {
	case event := <-received:
		t.Errorf("unexpected second event: %+v", event)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestApplyRemoteOperationsCatchesUp(t *testing.T) {
	f := newTestFeed(t)
	writer, err := Open(f)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := writer.WriteHeader([]byte("header")); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}
	if err := writer.Put("/a.txt", []byte("one")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	mirror, err := Open(f)
	if err != nil {
		t.Fatalf("Open mirror: %v", err)
	}
	if _, ok := mirror.Get("/a.txt"); !ok {
		t.Fatal("mirror opened on a feed that already has entries should see them immediately")
	}

	if err := writer.Put("/b.txt", []byte("two")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := mirror.ApplyRemoteOperations(); err != nil {
		t.Fatalf("ApplyRemoteOperations: %v", err)
	}
	if value, ok := mirror.Get("/b.txt"); !ok || string(value) != "two" {
		t.Errorf("mirror Get(/b.txt) = %q, %v, want two, true", value, ok)
	}
}
