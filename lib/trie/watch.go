// Copyright 2026 The Burrow Authors
// SPDX-License-Identifier: Apache-2.0

package trie

// Watch registers a callback invoked for every put or del under
// prefix. Returns an unsubscribe function. The callback runs on a
// dedicated per-watcher goroutine draining a buffered channel, not on
// the goroutine that called Put/Del/ApplyRemoteOperations; a slow or
// blocking callback only delays its own watcher, never the mutation
// that triggered it.
func (idx *Index) Watch(prefix string, callback func(Event)) func() {
	ch := make(chan Event, 64)
	idx.watchMu.Lock()
	w := &watcher{prefix: prefix, ch: ch}
	idx.watches = append(idx.watches, w)
	idx.watchMu.Unlock()

	stop := make(chan struct{})
	go func() {
		for {
			select {
			case event := <-ch:
				callback(event)
			case <-stop:
				return
			}
		}
	}()

	return func() {
		idx.watchMu.Lock()
		for i, existing := range idx.watches {
			if existing == w {
				idx.watches = append(idx.watches[:i], idx.watches[i+1:]...)
				break
			}
		}
		idx.watchMu.Unlock()
		close(stop)
	}
}

func (idx *Index) snapshotWatchers() []*watcher {
	idx.watchMu.Lock()
	defer idx.watchMu.Unlock()
	watchers := make([]*watcher, len(idx.watches))
	copy(watchers, idx.watches)
	return watchers
}

func (idx *Index) dispatch(watchers []*watcher, event Event) {
	for _, w := range watchers {
		if len(event.Path) < len(w.prefix) || event.Path[:len(w.prefix)] != w.prefix {
			continue
		}
		select {
		case w.ch <- event:
		default:
		}
	}
}
