// Copyright 2026 The Burrow Authors
// SPDX-License-Identifier: Apache-2.0

package drive

import "fmt"

// Checkout returns a new Drive bound to an immutable snapshot of the
// index at the given metadata-log version (as returned by
// [Drive.Version]). The checkout shares both logs with the parent by
// reference; writes through the parent never become visible through
// the checkout, and closing the checkout never closes the shared logs.
//
// A checkout skips bootstrap entirely: it is already Done the moment
// it is constructed, since it reuses the parent's already-open logs.
func (d *Drive) Checkout(version int) (*Drive, error) {
	if err := d.awaitReady(); err != nil {
		return nil, err
	}

	snapshot, err := d.index.Checkout(version)
	if err != nil {
		return nil, &InvalidCheckoutError{Reason: fmt.Sprintf("version %d: %v", version, err)}
	}

	checkout := &Drive{
		clk:          d.clk,
		logger:       d.logger,
		descriptor:   d.descriptor,
		metadataFeed: d.metadataFeed,
		index:        snapshot,
		bootstrap:    newOnceResult[struct{}](),
		content:      newOnceResult[struct{}](),
		stopCh:       make(chan struct{}),
		closesLogs:   false,
	}
	checkout.bootstrap.resolve(struct{}{}, nil)

	d.contentMu.RLock()
	contentFeed := d.contentFeed
	d.contentMu.RUnlock()
	if contentFeed != nil {
		checkout.contentFeed = contentFeed
		checkout.content.resolve(struct{}{}, nil)
	}

	checkout.events.publish(Event{Kind: EventReady})
	return checkout, nil
}
