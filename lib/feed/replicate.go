// Copyright 2026 The Burrow Authors
// SPDX-License-Identifier: Apache-2.0

package feed

import (
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/burrowfs/burrow/lib/codec"
)

// frame is the wire format for one message on a replicated connection.
// A [Session] multiplexes multiple feeds over one connection by
// tagging every frame with the logical channel it belongs to.
type frame struct {
	Channel byte   `cbor:"1,keyasint"`
	Kind    string `cbor:"2,keyasint"` // "hello", "data"
	Index   int    `cbor:"3,keyasint"`
	Data    []byte `cbor:"4,keyasint,omitempty"`

	// ExpectedFeeds is set only on a "hello" frame: the number of
	// channels the sender intends to attach, so the peer knows how
	// many feeds must complete before replication is done.
	ExpectedFeeds int `cbor:"5,keyasint,omitempty"`
}

// helloChannel is a reserved channel number for the expected-feeds
// handshake frame; it never carries a real feed.
const helloChannel = 0xff

// Session multiplexes replication of one or more feeds over a single
// connection. The caller declares how many feeds it expects to attach
// (a drive replicates two: metadata and content) up front, then calls
// [Session.Attach] for each as it becomes ready — the content feed may
// attach after the metadata feed if the drive is still bootstrapping.
type Session struct {
	conn   io.ReadWriteCloser
	logger *slog.Logger

	encodeMu sync.Mutex
	encoder  *codec.Encoder

	mu       sync.Mutex
	channels map[byte]*Feed
	pending  map[byte][]frame

	readErr chan error
}

// NewSession wraps conn for replication. expectedFeeds, if greater
// than zero, is announced to the peer as a "hello" frame so it knows
// how many channels this side intends to attach. logger may be nil.
func NewSession(conn io.ReadWriteCloser, expectedFeeds int, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Session{
		conn:     conn,
		logger:   logger,
		encoder:  codec.NewEncoder(conn),
		channels: make(map[byte]*Feed),
		pending:  make(map[byte][]frame),
		readErr:  make(chan error, 1),
	}
	go s.readLoop()
	if expectedFeeds > 0 {
		go func() {
			if err := s.send(frame{Channel: helloChannel, Kind: "hello", ExpectedFeeds: expectedFeeds}); err != nil {
				s.logger.Warn("replicate: sending hello frame", "error", err)
			}
		}()
	}
	return s
}

// Attach binds a feed to a logical channel on the session. If the feed
// is writable, every block it already holds is pushed to the peer
// immediately, followed by any future appends. If it is read-only, the
// session applies incoming "data" frames on this channel to the feed
// as they arrive.
func (s *Session) Attach(channel byte, f *Feed) error {
	s.mu.Lock()
	s.channels[channel] = f
	backlog := s.pending[channel]
	delete(s.pending, channel)
	s.mu.Unlock()

	for _, fr := range backlog {
		s.applyFrame(f, fr)
	}

	if f.Writable() {
		go s.pushBacklogAndFollow(channel, f)
	}
	return nil
}

func (s *Session) pushBacklogAndFollow(channel byte, f *Feed) {
	// Subscribe before reading the current length so no append landing
	// concurrently with the backlog scan is missed.
	events := f.Subscribe()
	length := f.Length()

	for i := 0; i < length; i++ {
		data, err := f.Get(i)
		if err != nil {
			s.logger.Warn("replicate: reading block to push", "channel", channel, "index", i, "error", err)
			return
		}
		if err := s.send(frame{Channel: channel, Kind: "data", Index: i, Data: data}); err != nil {
			return
		}
	}

	for event := range events {
		if event.Index < length {
			continue // already covered by the backlog scan above
		}
		data, err := f.Get(event.Index)
		if err != nil {
			s.logger.Warn("replicate: reading appended block", "channel", channel, "index", event.Index, "error", err)
			return
		}
		if err := s.send(frame{Channel: channel, Kind: "data", Index: event.Index, Data: data}); err != nil {
			return
		}
	}
}

func (s *Session) send(fr frame) error {
	s.encodeMu.Lock()
	defer s.encodeMu.Unlock()
	if err := s.encoder.Encode(fr); err != nil {
		return fmt.Errorf("feed: sending replication frame: %w", err)
	}
	return nil
}

func (s *Session) readLoop() {
	decoder := codec.NewDecoder(s.conn)
	for {
		var fr frame
		if err := decoder.Decode(&fr); err != nil {
			s.readErr <- err
			return
		}
		if fr.Kind == "hello" {
			s.logger.Debug("replicate: peer declared expected feeds", "count", fr.ExpectedFeeds)
			continue
		}

		s.mu.Lock()
		f, attached := s.channels[fr.Channel]
		if !attached {
			s.pending[fr.Channel] = append(s.pending[fr.Channel], fr)
		}
		s.mu.Unlock()

		if attached {
			s.applyFrame(f, fr)
		}
	}
}

func (s *Session) applyFrame(f *Feed, fr frame) {
	if fr.Kind != "data" {
		return
	}
	if f.Writable() {
		// A writable feed's blocks are authoritative locally; ignore
		// data pushed back at us (can happen with a symmetric peer).
		return
	}
	if err := f.acceptRemote(fr.Index, fr.Data); err != nil {
		discoveryKey := f.DiscoveryKey()
		s.logger.Warn("replicate: rejecting out-of-order block",
			"discovery_key", hex.EncodeToString(discoveryKey[:8]),
			"index", fr.Index, "error", err)
	}
}

// Wait blocks until the connection ends, returning the error that
// ended it (io.EOF on a clean close).
func (s *Session) Wait() error {
	return <-s.readErr
}

// Close closes the underlying connection.
func (s *Session) Close() error {
	return s.conn.Close()
}
