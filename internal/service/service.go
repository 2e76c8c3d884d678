// Package service contains the client synchronization services: identity
// registration, presence and message polling, and message sending.
package service

import (
	"context"

	"github.com/and161185/o1chat/internal/model"
)

// UserLister lists users known to the server set.
type UserLister interface {
	ListUsers(ctx context.Context) ([]string, error)
}

// MessageFetcher fetches the full history of a conversation pair.
type MessageFetcher interface {
	FetchMessages(ctx context.Context, user1, user2 string) ([]model.Message, error)
}

// MessageSubmitter submits one message.
type MessageSubmitter interface {
	Send(ctx context.Context, m model.Message) error
}

// PeerSink receives every published PeerSet. Calls are serialized per
// poller and must not call back into it.
type PeerSink interface {
	PeersChanged(peers []string)
}

// TranscriptSink receives every published Transcript. Calls are serialized
// per poller and must not call back into it.
type TranscriptSink interface {
	TranscriptChanged(t model.Transcript)
}

// Refresher runs an out-of-cycle message poll.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// freshness orders concurrent polls of one poller: a result is published
// only if no poll started later has been published already.
type freshness struct {
	started   uint64
	published uint64
}

// begin returns the sequence number of a new poll.
func (f *freshness) begin() uint64 {
	f.started++
	return f.started
}

// commit reports whether seq may be published and records it if so.
func (f *freshness) commit(seq uint64) bool {
	if seq <= f.published {
		return false
	}
	f.published = seq
	return true
}

// invalidate drops every poll started so far.
func (f *freshness) invalidate() {
	f.published = f.begin()
}
