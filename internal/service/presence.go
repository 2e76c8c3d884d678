package service

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// PresencePoller keeps the PeerSet: every user the servers know except the
// local identity, in server order.
type PresencePoller struct {
	src   UserLister
	local string
	sink  PeerSink
	log   *zap.Logger

	mu    sync.Mutex
	fresh freshness
	peers []string
}

// NewPresencePoller constructs a poller for local publishing to sink.
func NewPresencePoller(src UserLister, local string, sink PeerSink, log *zap.Logger) *PresencePoller {
	if log == nil {
		log = zap.NewNop()
	}
	return &PresencePoller{src: src, local: local, sink: sink, log: log, peers: []string{}}
}

// Peers returns the last published PeerSet.
func (p *PresencePoller) Peers() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string{}, p.peers...)
}

// Poll runs one presence tick. On failure the previous PeerSet is kept and
// the error is returned for status reporting only.
func (p *PresencePoller) Poll(ctx context.Context) error {
	p.mu.Lock()
	seq := p.fresh.begin()
	p.mu.Unlock()

	users, err := p.src.ListUsers(ctx)
	if err != nil {
		return err
	}
	peers := without(users, p.local)

	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.fresh.commit(seq) {
		p.log.Debug("stale presence result dropped", zap.Uint64("seq", seq))
		return nil
	}
	p.peers = peers
	if p.sink != nil {
		p.sink.PeersChanged(append([]string{}, peers...))
	}
	return nil
}

// without returns users minus every occurrence of name, order preserved.
func without(users []string, name string) []string {
	out := make([]string, 0, len(users))
	for _, u := range users {
		if u != name {
			out = append(out, u)
		}
	}
	return out
}
