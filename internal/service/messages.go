package service

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/and161185/o1chat/internal/model"
)

// MessagePoller keeps the Transcript of the conversation between the local
// identity and the selected peer.
type MessagePoller struct {
	src   MessageFetcher
	local string
	sink  TranscriptSink
	log   *zap.Logger

	mu         sync.Mutex
	fresh      freshness
	peer       string
	transcript model.Transcript
}

var _ Refresher = (*MessagePoller)(nil)

// NewMessagePoller constructs a poller for local publishing to sink.
func NewMessagePoller(src MessageFetcher, local string, sink TranscriptSink, log *zap.Logger) *MessagePoller {
	if log == nil {
		log = zap.NewNop()
	}
	return &MessagePoller{src: src, local: local, sink: sink, log: log, transcript: model.Transcript{Entries: []model.Entry{}}}
}

// Peer returns the selected peer, or "".
func (p *MessagePoller) Peer() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.peer
}

// Transcript returns the last published transcript.
func (p *MessagePoller) Transcript() model.Transcript {
	p.mu.Lock()
	defer p.mu.Unlock()
	return copyTranscript(p.transcript)
}

// Select makes peer the conversation target and polls it immediately.
func (p *MessagePoller) Select(ctx context.Context, peer string) error {
	p.SetPeer(peer)
	return p.Poll(ctx)
}

// SetPeer makes peer the conversation target without polling. A different
// peer clears the transcript first, so nothing of the previous conversation
// is shown under the new peer and no in-flight poll of the previous peer is
// published afterwards. It reports whether the peer changed.
func (p *MessagePoller) SetPeer(peer string) bool {
	peer = strings.TrimSpace(peer)

	p.mu.Lock()
	defer p.mu.Unlock()
	if peer == p.peer {
		return false
	}
	p.peer = peer
	p.fresh.invalidate()
	p.transcript = model.Transcript{Peer: peer, Entries: []model.Entry{}}
	if p.sink != nil {
		p.sink.TranscriptChanged(copyTranscript(p.transcript))
	}
	return true
}

// Refresh runs an out-of-cycle poll.
func (p *MessagePoller) Refresh(ctx context.Context) error { return p.Poll(ctx) }

// Poll runs one message tick for the peer selected at call time. With no
// peer selected it is a no-op. On failure the previous transcript is kept.
func (p *MessagePoller) Poll(ctx context.Context) error {
	p.mu.Lock()
	peer := p.peer
	seq := p.fresh.begin()
	p.mu.Unlock()

	if peer == "" {
		return nil
	}

	msgs, err := p.src.FetchMessages(ctx, p.local, peer)
	if err != nil {
		return err
	}
	t := model.Transcript{Peer: peer, Entries: model.Tagged(p.local, msgs)}

	p.mu.Lock()
	defer p.mu.Unlock()
	if peer != p.peer || !p.fresh.commit(seq) {
		p.log.Debug("stale transcript dropped", zap.String("peer", peer), zap.Uint64("seq", seq))
		return nil
	}
	p.transcript = t
	if p.sink != nil {
		p.sink.TranscriptChanged(copyTranscript(t))
	}
	return nil
}

func copyTranscript(t model.Transcript) model.Transcript {
	return model.Transcript{Peer: t.Peer, Entries: append([]model.Entry{}, t.Entries...)}
}
