package service

import (
	"context"
	"sync"

	"github.com/and161185/o1chat/internal/model"
)

type fakeLister struct {
	mu    sync.Mutex
	users []string
	err   error
	calls int
}

var _ UserLister = (*fakeLister)(nil)

func (f *fakeLister) ListUsers(context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return append([]string(nil), f.users...), nil
}

type fetchCall struct{ user1, user2 string }

type fakeFetcher struct {
	mu    sync.Mutex
	byKey map[string][]model.Message // keyed by user2
	err   error
	calls []fetchCall

	// gate, when set, blocks the next fetch of the named peer until closed.
	gate map[string]chan struct{}
}

var _ MessageFetcher = (*fakeFetcher)(nil)

func (f *fakeFetcher) FetchMessages(_ context.Context, user1, user2 string) ([]model.Message, error) {
	f.mu.Lock()
	f.calls = append(f.calls, fetchCall{user1, user2})
	gate := f.gate[user2]
	delete(f.gate, user2)
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return append([]model.Message(nil), f.byKey[user2]...), nil
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeSubmitter struct {
	sent []model.Message
	err  error
}

var _ MessageSubmitter = (*fakeSubmitter)(nil)

func (f *fakeSubmitter) Send(_ context.Context, m model.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, m)
	return nil
}

type countingRefresher struct {
	n   int
	err error
}

var _ Refresher = (*countingRefresher)(nil)

func (r *countingRefresher) Refresh(context.Context) error {
	r.n++
	return r.err
}

type recordingSink struct {
	mu          sync.Mutex
	peers       [][]string
	transcripts []model.Transcript
}

var (
	_ PeerSink       = (*recordingSink)(nil)
	_ TranscriptSink = (*recordingSink)(nil)
)

func (s *recordingSink) PeersChanged(p []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.peers = append(s.peers, p)
}

func (s *recordingSink) TranscriptChanged(t model.Transcript) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcripts = append(s.transcripts, t)
}

func (s *recordingSink) lastTranscript() (model.Transcript, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.transcripts) == 0 {
		return model.Transcript{}, 0
	}
	return s.transcripts[len(s.transcripts)-1], len(s.transcripts)
}
