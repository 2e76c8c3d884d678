package main

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/and161185/o1chat/internal/chat"
	"github.com/and161185/o1chat/internal/model"
)

// ---- listener -> tea messages ----

type loggedInMsg struct{ identity string }

type loginFailedMsg struct{ err error }

type peersMsg struct{ peers []string }

type transcriptMsg struct{ transcript model.Transcript }

type sentMsg struct{ content string }

type statusMsg struct{ status model.Status }

// loggedOutMsg reports that the previous session has fully stopped.
type loggedOutMsg struct{}

// events queues core notifications for the UI loop in arrival order. Pushes
// never block, since some arrive on the UI goroutine itself.
type events struct {
	mu      sync.Mutex
	pending []tea.Msg
	notify  chan struct{}
	done    chan struct{}
	once    sync.Once
}

var _ chat.Listener = (*events)(nil)

func newEvents() *events {
	return &events{notify: make(chan struct{}, 1), done: make(chan struct{})}
}

func (e *events) push(m tea.Msg) {
	select {
	case <-e.done:
		return
	default:
	}
	e.mu.Lock()
	e.pending = append(e.pending, m)
	e.mu.Unlock()
	select {
	case e.notify <- struct{}{}:
	default:
	}
}

func (e *events) pop() (tea.Msg, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.pending) == 0 {
		return nil, false
	}
	m := e.pending[0]
	e.pending[0] = nil
	e.pending = e.pending[1:]
	return m, true
}

// close wakes a waiting reader and drops later pushes.
func (e *events) close() { e.once.Do(func() { close(e.done) }) }

// wait returns a command yielding the next event; the UI re-arms it after each one.
func (e *events) wait() tea.Cmd {
	return func() tea.Msg {
		for {
			if m, ok := e.pop(); ok {
				return m
			}
			select {
			case <-e.notify:
			case <-e.done:
				return nil
			}
		}
	}
}

func (e *events) LoggedIn(identity string)             { e.push(loggedInMsg{identity: identity}) }
func (e *events) LoginFailed(err error)                { e.push(loginFailedMsg{err: err}) }
func (e *events) PeersChanged(peers []string)          { e.push(peersMsg{peers: peers}) }
func (e *events) TranscriptChanged(t model.Transcript) { e.push(transcriptMsg{transcript: t}) }
func (e *events) Sent(content string)                  { e.push(sentMsg{content: content}) }
func (e *events) StatusChanged(s model.Status)         { e.push(statusMsg{status: s}) }
