// Package transporttest provides a scripted in-memory Transport for tests.
package transporttest

import (
	"context"
	"sync"

	"github.com/and161185/o1chat/internal/errs"
	"github.com/and161185/o1chat/internal/model"
	"github.com/and161185/o1chat/internal/transport"
)

// Call records one attempt.
type Call struct {
	Op     transport.Op
	Server string
}

// Fake models a set of mirrors sharing one backend. Failures are injected
// per server and operation.
type Fake struct {
	mu       sync.Mutex
	users    []string
	messages []model.Message
	fail     map[string]map[transport.Op]error
	down     map[string]bool
	calls    []Call

	// Before runs ahead of every attempt, outside the lock.
	Before func(ctx context.Context, op transport.Op, server string)
}

var _ transport.Transport = (*Fake)(nil)

// New returns an empty fake.
func New() *Fake {
	return &Fake{fail: map[string]map[transport.Op]error{}, down: map[string]bool{}}
}

// SetUsers replaces the user list.
func (f *Fake) SetUsers(users ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users = append([]string(nil), users...)
}

// AddMessage appends m to the shared history.
func (f *Fake) AddMessage(m model.Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, m)
}

// SetDown makes every operation on server fail as unreachable.
func (f *Fake) SetDown(server string, down bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.down[server] = down
}

// Fail makes op on server fail with kind; a nil kind clears it.
func (f *Fake) Fail(server string, op transport.Op, kind error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail[server] == nil {
		f.fail[server] = map[transport.Op]error{}
	}
	if kind == nil {
		delete(f.fail[server], op)
		return
	}
	f.fail[server][op] = kind
}

// Calls returns a copy of all recorded attempts.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// Count returns how many attempts of op were made.
func (f *Fake) Count(op transport.Op) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Messages returns the shared history.
func (f *Fake) Messages() []model.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Message(nil), f.messages...)
}

func (f *Fake) enter(ctx context.Context, op transport.Op, server string) error {
	if f.Before != nil {
		f.Before(ctx, op, server)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Op: op, Server: server})
	if f.down[server] {
		return &transport.Failure{Server: server, Op: op, Kind: errs.ErrUnreachable}
	}
	if kind := f.fail[server][op]; kind != nil {
		return &transport.Failure{Server: server, Op: op, Kind: kind}
	}
	return nil
}

func (f *Fake) Register(ctx context.Context, server, username string) error {
	if err := f.enter(ctx, transport.OpRegister, server); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u == username {
			return nil
		}
	}
	f.users = append(f.users, username)
	return nil
}

func (f *Fake) ListUsers(ctx context.Context, server string) ([]string, error) {
	if err := f.enter(ctx, transport.OpUsers, server); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.users...), nil
}

func (f *Fake) FetchMessages(ctx context.Context, server, user1, user2 string) ([]model.Message, error) {
	if err := f.enter(ctx, transport.OpMessages, server); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Message{}
	for _, m := range f.messages {
		if (m.Sender == user1 && m.Recipient == user2) || (m.Sender == user2 && m.Recipient == user1) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *Fake) Send(ctx context.Context, server string, m model.Message) error {
	if err := f.enter(ctx, transport.OpSend, server); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, m)
	return nil
}
