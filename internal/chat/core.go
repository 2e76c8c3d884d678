// Package chat is the boundary between the synchronization services and a
// presentation layer. Every call returns immediately; results are delivered
// through a Listener from background goroutines.
package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/and161185/o1chat/internal/errs"
	"github.com/and161185/o1chat/internal/failover"
	"github.com/and161185/o1chat/internal/model"
	"github.com/and161185/o1chat/internal/scheduler"
	"github.com/and161185/o1chat/internal/service"
	"github.com/and161185/o1chat/internal/session"
	"github.com/and161185/o1chat/internal/transport"
)

// Default poll intervals.
const (
	DefaultUsersEvery    = 5 * time.Second
	DefaultMessagesEvery = 2 * time.Second
)

// Listener receives state changes. Methods are called from background
// goroutines and must not block for long.
type Listener interface {
	// LoggedIn reports an established identity.
	LoggedIn(identity string)
	// LoginFailed reports a terminal registration failure.
	LoginFailed(err error)
	// PeersChanged reports a new PeerSet.
	PeersChanged(peers []string)
	// TranscriptChanged reports a new transcript for the selected peer.
	TranscriptChanged(t model.Transcript)
	// Sent reports a successfully submitted message; the compose input may be cleared.
	Sent(content string)
	// StatusChanged reports connectivity changes.
	StatusChanged(s model.Status)
}

// IdentityStore persists the identity established at login.
type IdentityStore interface {
	SaveIdentity(username string) error
}

// Options configure a Core.
type Options struct {
	Servers       failover.ServerSet
	Transport     transport.Transport
	Store         IdentityStore // optional
	Listener      Listener      // optional
	UsersEvery    time.Duration
	MessagesEvery time.Duration
	Log           *zap.Logger
}

// Core owns at most one session and the pollers bound to it.
type Core struct {
	opts      Options
	log       *zap.Logger
	registrar *service.Registrar

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	active *run
	status model.Status
}

// run is everything scoped to one session.
type run struct {
	sess     *session.Session
	presence *service.PresencePoller
	messages *service.MessagePoller
	sender   *service.MessageSender
	sched    *scheduler.Scheduler
	jobs     *queue
	ctx      context.Context
	cancel   context.CancelFunc
}

// New constructs a Core. Nothing runs until Login or Resume.
func New(opts Options) *Core {
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.Listener == nil {
		opts.Listener = nopListener{}
	}
	if opts.UsersEvery <= 0 {
		opts.UsersEvery = DefaultUsersEvery
	}
	if opts.MessagesEvery <= 0 {
		opts.MessagesEvery = DefaultMessagesEvery
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Core{
		opts:      opts,
		log:       opts.Log,
		registrar: service.NewRegistrar(opts.Servers, opts.Transport, opts.Log),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Login registers username in the background. A blank username is ignored.
// On success the identity is persisted, polling starts and LoggedIn fires;
// otherwise LoginFailed fires once and nothing is retried.
func (c *Core) Login(username string) {
	username = strings.TrimSpace(username)
	if username == "" {
		return
	}
	c.goBackground(func() {
		sess, err := c.registrar.Register(c.ctx, username)
		if errors.Is(err, errs.ErrEmptyUsername) {
			return
		}
		if err != nil {
			c.setStatus(model.StatusDegraded)
			c.opts.Listener.LoginFailed(err)
			return
		}
		if c.opts.Store != nil {
			if err := c.opts.Store.SaveIdentity(sess.Identity()); err != nil {
				c.log.Warn("persist identity", zap.Error(err))
			}
		}
		if err := c.start(sess); err != nil {
			c.log.Error("start session", zap.Error(err))
			return
		}
		c.setStatus(model.StatusOnline)
		c.opts.Listener.LoggedIn(sess.Identity())
	})
}

// Resume starts a session for a stored identity without registering.
func (c *Core) Resume(identity string) error {
	sess, err := c.registrar.Resume(identity)
	if err != nil {
		return err
	}
	if err := c.start(sess); err != nil {
		return err
	}
	c.opts.Listener.LoggedIn(sess.Identity())
	return nil
}

// SelectPeer changes the conversation target at once and polls it in the
// background. Selections take effect in call order.
func (c *Core) SelectPeer(peer string) {
	r := c.current()
	if r == nil {
		return
	}
	r.messages.SetPeer(peer)
	r.jobs.push(func() {
		c.report(r, r.messages.Poll(r.ctx))
	})
}

// ComposeAndSend sends text to the peer selected at call time. Blank text or
// no selected peer is ignored. Sends reach the servers in call order. A
// failed send is dropped silently.
func (c *Core) ComposeAndSend(text string) {
	r := c.current()
	if r == nil {
		return
	}
	peer := r.messages.Peer()
	if strings.TrimSpace(text) == "" || peer == "" {
		return
	}
	r.jobs.push(func() {
		sent, err := r.sender.Send(r.ctx, r.sess.Identity(), peer, text)
		c.report(r, err)
		if sent && c.isCurrent(r) {
			c.opts.Listener.Sent(text)
		}
	})
}

// Logout stops polling and drops the session. Results of in-flight
// operations of the old session are discarded.
func (c *Core) Logout() {
	c.mu.Lock()
	r := c.active
	c.active = nil
	c.status = model.StatusUnknown
	c.mu.Unlock()
	if r == nil {
		return
	}
	r.cancel()
	r.sched.Stop()
	c.log.Info("logged out", zap.String("session", r.sess.ID().String()))
}

// Close logs out and waits for background work to finish.
func (c *Core) Close() {
	c.Logout()
	c.cancel()
	c.wg.Wait()
}

// Identity returns the local identity, or "" when logged out.
func (c *Core) Identity() string {
	if r := c.current(); r != nil {
		return r.sess.Identity()
	}
	return ""
}

// Peers returns the current PeerSet.
func (c *Core) Peers() []string {
	if r := c.current(); r != nil {
		return r.presence.Peers()
	}
	return []string{}
}

// SelectedPeer returns the conversation target, or "".
func (c *Core) SelectedPeer() string {
	if r := c.current(); r != nil {
		return r.messages.Peer()
	}
	return ""
}

// Transcript returns the current transcript.
func (c *Core) Transcript() model.Transcript {
	if r := c.current(); r != nil {
		return r.messages.Transcript()
	}
	return model.Transcript{Entries: []model.Entry{}}
}

// HomeServer returns the advisory home server, or "".
func (c *Core) HomeServer() string {
	if r := c.current(); r != nil {
		return r.sess.HomeServer()
	}
	return ""
}

// Status returns the connectivity state.
func (c *Core) Status() model.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *Core) start(sess *session.Session) error {
	c.Logout()

	r := &run{sess: sess, jobs: newQueue()}
	r.ctx, r.cancel = context.WithCancel(c.ctx)
	out := &sessionSink{core: c, run: r}
	client := sess.Client()
	r.presence = service.NewPresencePoller(client, sess.Identity(), out, c.log)
	r.messages = service.NewMessagePoller(client, sess.Identity(), out, c.log)
	r.sender = service.NewMessageSender(client, r.messages, c.log)
	r.sched = scheduler.New(c.log,
		scheduler.Task{Name: "presence", Every: c.opts.UsersEvery, Run: c.tick(r, r.presence.Poll)},
		scheduler.Task{Name: "messages", Every: c.opts.MessagesEvery, Run: c.tick(r, r.messages.Poll)},
	)

	c.mu.Lock()
	if c.ctx.Err() != nil {
		c.mu.Unlock()
		r.cancel()
		return context.Canceled
	}
	c.active = r
	c.mu.Unlock()

	if err := r.sched.Start(r.ctx); err != nil {
		return err
	}
	c.goBackground(func() { r.jobs.run(r.ctx) })
	c.log.Info("session started",
		zap.String("identity", sess.Identity()),
		zap.String("session", sess.ID().String()),
	)
	c.goBackground(func() { c.report(r, r.presence.Poll(r.ctx)) })
	return nil
}

func (c *Core) tick(r *run, poll func(context.Context) error) func(context.Context) error {
	return func(ctx context.Context) error {
		err := poll(ctx)
		c.report(r, err)
		return err
	}
}

// report turns an operation outcome into a status. Failures are never
// surfaced beyond that.
func (c *Core) report(r *run, err error) {
	if !c.isCurrent(r) || errors.Is(err, context.Canceled) {
		return
	}
	if err != nil {
		c.log.Warn("operation failed, keeping last state",
			zap.String("session", r.sess.ID().String()),
			zap.Error(err),
		)
		c.setStatus(model.StatusDegraded)
		return
	}
	c.setStatus(model.StatusOnline)
}

func (c *Core) setStatus(s model.Status) {
	c.mu.Lock()
	changed := c.status != s
	c.status = s
	c.mu.Unlock()
	if changed {
		c.opts.Listener.StatusChanged(s)
	}
}

func (c *Core) current() *run {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

func (c *Core) isCurrent(r *run) bool { return c.current() == r }

func (c *Core) goBackground(f func()) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		f()
	}()
}

// sessionSink forwards poller output of one session while it is current.
type sessionSink struct {
	core *Core
	run  *run
}

func (s *sessionSink) PeersChanged(peers []string) {
	if s.core.isCurrent(s.run) {
		s.core.opts.Listener.PeersChanged(peers)
	}
}

func (s *sessionSink) TranscriptChanged(t model.Transcript) {
	if s.core.isCurrent(s.run) {
		s.core.opts.Listener.TranscriptChanged(t)
	}
}

type nopListener struct{}

func (nopListener) LoggedIn(string)                   {}
func (nopListener) LoginFailed(error)                 {}
func (nopListener) PeersChanged([]string)             {}
func (nopListener) TranscriptChanged(model.Transcript) {}
func (nopListener) Sent(string)                       {}
func (nopListener) StatusChanged(model.Status)        {}
