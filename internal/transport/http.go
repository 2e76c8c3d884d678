package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/and161185/o1chat/internal/api"
	"github.com/and161185/o1chat/internal/errs"
	"github.com/and161185/o1chat/internal/model"
)

// DefaultTimeout bounds a single attempt.
const DefaultTimeout = 5 * time.Second

const maxBody = 4 << 20

// HTTP implements Transport over JSON request/response bodies.
type HTTP struct {
	client  *http.Client
	timeout time.Duration
	log     *zap.Logger
}

var _ Transport = (*HTTP)(nil)

// NewHTTP constructs an HTTP transport. A nil client means http.DefaultClient,
// a non-positive timeout means DefaultTimeout.
func NewHTTP(client *http.Client, timeout time.Duration, log *zap.Logger) *HTTP {
	if client == nil {
		client = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &HTTP{client: client, timeout: timeout, log: log}
}

// Register posts {username} to /register; any 2xx is success.
func (h *HTTP) Register(ctx context.Context, server, username string) error {
	return h.do(ctx, OpRegister, server, http.MethodPost, api.PathRegister, nil, api.RegisterRequest{Username: username}, nil)
}

// ListUsers gets /users. A missing "users" field is an empty list; a null
// body or field is malformed.
func (h *HTTP) ListUsers(ctx context.Context, server string) ([]string, error) {
	var out *api.UsersReply
	if err := h.do(ctx, OpUsers, server, http.MethodGet, api.PathUsers, nil, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		return nil, malformed(server, OpUsers, errNullBody)
	}
	users, err := out.List()
	if err != nil {
		return nil, malformed(server, OpUsers, err)
	}
	return users, nil
}

// FetchMessages gets /messages?user1=&user2=.
func (h *HTTP) FetchMessages(ctx context.Context, server, user1, user2 string) ([]model.Message, error) {
	q := url.Values{}
	q.Set(api.QueryUser1, user1)
	q.Set(api.QueryUser2, user2)

	var out *api.MessagesReply
	if err := h.do(ctx, OpMessages, server, http.MethodGet, api.PathMessages, q, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		return nil, malformed(server, OpMessages, errNullBody)
	}
	msgs, err := out.List()
	if err != nil {
		return nil, malformed(server, OpMessages, err)
	}
	return msgs, nil
}

// Send posts {sender, recipient, message} to /send; any 2xx is success.
func (h *HTTP) Send(ctx context.Context, server string, m model.Message) error {
	return h.do(ctx, OpSend, server, http.MethodPost, api.PathSend, nil, api.ToSendRequest(m), nil)
}

func (h *HTTP) do(ctx context.Context, op Op, server, method, path string, q url.Values, in, out any) error {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	u := strings.TrimRight(server, "/") + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return &Failure{Server: server, Op: op, Kind: errs.ErrUnreachable, Err: err}
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return &Failure{Server: server, Op: op, Kind: errs.ErrUnreachable, Err: err}
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := h.client.Do(req)
	if err != nil {
		return &Failure{Server: server, Op: op, Kind: classify(ctx, err), Err: err}
	}
	defer resp.Body.Close()

	h.log.Debug("attempt",
		zap.String("op", string(op)),
		zap.String("server", server),
		zap.Int("status", resp.StatusCode),
		zap.Duration("dur", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBody))
		return &Failure{Server: server, Op: op, Kind: errs.ErrBadStatus, Status: resp.StatusCode}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBody))
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(out); err != nil {
		kind := errs.ErrMalformedResponse
		if ctx.Err() != nil {
			kind = classify(ctx, err)
		}
		return &Failure{Server: server, Op: op, Kind: kind, Err: err}
	}
	return nil
}

var errNullBody = errors.New("null body")

func malformed(server string, op Op, err error) *Failure {
	return &Failure{Server: server, Op: op, Kind: errs.ErrMalformedResponse, Err: err}
}

// classify maps a client error to a failure kind.
func classify(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return errs.ErrTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return errs.ErrTimeout
	}
	return errs.ErrUnreachable
}
