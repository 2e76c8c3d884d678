// Package transport performs single best-effort protocol attempts against one server.
package transport

import (
	"context"
	"fmt"

	"github.com/and161185/o1chat/internal/model"
)

// Op names a logical protocol operation.
type Op string

const (
	OpRegister Op = "register"
	OpUsers    Op = "users"
	OpMessages Op = "messages"
	OpSend     Op = "send"
)

// Transport runs exactly one attempt of an operation against one server.
// Implementations bound every call by their own per-attempt timeout and
// report failures as *Failure values.
type Transport interface {
	// Register announces username to server.
	Register(ctx context.Context, server, username string) error
	// ListUsers returns the usernames known to server in server order.
	ListUsers(ctx context.Context, server string) ([]string, error)
	// FetchMessages returns the full history between user1 and user2.
	FetchMessages(ctx context.Context, server, user1, user2 string) ([]model.Message, error)
	// Send submits one message. Not idempotent.
	Send(ctx context.Context, server string, m model.Message) error
}

// Failure describes why one attempt against one server failed.
// Kind is one of the errs transport sentinels.
type Failure struct {
	Server string
	Op     Op
	Kind   error
	Status int // HTTP status for errs.ErrBadStatus
	Err    error
}

func (f *Failure) Error() string {
	msg := fmt.Sprintf("%s %s: %v", f.Op, f.Server, f.Kind)
	if f.Status != 0 {
		msg += fmt.Sprintf(" (%d)", f.Status)
	}
	if f.Err != nil {
		msg += ": " + f.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind and the underlying cause to errors.Is/As.
func (f *Failure) Unwrap() []error {
	if f.Err == nil {
		return []error{f.Kind}
	}
	return []error{f.Kind, f.Err}
}
