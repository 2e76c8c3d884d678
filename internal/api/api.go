// Package api holds the JSON wire shapes of the chat HTTP protocol and
// their conversions to domain types.
package api

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/and161185/o1chat/internal/errs"
	"github.com/and161185/o1chat/internal/model"
)

// Paths of the four protocol operations.
const (
	PathRegister = "/register"
	PathUsers    = "/users"
	PathMessages = "/messages"
	PathSend     = "/send"
)

// Query parameters of PathMessages.
const (
	QueryUser1 = "user1"
	QueryUser2 = "user2"
)

// RegisterRequest is the body of POST /register.
type RegisterRequest struct {
	Username string `json:"username"`
}

// UsersResponse is the body of GET /users.
type UsersResponse struct {
	Users []string `json:"users"`
}

// WireMessage is one element of MessagesResponse.
type WireMessage struct {
	Sender    string  `json:"sender"`
	Recipient string  `json:"recipient,omitempty"`
	Message   *string `json:"message"`
}

// MessagesResponse is the body of GET /messages.
type MessagesResponse struct {
	Messages []WireMessage `json:"messages"`
}

// SendRequest is the body of POST /send.
type SendRequest struct {
	Sender    string `json:"sender"`
	Recipient string `json:"recipient"`
	Message   string `json:"message"`
}

// --- client -> server ---

// ToSendRequest converts a domain message to its wire request.
func ToSendRequest(m model.Message) SendRequest {
	return SendRequest{Sender: m.Sender, Recipient: m.Recipient, Message: m.Content}
}

// FromSendRequest validates and converts a wire request to a domain message.
func FromSendRequest(in SendRequest) (model.Message, error) {
	if in.Sender == "" || in.Recipient == "" || in.Message == "" {
		return model.Message{}, fmt.Errorf("%w: sender, recipient and message are required", errs.ErrValidation)
	}
	return model.Message{Sender: in.Sender, Recipient: in.Recipient, Content: in.Message}, nil
}

// --- server -> client ---

// ToWireMessages converts domain messages to their wire form.
func ToWireMessages(ms []model.Message) []WireMessage {
	out := make([]WireMessage, 0, len(ms))
	for _, m := range ms {
		content := m.Content
		out = append(out, WireMessage{Sender: m.Sender, Recipient: m.Recipient, Message: &content})
	}
	return out
}

// FromWireMessages converts wire messages to domain messages.
// A message without a sender or a message text makes the whole response malformed.
func FromWireMessages(in []WireMessage) ([]model.Message, error) {
	out := make([]model.Message, 0, len(in))
	for i, w := range in {
		if w.Sender == "" {
			return nil, fmt.Errorf("message[%d]: %w: missing sender", i, errs.ErrMalformedResponse)
		}
		if w.Message == nil {
			return nil, fmt.Errorf("message[%d]: %w: missing message", i, errs.ErrMalformedResponse)
		}
		out = append(out, model.Message{Sender: w.Sender, Recipient: w.Recipient, Content: *w.Message})
	}
	return out, nil
}

// UsersReply is the client view of a /users body.
// A missing "users" field is an empty list; null or a non-list is malformed.
type UsersReply struct {
	Users json.RawMessage `json:"users"`
}

// List decodes the user list.
func (r *UsersReply) List() ([]string, error) {
	users := []string{}
	if err := decodeField("users", r.Users, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// MessagesReply is the client view of a /messages body, with the same
// field rules as UsersReply.
type MessagesReply struct {
	Messages json.RawMessage `json:"messages"`
}

// List decodes and validates the conversation.
func (r *MessagesReply) List() ([]model.Message, error) {
	var wire []WireMessage
	if err := decodeField("messages", r.Messages, &wire); err != nil {
		return nil, err
	}
	return FromWireMessages(wire)
}

func decodeField(name string, raw json.RawMessage, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return fmt.Errorf("%s: %w: null", name, errs.ErrMalformedResponse)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%s: %w: %w", name, errs.ErrMalformedResponse, err)
	}
	return nil
}
