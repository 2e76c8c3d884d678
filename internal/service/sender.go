package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/and161185/o1chat/internal/model"
)

// MessageSender submits outgoing messages and refreshes the transcript
// right after a successful send.
type MessageSender struct {
	dst     MessageSubmitter
	refresh Refresher
	log     *zap.Logger
}

// NewMessageSender constructs a sender; refresh may be nil.
func NewMessageSender(dst MessageSubmitter, refresh Refresher, log *zap.Logger) *MessageSender {
	if log == nil {
		log = zap.NewNop()
	}
	return &MessageSender{dst: dst, refresh: refresh, log: log}
}

// Send submits content from local to peer. Blank content or an empty peer
// is a no-op and reports sent=false with a nil error. On success exactly
// one refresh follows; its outcome does not change the result. A failed
// send is not retried and the message is dropped.
func (s *MessageSender) Send(ctx context.Context, local, peer, content string) (sent bool, err error) {
	content = strings.TrimSpace(content)
	if content == "" || peer == "" {
		return false, nil
	}

	if err := s.dst.Send(ctx, model.Message{Sender: local, Recipient: peer, Content: content}); err != nil {
		s.log.Warn("send dropped", zap.String("peer", peer), zap.Error(err))
		return false, err
	}

	if s.refresh != nil {
		if err := s.refresh.Refresh(ctx); err != nil {
			s.log.Debug("refresh after send failed", zap.String("peer", peer), zap.Error(err))
		}
	}
	return true, nil
}
