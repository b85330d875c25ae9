// Package messages keeps the conversation list and the open conversation
// coherent while the user navigates and sends faster than the backend
// answers.
package messages

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"socialclient/models"
	"socialclient/utils"
)

type Backend interface {
	Conversations(ctx context.Context) ([]models.ConversationSummary, error)
	Messages(ctx context.Context, userID int64) ([]models.Message, error)
	SendMessage(ctx context.Context, recipientID int64, content string) (*models.Message, error)
	User(ctx context.Context, userID int64) (*models.Profile, error)
}

// Identity is the signed-in user, used to tell own messages apart.
type Identity interface {
	ID() int64
}

// Inbox is the conversation list. It is replaced wholesale on every load;
// unread counters are whatever the backend reports.
type Inbox struct {
	backend Backend
	logger  *zap.Logger

	mu            sync.Mutex
	conversations []models.ConversationSummary
	loaded        bool
	issued        uint64
	applied       uint64
	closed        bool
}

func NewInbox(backend Backend, logger *zap.Logger) *Inbox {
	return &Inbox{backend: backend, logger: utils.OrNop(logger)}
}

func (in *Inbox) Load(ctx context.Context) error {
	in.mu.Lock()
	in.issued++
	seq := in.issued
	in.mu.Unlock()

	conversations, err := in.backend.Conversations(ctx)

	in.mu.Lock()
	defer in.mu.Unlock()
	if in.closed || seq <= in.applied {
		return nil
	}
	if err != nil {
		in.logger.Warn("conversations_load_failed", zap.Error(err))
		return err
	}
	in.applied = seq
	in.loaded = true
	in.conversations = conversations
	return nil
}

func (in *Inbox) Loaded() bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.loaded
}

func (in *Inbox) Conversations() []models.ConversationSummary {
	in.mu.Lock()
	defer in.mu.Unlock()
	return append([]models.ConversationSummary(nil), in.conversations...)
}

// Unread sums the unread counters of every conversation.
func (in *Inbox) Unread() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	total := 0
	for _, c := range in.conversations {
		total += c.UnreadCount
	}
	return total
}

func (in *Inbox) Close() {
	in.mu.Lock()
	in.closed = true
	in.mu.Unlock()
}

// Preview is the shortened last message shown in the conversation list.
func Preview(c models.ConversationSummary) string {
	if c.LastMessage == nil {
		return ""
	}
	return utils.Truncate(c.LastMessage.Content, utils.PreviewLength)
}
