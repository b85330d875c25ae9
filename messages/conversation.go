package messages

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"socialclient/models"
	"socialclient/utils"
)

// Conversation is the open thread with one counterpart. Opening another
// counterpart supersedes any load still in flight.
type Conversation struct {
	backend  Backend
	identity Identity
	logger   *zap.Logger

	mu        sync.Mutex
	userID    int64
	profile   *models.Profile
	messages  []models.Message
	opens     uint64
	refreshes uint64
	sending   bool
	closed    bool
}

func NewConversation(backend Backend, identity Identity, logger *zap.Logger) *Conversation {
	return &Conversation{
		backend:  backend,
		identity: identity,
		logger:   utils.OrNop(logger),
	}
}

// Open loads the thread with userID together with that user's profile.
// Both must succeed. If a later Open was issued meanwhile, the result is
// dropped.
func (c *Conversation) Open(ctx context.Context, userID int64) error {
	c.mu.Lock()
	c.opens++
	seq := c.opens
	c.mu.Unlock()

	var (
		messages []models.Message
		profile  *models.Profile
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		messages, err = c.backend.Messages(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		profile, err = c.backend.User(gctx, userID)
		return err
	})
	err := g.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || seq != c.opens {
		c.logger.Debug("conversation_stale_load_dropped", zap.Int64("user_id", userID))
		return nil
	}
	if err != nil {
		c.logger.Warn("conversation_load_failed", zap.Int64("user_id", userID), zap.Error(err))
		return err
	}
	c.refreshes++
	c.userID = userID
	c.profile = profile
	c.messages = ordered(messages)
	return nil
}

// Refresh refetches the messages of the open conversation and merges them
// into the thread; messages already shown are kept. The result is dropped
// when the conversation was reopened or refreshed again meanwhile.
func (c *Conversation) Refresh(ctx context.Context) error {
	c.mu.Lock()
	userID := c.userID
	c.refreshes++
	seq := c.refreshes
	c.mu.Unlock()
	if userID == 0 {
		return utils.Validation("no conversation is open")
	}

	messages, err := c.backend.Messages(ctx, userID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || seq != c.refreshes || c.userID != userID {
		return nil
	}
	if err != nil {
		return err
	}
	c.messages = merge(c.messages, messages)
	return nil
}

// Send delivers text to the open counterpart and places the server's copy
// in timestamp order. Blank text and a send issued while another is in
// flight are rejected without a request.
func (c *Conversation) Send(ctx context.Context, text string) (*models.Message, error) {
	content, err := utils.NonEmpty(text)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	userID := c.userID
	switch {
	case userID == 0:
		c.mu.Unlock()
		return nil, utils.Validation("no conversation is open")
	case c.sending:
		c.mu.Unlock()
		return nil, utils.ErrInFlight
	}
	c.sending = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.sending = false
		c.mu.Unlock()
	}()

	msg, err := c.backend.SendMessage(ctx, userID, content)
	if err != nil {
		c.logger.Warn("message_send_failed", zap.Int64("user_id", userID), zap.Error(err))
		return nil, err
	}

	c.mu.Lock()
	if !c.closed && c.userID == userID {
		c.messages = insert(c.messages, *msg)
	}
	c.mu.Unlock()
	return msg, nil
}

// Sending reports whether a Send is waiting on the backend.
func (c *Conversation) Sending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sending
}

func (c *Conversation) CounterpartID() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userID
}

func (c *Conversation) Counterpart() *models.Profile {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.profile == nil {
		return nil
	}
	profile := *c.profile
	return &profile
}

func (c *Conversation) Messages() []models.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Message(nil), c.messages...)
}

// IsOwn reports whether msg was sent by the signed-in user.
func (c *Conversation) IsOwn(msg models.Message) bool {
	id := c.identity.ID()
	return id != 0 && msg.Sender.ID == id
}

func (c *Conversation) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

func ordered(messages []models.Message) []models.Message {
	out := append([]models.Message(nil), messages...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// merge adds a server snapshot to held. A snapshot taken before a local
// send completed does not remove the sent message.
func merge(held, snapshot []models.Message) []models.Message {
	out := append([]models.Message(nil), held...)
	for _, msg := range ordered(snapshot) {
		out = insert(out, msg)
	}
	return out
}

// insert places msg after every message not newer than it, replacing an
// existing copy with the same id.
func insert(messages []models.Message, msg models.Message) []models.Message {
	for i := range messages {
		if messages[i].ID == msg.ID {
			messages[i] = msg
			return messages
		}
	}
	i := sort.Search(len(messages), func(i int) bool {
		return messages[i].CreatedAt.After(msg.CreatedAt)
	})
	messages = append(messages, models.Message{})
	copy(messages[i+1:], messages[i:])
	messages[i] = msg
	return messages
}
