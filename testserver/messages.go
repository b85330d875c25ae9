package testserver

import (
	"sort"
	"strings"

	"github.com/gin-gonic/gin"

	"socialclient/models"
)

func (s *Server) getConversations(c *gin.Context) {
	userID := currentUserID(c)

	s.mu.Lock()
	defer s.mu.Unlock()

	latest := make(map[int64]*message)
	unread := make(map[int64]int)
	for _, m := range s.messages {
		var other int64
		switch userID {
		case m.senderID:
			other = m.recipientID
		case m.recipientID:
			other = m.senderID
			if !m.isRead {
				unread[other]++
			}
		default:
			continue
		}
		if last, ok := latest[other]; !ok || !m.createdAt.Before(last.createdAt) {
			latest[other] = m
		}
	}

	conversations := make([]models.ConversationSummary, 0, len(latest))
	for other, m := range latest {
		last := s.messageView(m)
		conversations = append(conversations, models.ConversationSummary{
			User:        s.publicUser(other),
			LastMessage: &last,
			UnreadCount: unread[other],
		})
	}
	sort.Slice(conversations, func(i, j int) bool {
		a, b := conversations[i].LastMessage, conversations[j].LastMessage
		if a.CreatedAt.Equal(b.CreatedAt) {
			return a.ID > b.ID
		}
		return a.CreatedAt.After(b.CreatedAt)
	})

	success(c, conversations)
}

// getMessages answers the thread with another user, oldest first, and marks
// the messages addressed to the caller as read.
func (s *Server) getMessages(c *gin.Context) {
	otherID, ok := paramID(c, "id")
	if !ok {
		return
	}
	userID := currentUserID(c)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.members[otherID]; !exists {
		notFound(c, "user not found")
		return
	}

	var thread []*message
	for _, m := range s.messages {
		if (m.senderID == userID && m.recipientID == otherID) ||
			(m.senderID == otherID && m.recipientID == userID) {
			thread = append(thread, m)
		}
	}
	sort.SliceStable(thread, func(i, j int) bool {
		return thread[i].createdAt.Before(thread[j].createdAt)
	})

	messages := make([]models.Message, 0, len(thread))
	for _, m := range thread {
		if m.recipientID == userID {
			m.isRead = true
		}
		messages = append(messages, s.messageView(m))
	}
	success(c, messages)
}

func (s *Server) sendMessage(c *gin.Context) {
	var req models.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		badRequest(c, "content must not be empty")
		return
	}
	userID := currentUserID(c)
	if req.RecipientID == userID {
		badRequest(c, "cannot send a message to yourself")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.members[req.RecipientID]; !exists {
		notFound(c, "user not found")
		return
	}

	m := &message{
		id:          s.id(),
		senderID:    userID,
		recipientID: req.RecipientID,
		content:     content,
		createdAt:   s.now(),
	}
	s.messages = append(s.messages, m)

	created(c, s.messageView(m))
}
