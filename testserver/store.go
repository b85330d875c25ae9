package testserver

import (
	"sort"
	"strings"
	"sync"
	"time"

	"socialclient/models"
)

type member struct {
	models.User
	password []byte
}

type post struct {
	id        int64
	authorID  int64
	content   string
	createdAt time.Time
}

type comment struct {
	id        int64
	postID    int64
	authorID  int64
	content   string
	createdAt time.Time
}

type friendRequest struct {
	id        int64
	fromID    int64
	toID      int64
	status    string
	createdAt time.Time
}

type message struct {
	id          int64
	senderID    int64
	recipientID int64
	content     string
	isRead      bool
	createdAt   time.Time
}

type pair struct{ a, b int64 }

func newPair(x, y int64) pair {
	if x > y {
		x, y = y, x
	}
	return pair{x, y}
}

// store is the backend's in-memory state. Every handler holds mu for the
// whole request, which keeps each endpoint atomic.
type store struct {
	mu       sync.Mutex
	nextID   int64
	members  map[int64]*member
	posts    map[int64]*post
	comments map[int64]*comment
	likes    map[int64]map[int64]bool // post -> user
	requests map[int64]*friendRequest
	friends  map[pair]time.Time
	messages []*message
	revoked  map[string]bool
	now      func() time.Time
}

func newStore() *store {
	return &store{
		members:  make(map[int64]*member),
		posts:    make(map[int64]*post),
		comments: make(map[int64]*comment),
		likes:    make(map[int64]map[int64]bool),
		requests: make(map[int64]*friendRequest),
		friends:  make(map[pair]time.Time),
		revoked:  make(map[string]bool),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *store) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *store) memberByUsername(username string) *member {
	for _, m := range s.members {
		if m.Username == username {
			return m
		}
	}
	return nil
}

func (s *store) emailTaken(email string) bool {
	for _, m := range s.members {
		if strings.EqualFold(m.Email, email) {
			return true
		}
	}
	return false
}

func (s *store) areFriends(x, y int64) bool {
	_, ok := s.friends[newPair(x, y)]
	return ok
}

func (s *store) friendIDs(userID int64) []int64 {
	var ids []int64
	for p := range s.friends {
		switch userID {
		case p.a:
			ids = append(ids, p.b)
		case p.b:
			ids = append(ids, p.a)
		}
	}
	return ids
}

func (s *store) pendingBetween(x, y int64) *friendRequest {
	for _, r := range s.requests {
		if r.status != "pending" {
			continue
		}
		if (r.fromID == x && r.toID == y) || (r.fromID == y && r.toID == x) {
			return r
		}
	}
	return nil
}

func (s *store) publicUser(id int64) models.User {
	m, ok := s.members[id]
	if !ok {
		return models.User{ID: id}
	}
	u := m.User
	u.Email = ""
	return u
}

func (s *store) profile(viewerID, userID int64) models.Profile {
	p := models.Profile{User: s.members[userID].User}
	if viewerID != userID {
		p.Email = ""
	}
	p.IsFriend = s.areFriends(viewerID, userID)
	if r := s.pendingBetween(viewerID, userID); r != nil {
		if r.fromID == viewerID {
			p.FriendRequestStatus = "pending_sent"
		} else {
			p.FriendRequestStatus = "pending_received"
		}
	}
	count := len(s.friendIDs(userID))
	p.FriendsCount = &count
	return p
}

func (s *store) postView(p *post, viewerID int64) models.Post {
	commentsCount := 0
	for _, c := range s.comments {
		if c.postID == p.id {
			commentsCount++
		}
	}
	return models.Post{
		ID:            p.id,
		Author:        s.publicUser(p.authorID),
		Content:       p.content,
		LikesCount:    len(s.likes[p.id]),
		CommentsCount: commentsCount,
		IsLiked:       s.likes[p.id][viewerID],
		CreatedAt:     p.createdAt,
		UpdatedAt:     p.createdAt,
	}
}

// postsWhere returns matching posts newest first.
func (s *store) postsWhere(viewerID int64, keep func(*post) bool) []models.Post {
	var matched []*post
	for _, p := range s.posts {
		if keep(p) {
			matched = append(matched, p)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].createdAt.Equal(matched[j].createdAt) {
			return matched[i].id > matched[j].id
		}
		return matched[i].createdAt.After(matched[j].createdAt)
	})
	out := make([]models.Post, 0, len(matched))
	for _, p := range matched {
		out = append(out, s.postView(p, viewerID))
	}
	return out
}

func (s *store) commentView(c *comment) models.Comment {
	return models.Comment{
		ID:        c.id,
		PostID:    c.postID,
		Author:    s.publicUser(c.authorID),
		Content:   c.content,
		CreatedAt: c.createdAt,
	}
}

func (s *store) requestView(r *friendRequest) models.FriendRequest {
	return models.FriendRequest{
		ID:        r.id,
		FromUser:  s.publicUser(r.fromID),
		ToUser:    s.publicUser(r.toID),
		Status:    r.status,
		CreatedAt: r.createdAt,
	}
}

func (s *store) messageView(m *message) models.Message {
	return models.Message{
		ID:        m.id,
		Sender:    s.publicUser(m.senderID),
		Recipient: s.publicUser(m.recipientID),
		Content:   m.content,
		IsRead:    m.isRead,
		CreatedAt: m.createdAt,
	}
}
