package testserver

import (
	"sort"

	"github.com/gin-gonic/gin"

	"socialclient/models"
)

func (s *Server) getFriends(c *gin.Context) {
	userID := currentUserID(c)

	s.mu.Lock()
	defer s.mu.Unlock()

	friends := []models.User{}
	for _, id := range s.friendIDs(userID) {
		friends = append(friends, s.publicUser(id))
	}
	sort.Slice(friends, func(i, j int) bool { return friends[i].Username < friends[j].Username })

	success(c, friends)
}

func (s *Server) incomingRequests(c *gin.Context) {
	userID := currentUserID(c)
	s.pendingRequests(c, func(r *friendRequest) bool { return r.toID == userID })
}

func (s *Server) sentRequests(c *gin.Context) {
	userID := currentUserID(c)
	s.pendingRequests(c, func(r *friendRequest) bool { return r.fromID == userID })
}

// pendingRequests answers the matching pending requests, newest first.
func (s *Server) pendingRequests(c *gin.Context, keep func(*friendRequest) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []*friendRequest
	for _, r := range s.requests {
		if r.status == "pending" && keep(r) {
			matched = append(matched, r)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].id > matched[j].id })

	requests := make([]models.FriendRequest, 0, len(matched))
	for _, r := range matched {
		requests = append(requests, s.requestView(r))
	}
	success(c, requests)
}

func (s *Server) sendFriendRequest(c *gin.Context) {
	toID, ok := paramID(c, "id")
	if !ok {
		return
	}
	userID := currentUserID(c)

	if toID == userID {
		badRequest(c, "cannot send a friend request to yourself")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.members[toID]; !exists {
		notFound(c, "user not found")
		return
	}
	if s.areFriends(userID, toID) {
		conflict(c, "already friends")
		return
	}
	if s.pendingBetween(userID, toID) != nil {
		conflict(c, "friend request already exists")
		return
	}

	r := &friendRequest{
		id:        s.id(),
		fromID:    userID,
		toID:      toID,
		status:    "pending",
		createdAt: s.now(),
	}
	s.requests[r.id] = r

	created(c, s.requestView(r))
}

// answerRequest loads a pending request addressed to the current user.
func (s *Server) answerRequest(c *gin.Context, verb string) *friendRequest {
	requestID, ok := paramID(c, "id")
	if !ok {
		return nil
	}

	r, exists := s.requests[requestID]
	if !exists {
		notFound(c, "friend request not found")
		return nil
	}
	if r.toID != currentUserID(c) {
		forbidden(c, "You can only "+verb+" requests sent to you")
		return nil
	}
	if r.status != "pending" {
		badRequest(c, "Request is not pending")
		return nil
	}
	return r
}

func (s *Server) acceptFriendRequest(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.answerRequest(c, "accept")
	if r == nil {
		return
	}
	r.status = "accepted"
	s.friends[newPair(r.fromID, r.toID)] = s.now()

	success(c, s.requestView(r))
}

func (s *Server) rejectFriendRequest(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.answerRequest(c, "reject")
	if r == nil {
		return
	}
	r.status = "rejected"

	success(c, s.requestView(r))
}

func (s *Server) removeFriend(c *gin.Context) {
	friendID, ok := paramID(c, "id")
	if !ok {
		return
	}
	userID := currentUserID(c)

	s.mu.Lock()
	defer s.mu.Unlock()

	key := newPair(userID, friendID)
	if _, exists := s.friends[key]; !exists {
		notFound(c, "friendship not found")
		return
	}
	delete(s.friends, key)
	noContent(c)
}
