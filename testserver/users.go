package testserver

import (
	"sort"
	"strings"

	"github.com/gin-gonic/gin"

	"socialclient/models"
)

func (s *Server) searchUsers(c *gin.Context) {
	query := strings.ToLower(strings.TrimSpace(c.Query("search")))

	s.mu.Lock()
	defer s.mu.Unlock()

	users := []models.User{}
	for _, m := range s.members {
		if query != "" &&
			!strings.Contains(strings.ToLower(m.Username), query) &&
			!strings.Contains(strings.ToLower(m.FirstName), query) &&
			!strings.Contains(strings.ToLower(m.LastName), query) {
			continue
		}
		users = append(users, s.publicUser(m.ID))
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })

	success(c, users)
}

func (s *Server) getUser(c *gin.Context) {
	userID, ok := paramID(c, "id")
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.members[userID]; !exists {
		notFound(c, "user not found")
		return
	}
	success(c, s.profile(currentUserID(c), userID))
}

func (s *Server) updateUser(c *gin.Context) {
	userID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if userID != currentUserID(c) {
		forbidden(c, "you can only edit your own profile")
		return
	}

	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.members[userID]
	m.FirstName = strings.TrimSpace(req.FirstName)
	m.LastName = strings.TrimSpace(req.LastName)
	m.Bio = ""
	if req.Bio != nil {
		m.Bio = *req.Bio
	}
	m.AvatarURL = ""
	if req.AvatarURL != nil {
		m.AvatarURL = *req.AvatarURL
	}

	success(c, m.User)
}

func (s *Server) userPosts(c *gin.Context) {
	userID, ok := paramID(c, "id")
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.members[userID]; !exists {
		notFound(c, "user not found")
		return
	}
	success(c, s.postsWhere(currentUserID(c), func(p *post) bool {
		return p.authorID == userID
	}))
}
