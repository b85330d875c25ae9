package testserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"socialclient/models"
)

func (s *Server) register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		fail(c, http.StatusInternalServerError, "failed to hash password")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.memberByUsername(req.Username) != nil {
		badRequest(c, "username already exists")
		return
	}
	if s.emailTaken(req.Email) {
		badRequest(c, "email already exists")
		return
	}

	m := &member{
		User: models.User{
			ID:        s.id(),
			Username:  req.Username,
			Email:     strings.ToLower(req.Email),
			FirstName: req.FirstName,
			LastName:  req.LastName,
			CreatedAt: s.now(),
		},
		password: hashedPassword,
	}
	s.members[m.ID] = m

	token, err := s.generateToken(m.ID)
	if err != nil {
		fail(c, http.StatusInternalServerError, "failed to generate token")
		return
	}

	created(c, models.AuthResponse{Token: token, User: m.User})
}

func (s *Server) login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.memberByUsername(req.Username)
	if m == nil {
		unauthorized(c, "invalid username or password")
		return
	}
	if err := bcrypt.CompareHashAndPassword(m.password, []byte(req.Password)); err != nil {
		unauthorized(c, "invalid username or password")
		return
	}

	token, err := s.generateToken(m.ID)
	if err != nil {
		fail(c, http.StatusInternalServerError, "failed to generate token")
		return
	}

	success(c, models.AuthResponse{Token: token, User: m.User})
}

func (s *Server) logout(c *gin.Context) {
	s.mu.Lock()
	s.revoked[c.GetString(tokenKey)] = true
	s.mu.Unlock()
	success(c, gin.H{"status": "logged out"})
}

func (s *Server) me(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	success(c, s.members[currentUserID(c)].User)
}
