// Package testserver is an in-memory implementation of the social REST
// backend. It speaks the same contract as the production service and is
// used to drive the client end to end in tests.
package testserver

import (
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type Server struct {
	*store
	router   *gin.Engine
	secret   []byte
	tokenTTL time.Duration
	cost     int
}

func New() *Server {
	gin.SetMode(gin.TestMode)

	s := &Server{
		store:    newStore(),
		router:   gin.New(),
		secret:   []byte(uuid.New().String()),
		tokenTTL: time.Hour,
		cost:     bcrypt.MinCost,
	}
	s.router.Use(gin.Recovery())
	s.routes()
	return s
}

// Start serves the backend on a loopback listener. The client base URL is
// the returned server's URL plus "/api".
func Start() (*httptest.Server, *Server) {
	s := New()
	return httptest.NewServer(s), s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// SetClock replaces the timestamp source for new records.
func (s *Server) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Server) routes() {
	r := s.router

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", s.register)
		auth.POST("/login", s.login)
		auth.POST("/logout", s.authMiddleware(), s.logout)
		auth.GET("/me", s.authMiddleware(), s.me)
	}

	protected := api.Group("")
	protected.Use(s.authMiddleware())
	{
		protected.GET("/users", s.searchUsers)
		protected.GET("/users/:id", s.getUser)
		protected.PUT("/users/:id", s.updateUser)
		protected.GET("/users/:id/posts", s.userPosts)

		protected.GET("/feed", s.feed)
		protected.POST("/posts", s.createPost)
		protected.DELETE("/posts/:id", s.deletePost)
		protected.POST("/posts/:id/like", s.toggleLike)
		protected.GET("/posts/:id/comments", s.getComments)
		protected.POST("/posts/:id/comments", s.createComment)
		protected.DELETE("/comments/:id", s.deleteComment)

		protected.GET("/friends", s.getFriends)
		protected.GET("/friends/requests", s.incomingRequests)
		protected.GET("/friends/sent", s.sentRequests)
		protected.POST("/friends/send/:id", s.sendFriendRequest)
		protected.POST("/friends/accept/:id", s.acceptFriendRequest)
		protected.POST("/friends/reject/:id", s.rejectFriendRequest)
		protected.DELETE("/friends/remove/:id", s.removeFriend)

		protected.GET("/messages/conversations", s.getConversations)
		protected.GET("/messages/conversation/:id", s.getMessages)
		protected.POST("/messages/send", s.sendMessage)
	}
}
