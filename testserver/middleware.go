package testserver

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	userIDKey = "user_id"
	tokenKey  = "token"
)

func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			unauthorized(c, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			unauthorized(c, "invalid authorization header format")
			return
		}

		claims, err := s.parseToken(parts[1])
		if err != nil {
			unauthorized(c, "invalid or expired token")
			return
		}

		s.mu.Lock()
		revoked := s.revoked[parts[1]]
		_, exists := s.members[claims.UserID]
		s.mu.Unlock()
		if revoked || !exists {
			unauthorized(c, "invalid or expired token")
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Set(tokenKey, parts[1])
		c.Next()
	}
}

func currentUserID(c *gin.Context) int64 {
	return c.GetInt64(userIDKey)
}
