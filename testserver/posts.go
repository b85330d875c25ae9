package testserver

import (
	"sort"
	"strings"

	"github.com/gin-gonic/gin"

	"socialclient/models"
)

func (s *Server) feed(c *gin.Context) {
	userID := currentUserID(c)

	s.mu.Lock()
	defer s.mu.Unlock()

	visible := map[int64]bool{userID: true}
	for _, id := range s.friendIDs(userID) {
		visible[id] = true
	}
	success(c, s.postsWhere(userID, func(p *post) bool {
		return visible[p.authorID]
	}))
}

func bindContent(c *gin.Context) (string, bool) {
	var req models.ContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return "", false
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		badRequest(c, "content must not be empty")
		return "", false
	}
	return content, true
}

func (s *Server) createPost(c *gin.Context) {
	content, ok := bindContent(c)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := &post{
		id:        s.id(),
		authorID:  currentUserID(c),
		content:   content,
		createdAt: s.now(),
	}
	s.posts[p.id] = p

	created(c, s.postView(p, p.authorID))
}

func (s *Server) deletePost(c *gin.Context) {
	postID, ok := paramID(c, "id")
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, exists := s.posts[postID]
	if !exists {
		notFound(c, "post not found")
		return
	}
	if p.authorID != currentUserID(c) {
		forbidden(c, "you can only delete your own posts")
		return
	}

	delete(s.posts, postID)
	delete(s.likes, postID)
	for id, cm := range s.comments {
		if cm.postID == postID {
			delete(s.comments, id)
		}
	}
	noContent(c)
}

func (s *Server) toggleLike(c *gin.Context) {
	postID, ok := paramID(c, "id")
	if !ok {
		return
	}
	userID := currentUserID(c)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.posts[postID]; !exists {
		notFound(c, "post not found")
		return
	}

	likers := s.likes[postID]
	if likers == nil {
		likers = make(map[int64]bool)
		s.likes[postID] = likers
	}
	liked := !likers[userID]
	if liked {
		likers[userID] = true
	} else {
		delete(likers, userID)
	}

	success(c, models.LikeResult{Liked: liked, LikesCount: len(likers)})
}

func (s *Server) getComments(c *gin.Context) {
	postID, ok := paramID(c, "id")
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.posts[postID]; !exists {
		notFound(c, "post not found")
		return
	}

	var matched []*comment
	for _, cm := range s.comments {
		if cm.postID == postID {
			matched = append(matched, cm)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].createdAt.Equal(matched[j].createdAt) {
			return matched[i].id < matched[j].id
		}
		return matched[i].createdAt.Before(matched[j].createdAt)
	})

	comments := make([]models.Comment, 0, len(matched))
	for _, cm := range matched {
		comments = append(comments, s.commentView(cm))
	}
	success(c, comments)
}

func (s *Server) createComment(c *gin.Context) {
	postID, ok := paramID(c, "id")
	if !ok {
		return
	}
	content, ok := bindContent(c)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.posts[postID]; !exists {
		notFound(c, "post not found")
		return
	}

	cm := &comment{
		id:        s.id(),
		postID:    postID,
		authorID:  currentUserID(c),
		content:   content,
		createdAt: s.now(),
	}
	s.comments[cm.id] = cm

	created(c, s.commentView(cm))
}

func (s *Server) deleteComment(c *gin.Context) {
	commentID, ok := paramID(c, "id")
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cm, exists := s.comments[commentID]
	if !exists {
		notFound(c, "comment not found")
		return
	}
	if cm.authorID != currentUserID(c) {
		forbidden(c, "you can only delete your own comments")
		return
	}

	delete(s.comments, commentID)
	noContent(c)
}
