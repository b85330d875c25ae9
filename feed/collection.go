package feed

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"socialclient/models"
	"socialclient/utils"
)

// Collection is one list of posts on screen: the feed or a profile.
type Collection struct {
	ledger *Ledger
	owner  int64 // author of every post in the list, 0 for the feed
	fetch  func(context.Context) ([]models.Post, error)

	mu       sync.Mutex
	posts    []models.Post
	loaded   bool
	issued   uint64
	applied  uint64
	creating bool
	closed   bool
}

func newCollection(l *Ledger, owner int64, fetch func(context.Context) ([]models.Post, error)) *Collection {
	return &Collection{ledger: l, owner: owner, fetch: fetch}
}

// Load replaces the list with the backend's. A response older than one
// already applied is dropped.
func (c *Collection) Load(ctx context.Context) error {
	c.mu.Lock()
	c.issued++
	seq := c.issued
	c.mu.Unlock()

	posts, err := c.fetch(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || seq <= c.applied {
		return nil
	}
	if err != nil {
		return err
	}
	c.applied = seq
	c.loaded = true
	c.posts = posts
	return nil
}

func (c *Collection) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

func (c *Collection) Posts() []models.Post {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Post(nil), c.posts...)
}

func (c *Collection) Post(postID int64) (models.Post, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range c.posts {
		if p.ID == postID {
			return p, true
		}
	}
	return models.Post{}, false
}

// Create publishes text and puts the server's post at the head of the list.
// Blank text is rejected without a request.
func (c *Collection) Create(ctx context.Context, text string) (*models.Post, error) {
	content, err := utils.NonEmpty(text)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.creating {
		c.mu.Unlock()
		return nil, utils.ErrInFlight
	}
	c.creating = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.creating = false
		c.mu.Unlock()
	}()

	post, err := c.ledger.backend.CreatePost(ctx, content)
	if err != nil {
		c.ledger.logger.Warn("post_create_failed", zap.Error(err))
		return nil, err
	}

	c.mu.Lock()
	if !c.closed && (c.owner == 0 || c.owner == post.Author.ID) {
		// Loads issued before the post existed must not overwrite it.
		c.issued++
		c.applied = c.issued
		c.posts = append([]models.Post{*post}, without(c.posts, post.ID)...)
	}
	c.mu.Unlock()
	return post, nil
}

func without(posts []models.Post, postID int64) []models.Post {
	out := make([]models.Post, 0, len(posts))
	for _, p := range posts {
		if p.ID != postID {
			out = append(out, p)
		}
	}
	return out
}

// Creating reports whether a Create call is waiting on the backend.
func (c *Collection) Creating() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.creating
}

// Remove drops postID from the list. It is the removal callback handed to
// Ledger.DeletePost.
func (c *Collection) Remove(postID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	kept := c.posts[:0]
	for _, p := range c.posts {
		if p.ID != postID {
			kept = append(kept, p)
		}
	}
	c.posts = kept
}

// ApplyLike writes the backend's like verdict into the post.
func (c *Collection) ApplyLike(postID int64, result models.LikeResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	for i := range c.posts {
		if c.posts[i].ID == postID {
			c.posts[i].IsLiked = result.Liked
			c.posts[i].LikesCount = result.LikesCount
		}
	}
}

// ToggleLike toggles the like on postID and applies the verdict here and in
// any other collection passed as also.
func (c *Collection) ToggleLike(ctx context.Context, postID int64, also ...*Collection) (*models.LikeResult, error) {
	apply := []func(int64, models.LikeResult){c.ApplyLike}
	for _, other := range also {
		apply = append(apply, other.ApplyLike)
	}
	result, err := c.ledger.ToggleLike(ctx, postID, apply...)
	if err != nil {
		c.resync(ctx, err)
	}
	return result, err
}

// Delete removes postID after confirmation from this collection and any
// other collection passed as also.
func (c *Collection) Delete(ctx context.Context, postID int64, also ...*Collection) error {
	onDeleted := []func(int64){c.Remove}
	for _, other := range also {
		onDeleted = append(onDeleted, other.Remove)
	}
	err := c.ledger.DeletePost(ctx, postID, onDeleted...)
	if err != nil {
		c.resync(ctx, err)
	}
	return err
}

func (c *Collection) resync(ctx context.Context, err error) {
	if !utils.Resync(err) {
		return
	}
	if loadErr := c.Load(ctx); loadErr != nil && !errors.Is(loadErr, context.Canceled) {
		c.ledger.logger.Warn("posts_resync_failed", zap.Error(loadErr))
	}
}

// Close detaches the collection from its view.
func (c *Collection) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}
