// Package feed keeps posts, their like state and their comment panels in
// step with the backend.
package feed

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"socialclient/models"
	"socialclient/utils"
)

type Backend interface {
	Feed(ctx context.Context) ([]models.Post, error)
	UserPosts(ctx context.Context, userID int64) ([]models.Post, error)
	CreatePost(ctx context.Context, content string) (*models.Post, error)
	DeletePost(ctx context.Context, postID int64) error
	Comments(ctx context.Context, postID int64) ([]models.Comment, error)
	CreateComment(ctx context.Context, postID int64, content string) (*models.Comment, error)
	DeleteComment(ctx context.Context, commentID int64) error
	ToggleLike(ctx context.Context, postID int64) (*models.LikeResult, error)
}

// Confirmer asks the user to approve a destructive action.
type Confirmer interface {
	Confirm(prompt string) bool
}

// Ledger owns the per-post actions shared by every collection that shows
// the post.
type Ledger struct {
	backend Backend
	confirm Confirmer
	logger  *zap.Logger

	mu       sync.Mutex
	inFlight map[string]bool
}

func NewLedger(backend Backend, confirm Confirmer, logger *zap.Logger) *Ledger {
	return &Ledger{
		backend:  backend,
		confirm:  confirm,
		logger:   utils.OrNop(logger),
		inFlight: make(map[string]bool),
	}
}

// Feed returns a collection of posts by the user and their friends, newest
// first.
func (l *Ledger) Feed() *Collection {
	return newCollection(l, 0, l.backend.Feed)
}

// ProfilePosts returns a collection of the posts written by userID.
func (l *Ledger) ProfilePosts(userID int64) *Collection {
	return newCollection(l, userID, func(ctx context.Context) ([]models.Post, error) {
		return l.backend.UserPosts(ctx, userID)
	})
}

// Comments returns a closed comment panel for postID. refresh reloads the
// collection holding the post so its comment counter follows changes made
// through the panel.
func (l *Ledger) Comments(postID int64, refresh func(context.Context) error) *CommentPanel {
	return &CommentPanel{
		ledger:   l,
		postID:   postID,
		refresh:  refresh,
		deleting: make(map[int64]bool),
	}
}

// ToggleLike flips the like on postID in one round trip. The server's
// verdict is handed to every apply callback; nothing is guessed locally.
func (l *Ledger) ToggleLike(ctx context.Context, postID int64, apply ...func(int64, models.LikeResult)) (*models.LikeResult, error) {
	release, err := l.begin("like", postID)
	if err != nil {
		return nil, err
	}
	defer release()

	result, err := l.backend.ToggleLike(ctx, postID)
	if err != nil {
		l.logger.Warn("like_toggle_failed", zap.Int64("post_id", postID), zap.Error(err))
		return nil, err
	}
	for _, fn := range apply {
		fn(postID, *result)
	}
	return result, nil
}

// Liking reports whether a like toggle for postID is waiting on the backend.
func (l *Ledger) Liking(postID int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inFlight[key("like", postID)]
}

// DeletePost removes postID after confirmation and notifies every
// onDeleted callback so each collection can drop it.
func (l *Ledger) DeletePost(ctx context.Context, postID int64, onDeleted ...func(int64)) error {
	if !l.confirmed("Delete this post?") {
		return utils.Cancelled("post deletion cancelled")
	}

	release, err := l.begin("delete_post", postID)
	if err != nil {
		return err
	}
	defer release()

	if err := l.backend.DeletePost(ctx, postID); err != nil {
		l.logger.Warn("post_delete_failed", zap.Int64("post_id", postID), zap.Error(err))
		return err
	}
	for _, fn := range onDeleted {
		fn(postID)
	}
	return nil
}

func (l *Ledger) confirmed(prompt string) bool {
	return l.confirm != nil && l.confirm.Confirm(prompt)
}

func (l *Ledger) begin(action string, id int64) (func(), error) {
	k := key(action, id)

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.inFlight[k] {
		return nil, utils.ErrInFlight
	}
	l.inFlight[k] = true
	return func() {
		l.mu.Lock()
		delete(l.inFlight, k)
		l.mu.Unlock()
	}, nil
}

func key(action string, id int64) string {
	return fmt.Sprintf("%s:%d", action, id)
}
