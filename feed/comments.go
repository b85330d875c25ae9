package feed

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"socialclient/models"
	"socialclient/utils"
)

// CommentPanel is the expandable comment list under one post. Comment
// counters are not tracked here; they belong to the post collections and
// are refreshed through the refresh callback.
type CommentPanel struct {
	ledger  *Ledger
	postID  int64
	refresh func(context.Context) error

	mu       sync.Mutex
	open     bool
	comments []models.Comment
	issued   uint64
	adding   bool
	deleting map[int64]bool
	closed   bool
}

func (p *CommentPanel) IsOpen() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.open
}

func (p *CommentPanel) Comments() []models.Comment {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.Comment(nil), p.comments...)
}

// Toggle closes an open panel without touching the network, or fetches the
// full comment list and opens a closed one. It reports whether the panel is
// open afterwards.
func (p *CommentPanel) Toggle(ctx context.Context) (bool, error) {
	p.mu.Lock()
	p.issued++
	seq := p.issued
	if p.open {
		p.open = false
		p.comments = nil
		p.mu.Unlock()
		return false, nil
	}
	p.mu.Unlock()

	comments, err := p.ledger.backend.Comments(ctx, p.postID)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || seq != p.issued {
		return p.open, nil
	}
	if err != nil {
		p.ledger.logger.Warn("comments_load_failed", zap.Int64("post_id", p.postID), zap.Error(err))
		return false, err
	}
	p.comments = comments
	p.open = true
	return true, nil
}

// Add posts a comment and appends the server's copy to the open list.
// Blank text is rejected without a request.
func (p *CommentPanel) Add(ctx context.Context, text string) (*models.Comment, error) {
	content, err := utils.NonEmpty(text)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	if p.adding {
		p.mu.Unlock()
		return nil, utils.ErrInFlight
	}
	p.adding = true
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		p.adding = false
		p.mu.Unlock()
	}()

	comment, err := p.ledger.backend.CreateComment(ctx, p.postID, content)
	if err != nil {
		p.ledger.logger.Warn("comment_create_failed", zap.Int64("post_id", p.postID), zap.Error(err))
		if utils.Resync(err) {
			p.refreshCounters(ctx)
		}
		return nil, err
	}

	p.mu.Lock()
	if p.open && !p.closed {
		p.comments = append(p.comments, *comment)
	}
	p.mu.Unlock()

	p.refreshCounters(ctx)
	return comment, nil
}

// Adding reports whether an Add call is waiting on the backend.
func (p *CommentPanel) Adding() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.adding
}

// Delete removes commentID after confirmation. A comment the backend no
// longer has is dropped from the list as well.
func (p *CommentPanel) Delete(ctx context.Context, commentID int64) error {
	if !p.ledger.confirmed("Delete this comment?") {
		return utils.Cancelled("comment deletion cancelled")
	}

	p.mu.Lock()
	if p.deleting[commentID] {
		p.mu.Unlock()
		return utils.ErrInFlight
	}
	p.deleting[commentID] = true
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		delete(p.deleting, commentID)
		p.mu.Unlock()
	}()

	err := p.ledger.backend.DeleteComment(ctx, commentID)
	if err != nil && !errors.Is(err, utils.ErrNotFound) {
		p.ledger.logger.Warn("comment_delete_failed", zap.Int64("comment_id", commentID), zap.Error(err))
		return err
	}

	p.mu.Lock()
	if !p.closed {
		kept := p.comments[:0]
		for _, c := range p.comments {
			if c.ID != commentID {
				kept = append(kept, c)
			}
		}
		p.comments = kept
	}
	p.mu.Unlock()

	p.refreshCounters(ctx)
	return err
}

func (p *CommentPanel) refreshCounters(ctx context.Context) {
	if p.refresh == nil {
		return
	}
	if err := p.refresh(ctx); err != nil {
		p.ledger.logger.Warn("comment_counter_refresh_failed", zap.Int64("post_id", p.postID), zap.Error(err))
	}
}

// Close detaches the panel from its view.
func (p *CommentPanel) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
}
