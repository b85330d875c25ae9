package api

import (
	"context"

	"github.com/valyala/fasthttp"

	"socialclient/models"
)

func (c *Client) Feed(ctx context.Context) ([]models.Post, error) {
	posts := []models.Post{}
	if err := c.get(ctx, "/feed", "/feed", &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (c *Client) UserPosts(ctx context.Context, userID int64) ([]models.Post, error) {
	posts := []models.Post{}
	if err := c.get(ctx, "/users/{id}/posts", idPath("/users/%d/posts", userID), &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (c *Client) CreatePost(ctx context.Context, content string) (*models.Post, error) {
	var post models.Post
	in := models.ContentRequest{Content: content}
	if err := c.send(ctx, fasthttp.MethodPost, "/posts", "/posts", in, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

func (c *Client) DeletePost(ctx context.Context, postID int64) error {
	return c.send(ctx, fasthttp.MethodDelete, "/posts/{id}", idPath("/posts/%d", postID), nil, nil)
}

func (c *Client) Comments(ctx context.Context, postID int64) ([]models.Comment, error) {
	comments := []models.Comment{}
	if err := c.get(ctx, "/posts/{id}/comments", idPath("/posts/%d/comments", postID), &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

func (c *Client) CreateComment(ctx context.Context, postID int64, content string) (*models.Comment, error) {
	var comment models.Comment
	in := models.ContentRequest{Content: content}
	if err := c.send(ctx, fasthttp.MethodPost, "/posts/{id}/comments", idPath("/posts/%d/comments", postID), in, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

func (c *Client) DeleteComment(ctx context.Context, commentID int64) error {
	return c.send(ctx, fasthttp.MethodDelete, "/comments/{id}", idPath("/comments/%d", commentID), nil, nil)
}

func (c *Client) ToggleLike(ctx context.Context, postID int64) (*models.LikeResult, error) {
	var result models.LikeResult
	if err := c.send(ctx, fasthttp.MethodPost, "/posts/{id}/like", idPath("/posts/%d/like", postID), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
