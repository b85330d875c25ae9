package api

import (
	"context"

	"github.com/valyala/fasthttp"

	"socialclient/models"
)

func (c *Client) Friends(ctx context.Context) ([]models.User, error) {
	friends := []models.User{}
	if err := c.get(ctx, "/friends", "/friends", &friends); err != nil {
		return nil, err
	}
	return friends, nil
}

func (c *Client) IncomingRequests(ctx context.Context) ([]models.FriendRequest, error) {
	return c.requests(ctx, "/friends/requests")
}

func (c *Client) SentRequests(ctx context.Context) ([]models.FriendRequest, error) {
	return c.requests(ctx, "/friends/sent")
}

func (c *Client) requests(ctx context.Context, route string) ([]models.FriendRequest, error) {
	requests := []models.FriendRequest{}
	if err := c.get(ctx, route, route, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

func (c *Client) SendFriendRequest(ctx context.Context, userID int64) (*models.FriendRequest, error) {
	return c.requestAction(ctx, "/friends/send/{id}", idPath("/friends/send/%d", userID))
}

func (c *Client) AcceptFriendRequest(ctx context.Context, requestID int64) (*models.FriendRequest, error) {
	return c.requestAction(ctx, "/friends/accept/{id}", idPath("/friends/accept/%d", requestID))
}

func (c *Client) RejectFriendRequest(ctx context.Context, requestID int64) (*models.FriendRequest, error) {
	return c.requestAction(ctx, "/friends/reject/{id}", idPath("/friends/reject/%d", requestID))
}

func (c *Client) requestAction(ctx context.Context, route, path string) (*models.FriendRequest, error) {
	var request models.FriendRequest
	if err := c.send(ctx, fasthttp.MethodPost, route, path, nil, &request); err != nil {
		return nil, err
	}
	return &request, nil
}

func (c *Client) RemoveFriend(ctx context.Context, userID int64) error {
	return c.send(ctx, fasthttp.MethodDelete, "/friends/remove/{id}", idPath("/friends/remove/%d", userID), nil, nil)
}
