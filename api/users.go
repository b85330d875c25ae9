package api

import (
	"context"
	"net/url"

	"github.com/valyala/fasthttp"

	"socialclient/models"
)

func (c *Client) User(ctx context.Context, userID int64) (*models.Profile, error) {
	var profile models.Profile
	if err := c.get(ctx, "/users/{id}", idPath("/users/%d", userID), &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (c *Client) UpdateUser(ctx context.Context, userID int64, req models.UpdateProfileRequest) (*models.User, error) {
	var user models.User
	if err := c.send(ctx, fasthttp.MethodPut, "/users/{id}", idPath("/users/%d", userID), req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) SearchUsers(ctx context.Context, query string) ([]models.User, error) {
	users := []models.User{}
	path := "/users?search=" + url.QueryEscape(query)
	if err := c.get(ctx, "/users", path, &users); err != nil {
		return nil, err
	}
	return users, nil
}
