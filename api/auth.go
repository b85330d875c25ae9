package api

import (
	"context"

	"github.com/valyala/fasthttp"

	"socialclient/models"
)

func (c *Client) Login(ctx context.Context, req models.LoginRequest) (*models.User, error) {
	return c.authenticate(ctx, "/auth/login", req)
}

func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	return c.authenticate(ctx, "/auth/register", req)
}

func (c *Client) authenticate(ctx context.Context, route string, in interface{}) (*models.User, error) {
	var out models.AuthResponse
	if err := c.send(ctx, fasthttp.MethodPost, route, route, in, &out); err != nil {
		return nil, err
	}
	if err := c.creds.SetToken(out.Token); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// Logout drops the local credential even when the backend call fails.
func (c *Client) Logout(ctx context.Context) error {
	err := c.send(ctx, fasthttp.MethodPost, "/auth/logout", "/auth/logout", nil, nil)
	if clearErr := c.creds.ClearToken(); clearErr != nil && err == nil {
		err = clearErr
	}
	return err
}

func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.get(ctx, "/auth/me", "/auth/me", &user); err != nil {
		return nil, err
	}
	return &user, nil
}
