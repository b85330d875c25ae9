// Package session holds the identity of the signed-in user for the whole
// client run. Every other component reads it through a Context.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"socialclient/models"
	"socialclient/utils"
)

type Backend interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.User, error)
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*models.User, error)
	UpdateUser(ctx context.Context, userID int64, req models.UpdateProfileRequest) (*models.User, error)
}

// IdentityCache keeps the last resolved identity between runs.
type IdentityCache interface {
	SaveIdentity(user *models.User) error
	LoadIdentity() (*models.User, error)
	ClearIdentity() error
}

type Option func(*Context)

func WithCache(cache IdentityCache) Option {
	return func(c *Context) { c.cache = cache }
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Context) { c.logger = utils.OrNop(logger) }
}

type Context struct {
	mu       sync.RWMutex
	user     *models.User
	backend  Backend
	cache    IdentityCache
	logger   *zap.Logger
	validate *validator.Validate
}

// ProfileUpdate is the editable part of the current user's profile. Empty
// bio or avatar clears the field.
type ProfileUpdate struct {
	FirstName string `json:"first_name" validate:"required,max=150"`
	LastName  string `json:"last_name" validate:"required,max=150"`
	Bio       string `json:"bio"`
	AvatarURL string `json:"avatar_url" validate:"omitempty,url"`
}

func New(backend Backend, opts ...Option) *Context {
	c := &Context{
		backend:  backend,
		logger:   zap.NewNop(),
		validate: newValidator(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Init resolves the identity behind the stored credential. A rejected
// credential leaves the context signed out without error. When the backend
// cannot be reached the cached identity, if any, is used instead.
func (c *Context) Init(ctx context.Context) error {
	user, err := c.backend.Me(ctx)
	switch {
	case err == nil:
		c.setUser(user)
		return nil
	case errors.Is(err, utils.ErrUnauthenticated):
		c.clear()
		return nil
	case errors.Is(err, utils.ErrTransport) && c.cache != nil:
		cached, cacheErr := c.cache.LoadIdentity()
		if cacheErr != nil || cached == nil {
			return err
		}
		c.logger.Warn("session_offline",
			zap.Int64("user_id", cached.ID),
			zap.Error(err),
		)
		c.mu.Lock()
		c.user = cached
		c.mu.Unlock()
		return nil
	}
	return err
}

// Current returns a copy of the signed-in user, or nil.
func (c *Context) Current() *models.User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.user == nil {
		return nil
	}
	user := *c.user
	return &user
}

// ID returns the signed-in user's id, 0 when signed out.
func (c *Context) ID() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.user == nil {
		return 0
	}
	return c.user.ID
}

func (c *Context) Authenticated() bool {
	return c.ID() != 0
}

// RequireAuth returns the current user or an Unauthenticated error, which
// views treat as "go to login".
func (c *Context) RequireAuth() (*models.User, error) {
	if user := c.Current(); user != nil {
		return user, nil
	}
	return nil, utils.Unauthenticated("login required")
}

func (c *Context) Login(ctx context.Context, username, password string) (*models.User, error) {
	req := models.LoginRequest{
		Username: strings.TrimSpace(username),
		Password: password,
	}
	if err := c.validate.Struct(req); err != nil {
		return nil, validationError(err)
	}

	user, err := c.backend.Login(ctx, req)
	if err != nil {
		return nil, err
	}
	c.setUser(user)
	c.logger.Info("session_login", zap.Int64("user_id", user.ID))
	return c.Current(), nil
}

func (c *Context) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	if err := c.validate.Struct(req); err != nil {
		return nil, validationError(err)
	}

	user, err := c.backend.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	c.setUser(user)
	c.logger.Info("session_register", zap.Int64("user_id", user.ID))
	return c.Current(), nil
}

// Logout always ends the local session. A failed backend call is only
// logged.
func (c *Context) Logout(ctx context.Context) {
	userID := c.ID()
	if err := c.backend.Logout(ctx); err != nil {
		c.logger.Warn("session_logout_failed", zap.Int64("user_id", userID), zap.Error(err))
	}
	c.clear()
}

func (c *Context) UpdateProfile(ctx context.Context, update ProfileUpdate) (*models.User, error) {
	current, err := c.RequireAuth()
	if err != nil {
		return nil, err
	}

	update.FirstName = strings.TrimSpace(update.FirstName)
	update.LastName = strings.TrimSpace(update.LastName)
	update.AvatarURL = strings.TrimSpace(update.AvatarURL)
	if err := c.validate.Struct(update); err != nil {
		return nil, validationError(err)
	}

	user, err := c.backend.UpdateUser(ctx, current.ID, models.UpdateProfileRequest{
		FirstName: update.FirstName,
		LastName:  update.LastName,
		Bio:       utils.NullIfEmpty(update.Bio),
		AvatarURL: utils.NullIfEmpty(update.AvatarURL),
	})
	if err != nil {
		return nil, c.Observe(err)
	}
	if user.Email == "" {
		user.Email = current.Email
	}
	c.setUser(user)
	return c.Current(), nil
}

// Observe signs the session out when err says the credential is no longer
// accepted. It returns err unchanged.
func (c *Context) Observe(err error) error {
	if errors.Is(err, utils.ErrUnauthenticated) && c.Authenticated() {
		c.logger.Info("session_expired", zap.Int64("user_id", c.ID()))
		c.clear()
	}
	return err
}

func (c *Context) setUser(user *models.User) {
	c.mu.Lock()
	c.user = user
	c.mu.Unlock()

	if c.cache != nil {
		if err := c.cache.SaveIdentity(user); err != nil {
			c.logger.Warn("identity_cache_save_failed", zap.Error(err))
		}
	}
}

func (c *Context) clear() {
	c.mu.Lock()
	c.user = nil
	c.mu.Unlock()

	if c.cache != nil {
		if err := c.cache.ClearIdentity(); err != nil {
			c.logger.Warn("identity_cache_clear_failed", zap.Error(err))
		}
	}
}
