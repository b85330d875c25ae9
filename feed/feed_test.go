package feed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"socialclient/api"
	"socialclient/models"
	"socialclient/testserver"
	"socialclient/utils"
)

type mockBackend struct {
	mock.Mock
}

func (m *mockBackend) Feed(ctx context.Context) ([]models.Post, error) {
	args := m.Called(ctx)
	posts, _ := args.Get(0).([]models.Post)
	return posts, args.Error(1)
}

func (m *mockBackend) UserPosts(ctx context.Context, userID int64) ([]models.Post, error) {
	args := m.Called(ctx, userID)
	posts, _ := args.Get(0).([]models.Post)
	return posts, args.Error(1)
}

func (m *mockBackend) CreatePost(ctx context.Context, content string) (*models.Post, error) {
	args := m.Called(ctx, content)
	post, _ := args.Get(0).(*models.Post)
	return post, args.Error(1)
}

func (m *mockBackend) DeletePost(ctx context.Context, postID int64) error {
	return m.Called(ctx, postID).Error(0)
}

func (m *mockBackend) Comments(ctx context.Context, postID int64) ([]models.Comment, error) {
	args := m.Called(ctx, postID)
	comments, _ := args.Get(0).([]models.Comment)
	return comments, args.Error(1)
}

func (m *mockBackend) CreateComment(ctx context.Context, postID int64, content string) (*models.Comment, error) {
	args := m.Called(ctx, postID, content)
	comment, _ := args.Get(0).(*models.Comment)
	return comment, args.Error(1)
}

func (m *mockBackend) DeleteComment(ctx context.Context, commentID int64) error {
	return m.Called(ctx, commentID).Error(0)
}

func (m *mockBackend) ToggleLike(ctx context.Context, postID int64) (*models.LikeResult, error) {
	args := m.Called(ctx, postID)
	result, _ := args.Get(0).(*models.LikeResult)
	return result, args.Error(1)
}

type confirmer bool

func (c confirmer) Confirm(string) bool { return bool(c) }

func post(id, author int64) models.Post {
	return models.Post{ID: id, Author: models.User{ID: author}, Content: "post"}
}

func TestCollection_CreateRejectsBlankText(t *testing.T) {
	backend := new(mockBackend)
	c := NewLedger(backend, nil, nil).Feed()

	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := c.Create(context.Background(), text)
		assert.ErrorIs(t, err, utils.ErrEmptyText)
		assert.ErrorIs(t, err, utils.ErrValidation)
	}
	assert.False(t, c.Creating())
	backend.AssertNotCalled(t, "CreatePost", mock.Anything, mock.Anything)
}

func TestCollection_CreatePrepends(t *testing.T) {
	ctx := context.Background()
	backend := new(mockBackend)
	backend.On("Feed", ctx).Return([]models.Post{post(1, 2)}, nil)
	backend.On("UserPosts", ctx, int64(2)).Return([]models.Post{post(1, 2)}, nil)
	backend.On("CreatePost", ctx, "hello").Return(&models.Post{ID: 5, Author: models.User{ID: 1}, Content: "hello"}, nil)

	l := NewLedger(backend, nil, nil)
	feed := l.Feed()
	other := l.ProfilePosts(2)
	require.NoError(t, feed.Load(ctx))
	require.NoError(t, other.Load(ctx))

	created, err := feed.Create(ctx, "  hello ")
	require.NoError(t, err)
	assert.Equal(t, int64(5), created.ID)

	posts := feed.Posts()
	require.Len(t, posts, 2)
	assert.Equal(t, int64(5), posts[0].ID)

	_, err = other.Create(ctx, "hello")
	require.NoError(t, err)
	assert.Len(t, other.Posts(), 1)
}

func TestCollection_CreateFailureReenablesInput(t *testing.T) {
	ctx := context.Background()
	backend := new(mockBackend)
	backend.On("CreatePost", ctx, "hello").Return(nil, utils.Transport("POST /posts", errors.New("reset"))).Once()

	c := NewLedger(backend, nil, nil).Feed()
	_, err := c.Create(ctx, "hello")

	assert.ErrorIs(t, err, utils.ErrTransport)
	assert.False(t, c.Creating())
	assert.Empty(t, c.Posts())
	backend.AssertNumberOfCalls(t, "CreatePost", 1)
}

func TestToggleLike_AppliesServerVerdictEverywhere(t *testing.T) {
	ctx := context.Background()
	backend := new(mockBackend)
	backend.On("Feed", ctx).Return([]models.Post{post(1, 2), post(3, 2)}, nil)
	backend.On("UserPosts", ctx, int64(2)).Return([]models.Post{post(1, 2)}, nil)
	backend.On("ToggleLike", ctx, int64(1)).Return(&models.LikeResult{Liked: true, LikesCount: 4}, nil)

	l := NewLedger(backend, nil, nil)
	feed := l.Feed()
	profile := l.ProfilePosts(2)
	require.NoError(t, feed.Load(ctx))
	require.NoError(t, profile.Load(ctx))

	result, err := feed.ToggleLike(ctx, 1, profile)
	require.NoError(t, err)
	assert.True(t, result.Liked)

	for _, c := range []*Collection{feed, profile} {
		p, ok := c.Post(1)
		require.True(t, ok)
		assert.True(t, p.IsLiked)
		assert.Equal(t, 4, p.LikesCount)
	}
	untouched, _ := feed.Post(3)
	assert.False(t, untouched.IsLiked)
	assert.Zero(t, untouched.LikesCount)
}

func TestToggleLike_FailureLeavesStateAlone(t *testing.T) {
	ctx := context.Background()
	backend := new(mockBackend)
	backend.On("Feed", ctx).Return([]models.Post{post(1, 2)}, nil).Once()
	backend.On("ToggleLike", ctx, int64(1)).Return(nil, utils.Transport("POST /posts/{id}/like", errors.New("timeout")))

	l := NewLedger(backend, nil, nil)
	feed := l.Feed()
	require.NoError(t, feed.Load(ctx))

	_, err := feed.ToggleLike(ctx, 1)
	assert.ErrorIs(t, err, utils.ErrTransport)

	p, _ := feed.Post(1)
	assert.False(t, p.IsLiked)
	assert.False(t, l.Liking(1))
	backend.AssertNumberOfCalls(t, "Feed", 1)
}

func TestToggleLike_InFlightGuard(t *testing.T) {
	ctx := context.Background()
	backend := new(mockBackend)
	entered := make(chan struct{})
	proceed := make(chan struct{})
	backend.On("ToggleLike", ctx, int64(1)).
		Run(func(mock.Arguments) {
			close(entered)
			<-proceed
		}).
		Return(&models.LikeResult{Liked: true, LikesCount: 1}, nil).Once()

	l := NewLedger(backend, nil, nil)
	done := make(chan error)
	go func() {
		_, err := l.ToggleLike(ctx, 1)
		done <- err
	}()

	<-entered
	assert.True(t, l.Liking(1))
	_, err := l.ToggleLike(ctx, 1)
	assert.ErrorIs(t, err, utils.ErrInFlight)

	close(proceed)
	require.NoError(t, <-done)
	assert.False(t, l.Liking(1))
}

func TestDeletePost(t *testing.T) {
	ctx := context.Background()

	t.Run("declined", func(t *testing.T) {
		backend := new(mockBackend)
		l := NewLedger(backend, confirmer(false), nil)

		err := l.DeletePost(ctx, 1)

		assert.ErrorIs(t, err, utils.ErrCancelled)
		backend.AssertNotCalled(t, "DeletePost", mock.Anything, mock.Anything)
	})

	t.Run("removed from every collection", func(t *testing.T) {
		backend := new(mockBackend)
		backend.On("Feed", ctx).Return([]models.Post{post(1, 1), post(2, 3)}, nil)
		backend.On("UserPosts", ctx, int64(1)).Return([]models.Post{post(1, 1)}, nil)
		backend.On("DeletePost", ctx, int64(1)).Return(nil)

		l := NewLedger(backend, confirmer(true), nil)
		feed := l.Feed()
		profile := l.ProfilePosts(1)
		require.NoError(t, feed.Load(ctx))
		require.NoError(t, profile.Load(ctx))

		require.NoError(t, feed.Delete(ctx, 1, profile))

		_, ok := feed.Post(1)
		assert.False(t, ok)
		assert.Len(t, feed.Posts(), 1)
		assert.Empty(t, profile.Posts())
	})

	t.Run("forbidden keeps the post", func(t *testing.T) {
		backend := new(mockBackend)
		backend.On("Feed", ctx).Return([]models.Post{post(2, 3)}, nil)
		backend.On("DeletePost", ctx, int64(2)).Return(utils.Forbidden("you can only delete your own posts"))

		l := NewLedger(backend, confirmer(true), nil)
		feed := l.Feed()
		require.NoError(t, feed.Load(ctx))

		err := feed.Delete(ctx, 2)
		assert.ErrorIs(t, err, utils.ErrForbidden)
		assert.Len(t, feed.Posts(), 1)
	})
}

func TestCollection_StaleLoadDropped(t *testing.T) {
	ctx := context.Background()
	backend := new(mockBackend)
	entered := make(chan struct{})
	proceed := make(chan struct{})
	backend.On("Feed", ctx).
		Run(func(mock.Arguments) {
			close(entered)
			<-proceed
		}).
		Return([]models.Post{post(1, 1)}, nil).Once()
	backend.On("Feed", ctx).Return([]models.Post{post(2, 1), post(3, 1)}, nil).Once()

	c := NewLedger(backend, nil, nil).Feed()
	done := make(chan error)
	go func() { done <- c.Load(ctx) }()
	<-entered

	require.NoError(t, c.Load(ctx))
	close(proceed)
	require.NoError(t, <-done)

	posts := c.Posts()
	require.Len(t, posts, 2)
	assert.Equal(t, int64(2), posts[0].ID)
}

func TestCollection_CreateSupersedesEarlierLoad(t *testing.T) {
	ctx := context.Background()
	backend := new(mockBackend)
	entered := make(chan struct{})
	proceed := make(chan struct{})
	backend.On("Feed", ctx).
		Run(func(mock.Arguments) {
			close(entered)
			<-proceed
		}).
		Return([]models.Post{post(1, 2)}, nil).Once()
	backend.On("CreatePost", ctx, "fresh").Return(&models.Post{ID: 9, Author: models.User{ID: 1}, Content: "fresh"}, nil)

	c := NewLedger(backend, nil, nil).Feed()
	done := make(chan error)
	go func() { done <- c.Load(ctx) }()
	<-entered

	_, err := c.Create(ctx, "fresh")
	require.NoError(t, err)
	close(proceed)
	require.NoError(t, <-done)

	posts := c.Posts()
	require.NotEmpty(t, posts)
	assert.Equal(t, int64(9), posts[0].ID)
}

func TestCollection_ClosedIgnoresResults(t *testing.T) {
	ctx := context.Background()
	backend := new(mockBackend)
	backend.On("Feed", ctx).Return([]models.Post{post(1, 1)}, nil)

	c := NewLedger(backend, nil, nil).Feed()
	c.Close()

	require.NoError(t, c.Load(ctx))
	assert.Empty(t, c.Posts())
	assert.False(t, c.Loaded())
}

func TestCommentPanel_Toggle(t *testing.T) {
	ctx := context.Background()
	backend := new(mockBackend)
	backend.On("Comments", ctx, int64(1)).Return([]models.Comment{{ID: 10, PostID: 1}}, nil)

	panel := NewLedger(backend, nil, nil).Comments(1, nil)

	open, err := panel.Toggle(ctx)
	require.NoError(t, err)
	assert.True(t, open)
	assert.Len(t, panel.Comments(), 1)

	open, err = panel.Toggle(ctx)
	require.NoError(t, err)
	assert.False(t, open)
	assert.Empty(t, panel.Comments())
	backend.AssertNumberOfCalls(t, "Comments", 1)

	_, err = panel.Toggle(ctx)
	require.NoError(t, err)
	backend.AssertNumberOfCalls(t, "Comments", 2)
}

func TestCommentPanel_ToggleFailureStaysClosed(t *testing.T) {
	ctx := context.Background()
	backend := new(mockBackend)
	backend.On("Comments", ctx, int64(1)).Return(nil, utils.Transport("GET /posts/{id}/comments", errors.New("timeout")))

	panel := NewLedger(backend, nil, nil).Comments(1, nil)
	open, err := panel.Toggle(ctx)

	assert.ErrorIs(t, err, utils.ErrTransport)
	assert.False(t, open)
	assert.False(t, panel.IsOpen())
}

func TestCommentPanel_Add(t *testing.T) {
	ctx := context.Background()
	backend := new(mockBackend)
	backend.On("Comments", ctx, int64(1)).Return([]models.Comment{{ID: 10, PostID: 1}}, nil)
	backend.On("CreateComment", ctx, int64(1), "nice").Return(&models.Comment{ID: 11, PostID: 1, Content: "nice"}, nil)

	refreshed := 0
	panel := NewLedger(backend, nil, nil).Comments(1, func(context.Context) error {
		refreshed++
		return nil
	})
	_, err := panel.Toggle(ctx)
	require.NoError(t, err)

	_, err = panel.Add(ctx, "   ")
	assert.ErrorIs(t, err, utils.ErrEmptyText)
	assert.Zero(t, refreshed)
	backend.AssertNotCalled(t, "CreateComment", mock.Anything, mock.Anything, mock.Anything)

	comment, err := panel.Add(ctx, " nice ")
	require.NoError(t, err)
	assert.Equal(t, int64(11), comment.ID)

	comments := panel.Comments()
	require.Len(t, comments, 2)
	assert.Equal(t, int64(11), comments[1].ID)
	assert.Equal(t, 1, refreshed)
	assert.False(t, panel.Adding())
}

func TestCommentPanel_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("declined", func(t *testing.T) {
		backend := new(mockBackend)
		panel := NewLedger(backend, confirmer(false), nil).Comments(1, nil)

		assert.ErrorIs(t, panel.Delete(ctx, 10), utils.ErrCancelled)
		backend.AssertNotCalled(t, "DeleteComment", mock.Anything, mock.Anything)
	})

	t.Run("removes by id and refreshes counters", func(t *testing.T) {
		backend := new(mockBackend)
		backend.On("Comments", ctx, int64(1)).Return([]models.Comment{{ID: 10}, {ID: 11}, {ID: 12}}, nil)
		backend.On("DeleteComment", ctx, int64(11)).Return(nil)

		refreshed := 0
		panel := NewLedger(backend, confirmer(true), nil).Comments(1, func(context.Context) error {
			refreshed++
			return errors.New("refresh failed")
		})
		_, err := panel.Toggle(ctx)
		require.NoError(t, err)

		require.NoError(t, panel.Delete(ctx, 11))

		comments := panel.Comments()
		require.Len(t, comments, 2)
		assert.Equal(t, int64(10), comments[0].ID)
		assert.Equal(t, int64(12), comments[1].ID)
		assert.Equal(t, 1, refreshed)
	})

	t.Run("already gone", func(t *testing.T) {
		backend := new(mockBackend)
		backend.On("Comments", ctx, int64(1)).Return([]models.Comment{{ID: 10}}, nil)
		backend.On("DeleteComment", ctx, int64(10)).Return(utils.NotFound("comment not found"))

		panel := NewLedger(backend, confirmer(true), nil).Comments(1, nil)
		_, err := panel.Toggle(ctx)
		require.NoError(t, err)

		err = panel.Delete(ctx, 10)
		assert.ErrorIs(t, err, utils.ErrNotFound)
		assert.Empty(t, panel.Comments())
	})
}

func TestLedger_AgainstBackend(t *testing.T) {
	srv, _ := testserver.Start()
	defer srv.Close()
	ctx := context.Background()

	client := api.New(api.Options{BaseURL: srv.URL + "/api", Timeout: 2 * time.Second})
	user, err := client.Register(ctx, models.RegisterRequest{
		Username:  "alice",
		Email:     "alice@example.com",
		Password:  "password123",
		FirstName: "Alice",
		LastName:  "Liddell",
	})
	require.NoError(t, err)

	l := NewLedger(client, confirmer(true), nil)
	feed := l.Feed()
	profile := l.ProfilePosts(user.ID)
	require.NoError(t, feed.Load(ctx))
	require.NoError(t, profile.Load(ctx))

	_, err = feed.Create(ctx, "older")
	require.NoError(t, err)
	created, err := feed.Create(ctx, "hello world")
	require.NoError(t, err)

	posts := feed.Posts()
	require.Len(t, posts, 2)
	assert.Equal(t, created.ID, posts[0].ID)
	assert.Zero(t, posts[0].LikesCount)
	assert.False(t, posts[0].IsLiked)
	assert.Zero(t, posts[0].CommentsCount)

	result, err := feed.ToggleLike(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, result.Liked)
	assert.Equal(t, 1, result.LikesCount)

	result, err = feed.ToggleLike(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, result.Liked)
	assert.Zero(t, result.LikesCount)
	p, _ := feed.Post(created.ID)
	assert.False(t, p.IsLiked)
	assert.Zero(t, p.LikesCount)

	panel := l.Comments(created.ID, feed.Load)
	_, err = panel.Toggle(ctx)
	require.NoError(t, err)
	comment, err := panel.Add(ctx, "first!")
	require.NoError(t, err)
	p, _ = feed.Post(created.ID)
	assert.Equal(t, 1, p.CommentsCount)

	require.NoError(t, panel.Delete(ctx, comment.ID))
	assert.Empty(t, panel.Comments())
	p, _ = feed.Post(created.ID)
	assert.Zero(t, p.CommentsCount)

	require.NoError(t, profile.Load(ctx))
	require.Len(t, profile.Posts(), 2)
	require.NoError(t, feed.Delete(ctx, created.ID, profile))
	_, ok := feed.Post(created.ID)
	assert.False(t, ok)
	_, ok = profile.Post(created.ID)
	assert.False(t, ok)

	require.NoError(t, feed.Load(ctx))
	assert.Len(t, feed.Posts(), 1)
}
