package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialclient/models"
	"socialclient/testserver"
	"socialclient/utils"
)

func newTestClient(t *testing.T, baseURL string, retries int) *Client {
	t.Helper()
	return New(Options{
		BaseURL: baseURL,
		Timeout: 2 * time.Second,
		Retries: retries,
	})
}

func startBackend(t *testing.T) (*Client, *testserver.Server) {
	t.Helper()
	srv, backend := testserver.Start()
	t.Cleanup(srv.Close)
	return newTestClient(t, srv.URL+"/api", 0), backend
}

func register(t *testing.T, c *Client, username string) *models.User {
	t.Helper()
	user, err := c.Register(context.Background(), models.RegisterRequest{
		Username:  username,
		Email:     username + "@example.com",
		Password:  "password123",
		FirstName: "Test",
		LastName:  "User",
	})
	require.NoError(t, err)
	return user
}

func TestClient_AuthRoundTrip(t *testing.T) {
	c, _ := startBackend(t)
	ctx := context.Background()

	user := register(t, c, "alice")
	assert.Equal(t, "alice", user.Username)
	assert.NotEmpty(t, c.creds.Token())

	me, err := c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, user.ID, me.ID)

	require.NoError(t, c.Logout(ctx))
	assert.Empty(t, c.creds.Token())

	_, err = c.Me(ctx)
	assert.ErrorIs(t, err, utils.ErrUnauthenticated)

	_, err = c.Login(ctx, models.LoginRequest{Username: "alice", Password: "wrong-password"})
	assert.ErrorIs(t, err, utils.ErrUnauthenticated)

	_, err = c.Login(ctx, models.LoginRequest{Username: "alice", Password: "password123"})
	require.NoError(t, err)
	me, err = c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, user.ID, me.ID)
}

func TestClient_ClassifiesStatus(t *testing.T) {
	tests := []struct {
		status  int
		body    string
		want    error
		message string
	}{
		{http.StatusBadRequest, `{"error":"content must not be empty"}`, utils.ErrValidation, "content must not be empty"},
		{http.StatusUnprocessableEntity, `{"detail":"bad field"}`, utils.ErrValidation, "bad field"},
		{http.StatusUnauthorized, `{"detail":"token expired"}`, utils.ErrUnauthenticated, "token expired"},
		{http.StatusForbidden, `{"message":"not yours"}`, utils.ErrForbidden, "not yours"},
		{http.StatusNotFound, ``, utils.ErrNotFound, "not found"},
		{http.StatusConflict, `{"error":"already friends"}`, utils.ErrConflict, "already friends"},
		{http.StatusInternalServerError, `boom`, utils.ErrTransport, ""},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := newTestClient(t, srv.URL, 0)
			_, err := c.CreatePost(context.Background(), "hello")

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			if tt.message != "" {
				assert.Equal(t, tt.message, utils.Message(err))
			}
		})
	}
}

func TestClient_RetriesReadsOnServerError(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":7,"content":"hi","likes_count":2}]`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, 2)
	posts, err := c.Feed(context.Background())

	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, int64(7), posts[0].ID)
	assert.Equal(t, 2, posts[0].LikesCount)
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
}

func TestClient_DoesNotRetryWrites(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, 3)
	_, err := c.ToggleLike(context.Background(), 1)

	assert.ErrorIs(t, err, utils.ErrTransport)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, 3)
	_, err := c.User(context.Background(), 42)

	assert.ErrorIs(t, err, utils.ErrNotFound)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestClient_UnreachableBackend(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := newTestClient(t, url, 0)
	_, err := c.Feed(context.Background())

	assert.ErrorIs(t, err, utils.ErrTransport)
}

func TestClient_CancelledContext(t *testing.T) {
	c := newTestClient(t, "http://127.0.0.1:1", 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Feed(ctx)
	assert.ErrorIs(t, err, utils.ErrCancelled)
}

func TestClient_SendsHeadersAndBody(t *testing.T) {
	var (
		auth      string
		requestID string
		ctype     string
		path      string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		requestID = r.Header.Get("X-Request-ID")
		ctype = r.Header.Get("Content-Type")
		path = r.URL.Path
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":3,"content":"hi","author":{"id":1,"username":"alice"}}`))
	}))
	defer srv.Close()

	creds := &MemoryCredentials{}
	require.NoError(t, creds.SetToken("secret-token"))
	c := New(Options{BaseURL: srv.URL + "/", Credentials: creds})

	comment, err := c.CreateComment(context.Background(), 9, "hi")
	require.NoError(t, err)

	assert.Equal(t, "Bearer secret-token", auth)
	assert.NotEmpty(t, requestID)
	assert.Equal(t, "application/json", ctype)
	assert.Equal(t, "/posts/9/comments", path)
	assert.Equal(t, int64(3), comment.ID)
	assert.Equal(t, "alice", comment.Author.Username)
}

func TestClient_RecordsMetrics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	c := New(Options{BaseURL: srv.URL, Metrics: metrics})

	_, err := c.Messages(context.Background(), 5)
	require.NoError(t, err)
	_, err = c.Messages(context.Background(), 6)
	require.NoError(t, err)

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.requests.WithLabelValues("GET", "/messages/conversation/{id}", "200")))
	assert.Equal(t, 1, testutil.CollectAndCount(metrics.duration))
}

func TestClient_AgainstBackend(t *testing.T) {
	c, _ := startBackend(t)
	ctx := context.Background()
	alice := register(t, c, "alice")

	post, err := c.CreatePost(ctx, "first post")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, post.Author.ID)
	assert.Zero(t, post.LikesCount)
	assert.Zero(t, post.CommentsCount)

	result, err := c.ToggleLike(ctx, post.ID)
	require.NoError(t, err)
	assert.True(t, result.Liked)
	assert.Equal(t, 1, result.LikesCount)

	_, err = c.CreateComment(ctx, post.ID, "nice")
	require.NoError(t, err)

	feed, err := c.Feed(ctx)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.True(t, feed[0].IsLiked)
	assert.Equal(t, 1, feed[0].CommentsCount)

	users, err := c.SearchUsers(ctx, "ALI")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "alice", users[0].Username)

	bio := "hello there"
	updated, err := c.UpdateUser(ctx, alice.ID, models.UpdateProfileRequest{FirstName: "Alice", LastName: "Liddell", Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "Alice Liddell", updated.DisplayName())
	assert.Equal(t, bio, updated.Bio)

	require.NoError(t, c.DeletePost(ctx, post.ID))
	err = c.DeletePost(ctx, post.ID)
	assert.ErrorIs(t, err, utils.ErrNotFound)
}
