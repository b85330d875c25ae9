// Package friends tracks the current user's relationships: the friends
// list, incoming and outgoing requests, and the actions that move a
// relationship between states.
package friends

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"socialclient/models"
	"socialclient/utils"
)

type Backend interface {
	Friends(ctx context.Context) ([]models.User, error)
	IncomingRequests(ctx context.Context) ([]models.FriendRequest, error)
	SentRequests(ctx context.Context) ([]models.FriendRequest, error)
	SendFriendRequest(ctx context.Context, userID int64) (*models.FriendRequest, error)
	AcceptFriendRequest(ctx context.Context, requestID int64) (*models.FriendRequest, error)
	RejectFriendRequest(ctx context.Context, requestID int64) (*models.FriendRequest, error)
	RemoveFriend(ctx context.Context, userID int64) error
	User(ctx context.Context, userID int64) (*models.Profile, error)
}

// Confirmer asks the user to approve a destructive action.
type Confirmer interface {
	Confirm(prompt string) bool
}

type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// Set names one of the three views of the relationship graph.
type Set string

const (
	SetFriends  Set = "friends"
	SetIncoming Set = "incoming"
	SetSent     Set = "sent"
)

func ParseSet(s string) (Set, error) {
	switch Set(s) {
	case SetFriends, SetIncoming, SetSent:
		return Set(s), nil
	}
	return "", utils.Validation(fmt.Sprintf("unknown tab %q", s))
}

// Manager backs one Friends view. Each set is loaded independently; every
// mutation is followed by a reload of the active set.
type Manager struct {
	backend Backend
	confirm Confirmer
	logger  *zap.Logger

	mu       sync.Mutex
	active   Set
	friends  []models.User
	incoming []models.FriendRequest
	sent     []models.FriendRequest
	loaded   map[Set]bool
	issued   map[Set]uint64
	applied  map[Set]uint64
	inFlight map[string]bool
	closed   bool
}

func NewManager(backend Backend, confirm Confirmer, logger *zap.Logger) *Manager {
	if confirm == nil {
		confirm = ConfirmFunc(func(string) bool { return false })
	}
	return &Manager{
		backend:  backend,
		confirm:  confirm,
		logger:   utils.OrNop(logger),
		active:   SetFriends,
		loaded:   make(map[Set]bool),
		issued:   make(map[Set]uint64),
		applied:  make(map[Set]uint64),
		inFlight: make(map[string]bool),
	}
}

func (m *Manager) Active() Set {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// Switch makes set the active view and fetches it.
func (m *Manager) Switch(ctx context.Context, set Set) error {
	m.mu.Lock()
	m.active = set
	m.mu.Unlock()
	return m.load(ctx, set)
}

// Reload fetches the active set again.
func (m *Manager) Reload(ctx context.Context) error {
	return m.load(ctx, m.Active())
}

func (m *Manager) Friends() []models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.User(nil), m.friends...)
}

func (m *Manager) Incoming() []models.FriendRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.FriendRequest(nil), m.incoming...)
}

func (m *Manager) Sent() []models.FriendRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.FriendRequest(nil), m.sent...)
}

// Loaded reports whether set has been fetched at least once.
func (m *Manager) Loaded(set Set) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loaded[set]
}

// Close detaches the manager from its view. Results arriving later are
// dropped.
func (m *Manager) Close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
}

func (m *Manager) load(ctx context.Context, set Set) error {
	m.mu.Lock()
	m.issued[set]++
	seq := m.issued[set]
	m.mu.Unlock()

	var (
		users    []models.User
		requests []models.FriendRequest
		err      error
	)
	switch set {
	case SetFriends:
		users, err = m.backend.Friends(ctx)
	case SetIncoming:
		requests, err = m.backend.IncomingRequests(ctx)
	case SetSent:
		requests, err = m.backend.SentRequests(ctx)
	default:
		return utils.Validation(fmt.Sprintf("unknown tab %q", set))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed || seq <= m.applied[set] {
		m.logger.Debug("friends_stale_load_dropped", zap.String("set", string(set)))
		return nil
	}
	if err != nil {
		return err
	}
	m.applied[set] = seq
	m.loaded[set] = true
	switch set {
	case SetFriends:
		m.friends = users
	case SetIncoming:
		m.incoming = requests
	case SetSent:
		m.sent = requests
	}
	return nil
}

// Send asks userID to become a friend.
func (m *Manager) Send(ctx context.Context, userID int64) (*models.FriendRequest, error) {
	release, err := m.begin("user", userID)
	if err != nil {
		return nil, err
	}
	defer release()

	if err := m.check(EventSend, userID); err != nil {
		return nil, m.settle(ctx, "friend_request_send", userID, err)
	}
	req, err := m.backend.SendFriendRequest(ctx, userID)
	return req, m.settle(ctx, "friend_request_send", userID, err)
}

func (m *Manager) Accept(ctx context.Context, requestID int64) (*models.FriendRequest, error) {
	return m.answer(ctx, EventAccept, requestID, m.backend.AcceptFriendRequest)
}

func (m *Manager) Reject(ctx context.Context, requestID int64) (*models.FriendRequest, error) {
	return m.answer(ctx, EventReject, requestID, m.backend.RejectFriendRequest)
}

// Cancel withdraws a request the current user sent. It goes through the
// reject endpoint, so it only succeeds on a backend that lets the sender
// reject; otherwise PermissionDenied is returned and the set reloaded.
func (m *Manager) Cancel(ctx context.Context, requestID int64) (*models.FriendRequest, error) {
	req, err := m.answer(ctx, EventCancel, requestID, m.backend.RejectFriendRequest)
	if errors.Is(err, utils.ErrForbidden) {
		err = utils.Wrap(utils.CodePermissionDenied, "the server does not allow withdrawing a sent request", err)
	}
	return req, err
}

func (m *Manager) answer(ctx context.Context, ev Event, requestID int64,
	call func(context.Context, int64) (*models.FriendRequest, error)) (*models.FriendRequest, error) {
	action := "friend_request_" + string(ev)
	release, err := m.begin("request", requestID)
	if err != nil {
		return nil, err
	}
	defer release()

	if err := m.checkRequest(ev, requestID); err != nil {
		return nil, m.settle(ctx, action, requestID, err)
	}
	req, err := call(ctx, requestID)
	return req, m.settle(ctx, action, requestID, err)
}

// Remove ends the friendship with userID after the user confirms it.
func (m *Manager) Remove(ctx context.Context, userID int64) error {
	if !m.confirm.Confirm("Remove this user from your friends?") {
		return utils.Cancelled("friend removal cancelled")
	}

	release, err := m.begin("user", userID)
	if err != nil {
		return err
	}
	defer release()

	if err := m.check(EventRemove, userID); err != nil {
		return m.settle(ctx, "friend_remove", userID, err)
	}
	err = m.backend.RemoveFriend(ctx, userID)
	return m.settle(ctx, "friend_remove", userID, err)
}

// Relationship fetches userID's profile and reads the relationship status
// the backend computed for it.
func (m *Manager) Relationship(ctx context.Context, userID int64) (Status, *models.Profile, error) {
	profile, err := m.backend.User(ctx, userID)
	if err != nil {
		return StatusNone, nil, err
	}
	return StatusOf(profile), profile, nil
}

// check applies ev to the relationship with userID as the loaded sets show
// it. Nothing is rejected while the sets cannot tell.
func (m *Manager) check(ev Event, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	status, known := StatusNone, ev == EventRemove && m.loaded[SetFriends]
	for _, u := range m.friends {
		if u.ID == userID {
			status, known = StatusFriends, true
		}
	}
	for _, r := range m.sent {
		if r.ToUser.ID == userID {
			status, known = StatusPendingSent, true
		}
	}
	for _, r := range m.incoming {
		if r.FromUser.ID == userID {
			status, known = StatusPendingReceived, true
		}
	}
	if !known {
		return nil
	}
	_, err := Transition(status, ev)
	return err
}

// checkRequest is check for an answer to a request: the request must be in
// the set the answer belongs to.
func (m *Manager) checkRequest(ev Event, requestID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	home := SetIncoming
	if ev == EventCancel {
		home = SetSent
	}
	status, known := StatusNone, m.loaded[home]
	for _, r := range m.incoming {
		if r.ID == requestID {
			status, known = StatusPendingReceived, true
		}
	}
	for _, r := range m.sent {
		if r.ID == requestID {
			status, known = StatusPendingSent, true
		}
	}
	if !known {
		return nil
	}
	_, err := Transition(status, ev)
	return err
}

func (m *Manager) begin(kind string, id int64) (func(), error) {
	key := fmt.Sprintf("%s:%d", kind, id)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.inFlight[key] {
		return nil, utils.ErrInFlight
	}
	m.inFlight[key] = true
	return func() {
		m.mu.Lock()
		delete(m.inFlight, key)
		m.mu.Unlock()
	}, nil
}

// settle classifies the result of a mutation and resyncs the active set.
// The backend answers a stale transition with 400, which is reported as a
// Conflict. A refused permission also resyncs: the view offered an action
// the backend does not allow.
func (m *Manager) settle(ctx context.Context, action string, id int64, err error) error {
	if errors.Is(err, utils.ErrValidation) {
		err = utils.Conflict(utils.Message(err))
	}

	if err != nil && !utils.Resync(err) && !errors.Is(err, utils.ErrForbidden) {
		m.logger.Warn(action+"_failed", zap.Int64("id", id), zap.Error(err))
		return err
	}

	if err != nil {
		m.logger.Info(action+"_resync", zap.Int64("id", id), zap.Error(err))
	}
	if reloadErr := m.Reload(ctx); reloadErr != nil {
		m.logger.Warn("friends_reload_failed",
			zap.String("set", string(m.Active())),
			zap.Error(reloadErr),
		)
	}
	return err
}
