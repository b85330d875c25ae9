package database

import (
	"encoding/json"
	"errors"
	"os"

	"github.com/cockroachdb/pebble"

	"socialclient/models"
)

var (
	keyToken    = []byte("session/token")
	keyIdentity = []byte("session/identity")
)

// Store is the on-disk state a CLI run hands to the next one: the session
// credential and the last resolved identity.
type Store struct {
	db *pebble.DB
}

var DB *Store

func Connect(dir string) error {
	store, err := Open(dir)
	if err != nil {
		return err
	}
	DB = store
	return nil
}

func Close() {
	if DB != nil {
		DB.Close()
		DB = nil
	}
}

func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Token() string {
	value, err := s.get(keyToken)
	if err != nil {
		return ""
	}
	return string(value)
}

func (s *Store) SetToken(token string) error {
	if token == "" {
		return s.ClearToken()
	}
	return s.db.Set(keyToken, []byte(token), pebble.Sync)
}

func (s *Store) ClearToken() error {
	return s.db.Delete(keyToken, pebble.Sync)
}

func (s *Store) SaveIdentity(user *models.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return s.db.Set(keyIdentity, data, pebble.Sync)
}

// LoadIdentity returns nil, nil when no identity has been saved.
func (s *Store) LoadIdentity() (*models.User, error) {
	value, err := s.get(keyIdentity)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var user models.User
	if err := json.Unmarshal(value, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) ClearIdentity() error {
	return s.db.Delete(keyIdentity, pebble.Sync)
}

func (s *Store) get(key []byte) ([]byte, error) {
	value, closer, err := s.db.Get(key)
	if err != nil {
		return nil, err
	}
	defer closer.Close()
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}
