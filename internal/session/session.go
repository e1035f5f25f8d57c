// Package session persists the authenticated user identity between runs.
// The record is read once at startup and cleared on sign-out.
package session

import (
	"fmt"
	"time"

	"boltalka/internal/models"

	"github.com/vmihailenco/msgpack/v5"
	"go.etcd.io/bbolt"
)

var (
	bucketSession = []byte("session")
	keyUser       = []byte("user")
)

type dbUser struct {
	ID      string `msgpack:"id"`
	Name    string `msgpack:"username"`
	Phone   string `msgpack:"phone"`
	SavedAt int64  `msgpack:"savedAt"`
}

func (u *dbUser) MarshalBinary() ([]byte, error) {
	type alias dbUser
	return msgpack.Marshal((*alias)(u))
}

func (u *dbUser) UnmarshalBinary(data []byte) error {
	type alias dbUser
	return msgpack.Unmarshal(data, (*alias)(u))
}

type Store struct {
	db *bbolt.DB
}

func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open session db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketSession)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create session bucket: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveUser stores the signed-in user identity.
func (s *Store) SaveUser(user models.User) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		rec := &dbUser{
			ID:      user.ID,
			Name:    user.Name,
			Phone:   user.Phone,
			SavedAt: time.Now().Unix(),
		}
		data, err := rec.MarshalBinary()
		if err != nil {
			return err
		}
		return tx.Bucket(bucketSession).Put(keyUser, data)
	})
}

// User returns the persisted identity, or models.ErrNotFound when no user is
// signed in.
func (s *Store) User() (models.User, error) {
	var user models.User
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketSession).Get(keyUser)
		if data == nil {
			return models.ErrNotFound
		}
		var rec dbUser
		if err := rec.UnmarshalBinary(data); err != nil {
			return err
		}
		user = models.User{ID: rec.ID, Name: rec.Name, Phone: rec.Phone}
		return nil
	})
	return user, err
}

// Clear removes the persisted identity (sign-out).
func (s *Store) Clear() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketSession).Delete(keyUser)
	})
}
