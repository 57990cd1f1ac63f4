package repository

import (
	"context"
	"errors"

	"hardwareStoreInventory/models"
)

// ErrNoSession is returned by Load when no complete session is persisted.
var ErrNoSession = errors.New("no saved session")

// SessionStore persists the logged-in user and its bearer token across
// process restarts.
type SessionStore interface {
	Load(ctx context.Context) (models.User, string, error)
	Save(ctx context.Context, user models.User, token string) error
	Clear(ctx context.Context) error
}

var _ SessionStore = (*SessionRepository)(nil)
