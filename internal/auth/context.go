package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"hardwareStoreInventory/models"
	"hardwareStoreInventory/repository"
)

// State is a point-in-time view of the authentication context.
type State struct {
	User      models.User
	Token     string
	Restoring bool
}

// Authenticated reports whether a user is logged in.
func (s State) Authenticated() bool { return s.User != nil && s.Token != "" }

// IsAdmin reports whether the logged-in user is an administrator. This is a
// client-side gate only; the server enforces its own rules.
func (s State) IsAdmin() bool { return s.Authenticated() && s.User.IsAdmin() }

// Context holds the current user/token pair. It is created once per process,
// restored from the session store, and changed only by Login and Logout.
type Context struct {
	mu        sync.RWMutex
	store     repository.SessionStore
	log       *zap.Logger
	now       func() time.Time
	user      models.User
	token     string
	restoring bool
}

// NewContext returns a context that reports Restoring until Restore runs.
func NewContext(store repository.SessionStore, log *zap.Logger) *Context {
	if store == nil {
		panic("session store is required")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Context{store: store, log: log, now: time.Now, restoring: true}
}

// State returns a snapshot of the current state.
func (c *Context) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return State{User: c.user, Token: c.token, Restoring: c.restoring}
}

// Restore loads the persisted session. A missing or unreadable session is
// logged and leaves the context logged out.
func (c *Context) Restore(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer func() { c.restoring = false }()

	user, token, err := c.store.Load(ctx)
	if err != nil {
		if !errors.Is(err, repository.ErrNoSession) {
			c.log.Warn("could not restore session", zap.Error(err))
		}
		return
	}
	if info, err := InspectToken(token); err == nil && info.Expired(c.now()) {
		// The server is the judge; keep the session and let it answer 401.
		c.log.Warn("restored token looks expired", zap.Time("expires_at", info.ExpiresAt))
	}
	c.user, c.token = user, token
	c.log.Debug("session restored", zap.String("usuario", user.Username()))
}

// Login persists the session and then makes it current. If persistence fails
// the failure is logged and returned, and the context is left unchanged.
func (c *Context) Login(ctx context.Context, user models.User, token string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.Save(ctx, user, token); err != nil {
		c.log.Error("could not save session", zap.Error(err))
		return err
	}
	c.user, c.token = user, token
	return nil
}

// Logout clears the persisted session and always forgets the current one.
func (c *Context) Logout(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.Clear(ctx); err != nil {
		c.log.Error("could not clear session", zap.Error(err))
	}
	c.user, c.token = nil, ""
}
