// Package session holds the current authenticated identity. The identity
// lives on an explicit Manager passed to the handlers that need it, with
// the key-value mirror under "blogUser" as a cache of the last successful
// login. Gating on IsAdmin is presentational only; the upstream API
// trusts the client.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/mamadkami/weblog/internal/kvstore"
	"github.com/mamadkami/weblog/internal/model"
)

const userKey = "blogUser"

// Authenticator is the remote login endpoint, implemented by client.Client.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (model.Identity, error)
}

type Manager struct {
	auth Authenticator
	kv   kvstore.Store

	mu   sync.RWMutex
	user *model.Identity
}

func New(auth Authenticator, kv kvstore.Store) *Manager {
	return &Manager{auth: auth, kv: kv}
}

// Resume restores the identity cached by a previous login, if any.
func (m *Manager) Resume(ctx context.Context) error {
	raw, err := m.kv.Get(ctx, userKey)
	if errors.Is(err, kvstore.ErrNoKey) {
		return nil
	}
	if err != nil {
		return err
	}

	var identity model.Identity
	if err := json.Unmarshal(raw, &identity); err != nil {
		return err
	}

	m.mu.Lock()
	m.user = &identity
	m.mu.Unlock()

	return nil
}

// Login authenticates against the remote endpoint. On success the identity
// is cached in memory and mirrored to storage; on failure nothing is
// cached and the error carries the server-provided message.
func (m *Manager) Login(ctx context.Context, username, password string) (model.Identity, error) {
	identity, err := m.auth.Login(ctx, username, password)
	if err != nil {
		return model.Identity{}, err
	}

	m.mu.Lock()
	m.user = &identity
	m.mu.Unlock()

	raw, err := json.Marshal(identity)
	if err != nil {
		return identity, err
	}

	return identity, m.kv.Set(ctx, userKey, raw)
}

// Logout clears the identity from memory and from the storage mirror.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	m.user = nil
	m.mu.Unlock()

	return m.kv.Delete(ctx, userKey)
}

// Current returns the cached identity, if one is set.
func (m *Manager) Current() (model.Identity, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.user == nil {
		return model.Identity{}, false
	}

	return *m.user, true
}

func (m *Manager) IsAuthenticated() bool {
	_, ok := m.Current()

	return ok
}

func (m *Manager) IsAdmin() bool {
	identity, ok := m.Current()

	return ok && identity.Role == "admin"
}
