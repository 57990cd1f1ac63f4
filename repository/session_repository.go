package repository

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"hardwareStoreInventory/models"
)

// Fixed keys the session is stored under.
const (
	KeyUser  = "user"
	KeyToken = "token"
)

// SessionRepository keeps the session in the session_kv table, one row per
// key, mirroring a device key-value store.
type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Load returns the saved user and token. Both keys must be present,
// otherwise ErrNoSession is returned.
func (r *SessionRepository) Load(ctx context.Context) (models.User, string, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rawUser, err := r.get(ctx, KeyUser)
	if err != nil {
		return nil, "", err
	}
	token, err := r.get(ctx, KeyToken)
	if err != nil {
		return nil, "", err
	}
	if rawUser == "" || token == "" {
		return nil, "", ErrNoSession
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(rawUser)))
	dec.UseNumber()
	var user models.User
	if err := dec.Decode(&user); err != nil {
		return nil, "", fmt.Errorf("decode saved user: %w", err)
	}
	if user == nil {
		return nil, "", ErrNoSession
	}
	return user, token, nil
}

// Save writes the user record and token in one transaction.
func (r *SessionRepository) Save(ctx context.Context, user models.User, token string) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	const q = `INSERT INTO session_kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	for _, kv := range [][2]string{{KeyUser, string(raw)}, {KeyToken, token}} {
		if _, err := tx.ExecContext(ctx, q, kv[0], kv[1]); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// Clear removes both session keys.
func (r *SessionRepository) Clear(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `DELETE FROM session_kv WHERE key IN (?, ?)`, KeyUser, KeyToken)
	return err
}

func (r *SessionRepository) get(ctx context.Context, key string) (string, error) {
	var v string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM session_kv WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return v, err
}
