// session.go

// Package session implements server-side sessions backed by Redis. The cookie
// carries only an opaque session ID, signed with securecookie; all session
// state lives in Redis under the sha256 of that ID.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/redis/go-redis/v9"

	"github.com/grigoryblack/friendly-reminder/internal/config"
	"github.com/grigoryblack/friendly-reminder/internal/core"
)

const keyPrefix = "session:"

type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Role      string    `json:"role"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Manager struct {
	redis  *redis.Client
	codec  *securecookie.SecureCookie
	config config.SessionConfig
}

func NewManager(
	redisClient *redis.Client,
	cfg config.SessionConfig,
) (*Manager, error) {
	if cfg.HashKey == "" {
		return nil, fmt.Errorf("session hash key is required")
	}

	var blockKey []byte
	if cfg.BlockKey != "" {
		blockKey = []byte(cfg.BlockKey)
	}

	return &Manager{
		redis:  redisClient,
		codec:  securecookie.New([]byte(cfg.HashKey), blockKey),
		config: cfg,
	}, nil
}

// Issue creates a session for the user and sets the signed cookie.
func (m *Manager) Issue(
	ctx context.Context,
	w http.ResponseWriter,
	userID, role, email, name string,
) (*Session, error) {
	sid, err := core.GenerateSessionID()
	if err != nil {
		return nil, fmt.Errorf("generate session id: %w", err)
	}

	now := time.Now()
	sess := &Session{
		ID:        sid,
		UserID:    userID,
		Role:      role,
		Email:     email,
		Name:      name,
		CreatedAt: now,
		ExpiresAt: now.Add(m.config.TTL),
	}

	payload, err := json.Marshal(sess)
	if err != nil {
		return nil, fmt.Errorf("marshal session: %w", err)
	}

	key := keyPrefix + core.HashToken(sid)
	if err := m.redis.Set(ctx, key, payload, m.config.TTL).Err(); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	encoded, err := m.codec.Encode(m.config.CookieName, sid)
	if err != nil {
		return nil, fmt.Errorf("encode session cookie: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.config.CookieName,
		Value:    encoded,
		Path:     "/",
		MaxAge:   int(m.config.TTL.Seconds()),
		HttpOnly: true,
		Secure:   m.config.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	return sess, nil
}

// Resolve reads the session cookie and loads the session from Redis.
func (m *Manager) Resolve(
	ctx context.Context,
	r *http.Request,
) (*Session, error) {
	cookie, err := r.Cookie(m.config.CookieName)
	if err != nil {
		return nil, fmt.Errorf("read session cookie: %w", core.ErrUnauthorized)
	}

	var sid string
	if err := m.codec.Decode(m.config.CookieName, cookie.Value, &sid); err != nil {
		return nil, fmt.Errorf("decode session cookie: %w", core.ErrSessionInvalid)
	}

	key := keyPrefix + core.HashToken(sid)
	payload, err := m.redis.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("load session: %w", core.ErrSessionExpired)
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(payload, &sess); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", core.ErrSessionInvalid)
	}

	if time.Now().After(sess.ExpiresAt) {
		//nolint:errcheck // best-effort cleanup of an already-expired key
		_ = m.redis.Del(ctx, key).Err()
		return nil, fmt.Errorf("session expired: %w", core.ErrSessionExpired)
	}

	return &sess, nil
}

// Destroy deletes the session and clears the cookie.
func (m *Manager) Destroy(
	ctx context.Context,
	w http.ResponseWriter,
	r *http.Request,
) error {
	cookie, err := r.Cookie(m.config.CookieName)
	if err == nil {
		var sid string
		if decErr := m.codec.Decode(m.config.CookieName, cookie.Value, &sid); decErr == nil {
			key := keyPrefix + core.HashToken(sid)
			if delErr := m.redis.Del(ctx, key).Err(); delErr != nil {
				return fmt.Errorf("delete session: %w", delErr)
			}
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.config.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.config.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	return nil
}
