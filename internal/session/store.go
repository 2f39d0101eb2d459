// Package session implements the server side of the login session: a
// Redis record per session id carrying the authenticated user, the
// one-shot flash queue and the consume-once return-to path. The signed
// cookie (see utils.NewSessionToken) only names the record; everything
// the application trusts lives here. Sessions get a fixed TTL at
// creation and are never extended.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "sess:"

// Flash is a one-shot user-facing notice. Kind is "success" or
// "error", matching the two queues the original flash middleware kept.
type Flash struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Store persists sessions in Redis.
type Store struct {
	rdb *redis.Client
}

// NewStore wraps the given Redis client.
func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

// NewID returns a fresh opaque session id.
func NewID() string {
	return uuid.NewString()
}

func sessKey(id string) string  { return keyPrefix + id }
func flashKey(id string) string { return keyPrefix + id + ":flash" }

// Create stores a new session record. userID is empty for anonymous
// sessions, which exist only to hold return-to state and flash notices
// until the visitor logs in. The TTL is fixed from this moment.
func (s *Store) Create(ctx context.Context, sessionID, userID string, ttl time.Duration) error {
	key := sessKey(sessionID)
	fields := map[string]interface{}{
		"user_id":    userID,
		"created_at": time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.rdb.HSet(ctx, key, fields).Err(); err != nil {
		return err
	}
	return s.rdb.Expire(ctx, key, ttl).Err()
}

// UserID resolves the user bound to a session. The second return value
// reports whether the session record still exists at all; an expired or
// deleted session reads as (absent, no error) so callers fall back to
// anonymous handling instead of failing the request.
func (s *Store) UserID(ctx context.Context, sessionID string) (string, bool, error) {
	vals, err := s.rdb.HGetAll(ctx, sessKey(sessionID)).Result()
	if err != nil {
		return "", false, err
	}
	if len(vals) == 0 {
		return "", false, nil
	}
	return vals["user_id"], true, nil
}

// Delete removes the session record and any pending flashes. Used by
// logout and by the session rotation on login.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	return s.rdb.Del(ctx, sessKey(sessionID), flashKey(sessionID)).Err()
}

// SetReturnTo records the originally requested path so the client can
// be sent back there after logging in. Overwrites any previous value;
// the path is stored once and consumed once.
func (s *Store) SetReturnTo(ctx context.Context, sessionID, path string) error {
	return s.rdb.HSet(ctx, sessKey(sessionID), "return_to", path).Err()
}

// ConsumeReturnTo returns the stored return-to path and clears it, so a
// second consumption yields nothing. An absent value is not an error.
func (s *Store) ConsumeReturnTo(ctx context.Context, sessionID string) (string, error) {
	key := sessKey(sessionID)
	path, err := s.rdb.HGet(ctx, key, "return_to").Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", err
	}
	if err := s.rdb.HDel(ctx, key, "return_to").Err(); err != nil {
		return "", err
	}
	return path, nil
}

// AddFlash appends a one-shot notice to the session's flash queue. The
// queue inherits the remaining lifetime of the session so it cannot
// outlive it.
func (s *Store) AddFlash(ctx context.Context, sessionID, kind, message string) error {
	payload, err := json.Marshal(Flash{Kind: kind, Message: message})
	if err != nil {
		return err
	}
	fk := flashKey(sessionID)
	if err := s.rdb.RPush(ctx, fk, payload).Err(); err != nil {
		return err
	}
	ttl, err := s.rdb.TTL(ctx, sessKey(sessionID)).Result()
	if err != nil || ttl <= 0 {
		ttl = time.Hour
	}
	return s.rdb.Expire(ctx, fk, ttl).Err()
}

// PopFlashes drains the flash queue in insertion order and clears it,
// so every notice is rendered exactly once.
func (s *Store) PopFlashes(ctx context.Context, sessionID string) ([]Flash, error) {
	fk := flashKey(sessionID)
	raw, err := s.rdb.LRange(ctx, fk, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}
	if err := s.rdb.Del(ctx, fk).Err(); err != nil {
		return nil, err
	}
	out := make([]Flash, 0, len(raw))
	for _, item := range raw {
		var f Flash
		if err := json.Unmarshal([]byte(item), &f); err != nil {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}
